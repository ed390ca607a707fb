package prescription

import "strings"

// frequencyTerms maps unambiguous dictated frequency phrases to the standard
// clinical shorthand. Keys are compared lower-cased after trimming.
var frequencyTerms = map[string]string{
	"od":                "OD",
	"once daily":        "OD",
	"once a day":        "OD",
	"daily":             "OD",
	"every day":         "OD",
	"bd":                "BD",
	"bid":               "BD",
	"twice daily":       "BD",
	"twice a day":       "BD",
	"tds":               "TDS",
	"tid":               "TDS",
	"thrice daily":      "TDS",
	"three times a day": "TDS",
	"three times daily": "TDS",
	"qid":               "QID",
	"four times a day":  "QID",
	"four times daily":  "QID",
	"sos":               "SOS",
	"as needed":         "SOS",
	"if needed":         "SOS",
	"when required":     "SOS",
	"prn":               "SOS",
}

// routeTerms maps dictated administration routes to the standard vocabulary.
var routeTerms = map[string]string{
	"oral":          "Oral",
	"orally":        "Oral",
	"by mouth":      "Oral",
	"po":            "Oral",
	"iv":            "IV",
	"intravenous":   "IV",
	"intravenously": "IV",
	"im":            "IM",
	"intramuscular": "IM",
	"topical":       "Topical",
	"topically":     "Topical",
	"local application": "Topical",
}

// Normalize brings p into canonical form in place:
//
//   - nil list fields become empty slices (the wire contract requires arrays,
//     never null);
//   - blank investigation entries are dropped and the rest trimmed;
//   - scalar fields are trimmed, with whitespace-only values collapsed to nil;
//   - medicine frequency and route values are rewritten to standard shorthand
//     when the dictated phrase is unambiguous, and left untouched otherwise.
func Normalize(p *Prescription) {
	p.ChiefComplaints = trimOptional(p.ChiefComplaints)
	p.ClinicalFindings = trimOptional(p.ClinicalFindings)
	p.Diagnosis = trimOptional(p.Diagnosis)
	p.FollowupDate = trimOptional(p.FollowupDate)

	investigations := make([]string, 0, len(p.PrescribedInvestigations))
	for _, inv := range p.PrescribedInvestigations {
		if trimmed := strings.TrimSpace(inv); trimmed != "" {
			investigations = append(investigations, trimmed)
		}
	}
	p.PrescribedInvestigations = investigations

	if p.Medicines == nil {
		p.Medicines = []Medicine{}
	}
	for i := range p.Medicines {
		normalizeMedicine(&p.Medicines[i])
	}

	p.Advice.Diet = trimOptional(p.Advice.Diet)
	p.Advice.Exercise = trimOptional(p.Advice.Exercise)
	p.Advice.Sleep = trimOptional(p.Advice.Sleep)
	p.Advice.Other = trimOptional(p.Advice.Other)
}

func normalizeMedicine(m *Medicine) {
	m.BrandName = trimOptional(m.BrandName)
	m.GenericName = trimOptional(m.GenericName)
	m.Dosage = normalizeDosage(trimOptional(m.Dosage))
	m.Frequency = canonicalize(trimOptional(m.Frequency), frequencyTerms)
	m.Route = canonicalize(trimOptional(m.Route), routeTerms)
	m.Duration = trimOptional(m.Duration)
	m.Remarks = trimOptional(m.Remarks)
}

// normalizeDosage compacts "75 mg" style values to "75mg". Units with an
// internal space after a number are the only thing touched; free-text
// dosages pass through unchanged.
func normalizeDosage(d *string) *string {
	if d == nil {
		return nil
	}
	for _, unit := range []string{"mg", "mcg", "ml", "g", "iu"} {
		lower := strings.ToLower(*d)
		if idx := strings.Index(lower, " "+unit); idx > 0 && endsAfterUnit(lower, idx+1+len(unit)) {
			if isDigit(lower[idx-1]) {
				v := (*d)[:idx] + (*d)[idx+1:]
				return &v
			}
		}
	}
	return d
}

func endsAfterUnit(s string, end int) bool {
	return end == len(s) || s[end] == ' '
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// canonicalize looks up the trimmed, lower-cased value in terms. Unknown
// values are returned as-is — only unambiguous phrases are rewritten.
func canonicalize(v *string, terms map[string]string) *string {
	if v == nil {
		return nil
	}
	if canonical, ok := terms[strings.ToLower(strings.TrimSpace(*v))]; ok {
		return &canonical
	}
	return v
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
