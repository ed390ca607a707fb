// Package prescription defines the canonical structured record produced by
// the extraction pipeline, together with the deterministic degraded fallback,
// field normalisation, and the medication display-line format/parse pair used
// by editing front ends.
//
// A Prescription lives only for the duration of one dictation session: it is
// created fresh from a transcript, edited in place by the caller, and replaced
// wholesale on the next extraction. Nothing in this package persists state.
package prescription

import "time"

// DateLayout is the wire format for followup_date values.
const DateLayout = "2006-01-02"

// Prescription is the structured result of extracting a dictation transcript.
//
// Scalar fields are nullable: nil means "the clinician did not dictate this"
// and must never be fabricated. PrescribedInvestigations and Medicines are
// always non-nil slices (possibly empty) — that invariant is part of the wire
// contract and is enforced by [Normalize] even when an upstream model returns
// null for them.
type Prescription struct {
	ChiefComplaints          *string    `json:"chief_complaints"`
	ClinicalFindings         *string    `json:"clinical_findings"`
	Diagnosis                *string    `json:"diagnosis"`
	PrescribedInvestigations []string   `json:"prescribed_investigations"`
	Medicines                []Medicine `json:"medicines"`
	Advice                   Advice     `json:"advice"`
	FollowupDate             *string    `json:"followup_date"`
}

// Medicine is a single prescribed medication, normalised into seven optional
// attributes. Dosage units, frequency shorthand (OD/BD/TDS/QID/SOS) and route
// vocabulary (Oral/IV/IM/Topical) use standard clinical abbreviations where
// the dictation is unambiguous.
type Medicine struct {
	BrandName   *string `json:"brand_name"`
	GenericName *string `json:"generic_name"`
	Dosage      *string `json:"dosage"`
	Frequency   *string `json:"frequency"`
	Route       *string `json:"route"`
	Duration    *string `json:"duration"`
	Remarks     *string `json:"remarks"`
}

// Advice groups the clinician's lifestyle recommendations. Each sub-field is
// a single nullable string.
type Advice struct {
	Diet     *string `json:"diet"`
	Exercise *string `json:"exercise"`
	Sleep    *string `json:"sleep"`
	Other    *string `json:"other"`
}

// String returns a pointer to s. Convenience for building optional fields.
func String(s string) *string { return &s }

// Empty returns a Prescription with every field at its schema default:
// nil scalars, empty (non-nil) lists, and an all-nil Advice block.
func Empty() Prescription {
	return Prescription{
		PrescribedInvestigations: []string{},
		Medicines:                []Medicine{},
	}
}

// Clone returns a deep copy of p. Edits to the copy (scalar replace, list
// item insert/remove, nested Advice replace) never touch the original.
func (p Prescription) Clone() Prescription {
	out := p
	out.ChiefComplaints = cloneString(p.ChiefComplaints)
	out.ClinicalFindings = cloneString(p.ClinicalFindings)
	out.Diagnosis = cloneString(p.Diagnosis)
	out.FollowupDate = cloneString(p.FollowupDate)

	out.PrescribedInvestigations = make([]string, len(p.PrescribedInvestigations))
	copy(out.PrescribedInvestigations, p.PrescribedInvestigations)

	out.Medicines = make([]Medicine, len(p.Medicines))
	for i, m := range p.Medicines {
		out.Medicines[i] = m.clone()
	}

	out.Advice = Advice{
		Diet:     cloneString(p.Advice.Diet),
		Exercise: cloneString(p.Advice.Exercise),
		Sleep:    cloneString(p.Advice.Sleep),
		Other:    cloneString(p.Advice.Other),
	}
	return out
}

func (m Medicine) clone() Medicine {
	return Medicine{
		BrandName:   cloneString(m.BrandName),
		GenericName: cloneString(m.GenericName),
		Dosage:      cloneString(m.Dosage),
		Frequency:   cloneString(m.Frequency),
		Route:       cloneString(m.Route),
		Duration:    cloneString(m.Duration),
		Remarks:     cloneString(m.Remarks),
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// DefaultFollowup returns now plus one week, formatted as YYYY-MM-DD.
// Used when a dictation states no follow-up date: the product default is one
// week out rather than leaving the field null.
func DefaultFollowup(now time.Time) string {
	return now.AddDate(0, 0, 7).Format(DateLayout)
}
