package prescription

import "strings"

// Medication display lines follow the refinement contract's pattern:
//
//	Brand (Generic) — Dosage | Frequency | Route | Duration
//
// FormatMedicineLine and ParseMedicineLine are the pure pair behind the
// editing UI's combined name field. The round trip format(parse(s)) == s is
// NOT guaranteed — parsing discards empty segments and extra whitespace — so
// callers must treat ParseMedicineLine as lossy and keep the structured
// Medicine as the source of truth.

const (
	lineSeparator    = " — "
	segmentSeparator = " | "
)

// FormatMedicineLine renders m as a single display line. Absent name parts
// collapse sensibly: brand-only and generic-only medicines render without
// parentheses; absent detail segments are skipped entirely.
func FormatMedicineLine(m Medicine) string {
	var sb strings.Builder
	sb.WriteString(formatName(m))

	segments := make([]string, 0, 4)
	for _, s := range []*string{m.Dosage, m.Frequency, m.Route, m.Duration} {
		if s != nil && *s != "" {
			segments = append(segments, *s)
		}
	}
	if len(segments) > 0 {
		sb.WriteString(lineSeparator)
		sb.WriteString(strings.Join(segments, segmentSeparator))
	}
	return sb.String()
}

func formatName(m Medicine) string {
	brand := optValue(m.BrandName)
	generic := optValue(m.GenericName)
	switch {
	case brand != "" && generic != "":
		return brand + " (" + generic + ")"
	case brand != "":
		return brand
	default:
		return generic
	}
}

// ParseMedicineLine splits a display line back into a Medicine. The name part
// is split on a trailing "(Generic)" group when present; detail segments are
// assigned positionally as dosage, frequency, route, duration. Remarks are
// never encoded in display lines and always come back nil.
func ParseMedicineLine(line string) Medicine {
	var m Medicine

	name := line
	rest := ""
	if idx := strings.Index(line, lineSeparator); idx >= 0 {
		name = line[:idx]
		rest = line[idx+len(lineSeparator):]
	}

	brand, generic := splitName(strings.TrimSpace(name))
	if brand != "" {
		m.BrandName = String(brand)
	}
	if generic != "" {
		m.GenericName = String(generic)
	}

	if rest != "" {
		fields := []**string{&m.Dosage, &m.Frequency, &m.Route, &m.Duration}
		for i, seg := range strings.Split(rest, "|") {
			if i >= len(fields) {
				break
			}
			if v := strings.TrimSpace(seg); v != "" {
				*fields[i] = String(v)
			}
		}
	}
	return m
}

// splitName separates "Brand (Generic)" into its parts. A name without a
// trailing parenthesised group is treated as brand-only.
func splitName(name string) (brand, generic string) {
	if !strings.HasSuffix(name, ")") {
		return name, ""
	}
	open := strings.LastIndex(name, "(")
	if open <= 0 {
		return name, ""
	}
	brand = strings.TrimSpace(name[:open])
	generic = strings.TrimSpace(name[open+1 : len(name)-1])
	return brand, generic
}

func optValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
