package prescription_test

import (
	"testing"

	"github.com/medvox/rxscribe/internal/prescription"
)

func TestNormalize_NilListsBecomeEmpty(t *testing.T) {
	t.Parallel()

	p := prescription.Prescription{}
	prescription.Normalize(&p)

	if p.PrescribedInvestigations == nil {
		t.Error("PrescribedInvestigations is nil, want empty slice")
	}
	if p.Medicines == nil {
		t.Error("Medicines is nil, want empty slice")
	}
}

func TestNormalize_DropsBlankInvestigations(t *testing.T) {
	t.Parallel()

	p := prescription.Prescription{
		PrescribedInvestigations: []string{" ECG ", "", "   ", "Lipid profile"},
	}
	prescription.Normalize(&p)

	want := []string{"ECG", "Lipid profile"}
	if len(p.PrescribedInvestigations) != len(want) {
		t.Fatalf("got %v, want %v", p.PrescribedInvestigations, want)
	}
	for i, inv := range want {
		if p.PrescribedInvestigations[i] != inv {
			t.Errorf("investigations[%d]=%q, want %q", i, p.PrescribedInvestigations[i], inv)
		}
	}
}

func TestNormalize_FrequencyShorthand(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"once daily", "OD"},
		{"Once Daily", "OD"},
		{"od", "OD"},
		{"twice a day", "BD"},
		{"bid", "BD"},
		{"three times a day", "TDS"},
		{"four times daily", "QID"},
		{"as needed", "SOS"},
		{"prn", "SOS"},
		{"every 6 hours", "every 6 hours"}, // ambiguous, left alone
	}

	for _, tc := range cases {
		p := prescription.Prescription{
			Medicines: []prescription.Medicine{{Frequency: prescription.String(tc.in)}},
		}
		prescription.Normalize(&p)
		if got := *p.Medicines[0].Frequency; got != tc.want {
			t.Errorf("frequency %q normalised to %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_RouteVocabulary(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"oral", "Oral"},
		{"by mouth", "Oral"},
		{"po", "Oral"},
		{"intravenous", "IV"},
		{"im", "IM"},
		{"topically", "Topical"},
		{"sublingual", "sublingual"}, // not in the standard vocabulary, left alone
	}

	for _, tc := range cases {
		p := prescription.Prescription{
			Medicines: []prescription.Medicine{{Route: prescription.String(tc.in)}},
		}
		prescription.Normalize(&p)
		if got := *p.Medicines[0].Route; got != tc.want {
			t.Errorf("route %q normalised to %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_DosageUnitCompaction(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"75 mg", "75mg"},
		{"75mg", "75mg"},
		{"500 mcg", "500mcg"},
		{"5 ml twice", "5ml twice"},
		{"one tablet", "one tablet"},
	}

	for _, tc := range cases {
		p := prescription.Prescription{
			Medicines: []prescription.Medicine{{Dosage: prescription.String(tc.in)}},
		}
		prescription.Normalize(&p)
		if got := *p.Medicines[0].Dosage; got != tc.want {
			t.Errorf("dosage %q normalised to %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_WhitespaceOnlyScalarsCollapseToNil(t *testing.T) {
	t.Parallel()

	p := prescription.Prescription{
		Diagnosis: prescription.String("   "),
		Advice:    prescription.Advice{Diet: prescription.String("\t\n")},
	}
	prescription.Normalize(&p)

	if p.Diagnosis != nil {
		t.Errorf("Diagnosis=%v, want nil for whitespace-only value", p.Diagnosis)
	}
	if p.Advice.Diet != nil {
		t.Errorf("Advice.Diet=%v, want nil for whitespace-only value", p.Advice.Diet)
	}
}
