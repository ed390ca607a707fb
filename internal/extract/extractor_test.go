package extract_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medvox/rxscribe/internal/extract"
	"github.com/medvox/rxscribe/pkg/provider/llm"
	"github.com/medvox/rxscribe/pkg/provider/llm/mock"
)

// aspirinResponse is a healthy vendor reply for the aspirin dictation.
const aspirinResponse = `{
  "chief_complaints": "Chest pain",
  "clinical_findings": null,
  "diagnosis": null,
  "prescribed_investigations": [],
  "medicines": [
    {
      "brand_name": null,
      "generic_name": "Aspirin",
      "dosage": "75 mg",
      "frequency": "once daily",
      "route": "oral",
      "duration": "30 days",
      "remarks": null
    }
  ],
  "advice": {"diet": null, "exercise": null, "sleep": null, "other": null},
  "followup_date": null
}`

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestExtract_EmptyTranscriptNoVendorCall(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{}
	e := extract.New(provider)

	for _, transcript := range []string{"", "   ", "\n\t"} {
		_, err := e.Extract(context.Background(), transcript)
		if !errors.Is(err, extract.ErrEmptyTranscript) {
			t.Errorf("transcript %q: err=%v, want ErrEmptyTranscript", transcript, err)
		}
	}
	if len(provider.CompleteCalls) != 0 {
		t.Errorf("vendor called %d times for empty transcripts, want 0", len(provider.CompleteCalls))
	}
}

func TestExtract_PromptCarriesTranscriptAndDefaultDate(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: aspirinResponse},
	}
	e := extract.New(provider, extract.WithClock(fixedClock(now)))

	transcript := "Chest pain, prescribe Aspirin 75mg once daily for 30 days"
	if _, err := e.Extract(context.Background(), transcript); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if len(provider.CompleteCalls) != 1 {
		t.Fatalf("expected 1 Complete call, got %d", len(provider.CompleteCalls))
	}
	prompt := provider.CompleteCalls[0].Req.Messages[0].Content
	if !strings.Contains(prompt, transcript) {
		t.Error("prompt does not contain the transcript")
	}
	if !strings.Contains(prompt, "2026-09-05") {
		t.Error("prompt does not contain the one-week default follow-up date")
	}
	if !strings.Contains(prompt, "valid JSON only") {
		t.Error("prompt does not demand JSON-only output")
	}
}

func TestExtract_HealthyPathNormalisesMedicine(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: aspirinResponse},
	}
	e := extract.New(provider, extract.WithClock(fixedClock(now)))

	p, err := e.Extract(context.Background(),
		"Chest pain, prescribe Aspirin 75mg once daily for 30 days, follow up in a week")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	if len(p.Medicines) != 1 {
		t.Fatalf("got %d medicines, want 1", len(p.Medicines))
	}
	m := p.Medicines[0]
	if m.GenericName == nil || !strings.Contains(*m.GenericName, "Aspirin") {
		t.Errorf("GenericName=%v, want to contain Aspirin", m.GenericName)
	}
	if m.Dosage == nil || !strings.Contains(*m.Dosage, "75mg") {
		t.Errorf("Dosage=%v, want normalised to contain 75mg", m.Dosage)
	}
	if m.Frequency == nil || *m.Frequency != "OD" {
		t.Errorf("Frequency=%v, want OD", m.Frequency)
	}
	if m.Route == nil || *m.Route != "Oral" {
		t.Errorf("Route=%v, want Oral", m.Route)
	}
	if m.Duration == nil || !strings.Contains(*m.Duration, "30 days") {
		t.Errorf("Duration=%v, want to contain 30 days", m.Duration)
	}
	// No follow-up stated by the model: the one-week product default applies.
	if p.FollowupDate == nil || *p.FollowupDate != "2026-09-05" {
		t.Errorf("FollowupDate=%v, want 2026-09-05", p.FollowupDate)
	}
}

func TestExtract_StatedFollowupKept(t *testing.T) {
	t.Parallel()

	resp := strings.Replace(aspirinResponse, `"followup_date": null`, `"followup_date": "2026-10-01"`, 1)
	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: resp},
	}
	e := extract.New(provider)

	p, err := e.Extract(context.Background(), "follow up on the first of October")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if p.FollowupDate == nil || *p.FollowupDate != "2026-10-01" {
		t.Errorf("FollowupDate=%v, want the stated 2026-10-01", p.FollowupDate)
	}
}

func TestExtract_StripsMarkdownFences(t *testing.T) {
	t.Parallel()

	for _, fence := range []string{
		"```json\n" + aspirinResponse + "\n```",
		"```\n" + aspirinResponse + "\n```",
	} {
		provider := &mock.Provider{
			CompleteResponse: &llm.CompletionResponse{Content: fence},
		}
		e := extract.New(provider)

		p, err := e.Extract(context.Background(), "Chest pain, aspirin")
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if len(p.Medicines) != 1 {
			t.Errorf("fenced response not parsed: got %d medicines, want 1", len(p.Medicines))
		}
	}
}

func TestExtract_VendorErrorFallsBack(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{CompleteErr: errors.New("status 503")}
	e := extract.New(provider)

	transcript := "Severe headache since yesterday"
	p, err := e.Extract(context.Background(), transcript)
	if err != nil {
		t.Fatalf("vendor failure must not propagate, got: %v", err)
	}
	if p.ChiefComplaints == nil || *p.ChiefComplaints != transcript {
		t.Errorf("fallback ChiefComplaints=%v, want transcript verbatim", p.ChiefComplaints)
	}
	if len(p.Medicines) != 0 || p.Medicines == nil {
		t.Errorf("fallback Medicines=%v, want empty non-nil slice", p.Medicines)
	}
	if p.FollowupDate != nil {
		t.Errorf("fallback FollowupDate=%v, want nil", p.FollowupDate)
	}
}

func TestExtract_UnparseableResponseFallsBack(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
	}{
		{"prose", "I could not find a prescription in this transcript."},
		{"truncated json", `{"chief_complaints": "Chest`},
		{"json array", `["not", "an", "object"]`},
		{"json null", "null"},
		{"blank", "   "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			provider := &mock.Provider{
				CompleteResponse: &llm.CompletionResponse{Content: tc.content},
			}
			e := extract.New(provider)

			transcript := "Knee pain for a month"
			p, err := e.Extract(context.Background(), transcript)
			if err != nil {
				t.Fatalf("contract violation must not propagate, got: %v", err)
			}
			if p.ChiefComplaints == nil || *p.ChiefComplaints != transcript {
				t.Errorf("fallback ChiefComplaints=%v, want transcript verbatim", p.ChiefComplaints)
			}
		})
	}
}

func TestExtract_ListInvariantsSurviveNullLists(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{"chief_complaints": "Cough", "prescribed_investigations": null, "medicines": null}`,
		},
	}
	e := extract.New(provider)

	p, err := e.Extract(context.Background(), "Dry cough for a week")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if p.PrescribedInvestigations == nil {
		t.Error("PrescribedInvestigations is nil, want empty slice despite model null")
	}
	if p.Medicines == nil {
		t.Error("Medicines is nil, want empty slice despite model null")
	}
}

func TestExtract_CompoundInvestigationEntries(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{
			Content: `{
			  "chief_complaints": "Fatigue",
			  "prescribed_investigations": ["Blood sugar fasting", "Blood sugar postprandial"],
			  "medicines": []
			}`,
		},
	}
	e := extract.New(provider)

	p, err := e.Extract(context.Background(),
		"Fatigue. Please check blood sugar fasting and postprandial.")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(p.PrescribedInvestigations) != 2 {
		t.Fatalf("got %d investigations, want 2 discrete tests", len(p.PrescribedInvestigations))
	}
	// And the prompt must instruct the model to do this splitting.
	prompt := provider.CompleteCalls[0].Req.Messages[0].Content
	if !strings.Contains(prompt, "Split compound phrases") {
		t.Error("prompt does not instruct compound-phrase splitting")
	}
}

func TestExtract_ReplacesPreviousResult(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: aspirinResponse},
	}
	e := extract.New(provider)

	first, err := e.Extract(context.Background(), "Chest pain, aspirin")
	if err != nil {
		t.Fatalf("first Extract: %v", err)
	}

	provider.CompleteResponse = &llm.CompletionResponse{
		Content: `{"chief_complaints": "Back pain", "prescribed_investigations": [], "medicines": []}`,
	}
	second, err := e.Extract(context.Background(), "Back pain after lifting")
	if err != nil {
		t.Fatalf("second Extract: %v", err)
	}

	if len(second.Medicines) != 0 {
		t.Errorf("second extraction carried over %d medicines from the first", len(second.Medicines))
	}
	if *first.ChiefComplaints == *second.ChiefComplaints {
		t.Error("second extraction did not replace the first")
	}
}
