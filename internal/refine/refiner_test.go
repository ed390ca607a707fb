package refine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/medvox/rxscribe/internal/refine"
	"github.com/medvox/rxscribe/pkg/provider/llm"
	"github.com/medvox/rxscribe/pkg/provider/llm/mock"
)

func TestRefine_EmptyTranscriptNoVendorCall(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{}
	r := refine.New(provider)

	for _, transcript := range []string{"", "  ", "\n"} {
		_, err := r.Refine(context.Background(), transcript)
		if !errors.Is(err, refine.ErrEmptyTranscript) {
			t.Errorf("transcript %q: err=%v, want ErrEmptyTranscript", transcript, err)
		}
	}
	if len(provider.CompleteCalls) != 0 {
		t.Errorf("vendor called %d times for empty transcripts, want 0", len(provider.CompleteCalls))
	}
}

func TestRefine_SendsScribeInstructionAndTranscript(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "Chief Complaint: chest pain."},
	}
	r := refine.New(provider)

	transcript := "pt has chest pain, asprin 75 mg"
	got, err := r.Refine(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Refine returned error: %v", err)
	}
	if got != "Chief Complaint: chest pain." {
		t.Errorf("got %q", got)
	}

	if len(provider.CompleteCalls) != 1 {
		t.Fatalf("expected 1 Complete call, got %d", len(provider.CompleteCalls))
	}
	req := provider.CompleteCalls[0].Req
	if !strings.Contains(req.SystemPrompt, "medical scribe") {
		t.Error("system prompt does not carry the scribe instruction")
	}
	if !strings.Contains(req.SystemPrompt, "Dosage | Frequency | Route | Duration") {
		t.Error("system prompt does not fix the medication line format")
	}
	if !strings.Contains(req.Messages[0].Content, transcript) {
		t.Error("user message does not contain the transcript")
	}
}

func TestRefine_TrimsResponse(t *testing.T) {
	t.Parallel()

	provider := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "\n  Diagnosis: migraine.  \n"},
	}
	r := refine.New(provider)

	got, err := r.Refine(context.Background(), "headache one side")
	if err != nil {
		t.Fatalf("Refine returned error: %v", err)
	}
	if got != "Diagnosis: migraine." {
		t.Errorf("got %q, want trimmed text", got)
	}
}

func TestRefine_VendorErrorPropagates(t *testing.T) {
	t.Parallel()

	cause := errors.New("status 429")
	provider := &mock.Provider{CompleteErr: cause}
	r := refine.New(provider)

	_, err := r.Refine(context.Background(), "some dictation")
	if !errors.Is(err, cause) {
		t.Errorf("err=%v, want wrapped vendor error", err)
	}
}

func TestRefine_EmptyResult(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"", "   \n"} {
		provider := &mock.Provider{
			CompleteResponse: &llm.CompletionResponse{Content: content},
		}
		r := refine.New(provider)

		_, err := r.Refine(context.Background(), "some dictation")
		if !errors.Is(err, refine.ErrEmptyResult) {
			t.Errorf("content %q: err=%v, want ErrEmptyResult", content, err)
		}
	}
}

func TestRefine_NilResponseIsEmptyResult(t *testing.T) {
	t.Parallel()

	r := refine.New(&mock.Provider{})

	_, err := r.Refine(context.Background(), "some dictation")
	if !errors.Is(err, refine.ErrEmptyResult) {
		t.Errorf("err=%v, want ErrEmptyResult for nil vendor response", err)
	}
}
