// Package refine implements the optional transcript refinement gateway: a
// "medical scribe" LLM pass that cleans up a raw dictation transcript into
// standardised, section-ordered clinical prose.
//
// Unlike extraction, refinement has no local fallback — each failure mode
// (blank input, vendor error, empty refined text) is a distinct, reported
// error and nothing is retried.
package refine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/medvox/rxscribe/internal/observe"
	"github.com/medvox/rxscribe/pkg/provider/llm"
)

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 1024
)

// ErrEmptyTranscript is returned when Refine is called with a blank
// transcript. No vendor call is attempted.
var ErrEmptyTranscript = errors.New("refine: transcript is empty")

// ErrEmptyResult is returned when the vendor call succeeds but no refined
// text could be extracted from the response.
var ErrEmptyResult = errors.New("refine: no refined text generated")

// systemInstruction is the fixed scribe prompt. It must clean and reorganise
// the dictation without inventing content absent from the source.
const systemInstruction = `You are a medical scribe assistant. Given a raw dictation transcript from a doctor,
- Correct grammar, spelling, and punctuation.
- Normalize and standardize medical terminology, including medicine names and lab investigations.
- Expand common abbreviations where appropriate (e.g., BP -> Blood Pressure), unless they are universally accepted in clinical documentation (e.g., PRN).
- Standardize medication lines as: Brand Name (Generic Name) — Dosage | Frequency | Route | Duration. If brand/generic is ambiguous, prefer generic.
- Present a semi-structured, doctor-friendly summary with sections in this order if applicable:
  1) Chief Complaint
  2) History/Notes
  3) Examination/Clinical Findings
  4) Investigations (Lab/Imaging)
  5) Diagnosis/Impression
  6) Medications
  7) Advice/Instructions
- Keep it concise and clinically clear. Do not invent data not present in the transcript.
- Use bullet points where helpful. Use sentence case. Avoid markdown headings; just clear section titles followed by a colon.`

// Option is a functional option for configuring a [Refiner].
type Option func(*Refiner)

// WithTemperature sets the LLM sampling temperature. Default: 0.2.
func WithTemperature(temp float64) Option {
	return func(r *Refiner) {
		r.temperature = temp
	}
}

// WithMetrics wires the refiner's stage metrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Refiner) {
		r.metrics = m
	}
}

// WithProviderName sets the provider label used in metrics. Default: "llm".
func WithProviderName(name string) Option {
	return func(r *Refiner) {
		r.providerName = name
	}
}

// Refiner cleans up dictation transcripts using an [llm.Provider]. It is
// safe for concurrent use.
type Refiner struct {
	llm          llm.Provider
	providerName string
	temperature  float64
	metrics      *observe.Metrics
}

// New returns a new [Refiner] backed by the given [llm.Provider].
func New(provider llm.Provider, opts ...Option) *Refiner {
	r := &Refiner{
		llm:          provider,
		providerName: "llm",
		temperature:  defaultTemperature,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Refine sends the transcript to the LLM with the scribe instruction and
// returns the refined text.
func (r *Refiner) Refine(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", ErrEmptyTranscript
	}

	prompt := fmt.Sprintf(
		"Raw Transcript:\n\n%s\n\nPlease produce the refined, standardized, semi-structured output as per the instructions.",
		transcript,
	)

	req := llm.CompletionRequest{
		SystemPrompt: systemInstruction,
		Temperature:  r.temperature,
		MaxTokens:    defaultMaxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: prompt},
		},
	}

	start := time.Now()
	resp, err := r.llm.Complete(ctx, req)
	r.metrics.RecordProviderCall(ctx, r.providerName, "llm", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("refine: complete: %w", err)
	}

	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyResult
	}
	return strings.TrimSpace(resp.Content), nil
}
