// Package extract implements the extraction gateway: the pipeline stage that
// maps a free-text dictation transcript into the canonical structured
// prescription via an external LLM, with local response validation and a
// deterministic degraded fallback when the vendor path fails end-to-end.
//
// Extraction is a pure function of the transcript: no session state is
// consulted, and callers re-running extraction after transcript edits must
// replace (never merge) the previous result. Vendor-side failures never
// propagate out of [Extractor.Extract] — the caller always receives a
// schema-conformant Prescription. Only the empty-transcript precondition is
// surfaced as an error.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/medvox/rxscribe/internal/observe"
	"github.com/medvox/rxscribe/internal/prescription"
	"github.com/medvox/rxscribe/pkg/provider/llm"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 1024
)

// ErrEmptyTranscript is returned when Extract is called with a blank
// transcript. No vendor call is attempted.
var ErrEmptyTranscript = errors.New("extract: transcript is empty")

// Option is a functional option for configuring an [Extractor].
type Option func(*Extractor)

// WithTemperature sets the LLM sampling temperature. Extraction runs cold by
// default (0.1) for deterministic output.
func WithTemperature(temp float64) Option {
	return func(e *Extractor) {
		e.temperature = temp
	}
}

// WithMetrics wires the extractor's stage metrics. Without it the extractor
// runs untelemetered.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

// WithProviderName sets the provider label used in metrics (e.g. "openai",
// "gemini"). Default: "llm".
func WithProviderName(name string) Option {
	return func(e *Extractor) {
		e.providerName = name
	}
}

// WithClock overrides the time source used for the follow-up default.
// Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// Extractor maps transcripts onto structured prescriptions using an
// [llm.Provider]. It is safe for concurrent use.
type Extractor struct {
	llm          llm.Provider
	providerName string
	temperature  float64
	metrics      *observe.Metrics
	now          func() time.Time
}

// New returns a new [Extractor] backed by the given [llm.Provider].
func New(provider llm.Provider, opts ...Option) *Extractor {
	e := &Extractor{
		llm:          provider,
		providerName: "llm",
		temperature:  defaultTemperature,
		now:          time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract sends the transcript to the LLM with the schema-constrained prompt
// and returns the parsed, normalised Prescription.
//
// Any failure on the vendor path — request error, empty response, JSON parse
// failure, or a non-object result — degrades to [prescription.Fallback]
// rather than returning an error. The only error condition is a blank
// transcript, which is the caller's input-validation failure.
func (e *Extractor) Extract(ctx context.Context, transcript string) (prescription.Prescription, error) {
	if strings.TrimSpace(transcript) == "" {
		return prescription.Prescription{}, ErrEmptyTranscript
	}

	req := llm.CompletionRequest{
		Temperature: e.temperature,
		MaxTokens:   defaultMaxTokens,
		Messages: []llm.Message{
			{Role: "user", Content: buildPrompt(transcript, e.now())},
		},
	}

	start := time.Now()
	resp, err := e.llm.Complete(ctx, req)
	e.metrics.RecordProviderCall(ctx, e.providerName, "llm", time.Since(start), err)

	if err != nil {
		return e.fallback(ctx, transcript, "vendor", err), nil
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return e.fallback(ctx, transcript, "empty", nil), nil
	}

	p, parseErr := parsePrescription(resp.Content)
	if parseErr != nil {
		return e.fallback(ctx, transcript, "parse", parseErr), nil
	}

	prescription.Normalize(&p)
	if p.FollowupDate == nil {
		p.FollowupDate = prescription.String(prescription.DefaultFollowup(e.now()))
	}
	return p, nil
}

// fallback records the degradation and builds the local result.
func (e *Extractor) fallback(ctx context.Context, transcript, reason string, cause error) prescription.Prescription {
	e.metrics.RecordFallback(ctx, reason)
	observe.Logger(ctx).Warn("extraction degraded to local fallback",
		"reason", reason, "err", cause)
	return prescription.Fallback(transcript)
}

// parsePrescription strips markdown fencing and unmarshals the vendor text.
// A result that is not a JSON object is a contract violation.
func parsePrescription(content string) (prescription.Prescription, error) {
	cleaned := stripMarkdown(content)
	if !strings.HasPrefix(cleaned, "{") {
		return prescription.Prescription{}, errors.New("extract: response is not a JSON object")
	}

	var p prescription.Prescription
	if err := json.Unmarshal([]byte(cleaned), &p); err != nil {
		return prescription.Prescription{}, err
	}
	return p, nil
}
