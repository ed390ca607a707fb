// Package deepgram provides a Deepgram-backed STT provider using the
// prerecorded /v1/listen REST API. It implements the stt.Provider interface.
//
// The endpoint is configured for clinician dictation: multi-language
// detection, smart formatting, dictation punctuation, and paragraph
// segmentation. The transcript is read from the first channel's first
// alternative of the response.
package deepgram

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/medvox/rxscribe/pkg/provider/stt"
)

const (
	defaultBaseURL  = "https://api.deepgram.com"
	defaultModel    = "nova-2"
	defaultLanguage = "multi"
	defaultTimeout  = 60 * time.Second
)

// Option is a functional option for configuring the Deepgram Provider.
type Option func(*Provider)

// WithModel sets the Deepgram model to use (e.g., "nova-2", "nova-3").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the language code for recognition. The default "multi"
// lets Deepgram detect the language per utterance.
func WithLanguage(language string) Option {
	return func(p *Provider) {
		p.language = language
	}
}

// WithBaseURL overrides the default Deepgram API base URL. Useful for tests.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.timeout = d
	}
}

// Provider implements stt.Provider backed by the Deepgram prerecorded API.
type Provider struct {
	apiKey   string
	model    string
	language string
	baseURL  string
	timeout  time.Duration
	client   *resty.Client
}

var _ stt.Provider = (*Provider)(nil)

// New creates a new Deepgram Provider. apiKey must be non-empty; a missing
// credential fails construction rather than the first request.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:   apiKey,
		model:    defaultModel,
		language: defaultLanguage,
		baseURL:  defaultBaseURL,
		timeout:  defaultTimeout,
	}
	for _, o := range opts {
		o(p)
	}

	p.client = resty.New().
		SetBaseURL(p.baseURL).
		SetTimeout(p.timeout).
		SetHeader("Authorization", "Token "+p.apiKey)

	return p, nil
}

// listenResponse is the subset of the Deepgram prerecorded response we read.
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// Transcribe implements stt.Provider. Empty audio is rejected before any
// network call with stt.ErrEmptyAudio.
func (p *Provider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if len(audio) == 0 {
		return "", stt.ErrEmptyAudio
	}

	var out listenResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "audio/wav").
		SetQueryParams(map[string]string{
			"model":        p.model,
			"language":     p.language,
			"smart_format": "true",
			"dictation":    "true",
			"paragraphs":   "true",
		}).
		SetBody(audio).
		SetResult(&out).
		Post("/v1/listen")
	if err != nil {
		return "", fmt.Errorf("deepgram: listen: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("deepgram: listen: status %d: %s", resp.StatusCode(), resp.String())
	}

	transcript := firstTranscript(&out)
	if transcript == "" {
		return "", stt.ErrNoTranscript
	}
	return transcript, nil
}

// firstTranscript extracts results.channels[0].alternatives[0].transcript,
// tolerating missing levels in the vendor JSON.
func firstTranscript(resp *listenResponse) string {
	if len(resp.Results.Channels) == 0 {
		return ""
	}
	alts := resp.Results.Channels[0].Alternatives
	if len(alts) == 0 {
		return ""
	}
	return alts[0].Transcript
}
