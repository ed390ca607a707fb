// Package gemini provides an LLM provider backed by the Google Gemini
// generateContent REST API. It implements the llm.Provider interface.
//
// Unlike the OpenAI adapter, Gemini authenticates with an API key passed as a
// query-string parameter and carries the system instruction as the first text
// part of the user turn.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/medvox/rxscribe/pkg/provider/llm"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultTimeout = 60 * time.Second

	defaultTopK            = 40
	defaultTopP            = 0.9
	defaultMaxOutputTokens = 1024
)

// ErrEmptyResponse is returned when the vendor call succeeds but no textual
// part can be extracted from the first candidate.
var ErrEmptyResponse = errors.New("gemini: no text in response candidates")

// Option is a functional option for Provider.
type Option func(*Provider)

// WithBaseURL overrides the default Gemini API base URL. Useful for tests and
// regional endpoints.
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

// Provider implements llm.Provider against the Gemini REST API.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	client  *resty.Client
}

var _ llm.Provider = (*Provider)(nil)

// New constructs a Gemini Provider. apiKey and model must be non-empty; a
// missing credential fails construction deterministically.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini: model must not be empty")
	}

	p := &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		timeout: defaultTimeout,
	}
	for _, o := range opts {
		o(p)
	}

	p.client = resty.New().
		SetBaseURL(p.baseURL).
		SetTimeout(p.timeout).
		SetHeader("Content-Type", "application/json")

	return p, nil
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// generateResponse is the subset of the generateContent response we read.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// Complete implements llm.Provider. The first candidate's textual parts are
// concatenated into the response content.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	body := p.buildBody(req)

	var out generateResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.apiKey).
		SetBody(body).
		SetResult(&out).
		Post(fmt.Sprintf("/models/%s:generateContent", p.model))
	if err != nil {
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("gemini: generate content: status %d: %s", resp.StatusCode(), resp.String())
	}

	text := extractText(&out)
	if text == "" {
		return nil, ErrEmptyResponse
	}

	return &llm.CompletionResponse{
		Content: text,
		Usage: llm.Usage{
			PromptTokens:     out.UsageMetadata.PromptTokenCount,
			CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      out.UsageMetadata.TotalTokenCount,
		},
	}, nil
}

// buildBody maps a CompletionRequest to the generateContent wire shape.
// Gemini has no dedicated system slot in this API version, so the system
// prompt becomes the first part of the single user turn.
func (p *Provider) buildBody(req llm.CompletionRequest) generateRequest {
	parts := make([]part, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		parts = append(parts, part{Text: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		parts = append(parts, part{Text: m.Content})
	}

	cfg := generationConfig{
		Temperature:     req.Temperature,
		TopK:            defaultTopK,
		TopP:            defaultTopP,
		MaxOutputTokens: defaultMaxOutputTokens,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}

	return generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: cfg,
	}
}

// extractText concatenates all textual parts of the first candidate.
func extractText(resp *generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		sb.WriteString(pt.Text)
	}
	return strings.TrimSpace(sb.String())
}
