// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider to feed controlled transcripts and to inspect the audio bytes
// passed by callers without a live speech-to-text backend.
package mock

import (
	"context"
	"sync"

	"github.com/medvox/rxscribe/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Audio is the byte slice passed to Transcribe.
	Audio []byte
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// Transcript is returned by Transcribe on success.
	Transcript string

	// TranscribeErr, if non-nil, is returned as the error from Transcribe.
	TranscribeErr error

	// TranscribeCalls records every invocation of Transcribe in order.
	TranscribeCalls []TranscribeCall
}

var _ stt.Provider = (*Provider)(nil)

// Transcribe records the call and returns Transcript, TranscribeErr.
func (p *Provider) Transcribe(ctx context.Context, audio []byte) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Ctx: ctx, Audio: audio})
	if p.TranscribeErr != nil {
		return "", p.TranscribeErr
	}
	return p.Transcript, nil
}
