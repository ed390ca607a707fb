// Package stt defines the Provider interface for speech-to-text backends.
//
// A provider converts one finite, already-recorded audio byte stream into a
// transcript in a single call. There is no streaming path: the dictation UI
// uploads the accumulated recording as one unit when the clinician stops
// recording, and one vendor call resolves it.
package stt

import (
	"context"
	"errors"
)

// ErrEmptyAudio is returned when Transcribe is called with zero audio bytes.
// The check happens before any network call.
var ErrEmptyAudio = errors.New("stt: audio data is empty")

// ErrNoTranscript is returned when the vendor responds successfully but the
// response carries no transcript text.
var ErrNoTranscript = errors.New("stt: no transcript produced")

// Provider is the abstraction over any prerecorded speech-to-text backend.
//
// Implementations must be safe for concurrent use. Transcribe never returns
// partial or placeholder text: the result is either the vendor's transcript
// or an error.
type Provider interface {
	// Transcribe sends the WAV-encoded audio to the vendor and returns the
	// best transcript. audio must be non-empty.
	Transcribe(ctx context.Context, audio []byte) (string, error)
}
