package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medvox/rxscribe/internal/extract"
	"github.com/medvox/rxscribe/internal/observe"
	"github.com/medvox/rxscribe/internal/refine"
	"github.com/medvox/rxscribe/pkg/provider/stt"
)

// maxAudioBytes caps the accepted recording upload. Dictation sessions are
// minutes of WAV audio, well under this.
const maxAudioBytes = 32 << 20

// transcriptRequest is the JSON body accepted by the refine and extract
// endpoints.
type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

// handleTranscribe accepts raw WAV bytes and responds with {"transcript"}.
// Empty uploads are rejected before any vendor call; vendor-side failures
// surface as 500s.
func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	audio, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAudioBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read audio data")
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "no audio data received")
		return
	}

	start := time.Now()
	transcript, err := s.stt.Transcribe(r.Context(), audio)
	s.metrics.RecordProviderCall(r.Context(), s.sttName, "stt", time.Since(start), err)
	if err != nil {
		observe.Logger(r.Context()).Error("transcription failed", "err", err)
		switch {
		case errors.Is(err, stt.ErrEmptyAudio):
			writeError(w, http.StatusBadRequest, "no audio data received")
		case errors.Is(err, stt.ErrNoTranscript):
			writeError(w, http.StatusInternalServerError, "no transcript produced")
		default:
			writeError(w, http.StatusInternalServerError, "transcription failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"transcript": transcript})
}

// handleRefine accepts {"transcript"} and responds with {"refined"}.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	transcript, ok := decodeTranscript(w, r)
	if !ok {
		return
	}

	refined, err := s.refiner.Refine(r.Context(), transcript)
	if err != nil {
		if errors.Is(err, refine.ErrEmptyTranscript) {
			writeError(w, http.StatusBadRequest, "transcript is required")
			return
		}
		observe.Logger(r.Context()).Error("refinement failed", "err", err)
		writeError(w, http.StatusInternalServerError, "refinement failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"refined": refined})
}

// handleExtract accepts {"transcript"} and responds with the structured
// prescription. Vendor-side failures are absorbed by the extractor's local
// fallback, so this endpoint only fails on invalid input.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	transcript, ok := decodeTranscript(w, r)
	if !ok {
		return
	}

	p, err := s.extractor.Extract(r.Context(), transcript)
	if err != nil {
		if errors.Is(err, extract.ErrEmptyTranscript) {
			writeError(w, http.StatusBadRequest, "transcript is required")
			return
		}
		observe.Logger(r.Context()).Error("extraction failed", "err", err)
		writeError(w, http.StatusInternalServerError, "extraction failed")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// decodeTranscript parses the shared {"transcript"} request body. It writes
// the 400 response itself and reports success via the bool.
func decodeTranscript(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return "", false
	}
	if strings.TrimSpace(req.Transcript) == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return "", false
	}
	return req.Transcript, true
}
