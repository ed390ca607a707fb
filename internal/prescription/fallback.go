package prescription

// Thresholds for the degraded chief_complaints text. A short transcript is
// carried over verbatim; a longer one is truncated so the clinician still
// sees what was dictated without flooding the field.
const (
	fallbackVerbatimMax = 50
	fallbackTruncateAt  = 100
)

// Fallback builds the deterministic degraded-but-valid Prescription returned
// when the extraction vendor path fails at any stage. The transcript itself
// becomes the chief complaint (verbatim up to 50 characters, otherwise the
// first 100 characters followed by an ellipsis); every other field stays at
// its schema default. The result always satisfies the list invariants, so
// callers receive a well-formed record even on total vendor failure.
func Fallback(transcript string) Prescription {
	p := Empty()
	p.ChiefComplaints = String(truncateTranscript(transcript))
	return p
}

func truncateTranscript(transcript string) string {
	runes := []rune(transcript)
	if len(runes) <= fallbackVerbatimMax {
		return transcript
	}
	if len(runes) > fallbackTruncateAt {
		runes = runes[:fallbackTruncateAt]
	}
	return string(runes) + "..."
}
