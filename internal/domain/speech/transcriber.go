package speech

import "context"

// Result is a completed transcription.
type Result struct {
	Text             string
	DetectedLanguage string
}

// Transcriber converts a voice recording at the given URL to text.
// Implementations are expected to bound the call with a timeout; a timeout is
// reported as an ordinary error.
type Transcriber interface {
	Transcribe(ctx context.Context, audioURL string, languageHint string) (*Result, error)
}
