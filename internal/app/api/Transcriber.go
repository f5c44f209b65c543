package api

import "context"

// Transcriber defines a transcription interface for converting audio bytes to text.
// filename carries the container format hint (e.g. chunk_3.webm).
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}
