package whisper

import (
	"bytes"
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
// language is an ISO-639-1 hint such as "ko"; empty lets the provider detect it.
func NewRemoteTranscriber(client *openai.Client, language string) *RemoteTranscriber {
	return &RemoteTranscriber{client: client, model: openai.Whisper1, language: language}
}

// Transcribe sends the audio bytes to the transcription endpoint.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}
	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: rt.language,
	}
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("createTranscription failed: %w", err)
	}

	return resp.Text, nil
}
