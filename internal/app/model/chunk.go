package model

import "fmt"

// ChunkKind is the payload type of a streamed chunk
type ChunkKind string

const (
	KindAudio ChunkKind = "audio"
	KindVideo ChunkKind = "video"
	KindText  ChunkKind = "text"
)

// ParseChunkKind converts a user-supplied kind string
func ParseChunkKind(s string) (ChunkKind, error) {
	switch k := ChunkKind(s); k {
	case KindAudio, KindVideo, KindText:
		return k, nil
	}
	return "", fmt.Errorf("unknown chunk kind %q", s)
}

// IsMedia reports whether the kind is merged into an artifact
func (k ChunkKind) IsMedia() bool {
	return k == KindAudio || k == KindVideo
}

// Dir is the top-level storage directory for the kind (videos, audios, texts)
func (k ChunkKind) Dir() string {
	return string(k) + "s"
}

// Fragment is one transcript piece held in the chunk index store
type Fragment struct {
	SessionID     int64   `json:"session_id"`
	QuestionIndex int     `json:"question_index"`
	ChunkIndex    int     `json:"chunk_index"`
	Timestamp     float64 `json:"timestamp"`
	Text          string  `json:"text"`

	// Key is the index store key the fragment was read from; not encoded
	Key string `json:"-"`
}
