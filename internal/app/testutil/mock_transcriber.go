package testutil

import (
	"context"
	"sync"
	"time"

	"interview-capture/internal/app/api"
)

var _ api.Transcriber = (*MockTranscriber)(nil)

// MockTranscriber is a configurable api.Transcriber for tests
type MockTranscriber struct {
	mu sync.Mutex

	DefaultLatency  time.Duration
	DefaultError    error
	DefaultResponse string

	// ResponseMap and ErrorMap are keyed by filename
	ResponseMap map[string]string
	ErrorMap    map[string]error

	CallCount   int
	CallHistory []TranscriptionCall
}

// TranscriptionCall records one call
type TranscriptionCall struct {
	Filename string
	Size     int
	Response string
	Error    error
}

// NewMockTranscriber creates a MockTranscriber answering with a fixed text
func NewMockTranscriber(response string) *MockTranscriber {
	return &MockTranscriber{
		DefaultResponse: response,
		ResponseMap:     make(map[string]string),
		ErrorMap:        make(map[string]error),
	}
}

// WithResponse sets the text returned for a filename
func (m *MockTranscriber) WithResponse(filename, text string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResponseMap[filename] = text
	return m
}

// WithError makes calls for a filename fail
func (m *MockTranscriber) WithError(filename string, err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorMap[filename] = err
	return m
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if m.DefaultLatency > 0 {
		select {
		case <-time.After(m.DefaultLatency):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++

	call := TranscriptionCall{Filename: filename, Size: len(audio)}
	if err, ok := m.ErrorMap[filename]; ok {
		call.Error = err
	} else if m.DefaultError != nil {
		call.Error = m.DefaultError
	} else if text, ok := m.ResponseMap[filename]; ok {
		call.Response = text
	} else {
		call.Response = m.DefaultResponse
	}
	m.CallHistory = append(m.CallHistory, call)
	return call.Response, call.Error
}

// Calls returns the number of calls so far
func (m *MockTranscriber) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
