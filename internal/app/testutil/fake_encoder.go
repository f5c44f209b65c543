package testutil

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"interview-capture/internal/app/audio"
	"interview-capture/internal/app/model"
)

var _ audio.Encoder = (*FakeEncoder)(nil)

// FakeEncoder concatenates the raw bytes of the files in a concat manifest,
// standing in for ffmpeg in tests
type FakeEncoder struct {
	Err error
	// Gate, when set, blocks each Concat until it is closed
	Gate chan struct{}

	calls     int32
	active    int32
	maxActive int32

	mu        sync.Mutex
	manifests []string
}

func (f *FakeEncoder) Concat(ctx context.Context, kind model.ChunkKind, manifestPath, outputPath string) error {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		peak := atomic.LoadInt32(&f.maxActive)
		if n <= peak || atomic.CompareAndSwapInt32(&f.maxActive, peak, n) {
			break
		}
	}

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	manifest, err := os.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.manifests = append(f.manifests, string(manifest))
	f.mu.Unlock()

	if f.Err != nil {
		return f.Err
	}

	var out bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(manifest))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "file '") || !strings.HasSuffix(line, "'") {
			return fmt.Errorf("bad manifest line %q", line)
		}
		path := strings.ReplaceAll(line[len("file '"):len(line)-1], `'\''`, "'")
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out.Write(data)
	}
	return os.WriteFile(outputPath, out.Bytes(), 0644)
}

// Calls is the number of Concat invocations
func (f *FakeEncoder) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

// MaxConcurrent is the highest number of overlapping Concat calls observed
func (f *FakeEncoder) MaxConcurrent() int { return int(atomic.LoadInt32(&f.maxActive)) }

// Manifests returns the manifest contents seen, in call order
func (f *FakeEncoder) Manifests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.manifests...)
}
