package audio

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"interview-capture/internal/app/model"
)

// Encoder concatenates the files listed in a concat manifest into one artifact
type Encoder interface {
	Concat(ctx context.Context, kind model.ChunkKind, manifestPath, outputPath string) error
}

// FFmpeg runs the ffmpeg concat demuxer
type FFmpeg struct {
	Binary  string
	Timeout time.Duration
}

// NewFFmpeg returns an encoder using the ffmpeg binary on PATH
func NewFFmpeg(timeout time.Duration) *FFmpeg {
	return &FFmpeg{Binary: "ffmpeg", Timeout: timeout}
}

// ConcatArgs builds the ffmpeg arguments. Video chunks are copied losslessly;
// audio is re-encoded to 128k MP3.
func ConcatArgs(kind model.ChunkKind, manifestPath, outputPath string) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-f", "concat", "-safe", "0", "-i", manifestPath}
	switch kind {
	case model.KindAudio:
		args = append(args, "-vn", "-acodec", "libmp3lame", "-b:a", "128k", "-f", "mp3")
	default:
		args = append(args, "-c", "copy", "-f", "mp4")
	}
	return append(args, outputPath)
}

func (f *FFmpeg) Concat(ctx context.Context, kind model.ChunkKind, manifestPath, outputPath string) error {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.Binary, ConcatArgs(kind, manifestPath, outputPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("FFmpeg timed out: %w", ctx.Err())
		}
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ProbeDuration returns the media duration in whole seconds
func ProbeDuration(ctx context.Context, filePath string) (int, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	return parseDuration(string(output))
}

func parseDuration(output string) (int, error) {
	durationFloat, err := strconv.ParseFloat(strings.TrimSpace(output), 64)
	if err != nil {
		return 0, err
	}
	return int(math.Round(durationFloat)), nil
}

// Manifest renders a concat demuxer file list, one `file '<path>'` line per input
func Manifest(paths []string) []byte {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(p, "'", `'\''`))
		b.WriteString("'\n")
	}
	return []byte(b.String())
}
