// Package media lays out raw chunks and merged artifacts under the media storage root.
//
//	videos/interview_<id>/chunk_<n>.webm
//	audios/interview_<id>/chunk_<n>.webm
//	texts/interview_<id>/question_<q>/chunk_<n>.txt
//	videos/interview_<id>.mp4, audios/interview_<id>.mp3
//	stt/interview_<id>_stt.json, stt/interview_<id>_final.txt
//	reports/evaluation_<id>_<name>.xlsx
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"interview-capture/internal/app/model"
)

var chunkFilePattern = regexp.MustCompile(`^chunk_(\d+)\.webm$`)

// Disk is the on-disk media layout rooted at a storage directory
type Disk struct {
	root string
}

// NewDisk creates the root and the top-level directories
func NewDisk(root string) (*Disk, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	for _, dir := range []string{"videos", "audios", "texts", "stt", "reports"} {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", dir, err)
		}
	}
	return &Disk{root: abs}, nil
}

// Root returns the absolute storage root
func (d *Disk) Root() string { return d.root }

// Abs resolves a path relative to the root
func (d *Disk) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(d.root, rel)
}

// Rel makes an absolute path relative to the root; paths outside the root are returned unchanged
func (d *Disk) Rel(abs string) string {
	rel, err := filepath.Rel(d.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return abs
	}
	return filepath.ToSlash(rel)
}

// ChunkDir is the per-session directory holding raw chunks of a kind
func (d *Disk) ChunkDir(kind model.ChunkKind, sessionID int64) string {
	return filepath.Join(d.root, kind.Dir(), fmt.Sprintf("interview_%d", sessionID))
}

// ChunkPath is the file a chunk is written to
func (d *Disk) ChunkPath(kind model.ChunkKind, sessionID int64, questionIndex, chunkIndex int) string {
	if kind == model.KindText {
		return filepath.Join(d.ChunkDir(kind, sessionID), fmt.Sprintf("question_%d", questionIndex), fmt.Sprintf("chunk_%d.txt", chunkIndex))
	}
	return filepath.Join(d.ChunkDir(kind, sessionID), fmt.Sprintf("chunk_%d.webm", chunkIndex))
}

// ArtifactRel is the deterministic merged artifact path relative to the root
func ArtifactRel(kind model.ChunkKind, sessionID int64) string {
	ext := "mp4"
	if kind == model.KindAudio {
		ext = "mp3"
	}
	return fmt.Sprintf("%s/interview_%d.%s", kind.Dir(), sessionID, ext)
}

// TranscriptRel is the final transcript file relative to the root
func TranscriptRel(sessionID int64) string {
	return fmt.Sprintf("stt/interview_%d_stt.json", sessionID)
}

// FinalTranscriptRel is the whole-interview transcript produced from the merged audio
func FinalTranscriptRel(sessionID int64) string {
	return fmt.Sprintf("stt/interview_%d_final.txt", sessionID)
}

// ReportRel is the report file for a candidate, relative to the root
func ReportRel(evaluationID int64, candidateName, ext string) string {
	name := strings.ReplaceAll(strings.TrimSpace(candidateName), " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("reports/evaluation_%d_%s.%s", evaluationID, name, ext)
}

// WriteFile writes data atomically: a temp file in the same directory is renamed over path
func WriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// WriteChunk persists one raw chunk and returns its absolute path
func (d *Disk) WriteChunk(kind model.ChunkKind, sessionID int64, questionIndex, chunkIndex int, payload []byte) (string, error) {
	path := d.ChunkPath(kind, sessionID, questionIndex, chunkIndex)
	if err := WriteFile(path, payload); err != nil {
		return "", err
	}
	return path, nil
}

// ChunkFile is one raw media chunk found on disk
type ChunkFile struct {
	Index int
	Path  string
}

// ListChunks snapshots the media chunks of a session, sorted by numeric chunk index.
// A missing directory yields no chunks.
func (d *Disk) ListChunks(kind model.ChunkKind, sessionID int64) ([]ChunkFile, error) {
	dir := d.ChunkDir(kind, sessionID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var chunks []ChunkFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := chunkFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		chunks = append(chunks, ChunkFile{Index: n, Path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}
