package media

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-capture/internal/app/model"
)

func TestNewDiskCreatesLayout(t *testing.T) {
	root := t.TempDir()
	d, err := NewDisk(root)
	require.NoError(t, err)

	for _, dir := range []string{"videos", "audios", "texts", "stt", "reports"} {
		info, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, root, d.Root())
}

func TestPaths(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"video chunk", d.Rel(d.ChunkPath(model.KindVideo, 7, 0, 3)), "videos/interview_7/chunk_3.webm"},
		{"audio chunk", d.Rel(d.ChunkPath(model.KindAudio, 7, 2, 0)), "audios/interview_7/chunk_0.webm"},
		{"text chunk", d.Rel(d.ChunkPath(model.KindText, 7, 2, 5)), "texts/interview_7/question_2/chunk_5.txt"},
		{"video artifact", ArtifactRel(model.KindVideo, 7), "videos/interview_7.mp4"},
		{"audio artifact", ArtifactRel(model.KindAudio, 7), "audios/interview_7.mp3"},
		{"transcript", TranscriptRel(7), "stt/interview_7_stt.json"},
		{"report", ReportRel(7, "Kim Min Su", "xlsx"), "reports/evaluation_7_Kim_Min_Su.xlsx"},
		{"report with slash", ReportRel(7, "a/b", "xlsx"), "reports/evaluation_7_a_b.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestWriteChunkOverwrites(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	path, err := d.WriteChunk(model.KindVideo, 1, 0, 3, []byte("first"))
	require.NoError(t, err)
	_, err = d.WriteChunk(model.KindVideo, 1, 0, 3, []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestListChunksNumericOrder(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	for _, n := range []int{10, 2, 0, 1} {
		_, err := d.WriteChunk(model.KindAudio, 4, 0, n, []byte{byte(n)})
		require.NoError(t, err)
	}
	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(d.ChunkDir(model.KindAudio, 4), "concat_list.txt"), []byte("x"), 0644))

	chunks, err := d.ListChunks(model.KindAudio, 4)
	require.NoError(t, err)

	var indexes []int
	for _, c := range chunks {
		indexes = append(indexes, c.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 10}, indexes)
}

func TestListChunksMissingDirectory(t *testing.T) {
	d, err := NewDisk(t.TempDir())
	require.NoError(t, err)

	chunks, err := d.ListChunks(model.KindVideo, 99)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
