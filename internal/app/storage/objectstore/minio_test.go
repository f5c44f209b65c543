package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name   string
		mirror MinioMirror
		want   string
	}{
		{"plain", MinioMirror{endpoint: "localhost:9000", bucket: "artifacts"}, "http://localhost:9000/artifacts/videos/interview_1.mp4"},
		{"ssl", MinioMirror{endpoint: "s3.example.com", bucket: "artifacts", useSSL: true}, "https://s3.example.com/artifacts/videos/interview_1.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mirror.URL("videos/interview_1.mp4"))
		})
	}
}

func TestNewMinioMirrorRequiresEndpoint(t *testing.T) {
	_, err := NewMinioMirror(context.Background(), Options{Bucket: "x"})
	assert.Error(t, err)
}

func TestMinioMirrorIntegration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set, skipping MinIO integration test")
	}
	ctx := context.Background()
	m, err := NewMinioMirror(ctx, Options{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		SecretKey: os.Getenv("MINIO_SECRET_KEY"),
		Bucket:    "interview-capture-test",
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "artifact.mp3")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))

	url, err := m.Upload(ctx, path, "audios/interview_1.mp3")
	require.NoError(t, err)
	assert.Contains(t, url, "audios/interview_1.mp3")
}

func TestChecksum(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.bin")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0644))

	sum, size, err := Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sum)

	_, _, err = Checksum(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
