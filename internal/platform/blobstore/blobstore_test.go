package blobstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDirStore_PutGet(t *testing.T) {
	s, err := NewDirStore(t.TempDir(), "http://localhost:8090/")
	require.NoError(t, err)

	link, err := s.Put(context.Background(), "HealthCheck_田中花子_20250309_1405.pdf", []byte("%PDF-"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8090/files/HealthCheck_%E7%94%B0%E4%B8%AD%E8%8A%B1%E5%AD%90_20250309_1405.pdf", link)

	data, err := s.Get(context.Background(), "HealthCheck_田中花子_20250309_1405.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), data)
}

func TestDirStore_NotFound(t *testing.T) {
	s, err := NewDirStore(t.TempDir(), "")
	require.NoError(t, err)
	_, err = s.Get(context.Background(), "missing.pdf")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestDirStore_RejectsTraversal(t *testing.T) {
	s, err := NewDirStore(t.TempDir(), "")
	require.NoError(t, err)
	for _, name := range []string{"", "..", "../x.pdf", `a\b.pdf`, "a/b.pdf"} {
		_, err := s.Put(context.Background(), name, []byte("x"), "application/pdf")
		assert.ErrorIs(t, err, ErrInvalidBlobName, name)
	}
}

func TestNewMinioStore_InvalidEndpoint(t *testing.T) {
	_, err := NewMinioStore(MinioConfig{Endpoint: "http://localhost:9000/path"}, zap.NewNop())
	assert.Error(t, err)
}

// Runs against a live server when MINIO_TEST_ENDPOINT is set.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := os.Getenv("MINIO_TEST_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_TEST_ENDPOINT not set")
	}
	ctx := context.Background()
	s, err := NewMinioStore(MinioConfig{
		Endpoint:    endpoint,
		AccessKey:   os.Getenv("MINIO_TEST_ACCESS_KEY"),
		SecretKey:   os.Getenv("MINIO_TEST_SECRET_KEY"),
		Bucket:      "health-intake-test",
		LinkExpires: time.Hour,
	}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.EnsureBucket(ctx))

	link, err := s.Put(ctx, "test.pdf", []byte("%PDF-"), "application/pdf")
	require.NoError(t, err)
	assert.Contains(t, link, "test.pdf")

	data, err := s.Get(ctx, "test.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-"), data)
}
