package storage

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"fittrack/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExerciseVideoKey(t *testing.T) {
	key := ExerciseVideoKey("66a3bc5d6197b7b7b08013f3", "video/mp4")
	assert.True(t, strings.HasPrefix(key, "exercises/66a3bc5d6197b7b7b08013f3/videos/"), key)

	other := ExerciseVideoKey("66a3bc5d6197b7b7b08013f3", "video/mp4")
	assert.NotEqual(t, key, other)
}

func TestValidateVideoContentType(t *testing.T) {
	assert.NoError(t, ValidateVideoContentType("video/mp4"))
	assert.NoError(t, ValidateVideoContentType("video/quicktime; codecs=avc1"))
	assert.Error(t, ValidateVideoContentType("image/png"))
	assert.Error(t, ValidateVideoContentType(""))
}

func TestS3Storage_PresignedURLs(t *testing.T) {
	cfg := config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		BucketName:      "exercise-videos",
		URLExpiry:       10 * time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := NewS3Storage(context.Background(), cfg, logger)
	require.NoError(t, err)

	putURL, err := store.GeneratePresignedUploadURL(context.Background(), "exercises/abc/videos/x.mp4", "video/mp4", 0)
	require.NoError(t, err)
	u, err := url.Parse(putURL)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/exercise-videos/exercises/abc/videos/x.mp4", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))

	getURL, err := store.GeneratePresignedDownloadURL(context.Background(), "exercises/abc/videos/x.mp4", time.Minute)
	require.NoError(t, err)
	g, err := url.Parse(getURL)
	require.NoError(t, err)
	assert.Equal(t, "60", g.Query().Get("X-Amz-Expires"))
}
