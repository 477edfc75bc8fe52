package storage

import (
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage defines the object storage operations used for exercise demo videos.
// Clients move the bytes themselves through presigned URLs; the service only
// hands out URLs and cleans up objects.
type FileStorage interface {
	// GeneratePresignedUploadURL creates a temporary URL that allows a PUT of objectKey.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)

	// GeneratePresignedDownloadURL creates a temporary URL that allows a GET of objectKey.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	DeleteObject(ctx context.Context, objectKey string) error
}

// ExerciseVideoKey builds a fresh object key for a demo video of exerciseID.
// The extension is derived from contentType when it is a known video type.
func ExerciseVideoKey(exerciseID, contentType string) string {
	name := uuid.NewString()
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		name += exts[0]
	}
	return path.Join("exercises", exerciseID, "videos", name)
}

// ValidateVideoContentType accepts only video/* MIME types.
func ValidateVideoContentType(contentType string) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("invalid content type %q: %w", contentType, err)
	}
	if !strings.HasPrefix(mediaType, "video/") {
		return fmt.Errorf("content type %q is not a video type", contentType)
	}
	return nil
}
