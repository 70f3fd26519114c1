package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"

	"course-api/config"
	"course-api/dto"
)

// UploadService stores course images in the object store and hands back
// their public URL. Object keys are collision resistant: upload timestamp,
// random suffix, original extension.
type UploadService struct {
	storage   *minio.Client
	bucket    string
	publicURL string
}

func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{
		storage:   cfg.Storage,
		bucket:    cfg.MinIOBucket,
		publicURL: strings.TrimRight(cfg.PublicStorageURL, "/"),
	}
}

func (s *UploadService) EnsureBucket(ctx context.Context) error {
	exists, err := s.storage.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.storage.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		zerolog.Ctx(ctx).Info().Str("bucket", s.bucket).Msg("created storage bucket")
	}
	return nil
}

func (s *UploadService) UploadCourseImage(ctx context.Context, reader io.Reader, size int64, filename, contentType string) (*dto.UploadResponse, error) {
	if s.publicURL == "" {
		return nil, &UploadError{Op: "course image", Err: errors.New("no public storage URL configured")}
	}

	key := fmt.Sprintf("courses/%d-%s%s", time.Now().Unix(), randomSuffix(), strings.ToLower(filepath.Ext(filename)))

	_, err := s.storage.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, &UploadError{Op: "course image", Err: err}
	}

	return &dto.UploadResponse{
		URL: fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key),
		Key: key,
	}, nil
}

// RemoveByURL deletes the object behind a public URL if it lives in our
// bucket; anything else (a manually entered remote link) is left alone.
func (s *UploadService) RemoveByURL(ctx context.Context, url string) error {
	prefix := fmt.Sprintf("%s/%s/", s.publicURL, s.bucket)
	if s.publicURL == "" || !strings.HasPrefix(url, prefix) {
		return nil
	}
	key := strings.TrimPrefix(url, prefix)
	return s.storage.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

func randomSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}
