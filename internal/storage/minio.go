package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"inmobiliaria/internal/config"
	"inmobiliaria/internal/services"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// MinioStorage keeps listing images in an S3 compatible bucket. The public id
// of an image is its object key.
type MinioStorage struct {
	client  *minio.Client
	bucket  string
	folder  string
	baseURL string
	logger  zerolog.Logger
}

func NewMinioStorage(ctx context.Context, cfg config.StorageConfig, logger zerolog.Logger) (*MinioStorage, error) {
	logger.Info().Str("endpoint", cfg.Endpoint).Str("bucket", cfg.Bucket).Bool("use_ssl", cfg.UseSSL).Msg("Initializing image storage")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client for %s: %w", cfg.Endpoint, err)
	}

	if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, cfg.Bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("make bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("Bucket already exists")
	} else {
		logger.Info().Str("bucket", cfg.Bucket).Msg("Bucket created")
	}

	return newMinioStorage(client, cfg.Bucket, cfg.UploadPreset, logger), nil
}

func newMinioStorage(client *minio.Client, bucket, folder string, logger zerolog.Logger) *MinioStorage {
	return &MinioStorage{
		client:  client,
		bucket:  bucket,
		folder:  strings.Trim(folder, "/"),
		baseURL: strings.TrimSuffix(client.EndpointURL().String(), "/") + "/" + bucket + "/",
		logger:  logger,
	}
}

func (s *MinioStorage) Upload(ctx context.Context, filename, contentType string, data []byte) (string, string, error) {
	key := s.objectKey(filename)

	info, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: map[string]string{"original-filename": filepath.Base(filename)},
	})
	if err != nil {
		return "", "", fmt.Errorf("put object %s: %w", key, err)
	}

	s.logger.Debug().Str("key", info.Key).Str("etag", info.ETag).Int64("size", info.Size).Msg("Object stored")
	return s.baseURL + key, key, nil
}

// Delete reports services.ErrObjectNotFound for keys that are not in the
// bucket; RemoveObject alone succeeds silently for those.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return services.ErrObjectNotFound
		}
		return fmt.Errorf("stat object %s: %w", key, err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// IDFromURL maps a URL produced by Upload back to its key. URLs pointing
// anywhere else are not ours.
func (s *MinioStorage) IDFromURL(url string) (string, bool) {
	key, ok := strings.CutPrefix(url, s.baseURL)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func (s *MinioStorage) objectKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	name := uuid.New().String() + ext
	if s.folder == "" {
		return name
	}
	return path.Join(s.folder, name)
}

func isNoSuchKey(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
