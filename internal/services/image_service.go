package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"inmobiliaria/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	MaxImageSize           = 5 << 20
	imageDeleteConcurrency = 8

	ImageResultOK       = "ok"
	ImageResultNotFound = "not found"
	ImageResultError    = "error"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// ObjectStorage is the image store. Delete must report ErrObjectNotFound for
// ids it does not know.
type ObjectStorage interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (url, id string, err error)
	Delete(ctx context.Context, id string) error
	IDFromURL(url string) (string, bool)
}

var ErrObjectNotFound = &Error{Kind: KindNotFound, Code: "object_not_found", Message: "Imagen no encontrada"}

type ImageService struct {
	storage ObjectStorage
	logger  zerolog.Logger
}

// NewImageService accepts a nil storage; every call then fails with
// ErrStorageNotConfigured.
func NewImageService(storage ObjectStorage, logger zerolog.Logger) *ImageService {
	return &ImageService{
		storage: storage,
		logger:  logger,
	}
}

func (s *ImageService) Configured() bool {
	return s.storage != nil
}

func (s *ImageService) Upload(ctx context.Context, filename, contentType string, data []byte) (*models.UploadImageResponse, error) {
	if s.storage == nil {
		s.logger.Error().Msg("Image upload attempted without storage credentials")
		return nil, ErrStorageNotConfigured
	}
	if len(data) == 0 {
		return nil, validationError("no_file", "No se recibió ningún archivo")
	}
	if len(data) > MaxImageSize {
		return nil, validationError("file_too_large", "La imagen no debe superar 5 MB")
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !allowedImageTypes[contentType] {
		return nil, validationError("invalid_file_type", "Tipo de imagen no permitido")
	}

	url, id, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		s.logger.Error().Err(err).Str("filename", filename).Msg("Image upload failed")
		return nil, upstreamError("upload_failed", err)
	}

	s.logger.Info().Str("public_id", id).Int("size_bytes", len(data)).Msg("Image uploaded")
	return &models.UploadImageResponse{Success: true, URL: url, PublicID: id}, nil
}

// DeleteBatch removes every id independently and concurrently. It never
// fails because of an individual item; results keep the input order.
func (s *ImageService) DeleteBatch(ctx context.Context, ids []string) ([]models.ImageDeleteResult, error) {
	if s.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	if len(ids) == 0 {
		return nil, validationError("invalid_public_ids", "publicIds debe ser un array válido")
	}

	results := make([]models.ImageDeleteResult, len(ids))
	g := new(errgroup.Group)
	g.SetLimit(imageDeleteConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			results[i] = models.ImageDeleteResult{PublicID: id, Result: s.deleteOne(ctx, id)}
			return nil
		})
	}
	_ = g.Wait()

	return results, nil
}

func (s *ImageService) deleteOne(ctx context.Context, id string) string {
	if strings.TrimSpace(id) == "" {
		return ImageResultError
	}
	err := s.storage.Delete(ctx, id)
	switch {
	case err == nil:
		return ImageResultOK
	case isObjectNotFound(err):
		return ImageResultNotFound
	default:
		s.logger.Warn().Err(err).Str("public_id", id).Msg("Image delete failed")
		return ImageResultError
	}
}

// RemoveListingImages is the cleanup step after a listing is deleted. Images
// that are not ours (foreign URLs) are skipped.
func (s *ImageService) RemoveListingImages(ctx context.Context, urls []string) {
	if s.storage == nil {
		return
	}

	var ids []string
	for _, u := range urls {
		if id, ok := s.storage.IDFromURL(u); ok {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	results, err := s.DeleteBatch(ctx, ids)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Listing image cleanup skipped")
		return
	}
	for _, r := range results {
		if r.Result == ImageResultError {
			s.logger.Warn().Str("public_id", r.PublicID).Msg("Listing image left in storage")
		}
	}
}

func isObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}
