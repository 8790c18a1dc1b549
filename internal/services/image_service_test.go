package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"inmobiliaria/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	mu       sync.Mutex
	objects  map[string]bool
	failing  map[string]bool
	uploaded []string
	putErr   error
}

func newFakeStorage(ids ...string) *fakeStorage {
	f := &fakeStorage{objects: map[string]bool{}, failing: map[string]bool{}}
	for _, id := range ids {
		f.objects[id] = true
	}
	return f
}

func (f *fakeStorage) Upload(_ context.Context, filename, _ string, _ []byte) (string, string, error) {
	if f.putErr != nil {
		return "", "", f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := "inmobiliaria_preset/" + filename
	f.objects[id] = true
	f.uploaded = append(f.uploaded, id)
	return "https://storage.test/listings/" + id, id, nil
}

func (f *fakeStorage) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[id] {
		return errors.New("storage timeout")
	}
	if !f.objects[id] {
		return ErrObjectNotFound
	}
	delete(f.objects, id)
	return nil
}

func (f *fakeStorage) IDFromURL(url string) (string, bool) {
	id, ok := strings.CutPrefix(url, "https://storage.test/listings/")
	return id, ok && id != ""
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestImageUpload(t *testing.T) {
	store := newFakeStorage()
	svc := NewImageService(store, zerolog.Nop())

	resp, err := svc.Upload(context.Background(), "frente.png", "image/png", pngHeader)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "inmobiliaria_preset/frente.png", resp.PublicID)
	assert.Equal(t, "https://storage.test/listings/inmobiliaria_preset/frente.png", resp.URL)
}

func TestImageUpload_DetectsMissingContentType(t *testing.T) {
	svc := NewImageService(newFakeStorage(), zerolog.Nop())

	_, err := svc.Upload(context.Background(), "frente.png", "application/octet-stream", pngHeader)
	assert.NoError(t, err)
}

func TestImageUpload_Rejects(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		data        []byte
		code        string
	}{
		{"empty file", "image/png", nil, "no_file"},
		{"too large", "image/jpeg", bytes.Repeat([]byte{0xff}, MaxImageSize+1), "file_too_large"},
		{"pdf", "application/pdf", []byte("%PDF-1.4"), "invalid_file_type"},
		{"svg", "image/svg+xml", []byte("<svg/>"), "invalid_file_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStorage()
			svc := NewImageService(store, zerolog.Nop())

			_, err := svc.Upload(context.Background(), "x", tt.contentType, tt.data)
			svcErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, svcErr.Code)
			assert.Empty(t, store.uploaded)
		})
	}
}

func TestImageUpload_StorageFailure(t *testing.T) {
	store := newFakeStorage()
	store.putErr = errors.New("bucket unreachable")
	svc := NewImageService(store, zerolog.Nop())

	_, err := svc.Upload(context.Background(), "a.png", "image/png", pngHeader)
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUpstream, svcErr.Kind)
	assert.NotContains(t, svcErr.Message, "bucket")
}

func TestImageService_NotConfigured(t *testing.T) {
	svc := NewImageService(nil, zerolog.Nop())
	assert.False(t, svc.Configured())

	_, err := svc.Upload(context.Background(), "a.png", "image/png", pngHeader)
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	_, err = svc.DeleteBatch(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, ErrStorageNotConfigured)

	svc.RemoveListingImages(context.Background(), []string{"https://storage.test/listings/a"})
}

func TestDeleteBatch_PerItemResults(t *testing.T) {
	store := newFakeStorage("p/a.jpg", "p/b.jpg", "p/c.jpg")
	store.failing["p/c.jpg"] = true
	svc := NewImageService(store, zerolog.Nop())

	results, err := svc.DeleteBatch(context.Background(), []string{"p/a.jpg", "p/missing.jpg", "p/b.jpg", "p/c.jpg", ""})
	require.NoError(t, err)

	assert.Equal(t, []models.ImageDeleteResult{
		{PublicID: "p/a.jpg", Result: ImageResultOK},
		{PublicID: "p/missing.jpg", Result: ImageResultNotFound},
		{PublicID: "p/b.jpg", Result: ImageResultOK},
		{PublicID: "p/c.jpg", Result: ImageResultError},
		{PublicID: "", Result: ImageResultError},
	}, results)
	assert.False(t, store.objects["p/a.jpg"])
	assert.True(t, store.objects["p/c.jpg"])
}

func TestDeleteBatch_EmptyInput(t *testing.T) {
	svc := NewImageService(newFakeStorage(), zerolog.Nop())

	_, err := svc.DeleteBatch(context.Background(), nil)
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "publicIds debe ser un array válido", svcErr.Message)
}

func TestRemoveListingImages_SkipsForeignURLs(t *testing.T) {
	store := newFakeStorage("inmobiliaria_preset/a.jpg")
	svc := NewImageService(store, zerolog.Nop())

	svc.RemoveListingImages(context.Background(), []string{
		"https://storage.test/listings/inmobiliaria_preset/a.jpg",
		"https://elsewhere.example/b.jpg",
	})

	assert.Empty(t, store.objects)
}
