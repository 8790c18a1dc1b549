package handlers

import (
	"errors"
	"io"
	"net/http"

	"inmobiliaria/internal/models"
	"inmobiliaria/internal/services"

	"github.com/rs/zerolog"
)

const maxUploadBody = services.MaxImageSize + 1<<20

type ImageHandler struct {
	imageService *services.ImageService
	logger       zerolog.Logger
}

func NewImageHandler(imageService *services.ImageService, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		imageService: imageService,
		logger:       logger,
	}
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !h.imageService.Configured() {
		respondWithServiceError(w, r, h.logger, services.ErrStorageNotConfigured)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusBadRequest, "file_too_large", "La imagen no debe superar 5 MB")
			return
		}
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Formulario inválido")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "no_file", "No se recibió ningún archivo")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "No se pudo leer el archivo")
		return
	}

	resp, err := h.imageService.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteImagesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_public_ids", "publicIds debe ser un array válido")
		return
	}

	results, err := h.imageService.DeleteBatch(r.Context(), req.PublicIDs)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.DeleteImagesResponse{
		Success: true,
		Deleted: results,
	})
}
