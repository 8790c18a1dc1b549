package handlers

import (
	"net/http"

	"inmobiliaria/internal/middleware"
	"inmobiliaria/internal/models"
	"inmobiliaria/internal/services"

	"github.com/rs/zerolog"
)

type SellerHandler struct {
	sellerService *services.SellerService
	logger        zerolog.Logger
}

func NewSellerHandler(sellerService *services.SellerService, logger zerolog.Logger) *SellerHandler {
	return &SellerHandler{
		sellerService: sellerService,
		logger:        logger,
	}
}

func (h *SellerHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}

	var req models.SellerSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Cuerpo de solicitud inválido")
		return
	}

	updated, err := h.sellerService.UpdateSettings(r.Context(), seller.ID, &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"vendedor": updated,
	})
}
