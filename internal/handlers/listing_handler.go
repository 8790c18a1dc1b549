package handlers

import (
	"net"
	"net/http"
	"strings"

	"inmobiliaria/internal/middleware"
	"inmobiliaria/internal/models"
	"inmobiliaria/internal/services"

	"github.com/rs/zerolog"
)

type ListingHandler struct {
	listingService *services.ListingService
	trustProxy     bool
	logger         zerolog.Logger
}

// NewListingHandler reads the client address from X-Forwarded-For only when
// trustProxy is set; otherwise the header is ignored.
func NewListingHandler(listingService *services.ListingService, trustProxy bool, logger zerolog.Logger) *ListingHandler {
	return &ListingHandler{
		listingService: listingService,
		trustProxy:     trustProxy,
		logger:         logger,
	}
}

func (h *ListingHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	q, err := services.ParsePublicListingQuery(r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	page, err := h.listingService.ListPublic(r.Context(), q)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.PublicListingResponse{
		Success:    true,
		Data:       page.Listings,
		Pagination: page.Pagination,
	})
}

func (h *ListingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}

	q, err := services.SellerListingQuery(seller.ID, r.URL.Query())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	page, err := h.listingService.ListBySeller(r.Context(), q)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.SellerListingResponse{
		Listings:   page.Listings,
		Pagination: page.Pagination,
	})
}

func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_listing_id", "ID de inmueble inválido")
		return
	}

	listing, err := h.listingService.GetListing(r.Context(), id, clientIP(r, h.trustProxy))
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, listing)
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}

	var req models.ListingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Cuerpo de solicitud inválido")
		return
	}

	listing, err := h.listingService.CreateListing(r.Context(), seller.ID, &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, models.CreateListingResponse{
		Success: true,
		Listing: models.ListingSummary{
			ID:       listing.ID,
			Title:    listing.Title,
			Category: listing.Category,
		},
	})
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_listing_id", "ID de inmueble inválido")
		return
	}

	var req models.ListingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Cuerpo de solicitud inválido")
		return
	}

	listing, err := h.listingService.UpdateListing(r.Context(), seller.ID, id, &req)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"inmueble": listing,
	})
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}
	id, ok := pathID(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_listing_id", "ID de inmueble inválido")
		return
	}

	if err := h.listingService.DeleteListing(r.Context(), seller.ID, id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// clientIP uses the first X-Forwarded-For hop when the API runs behind a
// trusted proxy, and the peer address otherwise.
func clientIP(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
