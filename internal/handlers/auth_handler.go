package handlers

import (
	"net/http"

	"inmobiliaria/internal/middleware"
	"inmobiliaria/internal/models"
	"inmobiliaria/internal/services"

	"github.com/rs/zerolog"
)

type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
	logger       zerolog.Logger
}

// NewAuthHandler sets the Secure flag on the session cookie when secureCookie
// is true, which is the case in production.
func NewAuthHandler(authService *services.AuthService, secureCookie bool, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Cuerpo de solicitud inválido")
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(session.Token, int(h.authService.TTL().Seconds())))
	respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Seller:  session.Seller,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}
	respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Seller:  seller,
	})
}

// Refresh re-issues the session cookie, with a fresh expiry, for the seller
// resolved by the auth middleware.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	seller, ok := middleware.GetSeller(r)
	if !ok {
		respondWithServiceError(w, r, h.logger, services.ErrUnauthorized)
		return
	}

	token, _, err := h.authService.GenerateToken(seller)
	if err != nil {
		h.logger.Error().Err(err).Int("seller_id", seller.ID).Msg("Token generation failed")
		respondWithError(w, http.StatusInternalServerError, "token_generation_failed", "No se pudo renovar la sesión")
		return
	}

	http.SetCookie(w, h.sessionCookie(token, int(h.authService.TTL().Seconds())))
	respondWithJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Seller:  seller,
	})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
