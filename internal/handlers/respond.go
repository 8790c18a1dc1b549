package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"inmobiliaria/internal/middleware"
	"inmobiliaria/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, code int, errorCode, message string) {
	respondWithJSON(w, code, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// respondWithServiceError maps a service error to its status and public
// message. Anything else is logged and reported as a generic 500. Logged
// failures carry the request id set by the logging middleware.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	requestID := middleware.GetRequestID(r)
	if svcErr, ok := services.AsError(err); ok {
		status := svcErr.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logger.Error().Err(err).Str("code", svcErr.Code).Str("request_id", requestID).Msg("Request failed")
		}
		respondWithError(w, status, svcErr.Code, svcErr.Message)
		return
	}
	logger.Error().Err(err).Str("request_id", requestID).Msg("Unexpected error")
	respondWithError(w, http.StatusInternalServerError, "internal_error", "Error interno del servidor")
}

func decodeJSON(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	return id, err == nil && id > 0
}
