package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inmobiliaria/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	sellers map[string]*models.Seller
	err     error
}

func (f *fakeSessions) CurrentSeller(_ context.Context, token string) (*models.Seller, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sellers[token], nil
}

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seller, ok := GetSeller(r)
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(seller.Name))
	})
}

func TestAuthentication(t *testing.T) {
	sessions := &fakeSessions{sellers: map[string]*models.Seller{
		"good-token": {ID: 1, Name: "Ana"},
	}}
	handler := Authentication(sessions, "/login", zerolog.Nop())(protectedHandler())

	tests := []struct {
		name     string
		cookie   string
		accept   string
		status   int
		location string
		body     string
	}{
		{name: "valid session", cookie: "good-token", status: http.StatusOK, body: "Ana"},
		{name: "missing cookie", status: http.StatusUnauthorized},
		{name: "unknown token", cookie: "forged", status: http.StatusUnauthorized},
		{name: "browser without session", accept: "text/html,application/xhtml+xml", status: http.StatusSeeOther, location: "/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.location != "" {
				assert.Equal(t, tt.location, rec.Header().Get("Location"))
			}
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
			if tt.status == http.StatusUnauthorized {
				var resp ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "unauthorized", resp.Error)
			}
		})
	}
}

func TestAuthentication_StoreFailure(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("connection refused")}
	handler := Authentication(sessions, "/login", zerolog.Nop())(protectedHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "any"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestRequestValidation(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := RequestValidation()(next)

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		status      int
	}{
		{"json body", http.MethodPost, "application/json; charset=utf-8", `{}`, http.StatusNoContent},
		{"multipart body", http.MethodPost, "multipart/form-data; boundary=x", "--x--", http.StatusNoContent},
		{"text body", http.MethodPut, "text/plain", "hola", http.StatusBadRequest},
		{"empty post", http.MethodPost, "", "", http.StatusNoContent},
		{"get", http.MethodGet, "", "", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/listings", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestErrorHandling_RecoversPanic(t *testing.T) {
	handler := ErrorHandling(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal_error")
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0, 1)
	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRequestLogging_PropagatesRequestID(t *testing.T) {
	var seen string
	handler := RequestLogging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc123", seen)
	assert.Equal(t, "abc123", rec.Header().Get("X-Request-ID"))
}

func TestPerformanceMonitoring_SetsResponseTime(t *testing.T) {
	handler := PerformanceMonitoring(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, rec.Header().Get("X-Response-Time"))
}
