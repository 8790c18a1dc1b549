package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"inmobiliaria/internal/config"
	"inmobiliaria/internal/handlers"
	"inmobiliaria/internal/middleware"
	"inmobiliaria/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Dependencies are the optional collaborators. A nil Storage leaves the image
// endpoints answering with a configuration error; a nil Views counts every
// detail fetch.
type Dependencies struct {
	Storage services.ObjectStorage
	Views   services.ViewDeduper
}

// SetupRouter wires services, handlers and middleware. CORS wraps the router
// so preflight requests are answered before route matching.
func SetupRouter(cfg *config.Config, db *sql.DB, deps Dependencies, logger zerolog.Logger) http.Handler {
	if cfg.DefaultSecret {
		logger.Warn().Msg("SESSION_SECRET not set, using default key")
	}

	sellerService := services.NewSellerService(db, logger)
	authService := services.NewAuthService(cfg.SessionSecret, cfg.SessionTTL, sellerService, logger)
	imageService := services.NewImageService(deps.Storage, logger)
	listingService := services.NewListingService(db, logger, deps.Views, imageService)

	authHandler := handlers.NewAuthHandler(authService, cfg.IsProduction(), logger)
	listingHandler := handlers.NewListingHandler(listingService, cfg.TrustProxy, logger)
	sellerHandler := handlers.NewSellerHandler(sellerService, logger)
	imageHandler := handlers.NewImageHandler(imageService, logger)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	requireSeller := middleware.Authentication(authService, cfg.LoginPath, logger)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.PerformanceMonitoring(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(rateLimiter.Middleware())

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.RequestValidation())

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/logout", authHandler.Logout).Methods("POST")

	protectedAuth := auth.PathPrefix("").Subrouter()
	protectedAuth.Use(requireSeller)
	protectedAuth.HandleFunc("/me", authHandler.Me).Methods("GET")
	protectedAuth.HandleFunc("/refresh", authHandler.Refresh).Methods("POST")

	listings := api.PathPrefix("/listings").Subrouter()
	listings.HandleFunc("/public", listingHandler.ListPublic).Methods("GET")
	listings.HandleFunc("/{id:[0-9]+}", listingHandler.Get).Methods("GET")

	protectedListings := listings.PathPrefix("").Subrouter()
	protectedListings.Use(requireSeller)
	protectedListings.HandleFunc("", listingHandler.ListMine).Methods("GET")
	protectedListings.HandleFunc("", listingHandler.Create).Methods("POST")
	protectedListings.HandleFunc("/{id:[0-9]+}", listingHandler.Update).Methods("PUT")
	protectedListings.HandleFunc("/{id:[0-9]+}", listingHandler.Delete).Methods("DELETE")

	seller := api.PathPrefix("/seller").Subrouter()
	seller.Use(requireSeller)
	seller.HandleFunc("/settings", sellerHandler.UpdateSettings).Methods("PUT")

	images := api.PathPrefix("/images").Subrouter()
	images.Use(requireSeller)
	images.HandleFunc("/upload", imageHandler.Upload).Methods("POST")
	images.HandleFunc("/delete", imageHandler.Delete).Methods("POST")

	r.HandleFunc("/health", healthHandler(db, logger)).Methods("GET")

	return middleware.CORS(cfg.CORSOrigins)(r)
}

func healthHandler(db *sql.DB, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			logger.Error().Err(err).Msg("Health check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
}
