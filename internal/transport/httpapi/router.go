package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pekatete/electrumsv/internal/transport/httpapi/handler"
	"github.com/pekatete/electrumsv/internal/transport/httpapi/middleware"
	"github.com/pekatete/electrumsv/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger          *logger.Logger
	AllowedOrigins  []string
	AuthHandler     *handler.AuthHandler
	HistoryHandler  *handler.HistoryHandler
	EventHandler    *handler.EventHandler
	SettingsHandler *handler.SettingsHandler
	HealthHandler   *handler.HealthHandler
	JWTMiddleware   func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.RateLimit())

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Auth routes (public - no authentication required)
		if cfg.AuthHandler != nil {
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)
		}

		// Protected routes (require JWT authentication)
		if cfg.JWTMiddleware != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.JWTMiddleware)

				if cfg.HistoryHandler != nil {
					r.Get("/history", cfg.HistoryHandler.GetHistory)
					r.Get("/history/{txHash}", cfg.HistoryHandler.GetHistoryRow)
				}

				if cfg.EventHandler != nil {
					r.Post("/transactions", cfg.EventHandler.CreateTransaction)
					r.Put("/transactions/{txHash}/height", cfg.EventHandler.SetHeight)
					r.Put("/transactions/{txHash}/label", cfg.EventHandler.SetLabel)
					r.Delete("/transactions/{txHash}", cfg.EventHandler.DeleteTransaction)

					r.Get("/chain/tip", cfg.EventHandler.GetChainTip)
					r.Put("/chain/tip", cfg.EventHandler.SetChainTip)

					r.Post("/resync", cfg.EventHandler.Resync)
				}

				if cfg.SettingsHandler != nil {
					r.Get("/settings", cfg.SettingsHandler.GetSettings)
					r.Get("/settings/{key}", cfg.SettingsHandler.GetSetting)
					r.Put("/settings/{key}", cfg.SettingsHandler.SetSetting)
				}
			})
		}
	})

	return r
}
