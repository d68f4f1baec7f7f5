package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/config"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

func NewServer(cfg *config.Config, deps Dependencies) (Server, error) {
	if deps.Auth == nil || deps.Payments == nil {
		return Server{}, errors.New("admin auth and payments must be configured")
	}

	address := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	startupTime := time.Now()

	router := newRouter(cfg, deps, withStartupTime(startupTime))

	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return Server{server, startupTime}, nil
}

type router struct {
	startupTime time.Time
}

func withStartupTime(startupTime time.Time) func(*router) {
	return func(r *router) {
		r.startupTime = startupTime
	}
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

func newRouter(cfg *config.Config, deps Dependencies, opts ...func(*router)) *chi.Mux {
	rt := router{startupTime: time.Now()}
	for _, opt := range opts {
		opt(&rt)
	}

	chiRouter := chi.NewRouter()
	chiRouter.Use(middleware.RequestID)
	chiRouter.Use(middleware.RealIP)
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(MetricsMiddleware)

	handlers := initializeHandlers(deps, cfg.DBProvider, cfg.IsProduction())

	acceptedOrigins := cfg.Origins()
	chiRouter.Use(CORSCheckMiddleware(acceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   acceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	chiRouter.Get("/healthz", healthHandler(deps, rt.startupTime))
	chiRouter.Handle("/metrics", promhttp.Handler())

	chiRouter.Group(func(r chi.Router) {
		r.Use(HTTPLoggingMiddleware)
		setupAPIRoutes(r, handlers, deps.Auth)
		setupAdminRoutes(r, cfg.AdminStaticDir)
	})

	return chiRouter
}

func healthHandler(deps Dependencies, startupTime time.Time) http.HandlerFunc {
	responder := NewResponder(log.With().Str("handlerName", "health").Logger())
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{Status: "ok", Database: "ok", Uptime: time.Since(startupTime).Round(time.Second).String()}
		status := http.StatusOK
		if err := deps.Database.Ping(); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
			status = http.StatusServiceUnavailable
		}
		responder.WriteJSONStatus(w, status, resp)
	}
}

// Start serves until the server is shut down. A graceful shutdown is not an error.
func (s Server) Start() error {
	log.Info().Msgf("Server started on: %s", s.Addr)
	if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Dur("uptime", time.Since(s.startupTime)).Msg("Gracefully shutting down...")

	gracefulCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefulCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
