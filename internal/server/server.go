package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/trackly/internal/activity"
	v1 "github.com/gosuda/trackly/internal/api/v1"
	"github.com/gosuda/trackly/internal/api/ws"
	"github.com/gosuda/trackly/internal/config"
	"github.com/gosuda/trackly/internal/server/middleware"
	redisstore "github.com/gosuda/trackly/internal/store/redis"
)

// Store is the storage backend the server runs on.
// *postgres.Store and *sqlite.Store satisfy this interface.
type Store interface {
	v1.DataStore
	Ping(ctx context.Context) error
}

// Server is the HTTP server that wires all application routes and middleware.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      Store
	pubsub     *redisstore.PubSub // nil when Redis is disabled
	wsHub      *ws.Hub
	cfg        *config.Config
}

// New creates a Server with all routes wired. pubsub may be nil, in which
// case recorded entries are not fanned out to live views.
// ctx bounds the background goroutines of the rate limiters.
func New(ctx context.Context, cfg *config.Config, store Store, pubsub *redisstore.PubSub) *Server {
	router := chi.NewRouter()

	// Global middleware stack.
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	// Keep the interfaces nil rather than typed-nil when Redis is off.
	var (
		publisher  activity.PubSubPublisher
		subscriber ws.Subscriber
	)
	if pubsub != nil {
		publisher = pubsub
		subscriber = pubsub
	}

	loader := activity.NewLoader(store.Activity(), store.Projects())
	recorder := activity.NewRecorder(store.Activity(), publisher)
	hub := ws.NewHub(loader, subscriber, originHosts(cfg.Server.CORSOrigins))

	s := &Server{
		router: router,
		store:  store,
		pubsub: pubsub,
		wsHub:  hub,
		cfg:    cfg,
		httpServer: &http.Server{
			Addr:         cfg.Server.Addr,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}

	// Every API route needs a workspace-scoped token with a role allowed to
	// see activity.
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireWorkspace())
		r.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMember))
		r.Use(middleware.RateLimit(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst))

		apiConfig := huma.DefaultConfig("Trackly API", "1.0.0")
		apiConfig.Servers = []*huma.Server{
			{URL: "/api/v1"},
		}
		api := humachi.New(r, apiConfig)
		registerAPIRoutes(api, store, loader, recorder)
	})

	// WebSocket routes. Upgrades are limited per client IP before auth so
	// that bad tokens cannot be retried unbounded.
	router.Route("/ws", func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(ctx, 5, 10))
		r.Use(middleware.Auth(cfg.JWT.Secret))
		r.Use(middleware.RequireWorkspace())
		r.Use(middleware.RequireRole(middleware.RoleAdmin, middleware.RoleMember))
		registerWSRoutes(r, hub)
	})

	// Health check (unauthenticated).
	router.Get("/healthz", s.handleHealth)

	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Redis  string `json:"redis"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Store: "ok", Redis: "disabled"}
	code := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("health: store unreachable")
		resp.Status, resp.Store = "degraded", "unreachable"
		code = http.StatusServiceUnavailable
	}
	if s.pubsub != nil {
		resp.Redis = "ok"
		if err := s.pubsub.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("health: redis unreachable")
			resp.Status, resp.Redis = "degraded", "unreachable"
			code = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

// originHosts turns CORS origins into the host patterns websocket.Accept
// expects. Entries without a scheme are passed through.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			hosts = append(hosts, o)
			continue
		}
		hosts = append(hosts, u.Host)
	}
	return hosts
}

// Start begins listening for HTTP requests.
func (s *Server) Start(_ context.Context) error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.Start: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
