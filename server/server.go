package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/theoremus-urban-solutions/trains-in-motion/config"
	"github.com/theoremus-urban-solutions/trains-in-motion/stations"
	"github.com/theoremus-urban-solutions/trains-in-motion/tracker"
)

// Server serves the query surface over the published snapshot.
type Server struct {
	store *tracker.Store
	agg   *tracker.Aggregator
	table *stations.Table
	stale time.Duration
	hub   *hub
	http  *http.Server
}

// New builds the HTTP server and its routes. Call Start to begin serving.
func New(cfg *config.AppConfig, store *tracker.Store, agg *tracker.Aggregator, table *stations.Table) *Server {
	s := &Server{
		store: store,
		agg:   agg,
		table: table,
		stale: time.Duration(cfg.Poller.StaleAfterSec) * time.Second,
		hub:   newHub(),
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(apiHeaders)

	r.Get("/api/trains", s.handleTrains)
	r.Get("/api/stations", s.handleStations)
	r.Get("/api/health", s.handleHealth)
	r.Get("/ws", s.handleWS)

	if cfg.Server.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the configured route tree.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Printf("server listening on %s", s.http.Addr)
}

// Shutdown closes websocket clients and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.close()
	return s.http.Shutdown(ctx)
}

// Broadcast pushes a freshly published snapshot to connected websocket
// clients. Wired as the aggregator's publish hook.
func (s *Server) Broadcast(snap *tracker.Snapshot) {
	s.hub.broadcast(snap)
}

// apiHeaders sets the security and caching headers on API responses. The
// snapshot changes at most once per poll cycle, so short-lived public
// caching is safe.
func apiHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "public, max-age=10")
		}
		next.ServeHTTP(w, r)
	})
}
