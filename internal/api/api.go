// Package api provides the admin HTTP server for Dobby.
//
// It exposes RESTful endpoints for managing families and members: listing
// and registering families, tuning per-family settings (timezone, briefing
// time, AI mode) and adding or removing members. All endpoints except the
// health check require a bearer token.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ohadbarr1/dobby/internal/store"
)

// DefaultAddr is the default listen address for the admin API.
const DefaultAddr = ":8080"

// Opts holds configuration options for the API server.
type Opts struct {
	Addr     string
	Token    string
	Webhooks map[string]http.HandlerFunc
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) {
		o.Addr = addr
	}
}

// WithToken sets the bearer token required by all non-health endpoints.
func WithToken(token string) Option {
	return func(o *Opts) {
		o.Token = token
	}
}

// WithWebhook mounts a transport webhook at the given mux pattern. Webhooks
// are served without bearer auth: the peer is an external provider that
// cannot present the admin token.
func WithWebhook(pattern string, handler http.HandlerFunc) Option {
	return func(o *Opts) {
		if o.Webhooks == nil {
			o.Webhooks = make(map[string]http.HandlerFunc)
		}
		o.Webhooks[pattern] = handler
	}
}

// Server is the admin API server.
type Server struct {
	store      store.Store
	token      string
	addr       string
	webhooks   map[string]http.HandlerFunc
	httpServer *http.Server
}

// NewServer creates an admin API server over the given store.
func NewServer(st store.Store, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{store: st, token: cfg.Token, addr: cfg.Addr, webhooks: cfg.Webhooks}
}

// Handler builds the routing table. Exposed separately so tests can drive
// the mux without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("GET /families", s.auth(s.listFamiliesHandler))
	mux.HandleFunc("POST /families", s.auth(s.createFamilyHandler))
	mux.HandleFunc("GET /families/{id}", s.auth(s.getFamilyHandler))
	mux.HandleFunc("PATCH /families/{id}", s.auth(s.updateFamilyHandler))

	mux.HandleFunc("GET /families/{id}/members", s.auth(s.listMembersHandler))
	mux.HandleFunc("POST /families/{id}/members", s.auth(s.addMemberHandler))
	mux.HandleFunc("DELETE /families/{id}/members/{memberID}", s.auth(s.deleteMemberHandler))

	for pattern, handler := range s.webhooks {
		mux.HandleFunc(pattern, handler)
	}

	return mux
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	if s.token == "" {
		slog.Warn("admin API starting without a bearer token; all requests will be rejected")
	}
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("admin API listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("admin API server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
