// Package server exposes the digest and scan pipelines over HTTP.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jobscout/jobscout/internal/digest"
	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/scan"
)

// DigestSender sends one user's digest. Satisfied by *digest.Sender.
type DigestSender interface {
	Send(ctx context.Context, settings model.UserSettings, opts digest.SendOptions) (digest.Report, error)
}

// DigestBroadcaster fans the digest out to all automation-enabled users.
// Satisfied by *digest.Broadcaster.
type DigestBroadcaster interface {
	BroadcastAll(ctx context.Context) ([]digest.Outcome, error)
}

// ScanFunc runs one full scan for a user. The caller wires in profile and
// strategy resolution.
type ScanFunc func(ctx context.Context, userID string) (scan.Result, error)

// Server holds the handler dependencies.
type Server struct {
	auth        *Authenticator
	settings    model.SettingsStore
	sender      DigestSender
	broadcaster DigestBroadcaster
	scan        ScanFunc
	logger      *slog.Logger
}

// New builds the HTTP layer over the digest and scan pipelines.
func New(
	auth *Authenticator,
	settings model.SettingsStore,
	sender DigestSender,
	broadcaster DigestBroadcaster,
	scanFn ScanFunc,
	logger *slog.Logger,
) *Server {
	return &Server{
		auth:        auth,
		settings:    settings,
		sender:      sender,
		broadcaster: broadcaster,
		scan:        scanFn,
		logger:      logger,
	}
}

// Router assembles the chi router with the standard middleware stack.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(s.auth))
		r.Post("/send-digest", s.handleSendDigest)
		r.Post("/scan", s.handleScan)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeErrorDetails(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, map[string]string{"error": msg, "details": details})
}
