// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Amesco Plus Contributors

// Package httpapi exposes the authentication service over HTTP+JSON.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ivanlelis-27/amesco-plus-be/internal/auth"
	"github.com/ivanlelis-27/amesco-plus-be/internal/observability"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 1 << 20

// AuthService is the subset of auth.Service the handlers call.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.Registration, error)
	BulkRegister(ctx context.Context, reqs []auth.RegisterRequest) (*auth.BulkResult, error)
	GenerateMemberID(ctx context.Context) (string, error)
	Login(ctx context.Context, email, password string) (*auth.LoginResult, error)
	VerifyToken(token string) (*auth.Claims, error)
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
	SessionStatus(ctx context.Context, userID int64, sessionID string) (bool, error)
	Logout(ctx context.Context, userID int64, sessionID string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
	Unsubscribe(ctx context.Context, userID int64, presentedToken string) error
	Profile(ctx context.Context, userID int64) (*auth.Profile, error)
}

var _ AuthService = (*auth.Service)(nil)

// Options configures the router.
type Options struct {
	Logger *slog.Logger
	// Metrics is optional.
	Metrics *observability.Metrics
	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins  []string
	MaxBodyBytes int64
}

// handlers holds the dependencies shared by every handler.
type handlers struct {
	svc          AuthService
	logger       *slog.Logger
	metrics      *observability.Metrics
	maxBodyBytes int64
}

// NewRouter builds the HTTP handler for the API.
func NewRouter(svc AuthService, opts Options) http.Handler {
	h := &handlers{
		svc:          svc,
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		maxBodyBytes: opts.MaxBodyBytes,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = DefaultMaxBodyBytes
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.accessLog)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(opts.CORSOrigins))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/bulk-register", h.bulkRegister)
		r.Get("/generate-memberid", h.generateMemberID)
		r.Post("/login", h.login)
		r.Post("/forgot-password", h.forgotPassword)
		r.Post("/reset-password", h.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(h.requireToken)
			r.Get("/session-status", h.sessionStatus)
			r.Post("/logout", h.logout)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Delete("/unsubscribe", h.unsubscribe)
		})
	})

	r.With(h.requireSession).Get("/api/users/me", h.me)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method_not_allowed", Message: "method not allowed"})
	})

	return otelhttp.NewHandler(r, "amesco.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}))
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
