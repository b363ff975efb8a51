package handler

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"account-gateway/internal/platform/metrics"
	"account-gateway/internal/platform/middleware"
	"account-gateway/internal/registration"
	dErrors "account-gateway/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/registration-mocks.go -package=mocks Service

// Service defines the lifecycle operations the HTTP layer depends on. Each
// returns the client-facing confirmation message.
type Service interface {
	RegisterUser(ctx context.Context, req registration.UserRegistration) (string, error)
	RegisterVendor(ctx context.Context, req registration.VendorRegistration) (string, error)
	RegisterRider(ctx context.Context, req registration.RiderRegistration) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	DeleteUnverified(ctx context.Context, email string) (string, error)
}

// Handler is the thin HTTP layer over the registration service. Transport
// concerns only; branching on account state lives in the service.
type Handler struct {
	service  Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	adminPIN string
}

func New(service Service, logger *slog.Logger, m *metrics.Metrics, adminPIN string) *Handler {
	return &Handler{
		service:  service,
		logger:   logger,
		metrics:  m,
		adminPIN: adminPIN,
	}
}

// Register mounts all public endpoints. Liveness endpoints bypass the JSON
// middleware so they can answer in plain text.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/healthz", h.handleHealthz)

	r.Group(func(api chi.Router) {
		api.Use(middleware.Recovery(h.logger))
		api.Use(middleware.RequestID)
		api.Use(middleware.Logger(h.logger))
		api.Use(middleware.Timeout(30 * time.Second))
		api.Use(middleware.ContentTypeJSON)
		api.Use(middleware.Latency(h.metrics))
		api.Post("/register", h.handleRegisterUser)
		api.Post("/vendor/register", h.handleRegisterVendor)
		api.Post("/rider/register", h.handleRegisterRider)
		api.Post("/forgot-password", h.handleForgotPassword)
		api.Delete("/delete-unverified", h.handleDeleteUnverified)
		api.Post("/admin/login", h.handleAdminLogin)
	})
}

func (h *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registration.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	msg, err := h.service.RegisterUser(r.Context(), req)
	if err != nil {
		h.logFailure(r.Context(), "user registration failed", err)
		writeError(w, err)
		return
	}
	writeMessage(w, msg)
}

func (h *Handler) handleRegisterVendor(w http.ResponseWriter, r *http.Request) {
	var req registration.VendorRegistration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	msg, err := h.service.RegisterVendor(r.Context(), req)
	if err != nil {
		h.logFailure(r.Context(), "vendor registration failed", err)
		writeError(w, err)
		return
	}
	writeMessage(w, msg)
}

func (h *Handler) handleRegisterRider(w http.ResponseWriter, r *http.Request) {
	var req registration.RiderRegistration
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	msg, err := h.service.RegisterRider(r.Context(), req)
	if err != nil {
		h.logFailure(r.Context(), "rider registration failed", err)
		writeError(w, err)
		return
	}
	writeMessage(w, msg)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	msg, err := h.service.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.logFailure(r.Context(), "forgot password failed", err)
		writeError(w, err)
		return
	}
	writeMessage(w, msg)
}

func (h *Handler) handleDeleteUnverified(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	msg, err := h.service.DeleteUnverified(r.Context(), req.Email)
	if err != nil {
		h.logFailure(r.Context(), "delete unverified failed", err)
		writeError(w, err)
		return
	}
	writeMessage(w, msg)
}

type adminLoginRequest struct {
	PIN string `json:"pin"`
}

// handleAdminLogin gates a boolean verified response on a shared secret.
// Constant-time comparison; not a capability system.
func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PIN == "" {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "Admin PIN is required."))
		return
	}
	if h.adminPIN == "" || subtle.ConstantTimeCompare([]byte(req.PIN), []byte(h.adminPIN)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "Invalid PIN."})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "PIN verified."})
}

func (h *Handler) logFailure(ctx context.Context, what string, err error) {
	attrs := []any{
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	}
	if dErrors.CodeFor(err) == dErrors.CodeInternal || dErrors.CodeFor(err) == dErrors.CodeUnavailable {
		h.logger.ErrorContext(ctx, what, attrs...)
		return
	}
	h.logger.WarnContext(ctx, what, attrs...)
}

// writeError centralizes domain error translation so every endpoint shares
// one JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(dErrors.ToHTTPStatus(dErrors.CodeFor(err)))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": dErrors.MessageFor(err)})
}

func writeMessage(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
