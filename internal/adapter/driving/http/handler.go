// Package httphandler implements the JSON API driving adapter.
package httphandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/carepanel/internal/adapter/driven/notify"
	"github.com/ericfisherdev/carepanel/internal/application"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	authSvc    *application.AuthService
	patientSvc *application.PatientService
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. authSvc must
// have been built with a notify.Flash notifier for Login to report messages.
func NewHandler(authSvc *application.AuthService, patientSvc *application.PatientService, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:    authSvc,
		patientSvc: patientSvc,
		logger:     logger,
	}
}

// RegisterAPIRoutes registers all JSON API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/session", h.Session)
	mux.HandleFunc("POST /api/v1/login", h.Login)
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// Session handles GET /api/v1/session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	session, err := h.patientSvc.Session(r.Context())
	if err != nil {
		h.logger.Error("failed to read session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// Login handles POST /api/v1/login. The body is the same credential pair the
// records API expects; the response carries the notifications the login raised.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, flashes := notify.WithFlashes(r.Context())
	state := h.authSvc.Login(ctx, req.Username, req.Password)

	messages := flashes.Messages()
	if messages == nil {
		messages = []string{}
	}
	writeJSON(w, loginStatus(state), LoginResponse{State: string(state), Notifications: messages})
}
