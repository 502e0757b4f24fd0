package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/carepanel/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// LoginRequest is the JSON body accepted by the login endpoint.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse reports the terminal state of a login and the notifications
// it raised.
type LoginResponse struct {
	State         string   `json:"state"`
	Notifications []string `json:"notifications"`
}

// SessionResponse is the JSON representation of the stored session.
type SessionResponse struct {
	LoggedIn  bool   `json:"logged_in"`
	Subject   string `json:"subject,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func toSessionResponse(s model.Session) SessionResponse {
	resp := SessionResponse{LoggedIn: s.LoggedIn, Subject: s.Subject}
	if !s.ExpiresAt.IsZero() {
		resp.ExpiresAt = s.ExpiresAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// loginStatus maps a terminal login state to the HTTP status of the login endpoint.
func loginStatus(state model.LoginState) int {
	switch state {
	case model.LoginStateSuccess:
		return http.StatusOK
	case model.LoginStateRejected, model.LoginStateRejectedUnknown:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
