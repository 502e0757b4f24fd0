package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.LoginForm)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("GET /doctors", h.Doctors)
	mux.HandleFunc("GET /dashboard", h.Dashboard)
	mux.HandleFunc("POST /dashboard", h.UpdateDashboard)
	mux.HandleFunc("GET /appointments", h.AppointmentForm)
	mux.HandleFunc("POST /appointments", h.BookAppointment)
	mux.HandleFunc("GET /symptoms", h.SymptomForm)
	mux.HandleFunc("POST /symptoms", h.CheckSymptoms)
}
