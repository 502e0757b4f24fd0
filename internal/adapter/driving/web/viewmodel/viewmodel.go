// Package viewmodel defines presentation-ready structs for templ components.
// View models decouple template rendering from domain model types.
package viewmodel

// PageViewModel holds the chrome shared by every page.
type PageViewModel struct {
	Title     string
	CSRFToken string
	Session   SessionViewModel
	Flashes   []FlashViewModel
}

// FlashViewModel is a notification shown above the page body.
type FlashViewModel struct {
	Message string
	Error   bool
}

// SessionViewModel describes the stored login for the header.
type SessionViewModel struct {
	LoggedIn  bool
	Subject   string // Empty for opaque tokens.
	ExpiresIn string // Human-readable; empty when unknown.
	Expired   bool
}

// DoctorViewModel holds presentation-ready data for a directory row.
type DoctorViewModel struct {
	ID        int64
	Name      string
	Specialty string
}

// MetricsViewModel holds presentation-ready data for the health dashboard.
type MetricsViewModel struct {
	Sleep       int
	Exercise    int
	WaterIntake int
	Sex         string
}

// AppointmentViewModel holds presentation-ready data for a booked appointment.
type AppointmentViewModel struct {
	Message    string
	DoctorName string
	Specialty  string
	When       string
	ReasonHTML string // Sanitized HTML rendered from markdown.
}

// SymptomResultViewModel holds presentation-ready data for a checker result.
type SymptomResultViewModel struct {
	Submitted  []string
	Conditions []string
	Message    string
}
