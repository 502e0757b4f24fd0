package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/carepanel/internal/domain/model"
	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// Sentinel errors returned by PatientService.
var (
	// ErrNotLoggedIn is returned by authenticated calls when no token is stored.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrInvalidInput is returned when a request is refused before reaching the server.
	ErrInvalidInput = errors.New("invalid input")
)

// PatientService wraps the records API calls that follow login. Authenticated
// calls read the stored token on every call, so a fresh login takes effect
// immediately.
type PatientService struct {
	api   driven.HealthAPI
	store driven.TokenStore
	now   func() time.Time
}

// NewPatientService creates a new PatientService with the required dependencies.
func NewPatientService(api driven.HealthAPI, store driven.TokenStore) *PatientService {
	return &PatientService{
		api:   api,
		store: store,
		now:   time.Now,
	}
}

// Register creates an account. Role defaults to patient when empty.
func (s *PatientService) Register(ctx context.Context, username, password string, role model.UserRole) (model.User, error) {
	if role == "" {
		role = model.UserRolePatient
	}
	return s.api.Register(ctx, model.Registration{Username: username, Password: password, Role: role})
}

// Doctors lists the doctor directory. It does not require a login.
func (s *PatientService) Doctors(ctx context.Context) ([]model.Doctor, error) {
	return s.api.Doctors(ctx)
}

// Dashboard fetches the logged-in user's health metrics.
func (s *PatientService) Dashboard(ctx context.Context) (model.HealthMetrics, error) {
	token, err := s.token(ctx)
	if err != nil {
		return model.HealthMetrics{}, err
	}
	return s.api.Dashboard(ctx, token)
}

// UpdateDashboard stores new health metrics for the logged-in user.
func (s *PatientService) UpdateDashboard(ctx context.Context, metrics model.HealthMetrics) (model.HealthMetrics, error) {
	if metrics.Sleep < 0 || metrics.Exercise < 0 || metrics.WaterIntake < 0 {
		return model.HealthMetrics{}, fmt.Errorf("%w: health metrics must not be negative", ErrInvalidInput)
	}
	token, err := s.token(ctx)
	if err != nil {
		return model.HealthMetrics{}, err
	}
	return s.api.UpdateDashboard(ctx, token, metrics)
}

// BookAppointment schedules an appointment. Dates that are not in the future
// are refused before contacting the server.
func (s *PatientService) BookAppointment(ctx context.Context, req model.AppointmentRequest) (model.AppointmentConfirmation, error) {
	if !req.Date.After(s.now()) {
		return model.AppointmentConfirmation{}, fmt.Errorf("%w: appointment date must be in the future", ErrInvalidInput)
	}
	token, err := s.token(ctx)
	if err != nil {
		return model.AppointmentConfirmation{}, err
	}
	return s.api.CreateAppointment(ctx, token, req)
}

// CheckSymptoms normalises the symptom list and submits it to the checker.
// Symptoms are lowercased, trimmed, and de-duplicated; blanks are dropped.
func (s *PatientService) CheckSymptoms(ctx context.Context, symptoms []string) (model.SymptomResult, error) {
	token, err := s.token(ctx)
	if err != nil {
		return model.SymptomResult{}, err
	}

	seen := make(map[string]bool, len(symptoms))
	cleaned := make([]string, 0, len(symptoms))
	for _, sym := range symptoms {
		sym = strings.ToLower(strings.TrimSpace(sym))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		cleaned = append(cleaned, sym)
	}

	return s.api.CheckSymptoms(ctx, token, model.SymptomCheck{Symptoms: cleaned})
}

// Session describes the stored token. The claims are read without signature
// verification; the server remains the authority on validity.
func (s *PatientService) Session(ctx context.Context) (model.Session, error) {
	token, err := s.store.Get(ctx, model.TokenKey)
	if err != nil {
		return model.Session{}, fmt.Errorf("reading stored token: %w", err)
	}
	if token == "" {
		return model.Session{}, nil
	}

	session := model.Session{LoggedIn: true}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		// Opaque tokens are valid too; there is just nothing to show.
		return session, nil
	}
	session.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

func (s *PatientService) token(ctx context.Context) (string, error) {
	token, err := s.store.Get(ctx, model.TokenKey)
	if err != nil {
		return "", fmt.Errorf("reading stored token: %w", err)
	}
	if token == "" {
		return "", ErrNotLoggedIn
	}
	return token, nil
}
