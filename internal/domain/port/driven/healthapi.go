package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/carepanel/internal/domain/model"
)

// ErrTransport marks failures that happened before a usable response was
// obtained: network errors and bodies that could not be decoded.
var ErrTransport = errors.New("transport failure")

// HealthAPI defines the driven port for the remote hospital-records API.
// A non-2xx response is returned as *model.APIError. Every other failure
// wraps ErrTransport.
type HealthAPI interface {
	// RequestToken exchanges a credential pair for an access token.
	RequestToken(ctx context.Context, req model.CredentialRequest) (model.TokenResponse, error)

	// Register creates a new account. It needs no token.
	Register(ctx context.Context, reg model.Registration) (model.User, error)

	// Doctors lists the public doctor directory. It needs no token.
	Doctors(ctx context.Context) ([]model.Doctor, error)

	// Authenticated calls

	Dashboard(ctx context.Context, token string) (model.HealthMetrics, error)
	UpdateDashboard(ctx context.Context, token string, metrics model.HealthMetrics) (model.HealthMetrics, error)
	CreateAppointment(ctx context.Context, token string, req model.AppointmentRequest) (model.AppointmentConfirmation, error)
	CheckSymptoms(ctx context.Context, token string, check model.SymptomCheck) (model.SymptomResult, error)
}
