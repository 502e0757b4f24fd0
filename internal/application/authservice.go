// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/carepanel/internal/domain/model"
	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// Notification texts shown at the end of a login.
const (
	MsgLoginSuccess    = "Login successful!"
	MsgLoginUnexpected = "An unexpected error occurred."
	MsgLoginTransport  = "An error occurred during login. Please try again."
)

// AuthService exchanges a credential pair for an access token and persists it.
// Its contract is defined by its effects: the stored token and the single
// notification each login produces.
type AuthService struct {
	api      driven.HealthAPI
	store    driven.TokenStore
	notifier driven.Notifier
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService with the required dependencies.
func NewAuthService(api driven.HealthAPI, store driven.TokenStore, notifier driven.Notifier, logger *slog.Logger) *AuthService {
	return &AuthService{
		api:      api,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Login posts identifier and secret to the token endpoint. The token is
// written only when the server reports success; every other outcome leaves
// storage untouched. Exactly one notification is sent. Nothing is retried and
// no lock is held, so concurrent logins race and the last successful write
// wins. The returned state is the terminal state reached.
func (s *AuthService) Login(ctx context.Context, identifier, secret string) model.LoginState {
	s.logger.Debug("login requesting", "username", identifier, "state", model.LoginStateRequesting)

	resp, err := s.api.RequestToken(ctx, model.CredentialRequest{Username: identifier, Password: secret})
	if err != nil {
		return s.fail(ctx, identifier, err)
	}

	if err := s.store.Set(ctx, model.TokenKey, resp.AccessToken); err != nil {
		return s.fail(ctx, identifier, err)
	}

	s.logger.Info("login succeeded", "username", identifier)
	s.notifier.Notify(ctx, MsgLoginSuccess)
	return model.LoginStateSuccess
}

func (s *AuthService) fail(ctx context.Context, identifier string, err error) model.LoginState {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		s.logger.Info("login rejected", "username", identifier, "status", apiErr.StatusCode)
		if apiErr.HasDetail() {
			s.notifier.Notify(ctx, "Error: "+apiErr.Detail)
			return model.LoginStateRejected
		}
		s.notifier.Notify(ctx, MsgLoginUnexpected)
		return model.LoginStateRejectedUnknown
	}

	s.logger.Error("login failed", "username", identifier, "error", err)
	s.notifier.Notify(ctx, MsgLoginTransport)
	return model.LoginStateTransportError
}
