// Package healthapi implements the HealthAPI port over the records API's JSON
// endpoints.
package healthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/carepanel/internal/domain/model"
	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// Compile-time interface satisfaction check.
var _ driven.HealthAPI = (*Client)(nil)

// Client implements the driven.HealthAPI port.
type Client struct {
	baseURL *url.URL
	http    *http.Client // Plain requests; no client-side timeout.
	cached  *http.Client // Public GET endpoints behind an ETag-aware cache.
}

// NewClient creates a Client for the API rooted at baseURL with the following
// transport stack:
//  1. http.DefaultTransport for token, register, and authenticated calls
//  2. httpcache (conditional request caching) for the public doctor directory
//  3. oauth2.Transport (Bearer header) layered per call where a token is needed
func NewClient(baseURL string) (*Client, error) {
	return NewClientWithHTTPClient(&http.Client{}, baseURL)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// Tests use it to point the client at an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = httpClient.Transport

	return &Client{
		baseURL: u,
		http:    httpClient,
		cached: &http.Client{
			Transport:     cacheTransport,
			CheckRedirect: httpClient.CheckRedirect,
			Jar:           httpClient.Jar,
			Timeout:       httpClient.Timeout,
		},
	}, nil
}

// RequestToken posts the credential pair to /token. A 2xx body without an
// access_token is reported as a transport failure so callers never store an
// empty token.
func (c *Client) RequestToken(ctx context.Context, req model.CredentialRequest) (model.TokenResponse, error) {
	var resp model.TokenResponse
	if err := c.do(ctx, c.http, http.MethodPost, "token", req, &resp); err != nil {
		return model.TokenResponse{}, err
	}
	if resp.AccessToken == "" {
		return model.TokenResponse{}, fmt.Errorf("%w: token response has no access_token", driven.ErrTransport)
	}
	return resp, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	var user model.User
	if err := c.do(ctx, c.http, http.MethodPost, "register", reg, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Doctors lists the doctor directory through the response cache.
func (c *Client) Doctors(ctx context.Context) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := c.do(ctx, c.cached, http.MethodGet, "doctors", nil, &doctors); err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []model.Doctor{}
	}
	return doctors, nil
}

// Dashboard fetches the caller's health metrics.
func (c *Client) Dashboard(ctx context.Context, token string) (model.HealthMetrics, error) {
	var metrics model.HealthMetrics
	if err := c.do(ctx, c.authorized(token), http.MethodGet, "dashboard", nil, &metrics); err != nil {
		return model.HealthMetrics{}, err
	}
	return metrics, nil
}

// UpdateDashboard replaces the caller's health metrics and returns what the
// server stored.
func (c *Client) UpdateDashboard(ctx context.Context, token string, metrics model.HealthMetrics) (model.HealthMetrics, error) {
	var stored model.HealthMetrics
	if err := c.do(ctx, c.authorized(token), http.MethodPost, "dashboard/update", metrics, &stored); err != nil {
		return model.HealthMetrics{}, err
	}
	return stored, nil
}

// CreateAppointment schedules an appointment with a doctor.
func (c *Client) CreateAppointment(ctx context.Context, token string, req model.AppointmentRequest) (model.AppointmentConfirmation, error) {
	var conf model.AppointmentConfirmation
	if err := c.do(ctx, c.authorized(token), http.MethodPost, "appointments", req, &conf); err != nil {
		return model.AppointmentConfirmation{}, err
	}
	return conf, nil
}

// CheckSymptoms submits symptoms to the checker.
func (c *Client) CheckSymptoms(ctx context.Context, token string, check model.SymptomCheck) (model.SymptomResult, error) {
	var result model.SymptomResult
	if err := c.do(ctx, c.authorized(token), http.MethodPost, "symptom-checker", check, &result); err != nil {
		return model.SymptomResult{}, err
	}
	return result, nil
}

// authorized returns an http.Client that sends token as a Bearer credential.
// It bypasses the response cache so per-user responses are never shared.
func (c *Client) authorized(token string) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   c.http.Transport,
		},
		CheckRedirect: c.http.CheckRedirect,
		Jar:           c.http.Jar,
		Timeout:       c.http.Timeout,
	}
}

// do issues a JSON request and decodes the JSON response into out.
// Non-2xx responses become *model.APIError; a non-2xx body that is not JSON
// is a transport failure, as is a 2xx body that does not decode into out.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return fmt.Errorf("%w: building %s /%s: %w", driven.ErrTransport, method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s /%s: %w", driven.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: reading %s /%s response: %w", driven.ErrTransport, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data, method, path)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s /%s response: %w", driven.ErrTransport, method, path, err)
	}
	return nil
}

// decodeAPIError builds an *model.APIError from a non-2xx body. Only a string
// "detail" counts as a human-readable message; structured validation details
// are left out.
func decodeAPIError(status int, data []byte, method, path string) error {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: decoding %s /%s error response (status %d): %w", driven.ErrTransport, method, path, status, err)
	}

	apiErr := &model.APIError{StatusCode: status}
	var detail string
	if len(envelope.Detail) > 0 && json.Unmarshal(envelope.Detail, &detail) == nil {
		apiErr.Detail = detail
	}
	return apiErr
}
