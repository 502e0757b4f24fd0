package web_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/carepanel/internal/adapter/driven/notify"
	"github.com/ericfisherdev/carepanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/carepanel/internal/application"
	"github.com/ericfisherdev/carepanel/internal/domain/model"
	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

const testCSRF = "test-csrf-token"

// --- Mock implementations ---

type mockHealthAPI struct {
	tokenErr      error
	token         string
	doctors       []model.Doctor
	dashboard     model.HealthMetrics
	err           error
	lastMetrics   model.HealthMetrics
	lastReq       model.AppointmentRequest
	symptomResult model.SymptomResult
}

func (m *mockHealthAPI) RequestToken(_ context.Context, _ model.CredentialRequest) (model.TokenResponse, error) {
	if m.tokenErr != nil {
		return model.TokenResponse{}, m.tokenErr
	}
	return model.TokenResponse{AccessToken: m.token}, nil
}
func (m *mockHealthAPI) Register(_ context.Context, _ model.Registration) (model.User, error) {
	return model.User{}, nil
}
func (m *mockHealthAPI) Doctors(_ context.Context) ([]model.Doctor, error) { return m.doctors, m.err }
func (m *mockHealthAPI) Dashboard(_ context.Context, _ string) (model.HealthMetrics, error) {
	return m.dashboard, m.err
}
func (m *mockHealthAPI) UpdateDashboard(_ context.Context, _ string, hm model.HealthMetrics) (model.HealthMetrics, error) {
	m.lastMetrics = hm
	return hm, m.err
}
func (m *mockHealthAPI) CreateAppointment(_ context.Context, _ string, req model.AppointmentRequest) (model.AppointmentConfirmation, error) {
	m.lastReq = req
	return model.AppointmentConfirmation{
		Message: "Appointment scheduled successfully",
		Appointment: model.Appointment{
			PatientID:  req.PatientID,
			DoctorID:   req.DoctorID,
			Date:       req.Date,
			Reason:     req.Reason,
			DoctorName: "Dr. Alice Smith",
			Specialty:  "Cardiology",
		},
	}, m.err
}
func (m *mockHealthAPI) CheckSymptoms(_ context.Context, _ string, _ model.SymptomCheck) (model.SymptomResult, error) {
	return m.symptomResult, m.err
}

type mockTokenStore struct {
	values map[string]string
}

func (m *mockTokenStore) Get(_ context.Context, key string) (string, error) { return m.values[key], nil }
func (m *mockTokenStore) Set(_ context.Context, key, value string) error {
	m.values[key] = value
	return nil
}

// --- Helpers ---

func setupMux(api *mockHealthAPI, store *mockTokenStore) *http.ServeMux {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := application.NewAuthService(api, store, notify.Flash{}, logger)
	patientSvc := application.NewPatientService(api, store)

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, web.NewHandler(authSvc, patientSvc, logger))
	return mux
}

func get(mux http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func postForm(mux http.Handler, path string, form url.Values, withCSRF bool) *httptest.ResponseRecorder {
	if withCSRF {
		form.Set("csrf_token", testCSRF)
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRF})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestLoginForm_SetsCSRFCookie(t *testing.T) {
	mux := setupMux(&mockHealthAPI{}, &mockTokenStore{values: map[string]string{}})

	rec := get(mux, "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<form method="post" action="/login">`)
	assert.Contains(t, body, "Not logged in")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "csrf_token", cookies[0].Name)
	assert.Contains(t, body, `value="`+cookies[0].Value+`"`)
}

func TestLogin_RejectsMissingCSRF(t *testing.T) {
	store := &mockTokenStore{values: map[string]string{}}
	mux := setupMux(&mockHealthAPI{token: "abc123"}, store)

	rec := postForm(mux, "/login", url.Values{"username": {"testuser"}, "password": {"testpassword"}}, false)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, store.values, "login must not run without a valid CSRF token")
}

func TestLogin_Success(t *testing.T) {
	store := &mockTokenStore{values: map[string]string{}}
	mux := setupMux(&mockHealthAPI{token: "abc123"}, store)

	rec := postForm(mux, "/login", url.Values{"username": {"testuser"}, "password": {"testpassword"}}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="flash" role="alert">Login successful!</div>`)
	assert.Contains(t, rec.Body.String(), "Signed in")
	assert.Equal(t, "abc123", store.values["token"])
}

func TestLogin_Rejected(t *testing.T) {
	store := &mockTokenStore{values: map[string]string{"token": "previous"}}
	api := &mockHealthAPI{tokenErr: &model.APIError{StatusCode: 401, Detail: "Invalid credentials"}}
	mux := setupMux(api, store)

	rec := postForm(mux, "/login", url.Values{"username": {"testuser"}, "password": {"bad"}}, true)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="flash error" role="alert">Error: Invalid credentials</div>`)
	assert.Contains(t, rec.Body.String(), `value="testuser"`, "username should be kept for another attempt")
	assert.Equal(t, "previous", store.values["token"])
}

func TestLogin_TransportError(t *testing.T) {
	api := &mockHealthAPI{tokenErr: driven.ErrTransport}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{}})

	rec := postForm(mux, "/login", url.Values{"username": {"u"}, "password": {"p"}}, true)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), application.MsgLoginTransport)
}

func TestLogin_DetailIsNotRenderedAsHTML(t *testing.T) {
	api := &mockHealthAPI{tokenErr: &model.APIError{StatusCode: 401, Detail: `<script>alert(1)</script>nope`}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{}})

	rec := postForm(mux, "/login", url.Values{"username": {"u"}, "password": {"p"}}, true)

	assert.NotContains(t, rec.Body.String(), "<script>")
}

func TestLogin_DetailIsShownVerbatim(t *testing.T) {
	api := &mockHealthAPI{tokenErr: &model.APIError{StatusCode: 422, Detail: "Field <username> is required"}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{}})

	rec := postForm(mux, "/login", url.Values{"username": {""}, "password": {"p"}}, true)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`<div class="flash error" role="alert">Error: Field &lt;username&gt; is required</div>`)
}

func TestDashboard_RequiresLogin(t *testing.T) {
	mux := setupMux(&mockHealthAPI{}, &mockTokenStore{values: map[string]string{}})

	rec := get(mux, "/dashboard")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please log in first.")
	assert.Contains(t, rec.Body.String(), `action="/login"`)
}

func TestDashboard_ShowsMetrics(t *testing.T) {
	api := &mockHealthAPI{dashboard: model.HealthMetrics{Sleep: 7, Exercise: 2, WaterIntake: 9}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{"token": "abc123"}})

	rec := get(mux, "/dashboard")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>7 h</td>")
	assert.Contains(t, rec.Body.String(), "<td>9 glasses</td>")
}

func TestUpdateDashboard(t *testing.T) {
	api := &mockHealthAPI{}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{"token": "abc123"}})

	rec := postForm(mux, "/dashboard", url.Values{
		"sleep": {"8"}, "exercise": {"1"}, "waterIntake": {"6"}, "sex": {"f"},
	}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dashboard updated.")
	assert.Equal(t, model.HealthMetrics{Sleep: 8, Exercise: 1, WaterIntake: 6, Sex: "f"}, api.lastMetrics)
}

func TestUpdateDashboard_InvalidNumber(t *testing.T) {
	mux := setupMux(&mockHealthAPI{}, &mockTokenStore{values: map[string]string{"token": "abc123"}})

	rec := postForm(mux, "/dashboard", url.Values{"sleep": {"lots"}, "exercise": {"1"}, "waterIntake": {"6"}}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: sleep is not valid")
}

func TestDoctors(t *testing.T) {
	api := &mockHealthAPI{doctors: []model.Doctor{
		{ID: 1, Name: "Dr. Alice Smith", Specialty: "Cardiology"},
		{ID: 3, Name: "Dr. Carol Williams", Specialty: "Mental Health"},
	}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{}})

	rec := get(mux, "/doctors")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Dr. Carol Williams</td><td>Mental Health</td>")
}

func TestDoctors_UpstreamDown(t *testing.T) {
	api := &mockHealthAPI{err: errors.Join(driven.ErrTransport, errors.New("dial tcp: connection refused"))}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{}})

	rec := get(mux, "/doctors")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not reach the records service.")
}

func TestBookAppointment_RendersReasonMarkdown(t *testing.T) {
	api := &mockHealthAPI{doctors: []model.Doctor{{ID: 1, Name: "Dr. Alice Smith", Specialty: "Cardiology"}}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{"token": "abc123"}})
	when := time.Now().Add(48 * time.Hour).Format("2006-01-02T15:04")

	rec := postForm(mux, "/appointments", url.Values{
		"patient_id": {"1"},
		"doctor_id":  {"1"},
		"date":       {when},
		"reason":     {"**palpitations** <script>x()</script>"},
	}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Appointment scheduled successfully")
	assert.Contains(t, body, "<strong>palpitations</strong>")
	assert.NotContains(t, body, "<script>")
	assert.Equal(t, int64(1), api.lastReq.DoctorID)
}

func TestBookAppointment_DoctorNotFound(t *testing.T) {
	api := &mockHealthAPI{err: &model.APIError{StatusCode: 404, Detail: "Doctor not found"}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{"token": "abc123"}})
	when := time.Now().Add(48 * time.Hour).Format("2006-01-02T15:04")

	rec := postForm(mux, "/appointments", url.Values{
		"patient_id": {"1"}, "doctor_id": {"42"}, "date": {when},
	}, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: Doctor not found")
}

func TestCheckSymptoms(t *testing.T) {
	api := &mockHealthAPI{symptomResult: model.SymptomResult{Conditions: []string{"Migraine", "Sinusitis"}}}
	mux := setupMux(api, &mockTokenStore{values: map[string]string{"token": "abc123"}})

	rec := postForm(mux, "/symptoms", url.Values{"symptoms": {"headache, "}}, true)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Symptoms: headache</p>")
	assert.Contains(t, rec.Body.String(), "<li>Migraine</li>")
}

func TestStaticAssets(t *testing.T) {
	mux := setupMux(&mockHealthAPI{}, &mockTokenStore{values: map[string]string{}})

	rec := get(mux, "/static/style.css")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--accent")
}
