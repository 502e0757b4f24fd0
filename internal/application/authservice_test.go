package application_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/carepanel/internal/adapter/driven/healthapi"
	"github.com/ericfisherdev/carepanel/internal/application"
	"github.com/ericfisherdev/carepanel/internal/domain/model"
	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockHealthAPI struct {
	mu           sync.Mutex
	requestToken func(ctx context.Context, req model.CredentialRequest) (model.TokenResponse, error)
	requests     []model.CredentialRequest

	dashboard     model.HealthMetrics
	doctors       []model.Doctor
	symptomResult model.SymptomResult
	confirmation  model.AppointmentConfirmation
	err           error

	lastToken    string
	lastSymptoms model.SymptomCheck
	lastMetrics  model.HealthMetrics
	lastReg      model.Registration
	calls        int
}

func (m *mockHealthAPI) RequestToken(ctx context.Context, req model.CredentialRequest) (model.TokenResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.requestToken(ctx, req)
}

func (m *mockHealthAPI) Register(_ context.Context, reg model.Registration) (model.User, error) {
	m.lastReg = reg
	return model.User{ID: 1, Username: reg.Username, Role: reg.Role}, m.err
}

func (m *mockHealthAPI) Doctors(_ context.Context) ([]model.Doctor, error) {
	m.calls++
	return m.doctors, m.err
}

func (m *mockHealthAPI) Dashboard(_ context.Context, token string) (model.HealthMetrics, error) {
	m.calls++
	m.lastToken = token
	return m.dashboard, m.err
}

func (m *mockHealthAPI) UpdateDashboard(_ context.Context, token string, metrics model.HealthMetrics) (model.HealthMetrics, error) {
	m.calls++
	m.lastToken = token
	m.lastMetrics = metrics
	return metrics, m.err
}

func (m *mockHealthAPI) CreateAppointment(_ context.Context, token string, _ model.AppointmentRequest) (model.AppointmentConfirmation, error) {
	m.calls++
	m.lastToken = token
	return m.confirmation, m.err
}

func (m *mockHealthAPI) CheckSymptoms(_ context.Context, token string, check model.SymptomCheck) (model.SymptomResult, error) {
	m.calls++
	m.lastToken = token
	m.lastSymptoms = check
	return m.symptomResult, m.err
}

// memoryStore is an in-memory driven.TokenStore.
type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
	setErr error
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	return s.values[key], nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.sets++
	s.values[key] = value
	return nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

var _ driven.HealthAPI = (*mockHealthAPI)(nil)
var _ driven.TokenStore = (*memoryStore)(nil)
var _ driven.Notifier = (*recordingNotifier)(nil)

// --- Helpers ---

func newAuthService(api driven.HealthAPI, store driven.TokenStore) (*application.AuthService, *recordingNotifier, *bytes.Buffer) {
	notifier := &recordingNotifier{}
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return application.NewAuthService(api, store, notifier, logger), notifier, &logs
}

func tokenAPI(token string) *mockHealthAPI {
	return &mockHealthAPI{
		requestToken: func(_ context.Context, _ model.CredentialRequest) (model.TokenResponse, error) {
			return model.TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
		},
	}
}

func failingAPI(err error) *mockHealthAPI {
	return &mockHealthAPI{
		requestToken: func(_ context.Context, _ model.CredentialRequest) (model.TokenResponse, error) {
			return model.TokenResponse{}, err
		},
	}
}

// --- Tests ---

func TestLogin_Success(t *testing.T) {
	api := tokenAPI("abc123")
	store := newMemoryStore()
	svc, notifier, _ := newAuthService(api, store)

	state := svc.Login(context.Background(), "testuser", "testpassword")

	assert.Equal(t, model.LoginStateSuccess, state)
	assert.Equal(t, "abc123", store.values[model.TokenKey])
	assert.Equal(t, []string{"Login successful!"}, notifier.messages)
	require.Len(t, api.requests, 1)
	assert.Equal(t, model.CredentialRequest{Username: "testuser", Password: "testpassword"}, api.requests[0])
}

func TestLogin_RejectedWithDetail(t *testing.T) {
	api := failingAPI(&model.APIError{StatusCode: http.StatusUnauthorized, Detail: "Invalid credentials"})
	store := newMemoryStore()
	store.values[model.TokenKey] = "previous"
	svc, notifier, _ := newAuthService(api, store)

	state := svc.Login(context.Background(), "testuser", "wrong")

	assert.Equal(t, model.LoginStateRejected, state)
	assert.Equal(t, []string{"Error: Invalid credentials"}, notifier.messages)
	assert.Equal(t, "previous", store.values[model.TokenKey], "storage must be unchanged")
	assert.Zero(t, store.sets)
}

func TestLogin_RejectedWithoutDetail(t *testing.T) {
	api := failingAPI(&model.APIError{StatusCode: http.StatusInternalServerError})
	store := newMemoryStore()
	svc, notifier, _ := newAuthService(api, store)

	state := svc.Login(context.Background(), "testuser", "pw")

	assert.Equal(t, model.LoginStateRejectedUnknown, state)
	assert.Equal(t, []string{application.MsgLoginUnexpected}, notifier.messages)
	assert.Empty(t, store.values)
}

func TestLogin_TransportFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "network", err: fmt.Errorf("%w: POST /token: connection refused", driven.ErrTransport)},
		{name: "malformed 2xx body", err: fmt.Errorf("%w: decoding POST /token response: invalid character", driven.ErrTransport)},
		{name: "unclassified", err: errors.New("boom")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			api := failingAPI(tc.err)
			store := newMemoryStore()
			store.values[model.TokenKey] = "previous"
			svc, notifier, logs := newAuthService(api, store)

			state := svc.Login(context.Background(), "testuser", "pw")

			assert.Equal(t, model.LoginStateTransportError, state)
			assert.Equal(t, []string{application.MsgLoginTransport}, notifier.messages)
			assert.Equal(t, "previous", store.values[model.TokenKey])
			assert.Contains(t, logs.String(), `"level":"ERROR"`)
			assert.Contains(t, logs.String(), "login failed")
		})
	}
}

func TestLogin_StorageFailureIsReportedAsTransportError(t *testing.T) {
	api := tokenAPI("abc123")
	store := newMemoryStore()
	store.setErr = errors.New("disk full")
	svc, notifier, logs := newAuthService(api, store)

	state := svc.Login(context.Background(), "testuser", "pw")

	assert.Equal(t, model.LoginStateTransportError, state)
	assert.Equal(t, []string{application.MsgLoginTransport}, notifier.messages)
	assert.Contains(t, logs.String(), "disk full")
}

func TestLogin_SecondSuccessOverwrites(t *testing.T) {
	tokens := []string{"first", "second"}
	call := 0
	api := &mockHealthAPI{
		requestToken: func(_ context.Context, _ model.CredentialRequest) (model.TokenResponse, error) {
			tok := tokens[call]
			call++
			return model.TokenResponse{AccessToken: tok}, nil
		},
	}
	store := newMemoryStore()
	svc, notifier, _ := newAuthService(api, store)

	svc.Login(context.Background(), "testuser", "testpassword")
	svc.Login(context.Background(), "testuser", "testpassword")

	assert.Equal(t, "second", store.values[model.TokenKey])
	assert.Equal(t, []string{"Login successful!", "Login successful!"}, notifier.messages)
}

func TestLogin_ConcurrentLoginsAreIndependent(t *testing.T) {
	api := &mockHealthAPI{
		requestToken: func(_ context.Context, req model.CredentialRequest) (model.TokenResponse, error) {
			return model.TokenResponse{AccessToken: "tok-" + req.Username}, nil
		},
	}
	store := newMemoryStore()
	svc, notifier, _ := newAuthService(api, store)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Login(context.Background(), fmt.Sprintf("user%d", i), "pw")
		}()
	}
	wg.Wait()

	assert.Len(t, notifier.messages, 10)
	assert.Equal(t, 10, store.sets)
	assert.Regexp(t, `^tok-user\d$`, store.values[model.TokenKey])
}

func TestLoginState_Terminal(t *testing.T) {
	assert.False(t, model.LoginStateIdle.IsTerminal())
	assert.False(t, model.LoginStateRequesting.IsTerminal())
	for _, s := range []model.LoginState{
		model.LoginStateSuccess,
		model.LoginStateRejected,
		model.LoginStateRejectedUnknown,
		model.LoginStateTransportError,
	} {
		assert.True(t, s.IsTerminal(), s)
	}
}

// --- End-to-end against an httptest server ---

func newE2EService(t *testing.T, status int, body any) (*application.AuthService, *memoryStore, *recordingNotifier) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	client, err := healthapi.NewClientWithHTTPClient(server.Client(), server.URL)
	require.NoError(t, err)

	store := newMemoryStore()
	svc, notifier, _ := newAuthService(client, store)
	return svc, store, notifier
}

func TestLogin_EndToEndSuccess(t *testing.T) {
	svc, store, notifier := newE2EService(t, http.StatusOK, map[string]string{"access_token": "abc123"})

	state := svc.Login(context.Background(), "testuser", "testpassword")

	assert.Equal(t, model.LoginStateSuccess, state)
	assert.Equal(t, "abc123", store.values["token"])
	assert.Equal(t, []string{"Login successful!"}, notifier.messages)
}

func TestLogin_EndToEndInvalidCredentials(t *testing.T) {
	svc, store, notifier := newE2EService(t, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	store.values["token"] = "kept"

	state := svc.Login(context.Background(), "testuser", "testpassword")

	assert.Equal(t, model.LoginStateRejected, state)
	assert.Equal(t, []string{"Error: Invalid credentials"}, notifier.messages)
	assert.Equal(t, "kept", store.values["token"])
}

func TestLogin_EndToEndMissingAccessToken(t *testing.T) {
	svc, store, notifier := newE2EService(t, http.StatusOK, map[string]string{"token_type": "bearer"})

	state := svc.Login(context.Background(), "testuser", "testpassword")

	assert.Equal(t, model.LoginStateTransportError, state)
	assert.Equal(t, []string{application.MsgLoginTransport}, notifier.messages)
	assert.Empty(t, store.values)
}
