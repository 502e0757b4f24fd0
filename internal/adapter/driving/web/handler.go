// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/carepanel/internal/adapter/driven/notify"
	"github.com/ericfisherdev/carepanel/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/carepanel/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/carepanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/carepanel/internal/application"
	"github.com/ericfisherdev/carepanel/internal/domain/model"
	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// formDateLayout is the value format of a datetime-local input.
const formDateLayout = "2006-01-02T15:04"

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	authSvc    *application.AuthService
	patientSvc *application.PatientService
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler creates a Handler with all required dependencies. authSvc must
// have been built with a notify.Flash notifier so login messages reach the page.
func NewHandler(authSvc *application.AuthService, patientSvc *application.PatientService, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:    authSvc,
		patientSvc: patientSvc,
		logger:     logger,
		now:        time.Now,
	}
}

// LoginForm renders the login page.
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r, "Log in", nil)
	h.render(w, r, http.StatusOK, page, pages.Login(page.CSRFToken, ""))
}

// Login handles the login form post. The notification raised by the login is
// shown above the form.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}
	username := r.PostFormValue("username")

	ctx, flashes := notify.WithFlashes(r.Context())
	state := h.authSvc.Login(ctx, username, r.PostFormValue("password"))

	var out []vm.FlashViewModel
	for _, msg := range flashes.Messages() {
		out = append(out, vm.FlashViewModel{Message: msg, Error: state != model.LoginStateSuccess})
	}

	status := http.StatusOK
	switch state {
	case model.LoginStateSuccess:
		username = ""
	case model.LoginStateRejected, model.LoginStateRejectedUnknown:
		status = http.StatusUnauthorized
	default:
		status = http.StatusBadGateway
	}

	page := h.page(w, r, "Log in", out)
	h.render(w, r, status, page, pages.Login(page.CSRFToken, username))
}

// Doctors renders the doctor directory.
func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.patientSvc.Doctors(r.Context())
	if err != nil {
		h.fail(w, r, "Doctors", err)
		return
	}
	h.render(w, r, http.StatusOK, h.page(w, r, "Doctors", nil), pages.Doctors(toDoctorViewModels(doctors)))
}

// Dashboard renders the logged-in user's health metrics.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.patientSvc.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, "Dashboard", err)
		return
	}
	page := h.page(w, r, "Dashboard", nil)
	h.render(w, r, http.StatusOK, page, pages.Dashboard(page.CSRFToken, toMetricsViewModel(metrics)))
}

// UpdateDashboard handles the metrics form post.
func (h *Handler) UpdateDashboard(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}

	metrics := model.HealthMetrics{Sex: strings.TrimSpace(r.PostFormValue("sex"))}
	fields := []struct {
		name string
		dst  *int
	}{
		{"sleep", &metrics.Sleep},
		{"exercise", &metrics.Exercise},
		{"waterIntake", &metrics.WaterIntake},
	}
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue(f.name)))
		if err != nil {
			h.fail(w, r, "Dashboard", invalidField(f.name))
			return
		}
		*f.dst = v
	}

	stored, err := h.patientSvc.UpdateDashboard(r.Context(), metrics)
	if err != nil {
		h.fail(w, r, "Dashboard", err)
		return
	}

	page := h.page(w, r, "Dashboard", []vm.FlashViewModel{{Message: "Dashboard updated."}})
	h.render(w, r, http.StatusOK, page, pages.Dashboard(page.CSRFToken, toMetricsViewModel(stored)))
}

// AppointmentForm renders the booking form.
func (h *Handler) AppointmentForm(w http.ResponseWriter, r *http.Request) {
	h.appointments(w, r, http.StatusOK, nil, nil)
}

// BookAppointment handles the booking form post.
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}

	patientID, err := strconv.ParseInt(r.PostFormValue("patient_id"), 10, 64)
	if err != nil {
		h.fail(w, r, "Appointments", invalidField("patient_id"))
		return
	}
	doctorID, err := strconv.ParseInt(r.PostFormValue("doctor_id"), 10, 64)
	if err != nil {
		h.fail(w, r, "Appointments", invalidField("doctor_id"))
		return
	}
	date, err := time.ParseInLocation(formDateLayout, r.PostFormValue("date"), time.Local)
	if err != nil {
		h.fail(w, r, "Appointments", invalidField("date"))
		return
	}

	conf, err := h.patientSvc.BookAppointment(r.Context(), model.AppointmentRequest{
		PatientID: patientID,
		DoctorID:  doctorID,
		Date:      model.Timestamp{Time: date},
		Reason:    strings.TrimSpace(r.PostFormValue("reason")),
	})
	if err != nil {
		h.fail(w, r, "Appointments", err)
		return
	}

	booked := toAppointmentViewModel(conf)
	h.appointments(w, r, http.StatusOK, nil, &booked)
}

func (h *Handler) appointments(w http.ResponseWriter, r *http.Request, status int, flashes []vm.FlashViewModel, booked *vm.AppointmentViewModel) {
	doctors, err := h.patientSvc.Doctors(r.Context())
	if err != nil {
		h.fail(w, r, "Appointments", err)
		return
	}
	page := h.page(w, r, "Appointments", flashes)
	h.render(w, r, status, page, pages.Appointments(page.CSRFToken, toDoctorViewModels(doctors), booked))
}

// SymptomForm renders the symptom checker.
func (h *Handler) SymptomForm(w http.ResponseWriter, r *http.Request) {
	page := h.page(w, r, "Symptom checker", nil)
	h.render(w, r, http.StatusOK, page, pages.Symptoms(page.CSRFToken, nil))
}

// CheckSymptoms handles the symptom checker form post.
func (h *Handler) CheckSymptoms(w http.ResponseWriter, r *http.Request) {
	if !h.checkForm(w, r) {
		return
	}

	symptoms := strings.Split(r.PostFormValue("symptoms"), ",")
	result, err := h.patientSvc.CheckSymptoms(r.Context(), symptoms)
	if err != nil {
		h.fail(w, r, "Symptom checker", err)
		return
	}

	var submitted []string
	for _, s := range symptoms {
		if s = strings.TrimSpace(s); s != "" {
			submitted = append(submitted, s)
		}
	}
	view := toSymptomResultViewModel(submitted, result)
	page := h.page(w, r, "Symptom checker", nil)
	h.render(w, r, http.StatusOK, page, pages.Symptoms(page.CSRFToken, &view))
}

// checkForm parses the posted form and enforces CSRF. It writes the error
// response itself and returns false when the request must not proceed.
func (h *Handler) checkForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		h.logger.Warn("csrf validation failed", "path", r.URL.Path)
		http.Error(w, "invalid CSRF token", http.StatusForbidden)
		return false
	}
	return true
}

// page assembles the shared page chrome.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title string, flashes []vm.FlashViewModel) vm.PageViewModel {
	session, err := h.patientSvc.Session(r.Context())
	if err != nil {
		h.logger.Error("failed to read session", "error", err)
	}
	return vm.PageViewModel{
		Title:     title,
		CSRFToken: csrfToken(w, r),
		Session:   toSessionViewModel(session, h.now()),
		Flashes:   flashes,
	}
}

// fail renders an error page for err. A missing login shows the login form.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, title string, err error) {
	status, message := classifyError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}

	flashes := []vm.FlashViewModel{{Message: message, Error: true}}
	if errors.Is(err, application.ErrNotLoggedIn) {
		page := h.page(w, r, "Log in", flashes)
		h.render(w, r, status, page, pages.Login(page.CSRFToken, ""))
		return
	}
	h.render(w, r, status, h.page(w, r, title, flashes), templ.NopComponent)
}

// classifyError maps an error to an HTTP status and a user-facing message,
// following the same wording rules as login.
func classifyError(err error) (int, string) {
	var apiErr *model.APIError
	switch {
	case errors.Is(err, application.ErrNotLoggedIn):
		return http.StatusUnauthorized, "Please log in first."
	case errors.Is(err, application.ErrInvalidInput):
		return http.StatusBadRequest, "Error: " + strings.TrimPrefix(err.Error(), application.ErrInvalidInput.Error()+": ")
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		if apiErr.HasDetail() {
			return status, "Error: " + apiErr.Detail
		}
		return status, application.MsgLoginUnexpected
	case errors.Is(err, driven.ErrTransport):
		return http.StatusBadGateway, "Could not reach the records service. Please try again."
	default:
		return http.StatusInternalServerError, "Something went wrong. Please try again."
	}
}

func invalidField(name string) error {
	return fmt.Errorf("%w: %s is not valid", application.ErrInvalidInput, name)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page vm.PageViewModel, body templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(page, body).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render page", "title", page.Title, "error", err)
	}
}
