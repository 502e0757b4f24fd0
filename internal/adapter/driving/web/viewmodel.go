package web

import (
	"fmt"
	"time"

	vm "github.com/ericfisherdev/carepanel/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/carepanel/internal/domain/model"
)

// appointmentTimeLayout is how appointment dates are shown to users.
const appointmentTimeLayout = "Mon 2 Jan 2006, 15:04"

// toSessionViewModel converts the stored session into header data.
func toSessionViewModel(s model.Session, now time.Time) vm.SessionViewModel {
	out := vm.SessionViewModel{
		LoggedIn: s.LoggedIn,
		Subject:  s.Subject,
	}
	if s.ExpiresAt.IsZero() {
		return out
	}

	remaining := s.ExpiresAt.Sub(now)
	if remaining <= 0 {
		out.Expired = true
		return out
	}
	out.ExpiresIn = humanDuration(remaining)
	return out
}

func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "less than a minute"
	case d < time.Hour:
		return fmt.Sprintf("%d min", int(d.Minutes()))
	case d < 48*time.Hour:
		return fmt.Sprintf("%d h", int(d.Hours()))
	default:
		return fmt.Sprintf("%d days", int(d.Hours()/24))
	}
}

func toDoctorViewModels(doctors []model.Doctor) []vm.DoctorViewModel {
	out := make([]vm.DoctorViewModel, 0, len(doctors))
	for _, d := range doctors {
		out = append(out, vm.DoctorViewModel{ID: d.ID, Name: d.Name, Specialty: d.Specialty})
	}
	return out
}

func toMetricsViewModel(m model.HealthMetrics) vm.MetricsViewModel {
	return vm.MetricsViewModel{
		Sleep:       m.Sleep,
		Exercise:    m.Exercise,
		WaterIntake: m.WaterIntake,
		Sex:         m.Sex,
	}
}

func toAppointmentViewModel(c model.AppointmentConfirmation) vm.AppointmentViewModel {
	return vm.AppointmentViewModel{
		Message:    c.Message,
		DoctorName: c.Appointment.DoctorName,
		Specialty:  c.Appointment.Specialty,
		When:       c.Appointment.Date.Format(appointmentTimeLayout),
		ReasonHTML: RenderMarkdown(c.Appointment.Reason),
	}
}

func toSymptomResultViewModel(submitted []string, r model.SymptomResult) vm.SymptomResultViewModel {
	conditions := r.Conditions
	if conditions == nil {
		conditions = []string{}
	}
	return vm.SymptomResultViewModel{
		Submitted:  submitted,
		Conditions: conditions,
		Message:    r.Message,
	}
}
