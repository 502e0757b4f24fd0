package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// timestampLayout is the zone-free ISO 8601 form the records API compares
// against its own local clock.
const timestampLayout = "2006-01-02T15:04:05"

// Timestamp is a wall-clock time encoded without a zone offset. Decoding also
// accepts RFC 3339 values and fractional seconds.
type Timestamp struct {
	time.Time
}

// MarshalJSON encodes the wall-clock time in t's own location.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(timestampLayout))
}

// UnmarshalJSON decodes zone-free and RFC 3339 timestamps.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", timestampLayout} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", s)
}

// Doctor is an entry in the public doctor directory.
type Doctor struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// AppointmentRequest is the body posted to schedule an appointment. The date
// must be in the future; the server rejects it otherwise.
type AppointmentRequest struct {
	PatientID int64     `json:"patient_id"`
	DoctorID  int64     `json:"doctor_id"`
	Date      Timestamp `json:"date"`
	Reason    string    `json:"reason,omitempty"`
}

// Appointment is a scheduled visit as confirmed by the server.
type Appointment struct {
	PatientID  int64     `json:"patient_id"`
	DoctorID   int64     `json:"doctor_id"`
	Date       Timestamp `json:"date"`
	Reason     string    `json:"reason,omitempty"`
	DoctorName string    `json:"doctor_name"`
	Specialty  string    `json:"specialty"`
}

// AppointmentConfirmation wraps the scheduled appointment with the server's
// message.
type AppointmentConfirmation struct {
	Message     string      `json:"message"`
	Appointment Appointment `json:"appointment"`
}
