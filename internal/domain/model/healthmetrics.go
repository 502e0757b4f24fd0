package model

// HealthMetrics is the per-user dashboard record. Sleep and Exercise are in
// hours, WaterIntake in glasses.
type HealthMetrics struct {
	Sleep       int    `json:"sleep"`
	Exercise    int    `json:"exercise"`
	WaterIntake int    `json:"waterIntake"`
	Sex         string `json:"sex,omitempty"`
}
