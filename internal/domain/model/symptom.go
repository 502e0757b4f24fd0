package model

// SymptomCheck is the body posted to the symptom checker.
type SymptomCheck struct {
	Symptoms []string `json:"symptoms"`
}

// SymptomResult is the checker's answer. When nothing matched, Conditions is
// empty and Message explains why.
type SymptomResult struct {
	Conditions []string `json:"matched_conditions,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// HasMatches reports whether any condition matched the submitted symptoms.
func (r SymptomResult) HasMatches() bool {
	return len(r.Conditions) > 0
}
