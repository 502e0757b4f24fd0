package model

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the records API. Detail holds the
// human-readable "detail" field when the server supplied one.
type APIError struct {
	StatusCode int
	Detail     string
}

// HasDetail reports whether the server included a non-empty detail message.
func (e *APIError) HasDetail() bool {
	return e.Detail != ""
}

func (e *APIError) Error() string {
	if e.HasDetail() {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}
