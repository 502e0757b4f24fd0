package model

import "time"

// Session describes the stored access token as far as the client can tell
// without the signing secret. The claims are not verified.
type Session struct {
	LoggedIn  bool
	Subject   string
	ExpiresAt time.Time // Zero when the token carries no exp claim.
}
