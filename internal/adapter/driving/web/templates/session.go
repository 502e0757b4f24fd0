package templates

import vm "github.com/ericfisherdev/carepanel/internal/adapter/driving/web/viewmodel"

// SessionText describes the stored login for the page header.
func SessionText(s vm.SessionViewModel) string {
	switch {
	case !s.LoggedIn:
		return "Not logged in"
	case s.Expired:
		return "Session expired"
	case s.Subject != "" && s.ExpiresIn != "":
		return "Signed in as " + s.Subject + " (expires in " + s.ExpiresIn + ")"
	case s.Subject != "":
		return "Signed in as " + s.Subject
	default:
		return "Signed in"
	}
}
