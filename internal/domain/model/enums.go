package model

// LoginState is the position of a single login invocation in its lifecycle.
// A login moves Idle -> Requesting -> one terminal state and never loops back.
type LoginState string

const (
	LoginStateIdle            LoginState = "idle"
	LoginStateRequesting      LoginState = "requesting"
	LoginStateSuccess         LoginState = "success"          // Token issued and stored.
	LoginStateRejected        LoginState = "rejected"         // Non-2xx with a detail message.
	LoginStateRejectedUnknown LoginState = "rejected_unknown" // Non-2xx without a detail message.
	LoginStateTransportError  LoginState = "transport_error"  // Network, decode, or storage failure.
)

// IsTerminal reports whether s ends a login invocation.
func (s LoginState) IsTerminal() bool {
	switch s {
	case LoginStateSuccess, LoginStateRejected, LoginStateRejectedUnknown, LoginStateTransportError:
		return true
	default:
		return false
	}
}

// UserRole is the role a user registers with on the records API.
type UserRole string

const (
	UserRolePatient UserRole = "patient"
	UserRoleDoctor  UserRole = "doctor"
	UserRoleAdmin   UserRole = "admin"
)
