package model

// Registration is the body posted to the register endpoint.
type Registration struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Role     UserRole `json:"role"`
}

// User is an account as returned by the records API. The password hash never
// leaves the server.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}
