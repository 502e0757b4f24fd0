package model

// TokenKey is the storage key under which the issued access token is kept.
const TokenKey = "token"

// CredentialRequest is the body posted to the token endpoint. It is built from
// caller input and discarded once the request completes.
type CredentialRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the success body returned by the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}
