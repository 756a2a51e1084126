package dto

// Credentials is the login payload consumed by the local strategy.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthTokenResponse struct {
	AuthToken string `json:"authToken"`
}

type ProtectedResponse struct {
	Data string `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
