package api

import "time"

// TokenRequest asks the dev auth endpoint to mint a bearer token.
type TokenRequest struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// TokenResponse carries a minted bearer token and its expiry.
type TokenResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token"`
}

// Dev identity headers accepted when token minting is unavailable.
const (
	HeaderDevUserID = "X-Dev-User-Id"
	HeaderDevRole   = "X-Dev-Role"
)
