package transfer

import "github.com/golang-jwt/jwt/v5"

type CustomClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// NonceClaims binds a nonce to one action of one user.
type NonceClaims struct {
	Action string `json:"action"`
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type GoogleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type RoleUpdate struct {
	Role string `json:"role" validate:"required,oneof=administrator editor author subscriber"`
}

// NonceRequest names the action a nonce is issued for.
type NonceRequest struct {
	Action string `query:"action" validate:"required,oneof=post-to-queue ptq-reorder-nonce"`
}
