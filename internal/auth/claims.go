package auth

import (
	"time"

	"github.com/elewand/elewand-server/internal/domain"
)

// AccessClaims are the claims sealed inside a v4.local access token.
// Role is a hint only: the API re-reads the user on every request.
type AccessClaims struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
