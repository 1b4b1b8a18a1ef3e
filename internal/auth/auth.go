package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents JWT token claims. The subject is the goal owner.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenValidator is what the HTTP layer needs to authenticate a request.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type TokenGenerator interface {
	TokenValidator
	GenerateAccessToken(userID string) (string, time.Time, error)
}

type JWTTokenGenerator struct {
	AccessTokenSecret []byte
	AccessTokenTTL    time.Duration
	Issuer            string
	now               func() time.Time
}

type AuthTokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}
