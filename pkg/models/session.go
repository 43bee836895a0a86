package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the value handed back to a client after a successful login.
// There is no server-side session store: the signed token inside the
// cookie is the only durable record.
type Session struct {
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionClaims are the JWT claims embedded in the session cookie.
type SessionClaims struct {
	Type string `json:"type"` // always "session"
	jwt.RegisteredClaims
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthCheckResponse is returned by GET /api/auth/check.
type AuthCheckResponse struct {
	Authenticated bool `json:"authenticated"`
}
