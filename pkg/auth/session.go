package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"blog-admin-backend/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "blog_session"

// sessionDuration is the fixed session lifetime. There is no refresh
// and no revocation: a session lives until this expiry or until the
// cookie is cleared.
const sessionDuration = 24 * time.Hour

// ErrInvalidPassword is returned when the supplied password does not
// match the configured admin password.
var ErrInvalidPassword = errors.New("invalid password")

// ErrNotConfigured is returned when no admin password is configured;
// every login fails closed in that state.
var ErrNotConfigured = errors.New("ADMIN_PASSWORD is not configured")

// Service gates every CMS-touching operation behind a single
// shared-secret check. Sessions are HS256-signed tokens carried in an
// HttpOnly cookie; the cookie itself is the only session record.
type Service struct {
	adminPassword string
	secretKey     []byte
	ttl           time.Duration
	secureCookies bool
}

// NewService creates a session service. secureCookies should be true in
// production so the cookie is only sent over HTTPS.
func NewService(adminPassword, secret string, secureCookies bool) *Service {
	return &Service{
		adminPassword: adminPassword,
		secretKey:     []byte(secret),
		ttl:           sessionDuration,
		secureCookies: secureCookies,
	}
}

// CreateSession compares password against the configured admin password
// and, on match, returns a session with a signed token expiring 24
// hours out.
func (s *Service) CreateSession(password string) (*models.Session, error) {
	if s.adminPassword == "" {
		return nil, ErrNotConfigured
	}
	if password != s.adminPassword {
		return nil, ErrInvalidPassword
	}

	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := &models.SessionClaims{
		Type: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &models.Session{Token: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies a session token. Expired or
// malformed tokens fail verification; jwt/v5 checks exp during parse.
func (s *Service) ValidateToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if claims.Type != "session" {
		return nil, fmt.Errorf("invalid token type: %s", claims.Type)
	}

	return claims, nil
}

// IsAuthenticated reports whether the request carries a valid, unexpired
// session cookie. A missing or malformed cookie is treated as not
// authenticated, never as an error.
func (s *Service) IsAuthenticated(r *http.Request) bool {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	_, err = s.ValidateToken(cookie.Value)
	return err == nil
}

// SetCookie writes the session cookie for a freshly created session.
func (s *Service) SetCookie(w http.ResponseWriter, session *models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the session cookie.
func (s *Service) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
