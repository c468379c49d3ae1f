package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/legalbot/jai/internal/config"
	"github.com/legalbot/jai/internal/models"
)

// ErrInvalidToken is returned for expired, tampered, or malformed session tokens.
var ErrInvalidToken = errors.New("invalid session token")

// Claims is the verified session identity extracted from a cookie token.
// SessionID keys the conversation history for one login.
type Claims struct {
	Username  string
	Name      string
	SessionID string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 session tokens. Sessions are
// stateless server-side; the cookie is the session.
type TokenIssuer struct {
	cookieName string
	key        []byte
	expiry     time.Duration
}

// NewTokenIssuer creates a token issuer from auth config.
func NewTokenIssuer(cfg *config.AuthConfig) *TokenIssuer {
	return &TokenIssuer{
		cookieName: cfg.CookieName,
		key:        []byte(cfg.CookieKey),
		expiry:     time.Duration(cfg.ExpiryDays) * 24 * time.Hour,
	}
}

// CookieName returns the configured session cookie name.
func (t *TokenIssuer) CookieName() string {
	return t.cookieName
}

// Expiry returns the configured session lifetime.
func (t *TokenIssuer) Expiry() time.Duration {
	return t.expiry
}

// Issue signs a session token for the user. Each call mints a fresh session ID.
func (t *TokenIssuer) Issue(u *models.User) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		Username:  u.Username,
		Name:      u.Name,
		SessionID: uuid.New().String(),
		ExpiresAt: now.Add(t.expiry),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  claims.Username,
		"name": claims.Name,
		"jti":  claims.SessionID,
		"iat":  now.Unix(),
		"exp":  claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString(t.key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, claims, nil
}

// Verify parses and validates a session token, including its expiry.
func (t *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	username, _ := mapClaims["sub"].(string)
	name, _ := mapClaims["name"].(string)
	sessionID, _ := mapClaims["jti"].(string)
	if username == "" || sessionID == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{Username: username, Name: name, SessionID: sessionID}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims, nil
}
