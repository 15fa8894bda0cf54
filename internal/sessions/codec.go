package sessions

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieCodec seals session IDs into signed tokens for transport in the
// session cookie and opens them back, rejecting anything with a bad
// signature.
type CookieCodec struct {
	secret string
	ttl    time.Duration
}

// NewCookieCodec creates a codec with the given signing secret and token
// lifetime. The secret is injected at startup; there is no package-level
// signing state.
func NewCookieCodec(secret string, ttl time.Duration) *CookieCodec {
	return &CookieCodec{
		secret: secret,
		ttl:    ttl,
	}
}

// Seal signs the session ID into a compact token
func (c *CookieCodec) Seal(sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sid":  sessionID,
		"exp":  time.Now().Add(c.ttl).Unix(),
		"iat":  time.Now().Unix(),
		"type": "session",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(c.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, nil
}

// Open verifies the token signature and returns the session ID it wraps
func (c *CookieCodec) Open(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.secret), nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}

	if !token.Valid {
		return "", fmt.Errorf("session token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid session token claims")
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "session" {
		return "", fmt.Errorf("token is not a session token")
	}

	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", fmt.Errorf("sid not found in token")
	}

	return sessionID, nil
}
