package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type JWTManager struct {
	Secret     []byte
	Issuer     string
	SessionTTL time.Duration
	Now        func() time.Time
}

// SessionClaims is the full trust snapshot carried by a session token.
// Everything except the subject is recomputed from the user record at
// issue/refresh time and never taken from the client.
type SessionClaims struct {
	Role             string `json:"role"`
	TwoFactorEnabled bool   `json:"tfa"`
	OAuth            bool   `json:"oauth"`
	Name             string `json:"name,omitempty"`
	Email            string `json:"email"`
	jwt.RegisteredClaims
}

func (m JWTManager) IssueSessionToken(subject string, claims SessionClaims) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.sessionTTL())
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    m.Issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m JWTManager) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m JWTManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m JWTManager) sessionTTL() time.Duration {
	if m.SessionTTL > 0 {
		return m.SessionTTL
	}
	return time.Hour
}
