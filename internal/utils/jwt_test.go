package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	manager := JWTManager{
		Secret:     []byte("unit-test-secret"),
		Issuer:     "passvault-test",
		SessionTTL: time.Hour,
	}

	token, expiresAt, err := manager.IssueSessionToken("subject-1", SessionClaims{
		Role:             "admin",
		TwoFactorEnabled: true,
		OAuth:            true,
		Name:             "Admin",
		Email:            "admin@example.com",
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := manager.ParseSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "subject-1", claims.Subject)
	assert.Equal(t, "passvault-test", claims.Issuer)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, claims.TwoFactorEnabled)
	assert.True(t, claims.OAuth)
	assert.Equal(t, "admin@example.com", claims.Email)
}

func TestSessionTokenExpiryBoundary(t *testing.T) {
	t.Parallel()

	current := time.Now()
	manager := JWTManager{
		Secret:     []byte("unit-test-secret"),
		SessionTTL: time.Hour,
		Now:        func() time.Time { return current },
	}

	token, _, err := manager.IssueSessionToken("subject-1", SessionClaims{Role: "user"})
	require.NoError(t, err)

	current = current.Add(59 * time.Minute)
	_, err = manager.ParseSessionToken(token)
	assert.NoError(t, err)

	current = current.Add(2 * time.Minute)
	_, err = manager.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionTokenRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := JWTManager{Secret: []byte("secret-a"), SessionTTL: time.Hour}
	verifier := JWTManager{Secret: []byte("secret-b"), SessionTTL: time.Hour}

	token, _, err := issuer.IssueSessionToken("subject-1", SessionClaims{Role: "user"})
	require.NoError(t, err)

	_, err = verifier.ParseSessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = verifier.ParseSessionToken("definitely not a token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
