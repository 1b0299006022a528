package service

import (
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateCodeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestNewSecretProvisioningURI(t *testing.T) {
	t.Parallel()

	provider := NewTOTPProvider("PassVault Test")
	secret, uri, err := provider.NewSecret("alice@example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, secret)
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, "alice@example.com")
	assert.Contains(t, uri, "PassVault")

	// Fresh secrets every call.
	again, _, err := provider.NewSecret("alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, secret, again)
}

func TestValidateCodeWindow(t *testing.T) {
	t.Parallel()

	provider := NewTOTPProvider("PassVault Test")
	secret, _, err := provider.NewSecret("bob@example.com")
	require.NoError(t, err)

	// Step-aligned reference instant keeps the window arithmetic exact.
	at := time.Unix(1500000000, 0)
	code := generateCodeAt(t, secret, at)

	assert.True(t, provider.ValidateCodeAt(secret, code, at))
	assert.True(t, provider.ValidateCodeAt(secret, code, at.Add(-30*time.Second)))
	assert.True(t, provider.ValidateCodeAt(secret, code, at.Add(30*time.Second)))

	// Two or more steps away falls outside the accepted skew.
	assert.False(t, provider.ValidateCodeAt(secret, code, at.Add(-90*time.Second)))
	assert.False(t, provider.ValidateCodeAt(secret, code, at.Add(90*time.Second)))
}

func TestValidateCodeRejectsGarbage(t *testing.T) {
	t.Parallel()

	provider := NewTOTPProvider("PassVault Test")
	secret, _, err := provider.NewSecret("carol@example.com")
	require.NoError(t, err)

	at := time.Unix(1500000000, 0)
	assert.False(t, provider.ValidateCodeAt(secret, "", at))
	assert.False(t, provider.ValidateCodeAt(secret, "12345", at))
	assert.False(t, provider.ValidateCodeAt(secret, "abcdef", at))
	assert.False(t, provider.ValidateCodeAt("not-a-secret", "123456", at))
}
