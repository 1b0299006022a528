package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"passvault/internal/entity"
	"passvault/internal/service"
	"passvault/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type userStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newUserStore() *userStore {
	return &userStore{users: make(map[uuid.UUID]*entity.User)}
}

func (s *userStore) Create(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	s.users[user.ID] = user
	return nil
}

func (s *userStore) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id], nil
}

func (s *userStore) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, nil
}

func (s *userStore) Update(_ context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = user
	return nil
}

func (s *userStore) VerifyEmail(_ context.Context, userID uuid.UUID) error {
	return nil
}

func (s *userStore) SetTwoFactorSecret(_ context.Context, userID uuid.UUID, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.TwoFactorSecret = &secret
	}
	return nil
}

func (s *userStore) EnableTwoFactor(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok || user.IsTwoFactorEnabled || user.TwoFactorSecret == nil {
		return false, nil
	}
	user.IsTwoFactorEnabled = true
	return true, nil
}

func (s *userStore) DisableTwoFactor(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[userID]; ok {
		user.IsTwoFactorEnabled = false
		user.TwoFactorSecret = nil
	}
	return nil
}

func (s *userStore) List(_ context.Context, _, _ int) ([]entity.User, error) {
	return nil, nil
}

type codeStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*entity.BackupCode
}

func newCodeStore() *codeStore {
	return &codeStore{codes: make(map[uuid.UUID]*entity.BackupCode)}
}

func (s *codeStore) CreateBatch(_ context.Context, codes []*entity.BackupCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, code := range codes {
		if code.ID == uuid.Nil {
			code.ID = uuid.New()
		}
		s.codes[code.ID] = code
	}
	return nil
}

func (s *codeStore) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.BackupCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.BackupCode
	for _, code := range s.codes {
		if code.UserID == userID {
			out = append(out, *code)
		}
	}
	return out, nil
}

func (s *codeStore) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[id]
	if !ok || code.UsedAt != nil {
		return false, nil
	}
	code.UsedAt = &usedAt
	return true, nil
}

type oauthStore struct{}

func (oauthStore) Link(_ context.Context, _ *entity.OAuthAccount) error { return nil }

func (oauthStore) ExistsByUser(_ context.Context, _ uuid.UUID) (bool, error) { return false, nil }

type loginFixture struct {
	handler *AuthHandler
	echo    *echo.Echo
	users   *userStore
	totp    *service.TOTPProvider
	hasher  service.BcryptPasswordHasher
}

func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fx := &loginFixture{
		echo:   echo.New(),
		users:  newUserStore(),
		totp:   service.NewTOTPProvider("PassVault Test"),
		hasher: service.BcryptPasswordHasher{Cost: bcrypt.MinCost},
	}
	backupCodes := service.NewBackupCodeService(newCodeStore(), fx.hasher, service.RealClock{})
	authService := service.NewAuthService(
		fx.users,
		nil,
		nil,
		backupCodes,
		nil,
		fx.hasher,
		fx.totp,
		logger,
		service.RealClock{},
		service.AuthConfig{},
	)
	sessions := service.NewSessionService(fx.users, oauthStore{}, &utils.JWTManager{
		Secret:     []byte("handler-test-secret"),
		Issuer:     "passvault-test",
		SessionTTL: time.Hour,
	})
	fx.handler = NewAuthHandler(authService, sessions, validator.New())
	return fx
}

func (fx *loginFixture) seedUser(t *testing.T, email, password string, twoFactor bool) *entity.User {
	t.Helper()

	hash, err := fx.hasher.Hash(password)
	require.NoError(t, err)
	user := &entity.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: &hash,
		Role:         entity.UserRoleUser,
	}
	if twoFactor {
		secret, _, err := fx.totp.NewSecret(email)
		require.NoError(t, err)
		user.TwoFactorSecret = &secret
		user.IsTwoFactorEnabled = true
	}
	require.NoError(t, fx.users.Create(context.Background(), user))
	return user
}

func (fx *loginFixture) do(t *testing.T, h echo.HandlerFunc, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
	recorder := httptest.NewRecorder()
	require.NoError(t, h(fx.echo.NewContext(request, recorder)))
	return recorder
}

func TestLoginRejectionsAreUniform(t *testing.T) {
	t.Parallel()

	fx := newLoginFixture(t)
	fx.seedUser(t, "alice@example.com", "correct horse", false)

	unknown := fx.do(t, fx.handler.Login, `{"email":"nobody@example.com","password":"correct horse"}`, nil)
	wrongPassword := fx.do(t, fx.handler.Login, `{"email":"alice@example.com","password":"wrong"}`, nil)
	malformed := fx.do(t, fx.handler.Login, `{"email":`, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, malformed.Code)

	// One body for every rejection; nothing to distinguish the causes.
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
	assert.Equal(t, unknown.Body.String(), malformed.Body.String())
	assert.Empty(t, unknown.Result().Cookies())
}

func TestLoginSignalsPendingTwoFactor(t *testing.T) {
	t.Parallel()

	fx := newLoginFixture(t)
	fx.seedUser(t, "carol@example.com", "pass phrase", true)

	recorder := fx.do(t, fx.handler.Login, `{"email":"carol@example.com","password":"pass phrase"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, true, body["two_factor"])
	assert.NotContains(t, body, "token")
	assert.Empty(t, recorder.Result().Cookies())
}

func TestLoginIssuesSession(t *testing.T) {
	t.Parallel()

	fx := newLoginFixture(t)
	fx.seedUser(t, "dave@example.com", "pass phrase", false)

	recorder := fx.do(t, fx.handler.Login, `{"email":"dave@example.com","password":"pass phrase"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)
	assert.Greater(t, body.ExpiresIn, int64(0))

	var sessionCookie *http.Cookie
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == fx.handler.SessionCookieName {
			sessionCookie = cookie
		}
	}
	require.NotNil(t, sessionCookie)
	assert.Equal(t, body.Token, sessionCookie.Value)
	assert.True(t, sessionCookie.HttpOnly)

	// The minted token introspects as valid.
	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer "+body.Token)
	introspect := fx.do(t, fx.handler.IntrospectSession, "", header)
	require.Equal(t, http.StatusOK, introspect.Code)

	var view struct {
		Valid bool `json:"valid"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(introspect.Body.Bytes(), &view))
	assert.True(t, view.Valid)
	assert.Equal(t, "dave@example.com", view.User.Email)
}

func TestLoginWithTOTPCode(t *testing.T) {
	t.Parallel()

	fx := newLoginFixture(t)
	user := fx.seedUser(t, "erin@example.com", "pass phrase", true)

	code, err := totp.GenerateCode(*user.TwoFactorSecret, time.Now())
	require.NoError(t, err)

	recorder := fx.do(t, fx.handler.Login,
		`{"email":"erin@example.com","password":"pass phrase","two_factor_code":"`+code+`"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "token")
}

func TestIntrospectRejectsMissingOrGarbageToken(t *testing.T) {
	t.Parallel()

	fx := newLoginFixture(t)

	recorder := fx.do(t, fx.handler.IntrospectSession, "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"valid":false`)

	header := http.Header{}
	header.Set(echo.HeaderAuthorization, "Bearer garbage")
	recorder = fx.do(t, fx.handler.IntrospectSession, "", header)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
