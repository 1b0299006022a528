package service

import (
	"context"
	"time"

	"passvault/internal/entity"
	"passvault/internal/repository"
	"passvault/internal/utils"

	"github.com/google/uuid"
)

// SessionView is the presentable, point-in-time snapshot of a session's
// claims, re-derived from the user record rather than trusted from a token.
type SessionView struct {
	UserID           uuid.UUID
	Email            string
	Name             string
	Role             entity.UserRole
	TwoFactorEnabled bool
	OAuth            bool
}

type Introspection struct {
	Valid     bool
	Claims    *utils.SessionClaims
	ExpiresAt time.Time
}

// SessionService mints signed session tokens and re-derives claims from the
// store. The token is the only session state; there is no revocation list,
// a session ends by expiry or by the client discarding the token.
type SessionService struct {
	users         repository.UserRepository
	oauthAccounts repository.OAuthAccountRepository
	tokens        *utils.JWTManager
}

func NewSessionService(
	users repository.UserRepository,
	oauthAccounts repository.OAuthAccountRepository,
	tokens *utils.JWTManager,
) *SessionService {
	return &SessionService{users: users, oauthAccounts: oauthAccounts, tokens: tokens}
}

// Issue derives claims fresh from the user record and signs them. Only the
// subject identifier comes from the caller's authorization result.
func (s *SessionService) Issue(ctx context.Context, user *entity.User) (string, time.Time, error) {
	isOAuth, err := s.oauthAccounts.ExistsByUser(ctx, user.ID)
	if err != nil {
		return "", time.Time{}, err
	}
	claims := utils.SessionClaims{
		Role:             string(user.Role),
		TwoFactorEnabled: user.IsTwoFactorEnabled,
		OAuth:            isOAuth,
		Name:             user.Name,
		Email:            user.Email,
	}
	return s.tokens.IssueSessionToken(user.ID.String(), claims)
}

// RefreshClaims recomputes the trust facts for a subject from the current
// user record, so role changes and 2FA toggles take effect on the next
// refresh without a logout.
func (s *SessionService) RefreshClaims(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	isOAuth, err := s.oauthAccounts.ExistsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &SessionView{
		UserID:           user.ID,
		Email:            user.Email,
		Name:             user.Name,
		Role:             user.Role,
		TwoFactorEnabled: user.IsTwoFactorEnabled,
		OAuth:            isOAuth,
	}, nil
}

// Renew exchanges a still-valid token for a new one with refreshed claims.
func (s *SessionService) Renew(ctx context.Context, token string) (string, time.Time, error) {
	introspection := s.Introspect(token)
	if !introspection.Valid {
		return "", time.Time{}, ErrInvalidToken
	}
	userID, err := uuid.Parse(introspection.Claims.Subject)
	if err != nil {
		return "", time.Time{}, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", time.Time{}, err
	}
	if user == nil {
		return "", time.Time{}, ErrUserNotFound
	}
	return s.Issue(ctx, user)
}

// Introspect is a pure read: structural validity, signature, expiry.
func (s *SessionService) Introspect(token string) Introspection {
	claims, err := s.tokens.ParseSessionToken(token)
	if err != nil {
		return Introspection{Valid: false}
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return Introspection{Valid: true, Claims: claims, ExpiresAt: expiresAt}
}
