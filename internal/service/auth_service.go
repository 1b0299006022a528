package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"passvault/internal/entity"
	"passvault/internal/repository"
	"passvault/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Burned on lookups that find no credential account, so that path costs the
// same as a wrong password and stays indistinguishable from the outside.
const dummyPasswordHash = "$2a$10$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

type AuthService struct {
	users         repository.UserRepository
	verifications repository.VerificationTokenRepository
	securityLogs  repository.SecurityLogRepository

	backupCodes  *BackupCodeService
	emailSender  EmailSender
	passwordHash PasswordHasher
	twoFactor    TwoFactorProvider
	logger       logrus.FieldLogger
	clock        Clock
	config       AuthConfig
}

func NewAuthService(
	users repository.UserRepository,
	verifications repository.VerificationTokenRepository,
	securityLogs repository.SecurityLogRepository,
	backupCodes *BackupCodeService,
	emailSender EmailSender,
	passwordHash PasswordHasher,
	twoFactor TwoFactorProvider,
	logger logrus.FieldLogger,
	clock Clock,
	config AuthConfig,
) *AuthService {
	return &AuthService{
		users:         users,
		verifications: verifications,
		securityLogs:  securityLogs,
		backupCodes:   backupCodes,
		emailSender:   emailSender,
		passwordHash:  passwordHash,
		twoFactor:     twoFactor,
		logger:        logger,
		clock:         clock,
		config:        config,
	}
}

// Authorize runs the full credential check: password first, then a TOTP or
// backup-code branch when two-factor is enabled. Every failure, including
// internal ones, collapses to a plain rejection; internal causes are logged
// for operators but never surfaced to the caller.
func (s *AuthService) Authorize(ctx context.Context, input AuthorizeInput, ipAddress *string) Outcome {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return rejected()
	}

	email := utils.NormalizeEmail(input.Email)
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		s.logError(err, "authorize: user lookup failed")
		return rejected()
	}
	if user == nil || user.PasswordHash == nil {
		_ = s.passwordHash.Verify(dummyPasswordHash, input.Password)
		s.logSecurity(ctx, nil, ipAddress, entity.LoginFailed, map[string]any{"email": email})
		return rejected()
	}

	if !s.passwordHash.Verify(*user.PasswordHash, input.Password) {
		s.logSecurity(ctx, &user.ID, ipAddress, entity.LoginFailed, map[string]any{"email": email})
		return rejected()
	}

	if !user.IsTwoFactorEnabled {
		s.logSecurity(ctx, &user.ID, ipAddress, entity.LoginSuccess, nil)
		return authorized(user)
	}

	totpCode := strings.TrimSpace(input.TwoFactorCode)
	backupCode := strings.TrimSpace(input.BackupCode)
	if totpCode == "" && backupCode == "" {
		// Not an error: the caller re-invokes with a second factor. No side
		// effects, so repeated first-factor-only submissions are idempotent.
		return pendingTwoFactor(user)
	}

	if totpCode != "" {
		if user.TwoFactorSecret == nil {
			s.logError(nil, "authorize: two-factor enabled without a secret")
			return rejected()
		}
		if !s.twoFactor.ValidateCode(*user.TwoFactorSecret, totpCode) {
			s.logSecurity(ctx, &user.ID, ipAddress, entity.TwoFactorFailed, nil)
			return rejected()
		}
		s.logSecurity(ctx, &user.ID, ipAddress, entity.LoginSuccess, map[string]any{"mfa": "totp"})
		return authorized(user)
	}

	result, err := s.backupCodes.Redeem(ctx, user.ID, backupCode)
	if err != nil {
		s.logError(err, "authorize: backup code redemption failed")
		return rejected()
	}
	if result != RedeemSuccess {
		s.logSecurity(ctx, &user.ID, ipAddress, entity.BackupCodeFailed, nil)
		return rejected()
	}
	s.logSecurity(ctx, &user.ID, ipAddress, entity.BackupCodeUsed, nil)
	return authorized(user)
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return ErrInvalidInput
	}

	email := utils.NormalizeEmail(input.Email)
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrEmailAlreadyRegistered
	}

	hash, err := s.passwordHash.Hash(input.Password)
	if err != nil {
		return err
	}

	user := &entity.User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: &hash,
		Role:         entity.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.sendVerificationEmail(ctx, user)
	return nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidInput
	}
	verification, err := s.verifications.FindValid(ctx, utils.HashToken(token), entity.EmailVerify)
	if err != nil {
		return err
	}
	if verification == nil {
		return ErrInvalidToken
	}
	if err := s.users.VerifyEmail(ctx, verification.UserID); err != nil {
		return err
	}
	return s.verifications.MarkUsed(ctx, verification.ID)
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrInvalidInput
	}
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user == nil || user.PasswordHash == nil {
		// Silent on unknown or OAuth-only accounts.
		return nil
	}

	token, err := s.createVerificationToken(ctx, user.ID, entity.PasswordReset, s.resetTokenTTL())
	if err != nil {
		return err
	}
	if s.emailSender != nil {
		if err := s.emailSender.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
			s.logError(err, "password reset email failed")
		}
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(newPassword) == "" {
		return ErrInvalidInput
	}

	verification, err := s.verifications.FindValid(ctx, utils.HashToken(token), entity.PasswordReset)
	if err != nil {
		return err
	}
	if verification == nil {
		return ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, verification.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	hash, err := s.passwordHash.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = &hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.verifications.MarkUsed(ctx, verification.ID); err != nil {
		return err
	}

	s.logSecurity(ctx, &user.ID, nil, entity.PasswordWasReset, nil)
	return nil
}

// SetupTwoFactor generates a pending secret and its provisioning URI. The
// flag stays off until the first code is verified.
func (s *AuthService) SetupTwoFactor(ctx context.Context, userID uuid.UUID) (*TwoFactorSetup, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsTwoFactorEnabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}

	secret, otpauthURL, err := s.twoFactor.NewSecret(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetTwoFactorSecret(ctx, userID, secret); err != nil {
		return nil, err
	}
	return &TwoFactorSetup{Secret: secret, OtpauthURL: otpauthURL}, nil
}

// ConfirmTwoFactor validates the first code against the pending secret,
// flips the flag, and hands back the one-time batch of backup codes.
func (s *AuthService) ConfirmTwoFactor(ctx context.Context, userID uuid.UUID, code string) ([]string, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrInvalidInput
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.TwoFactorSecret == nil {
		return nil, ErrTwoFactorNotConfigured
	}
	if !s.twoFactor.ValidateCode(*user.TwoFactorSecret, strings.TrimSpace(code)) {
		return nil, ErrInvalidTwoFactorCode
	}

	enabled, err := s.users.EnableTwoFactor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return nil, ErrTwoFactorAlreadyEnabled
	}
	return s.backupCodes.Issue(ctx, userID)
}

// DisableTwoFactor clears the flag and the secret together, so a later
// setup cycle always provisions a fresh secret and old QR codes go dead.
func (s *AuthService) DisableTwoFactor(ctx context.Context, userID uuid.UUID) error {
	return s.users.DisableTwoFactor(ctx, userID)
}

func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]entity.User, error) {
	return s.users.List(ctx, limit, offset)
}

func (s *AuthService) RecordLogout(ctx context.Context, userID uuid.UUID, ipAddress *string) {
	s.logSecurity(ctx, &userID, ipAddress, entity.Logout, nil)
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, user *entity.User) {
	if s.emailSender == nil {
		return
	}
	token, err := s.createVerificationToken(ctx, user.ID, entity.EmailVerify, s.verificationTokenTTL())
	if err != nil {
		s.logError(err, "verification token creation failed")
		return
	}
	if err := s.emailSender.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.logError(err, "verification email failed")
	}
}

func (s *AuthService) createVerificationToken(
	ctx context.Context,
	userID uuid.UUID,
	typeValue entity.VerificationType,
	ttl time.Duration,
) (string, error) {
	rawToken, err := utils.GenerateRandomToken(32)
	if err != nil {
		return "", err
	}
	verification := &entity.VerificationToken{
		UserID:    userID,
		TokenHash: utils.HashToken(rawToken),
		Type:      typeValue,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.verifications.Create(ctx, verification); err != nil {
		return "", err
	}
	return rawToken, nil
}

func (s *AuthService) logSecurity(
	ctx context.Context,
	userID *uuid.UUID,
	ipAddress *string,
	action entity.SecurityAction,
	metadata map[string]any,
) {
	if s.securityLogs == nil {
		return
	}
	var payload datatypes.JSON
	if metadata != nil {
		bytes, err := json.Marshal(metadata)
		if err != nil {
			s.logError(err, "security log metadata marshal failed")
			return
		}
		payload = datatypes.JSON(bytes)
	}
	log := &entity.SecurityLog{
		UserID:    userID,
		IPAddress: ipAddress,
		Action:    action,
		Metadata:  payload,
	}
	if err := s.securityLogs.Log(ctx, log); err != nil {
		s.logError(err, "security log write failed")
	}
}

func (s *AuthService) logError(err error, message string) {
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.WithError(err).Error(message)
		return
	}
	s.logger.Error(message)
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) verificationTokenTTL() time.Duration {
	if s.config.VerificationTokenTTL > 0 {
		return s.config.VerificationTokenTTL
	}
	return 24 * time.Hour
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return 30 * time.Minute
}
