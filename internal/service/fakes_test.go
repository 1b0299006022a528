package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"passvault/internal/entity"

	"github.com/google/uuid"
)

// --- in-memory repositories ---

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) VerifyEmail(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}
	return nil
}

func (f *fakeUserRepo) SetTwoFactorSecret(_ context.Context, userID uuid.UUID, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.TwoFactorSecret = &secret
	}
	return nil
}

func (f *fakeUserRepo) EnableTwoFactor(_ context.Context, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok || user.IsTwoFactorEnabled || user.TwoFactorSecret == nil {
		return false, nil
	}
	user.IsTwoFactorEnabled = true
	return true, nil
}

func (f *fakeUserRepo) DisableTwoFactor(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.IsTwoFactorEnabled = false
		user.TwoFactorSecret = nil
	}
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]entity.User, 0, len(f.users))
	for _, user := range f.users {
		users = append(users, *user)
	}
	return users, nil
}

type fakeBackupCodeRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*entity.BackupCode
}

func newFakeBackupCodeRepo() *fakeBackupCodeRepo {
	return &fakeBackupCodeRepo{codes: make(map[uuid.UUID]*entity.BackupCode)}
}

func (f *fakeBackupCodeRepo) CreateBatch(_ context.Context, codes []*entity.BackupCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, code := range codes {
		if code.ID == uuid.Nil {
			code.ID = uuid.New()
		}
		code.CreatedAt = time.Now()
		f.codes[code.ID] = code
	}
	return nil
}

func (f *fakeBackupCodeRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]entity.BackupCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.BackupCode
	for _, code := range f.codes {
		if code.UserID == userID {
			out = append(out, *code)
		}
	}
	return out, nil
}

// MarkUsed mirrors the production conditional update: only one caller can
// flip an unused code.
func (f *fakeBackupCodeRepo) MarkUsed(_ context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.codes[id]
	if !ok || code.UsedAt != nil {
		return false, nil
	}
	code.UsedAt = &usedAt
	return true, nil
}

type fakeVerificationRepo struct {
	mu     sync.Mutex
	tokens map[uuid.UUID]*entity.VerificationToken
}

func newFakeVerificationRepo() *fakeVerificationRepo {
	return &fakeVerificationRepo{tokens: make(map[uuid.UUID]*entity.VerificationToken)}
}

func (f *fakeVerificationRepo) Create(_ context.Context, token *entity.VerificationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	f.tokens[token.ID] = token
	return nil
}

func (f *fakeVerificationRepo) FindValid(_ context.Context, tokenHash string, tokenType entity.VerificationType) (*entity.VerificationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.tokens {
		if token.TokenHash == tokenHash && token.Type == tokenType &&
			token.UsedAt == nil && token.ExpiresAt.After(time.Now()) {
			return token, nil
		}
	}
	return nil, nil
}

func (f *fakeVerificationRepo) MarkUsed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if token, ok := f.tokens[id]; ok {
		now := time.Now()
		token.UsedAt = &now
	}
	return nil
}

type fakeSecurityLogRepo struct {
	mu   sync.Mutex
	logs []entity.SecurityLog
}

func (f *fakeSecurityLogRepo) Log(_ context.Context, log *entity.SecurityLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeSecurityLogRepo) actions() []entity.SecurityAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.SecurityAction, 0, len(f.logs))
	for _, log := range f.logs {
		out = append(out, log.Action)
	}
	return out
}

type fakeOAuthRepo struct {
	mu     sync.Mutex
	linked map[uuid.UUID]bool
}

func newFakeOAuthRepo() *fakeOAuthRepo {
	return &fakeOAuthRepo{linked: make(map[uuid.UUID]bool)}
}

func (f *fakeOAuthRepo) Link(_ context.Context, account *entity.OAuthAccount) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.linked[account.UserID] = true
	return nil
}

func (f *fakeOAuthRepo) ExistsByUser(_ context.Context, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.linked[userID], nil
}

type fakeEmailSender struct {
	mu                sync.Mutex
	verificationToken string
	resetToken        string
}

func (f *fakeEmailSender) SendVerificationEmail(_ context.Context, _ string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verificationToken = token
	return nil
}

func (f *fakeEmailSender) SendPasswordResetEmail(_ context.Context, _ string, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetToken = token
	return nil
}
