package service

import (
	"context"
	"time"

	"passvault/internal/entity"
	"passvault/internal/repository"
	"passvault/internal/utils"

	"github.com/google/uuid"
)

const (
	backupCodeCount  = 5
	backupCodeDigits = 8
)

type RedeemResult int

const (
	RedeemNotFound RedeemResult = iota
	RedeemAlreadyUsed
	RedeemSuccess
)

// BackupCodeService issues and redeems single-use recovery codes. Plaintext
// codes leave this service exactly once, at issue time.
type BackupCodeService struct {
	codes  repository.BackupCodeRepository
	hasher PasswordHasher
	clock  Clock
}

func NewBackupCodeService(codes repository.BackupCodeRepository, hasher PasswordHasher, clock Clock) *BackupCodeService {
	return &BackupCodeService{codes: codes, hasher: hasher, clock: clock}
}

func (s *BackupCodeService) Issue(ctx context.Context, userID uuid.UUID) ([]string, error) {
	plaintexts := make([]string, 0, backupCodeCount)
	records := make([]*entity.BackupCode, 0, backupCodeCount)
	for len(plaintexts) < backupCodeCount {
		code, err := utils.GenerateNumericCode(backupCodeDigits)
		if err != nil {
			return nil, err
		}
		if containsCode(plaintexts, code) {
			continue
		}
		hash, err := s.hasher.Hash(code)
		if err != nil {
			return nil, err
		}
		plaintexts = append(plaintexts, code)
		records = append(records, &entity.BackupCode{UserID: userID, CodeHash: hash})
	}
	if err := s.codes.CreateBatch(ctx, records); err != nil {
		return nil, err
	}
	return plaintexts, nil
}

// Redeem finds the owner's code matching the plaintext and marks it used.
// The mark is a conditional update, so of two concurrent redemptions of the
// same code exactly one sees RedeemSuccess.
func (s *BackupCodeService) Redeem(ctx context.Context, userID uuid.UUID, plaintext string) (RedeemResult, error) {
	all, err := s.codes.ListByUser(ctx, userID)
	if err != nil {
		return RedeemNotFound, err
	}
	for i := range all {
		code := &all[i]
		if !s.hasher.Verify(code.CodeHash, plaintext) {
			continue
		}
		if code.UsedAt != nil {
			return RedeemAlreadyUsed, nil
		}
		won, err := s.codes.MarkUsed(ctx, code.ID, s.now())
		if err != nil {
			return RedeemNotFound, err
		}
		if !won {
			return RedeemAlreadyUsed, nil
		}
		return RedeemSuccess, nil
	}
	return RedeemNotFound, nil
}

func (s *BackupCodeService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
