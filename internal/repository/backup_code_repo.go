package repository

import (
	"context"
	"time"

	"passvault/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BackupCodeRepository interface {
	// CreateBatch persists a whole set of code hashes in one transaction.
	CreateBatch(ctx context.Context, codes []*entity.BackupCode) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BackupCode, error)
	// MarkUsed sets used_at only if the code is still unused. The boolean
	// reports whether this call won; a concurrent redeemer sees false.
	MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error)
}

type backupCodeRepository struct {
	db *gorm.DB
}

func NewBackupCodeRepository(db *gorm.DB) BackupCodeRepository {
	return &backupCodeRepository{db: db}
}

func (r *backupCodeRepository) CreateBatch(ctx context.Context, codes []*entity.BackupCode) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, code := range codes {
			if err := tx.Create(code).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *backupCodeRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.BackupCode, error) {
	var codes []entity.BackupCode
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *backupCodeRepository) MarkUsed(ctx context.Context, id uuid.UUID, usedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.BackupCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", &usedAt)
	return result.RowsAffected == 1, result.Error
}
