package repository

import (
	"context"

	"passvault/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VaultItemRepository interface {
	Create(ctx context.Context, item *entity.VaultItem) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.VaultItem, error)
	// Delete is owner-scoped; deleting someone else's item reports false.
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
}

type vaultItemRepository struct {
	db *gorm.DB
}

func NewVaultItemRepository(db *gorm.DB) VaultItemRepository {
	return &vaultItemRepository{db: db}
}

func (r *vaultItemRepository) Create(ctx context.Context, item *entity.VaultItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *vaultItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.VaultItem, error) {
	var items []entity.VaultItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *vaultItemRepository) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&entity.VaultItem{})
	return result.RowsAffected == 1, result.Error
}
