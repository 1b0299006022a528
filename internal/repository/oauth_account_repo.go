package repository

import (
	"context"

	"passvault/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OAuthAccountRepository interface {
	Link(ctx context.Context, account *entity.OAuthAccount) error
	ExistsByUser(ctx context.Context, userID uuid.UUID) (bool, error)
}

type oauthAccountRepository struct {
	db *gorm.DB
}

func NewOAuthAccountRepository(db *gorm.DB) OAuthAccountRepository {
	return &oauthAccountRepository{db: db}
}

func (r *oauthAccountRepository) Link(ctx context.Context, account *entity.OAuthAccount) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *oauthAccountRepository) ExistsByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.OAuthAccount{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count > 0, err
}
