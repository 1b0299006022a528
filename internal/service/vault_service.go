package service

import (
	"context"

	"passvault/internal/entity"
	"passvault/internal/repository"

	"github.com/google/uuid"
)

// VaultService is owner-scoped CRUD over stored credentials. Secrets are
// kept as submitted; only the master password is ever hashed.
type VaultService struct {
	items repository.VaultItemRepository
}

func NewVaultService(items repository.VaultItemRepository) *VaultService {
	return &VaultService{items: items}
}

func (s *VaultService) List(ctx context.Context, userID uuid.UUID) ([]entity.VaultItem, error) {
	return s.items.ListByUser(ctx, userID)
}

func (s *VaultService) Create(ctx context.Context, userID uuid.UUID, item *entity.VaultItem) error {
	if item.Password == "" {
		return ErrInvalidInput
	}
	item.UserID = userID
	return s.items.Create(ctx, item)
}

func (s *VaultService) Delete(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	deleted, err := s.items.Delete(ctx, itemID, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrItemNotFound
	}
	return nil
}
