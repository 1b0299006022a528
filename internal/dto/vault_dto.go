package dto

import (
	"time"

	"passvault/internal/entity"
)

type CreateVaultItemRequest struct {
	Title    string `json:"title" validate:"omitempty,max=200"`
	Username string `json:"username" validate:"omitempty,max=200"`
	URL      string `json:"url" validate:"omitempty,max=1000"`
	Password string `json:"password" validate:"required,min=1,max=500"`
	Notes    string `json:"notes" validate:"omitempty,max=2000"`
}

type VaultItemResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Username  string    `json:"username,omitempty"`
	URL       string    `json:"url,omitempty"`
	Password  string    `json:"password"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func VaultItemFromEntity(item *entity.VaultItem) VaultItemResponse {
	return VaultItemResponse{
		ID:        item.ID.String(),
		Title:     item.Title,
		Username:  item.Username,
		URL:       item.URL,
		Password:  item.Password,
		Notes:     item.Notes,
		CreatedAt: item.CreatedAt,
	}
}

func VaultItemsFromEntities(items []entity.VaultItem) []VaultItemResponse {
	responses := make([]VaultItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, VaultItemFromEntity(&items[i]))
	}
	return responses
}
