package entity

import (
	"time"

	"github.com/google/uuid"
)

// OAuthAccount links a user to an external identity provider. The token
// exchange lives with the provider; this side only records the linkage.
type OAuthAccount struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	Provider          string `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_account"`
	ProviderAccountID string `gorm:"type:varchar(255);not null;uniqueIndex:idx_provider_account"`

	CreatedAt time.Time
}
