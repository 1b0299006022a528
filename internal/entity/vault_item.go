package entity

import (
	"time"

	"github.com/google/uuid"
)

type VaultItem struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	Title    string `gorm:"type:varchar(200)"`
	Username string `gorm:"type:varchar(200)"`
	URL      string `gorm:"type:varchar(1000)"`
	Password string `gorm:"type:varchar(500);not null"`
	Notes    string `gorm:"type:varchar(2000)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
