package entity

import (
	"time"

	"github.com/google/uuid"
)

// BackupCode is a single-use recovery credential. Only the hash is stored;
// redeemed codes keep their row with UsedAt set, as an audit trail.
type BackupCode struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index"`
	User   User      `gorm:"constraint:OnDelete:CASCADE"`

	CodeHash string `gorm:"type:text;not null"`
	UsedAt   *time.Time

	CreatedAt time.Time
}
