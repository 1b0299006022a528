package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name         string    `gorm:"type:varchar(100)"`
	PasswordHash *string   `gorm:"type:text"`
	Role         UserRole  `gorm:"type:user_role;default:'user';not null"`

	// TwoFactorSecret is set when setup starts and stays pending until the
	// first code is verified, which flips IsTwoFactorEnabled.
	IsTwoFactorEnabled bool    `gorm:"default:false;not null"`
	TwoFactorSecret    *string `gorm:"type:text"`

	EmailVerifiedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	BackupCodes   []BackupCode
	OAuthAccounts []OAuthAccount
	VaultItems    []VaultItem
}
