package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
)

// User represents the canonical identity entity. Buyers, suppliers,
// salespeople, and administrators are all rows here, distinguished by role.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	LoginID      string         `gorm:"column:login_id;not null;uniqueIndex"`
	Name         string         `gorm:"column:name;not null"`
	Email        *string        `gorm:"column:email"`
	Phone        *string        `gorm:"column:phone"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
