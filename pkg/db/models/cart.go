package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the single mutable staging area each salesperson owns. Created
// lazily on first mutation; never deleted, only emptied. BuyerID and
// SupplierID stay nil until the salesperson picks them, and both must be set
// before checkout.
type Cart struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SalespersonID uuid.UUID  `gorm:"column:salesperson_id;type:uuid;not null;uniqueIndex"`
	BuyerID       *uuid.UUID `gorm:"column:buyer_id;type:uuid"`
	SupplierID    *uuid.UUID `gorm:"column:supplier_id;type:uuid"`
	Buyer         *User      `gorm:"foreignKey:BuyerID"`
	Supplier      *User      `gorm:"foreignKey:SupplierID"`
	Items         []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
