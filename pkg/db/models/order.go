package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
)

// Order is the immutable result of a checkout or a direct retailer order.
// Only Status changes after creation, and never through the checkout core.
// OrderNumber carries the global uniqueness constraint the allocation retry
// loop leans on.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string            `gorm:"column:order_number;not null;uniqueIndex:idx_orders_order_number"`
	BuyerID       uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null"`
	SupplierID    uuid.UUID         `gorm:"column:supplier_id;type:uuid;not null"`
	SalespersonID *uuid.UUID        `gorm:"column:salesperson_id;type:uuid"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalAmount   decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Notes         *string           `gorm:"column:notes"`
	Buyer         *User             `gorm:"foreignKey:BuyerID"`
	Supplier      *User             `gorm:"foreignKey:SupplierID"`
	Salesperson   *User             `gorm:"foreignKey:SalespersonID"`
	Lines         []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
