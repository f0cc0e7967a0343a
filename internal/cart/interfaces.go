package cart

import (
	"context"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository defines persistence operations for carts and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySalesperson(ctx context.Context, salespersonID uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, itemID uuid.UUID) (*models.CartItem, error)
	FindItemByProduct(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int, unitPrice decimal.Decimal) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	UpdateRefs(ctx context.Context, cartID uuid.UUID, updates map[string]any) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}

// userLoader resolves active users referenced as buyer or supplier.
type userLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// productLoader resolves active catalog listings for add-to-cart pricing.
type productLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}
