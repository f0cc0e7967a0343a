package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/developersvyapar-netizen/vyaapar-backend/internal/hierarchy"
	pkgdb "github.com/developersvyapar-netizen/vyaapar-backend/pkg/db"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service defines the cart operations available to a salesperson.
type Service interface {
	GetCart(ctx context.Context, salespersonID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, salespersonID, productID uuid.UUID, quantity int) (*ItemView, error)
	UpdateItemQuantity(ctx context.Context, salespersonID, itemID uuid.UUID, quantity int) (*ItemView, error)
	RemoveItem(ctx context.Context, salespersonID, itemID uuid.UUID) error
	SetBuyer(ctx context.Context, salespersonID, buyerID uuid.UUID) (*View, error)
	SetSupplier(ctx context.Context, salespersonID, supplierID uuid.UUID) (*View, error)
	Clear(ctx context.Context, salespersonID uuid.UUID) error
}

type service struct {
	repo     Repository
	users    userLoader
	products productLoader
}

// NewService builds a cart service with the required dependencies.
func NewService(repo Repository, users userLoader, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, users: users, products: products}, nil
}

func (s *service) GetCart(ctx context.Context, salespersonID uuid.UUID) (*View, error) {
	cart, err := s.getOrCreate(ctx, salespersonID)
	if err != nil {
		return nil, err
	}
	view := NewView(cart)
	return &view, nil
}

func (s *service) AddItem(ctx context.Context, salespersonID, productID uuid.UUID, quantity int) (*ItemView, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	product, err := s.products.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	cart, err := s.getOrCreate(ctx, salespersonID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.FindItemByProduct(ctx, cart.ID, productID)
	switch {
	case err == nil:
		// Merge: bump quantity and refresh the price snapshot to the
		// catalog price at this add, not the one captured earlier.
		newQty := existing.Quantity + quantity
		if err := s.repo.UpdateItem(ctx, existing.ID, newQty, product.Price); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
		existing.Quantity = newQty
		existing.UnitPrice = product.Price
		existing.Product = product
		view := NewItemView(existing)
		return &view, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		item := &models.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		created, err := s.repo.CreateItem(ctx, item)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart item")
		}
		created.Product = product
		view := NewItemView(created)
		return &view, nil

	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
}

func (s *service) UpdateItemQuantity(ctx context.Context, salespersonID, itemID uuid.UUID, quantity int) (*ItemView, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	cart, err := s.getOrCreate(ctx, salespersonID)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindItem(ctx, cart.ID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item quantity")
	}
	item.Quantity = quantity
	view := NewItemView(item)
	return &view, nil
}

func (s *service) RemoveItem(ctx context.Context, salespersonID, itemID uuid.UUID) error {
	cart, err := s.getOrCreate(ctx, salespersonID)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindItem(ctx, cart.ID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	return nil
}

func (s *service) SetBuyer(ctx context.Context, salespersonID, buyerID uuid.UUID) (*View, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}

	buyer, err := s.users.FindActiveByID(ctx, buyerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "buyer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buyer")
	}
	if !hierarchy.IsBuyerRole(buyer.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRole,
			fmt.Sprintf("buyer role %s not allowed, expected one of: %s",
				buyer.Role, hierarchy.DescribeRoles(hierarchy.BuyerRoles())))
	}

	cart, err := s.getOrCreate(ctx, salespersonID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{"buyer_id": buyerID}
	// A buyer change can invalidate the current supplier pairing; drop the
	// supplier rather than leave the cart in an uncheckoutable state.
	if cart.Supplier != nil && !hierarchy.CanSupply(buyer.Role, cart.Supplier.Role) {
		updates["supplier_id"] = nil
		cart.Supplier = nil
		cart.SupplierID = nil
	}
	if err := s.repo.UpdateRefs(ctx, cart.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set cart buyer")
	}

	cart.BuyerID = &buyerID
	cart.Buyer = buyer
	view := NewView(cart)
	return &view, nil
}

func (s *service) SetSupplier(ctx context.Context, salespersonID, supplierID uuid.UUID) (*View, error) {
	if supplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}

	cart, err := s.getOrCreate(ctx, salespersonID)
	if err != nil {
		return nil, err
	}
	if cart.Buyer == nil {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "set a buyer before choosing a supplier")
	}

	supplier, err := s.users.FindActiveByID(ctx, supplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}

	allowed := hierarchy.AllowedSupplierRoles(cart.Buyer.Role)
	if !hierarchy.CanSupply(cart.Buyer.Role, supplier.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRole,
			fmt.Sprintf("supplier role %s not allowed for %s buyer, expected one of: %s",
				supplier.Role, cart.Buyer.Role, hierarchy.DescribeRoles(allowed)))
	}

	if err := s.repo.UpdateRefs(ctx, cart.ID, map[string]any{"supplier_id": supplierID}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set cart supplier")
	}

	cart.SupplierID = &supplierID
	cart.Supplier = supplier
	view := NewView(cart)
	return &view, nil
}

func (s *service) Clear(ctx context.Context, salespersonID uuid.UUID) error {
	cart, err := s.repo.FindBySalesperson(ctx, salespersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to clear.
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if err := s.repo.DeleteItems(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart items")
	}
	if err := s.repo.UpdateRefs(ctx, cart.ID, map[string]any{
		"buyer_id":    nil,
		"supplier_id": nil,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reset cart references")
	}
	return nil
}

// getOrCreate returns the salesperson's cart, creating an empty one on first
// use. A concurrent first mutation can race the insert; the unique index on
// salesperson_id decides the winner and the loser re-reads.
func (s *service) getOrCreate(ctx context.Context, salespersonID uuid.UUID) (*models.Cart, error) {
	if salespersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "salesperson identity missing")
	}

	cart, err := s.repo.FindBySalesperson(ctx, salespersonID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{
		ID:            uuid.New(),
		SalespersonID: salespersonID,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "salesperson_id") {
			cart, err = s.repo.FindBySalesperson(ctx, salespersonID)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
			}
			return cart, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
	}
	return created, nil
}
