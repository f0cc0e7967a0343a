package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/developersvyapar-netizen/vyaapar-backend/internal/cart"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/hierarchy"
	"github.com/developersvyapar-netizen/vyaapar-backend/internal/orders"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service converts a salesperson's cart into an order.
type Service interface {
	Checkout(ctx context.Context, salespersonID uuid.UUID, notes *string) (*orders.View, error)
}

type service struct {
	carts       cart.Repository
	orders      orders.Repository
	tx          txRunner
	alloc       orders.NumberAllocator
	metrics     *metrics.CheckoutMetrics
	maxAttempts int
}

// NewService builds the checkout engine with the required dependencies.
func NewService(
	carts cart.Repository,
	orderRepo orders.Repository,
	tx txRunner,
	alloc orders.NumberAllocator,
	checkoutMetrics *metrics.CheckoutMetrics,
	maxAttempts int,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if alloc == nil {
		return nil, fmt.Errorf("order number allocator required")
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("max attempts must be at least 1")
	}
	return &service{
		carts:       carts,
		orders:      orderRepo,
		tx:          tx,
		alloc:       alloc,
		metrics:     checkoutMetrics,
		maxAttempts: maxAttempts,
	}, nil
}

// Checkout runs the full cart-to-order conversion: validate the cart,
// price its snapshot, allocate an order number, and commit order creation
// plus cart reset as one transaction. Order creation is retried with a fresh
// number on order_number collisions; every other failure leaves the cart
// untouched.
func (s *service) Checkout(ctx context.Context, salespersonID uuid.UUID, notes *string) (*orders.View, error) {
	view, err := s.checkout(ctx, salespersonID, notes)
	s.metrics.IncAttempt(outcomeFor(err))
	return view, err
}

func (s *service) checkout(ctx context.Context, salespersonID uuid.UUID, notes *string) (*orders.View, error) {
	if salespersonID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "salesperson identity missing")
	}

	staged, err := s.validate(ctx, salespersonID)
	if err != nil {
		return nil, err
	}

	lines, total := priceLines(staged.Items)

	var createdID uuid.UUID
	err = orders.CommitWithRetry(ctx, s.tx, s.alloc, s.maxAttempts, s.metrics, func(tx *gorm.DB, orderNumber string) error {
		order := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   orderNumber,
			BuyerID:       *staged.BuyerID,
			SupplierID:    *staged.SupplierID,
			SalespersonID: &salespersonID,
			Status:        enums.OrderStatusPending,
			TotalAmount:   total,
			Notes:         notes,
			Lines:         lines,
		}
		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}

		cartsTx := s.carts.WithTx(tx)
		if err := cartsTx.DeleteItems(ctx, staged.ID); err != nil {
			return err
		}
		if err := cartsTx.UpdateRefs(ctx, staged.ID, map[string]any{
			"buyer_id":    nil,
			"supplier_id": nil,
		}); err != nil {
			return err
		}

		createdID = order.ID
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "commit checkout")
	}

	created, err := s.orders.FindByID(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload created order")
	}
	view := orders.NewView(created)
	return &view, nil
}

// validate loads the cart and enforces the checkout preconditions. The
// hierarchy pairing was already enforced when buyer and supplier were set,
// but cart mutation and checkout are not mutually exclusive, so it is checked
// again here.
func (s *service) validate(ctx context.Context, salespersonID uuid.UUID) (*models.Cart, error) {
	staged, err := s.carts.FindBySalesperson(ctx, salespersonID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if len(staged.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "cart is empty")
	}
	if staged.BuyerID == nil || staged.Buyer == nil {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "cart has no buyer")
	}
	if staged.SupplierID == nil || staged.Supplier == nil {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition, "cart has no supplier")
	}
	if !hierarchy.CanSupply(staged.Buyer.Role, staged.Supplier.Role) {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRole,
			fmt.Sprintf("supplier role %s not allowed for %s buyer, expected one of: %s",
				staged.Supplier.Role, staged.Buyer.Role,
				hierarchy.DescribeRoles(hierarchy.AllowedSupplierRoles(staged.Buyer.Role))))
	}
	return staged, nil
}

// priceLines builds order lines from the cart's stored price snapshots. The
// catalog is deliberately not consulted: the price the salesperson saw while
// building the cart is the price charged.
func priceLines(items []models.CartItem) ([]models.OrderLine, decimal.Decimal) {
	lines := make([]models.OrderLine, 0, len(items))
	total := decimal.Zero
	for i := range items {
		item := &items[i]
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		lines = append(lines, models.OrderLine{
			ID:         uuid.New(),
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return lines, total
}

func outcomeFor(err error) string {
	if err == nil {
		return "success"
	}
	if coded := pkgerrors.As(err); coded != nil {
		switch coded.Code() {
		case pkgerrors.CodePrecondition, pkgerrors.CodeInvalidRole:
			return "precondition"
		case pkgerrors.CodeConflict:
			return "exhausted"
		}
	}
	return "error"
}
