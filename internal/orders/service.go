package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/developersvyapar-netizen/vyaapar-backend/internal/hierarchy"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/metrics"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type userLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type productLoader interface {
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Actor identifies the authenticated caller for read-side access checks.
type Actor struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Service defines order operations outside the cart checkout path.
type Service interface {
	CreateRetailerOrder(ctx context.Context, retailerID uuid.UUID, input RetailerOrderInput) (*View, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*View, error)
	List(ctx context.Context, actor Actor, params pagination.Params, status *enums.OrderStatus) ([]Summary, pagination.Page, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*View, error)
}

type service struct {
	repo        Repository
	users       userLoader
	products    productLoader
	tx          txRunner
	alloc       NumberAllocator
	metrics     *metrics.CheckoutMetrics
	maxAttempts int
}

// NewService builds an order service with the required dependencies.
func NewService(
	repo Repository,
	users userLoader,
	products productLoader,
	tx txRunner,
	alloc NumberAllocator,
	checkoutMetrics *metrics.CheckoutMetrics,
	maxAttempts int,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user loader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
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
		repo:        repo,
		users:       users,
		products:    products,
		tx:          tx,
		alloc:       alloc,
		metrics:     checkoutMetrics,
		maxAttempts: maxAttempts,
	}, nil
}

// CreateRetailerOrder handles the direct one-hop path: a retailer orders from
// a distributor without a cart. Prices are read live from the catalog since
// no snapshot exists.
func (s *service) CreateRetailerOrder(ctx context.Context, retailerID uuid.UUID, input RetailerOrderInput) (*View, error) {
	if retailerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "retailer identity missing")
	}
	if input.SupplierID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	retailer, err := s.users.FindActiveByID(ctx, retailerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	if retailer.Role != enums.UserRoleRetailer {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRole, "direct orders are limited to retailers")
	}

	supplier, err := s.users.FindActiveByID(ctx, input.SupplierID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier.Role != enums.UserRoleDistributor {
		return nil, pkgerrors.New(pkgerrors.CodeInvalidRole,
			fmt.Sprintf("supplier role %s not allowed for direct retailer orders, expected: %s",
				supplier.Role, hierarchy.DescribeRoles(hierarchy.AllowedSupplierRoles(enums.UserRoleRetailer))))
	}

	lines, total, err := s.buildRetailerLines(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	var createdID uuid.UUID
	err = CommitWithRetry(ctx, s.tx, s.alloc, s.maxAttempts, s.metrics, func(tx *gorm.DB, orderNumber string) error {
		order := &models.Order{
			ID:          uuid.New(),
			OrderNumber: orderNumber,
			BuyerID:     retailer.ID,
			SupplierID:  supplier.ID,
			Status:      enums.OrderStatusPending,
			TotalAmount: total,
			Notes:       input.Notes,
			Lines:       lines,
		}
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		createdID = order.ID
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create retailer order")
	}

	created, err := s.repo.FindByID(ctx, createdID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload created order")
	}
	view := NewView(created)
	return &view, nil
}

// buildRetailerLines resolves live catalog prices for the requested items,
// merging duplicate product ids by summing quantities.
func (s *service) buildRetailerLines(ctx context.Context, items []RetailerOrderItem) ([]models.OrderLine, decimal.Decimal, error) {
	merged := make(map[uuid.UUID]int, len(items))
	ordered := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every item")
		}
		if item.Quantity < 1 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, seen := merged[item.ProductID]; !seen {
			ordered = append(ordered, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	lines := make([]models.OrderLine, 0, len(ordered))
	total := decimal.Zero
	for _, productID := range ordered {
		product, err := s.products.FindActiveByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound,
					fmt.Sprintf("product %s not found", productID))
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		qty := merged[productID]
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))
		lines = append(lines, models.OrderLine{
			ID:         uuid.New(),
			ProductID:  productID,
			Quantity:   qty,
			UnitPrice:  product.Price,
			TotalPrice: lineTotal,
		})
		total = total.Add(lineTotal)
	}
	return lines, total, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if !canSeeOrder(actor, order) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not involve caller")
	}

	view := NewView(order)
	return &view, nil
}

func (s *service) List(ctx context.Context, actor Actor, params pagination.Params, status *enums.OrderStatus) ([]Summary, pagination.Page, error) {
	filters := ListFilters{Status: status}
	switch actor.Role {
	case enums.UserRoleAdmin, enums.UserRoleSuperAdmin:
		// Admins see everything.
	case enums.UserRoleSalesperson:
		id := actor.UserID
		filters.SalespersonID = &id
	case enums.UserRoleRetailer, enums.UserRoleDistributor, enums.UserRoleStockist:
		// Trading tiers see both sides of their trades: purchases as buyer
		// and incoming orders to fulfill as supplier.
		id := actor.UserID
		filters.ParticipantID = &id
	default:
		return nil, pagination.Page{}, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
	}

	found, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	summaries := make([]Summary, 0, len(found))
	for i := range found {
		summaries = append(summaries, NewSummary(&found[i]))
	}
	return summaries, pagination.NewPage(params, total), nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) (*View, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if order.Status == status {
		view := NewView(order)
		return &view, nil
	}
	if !canTransitionStatus(order.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodePrecondition,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = status
	view := NewView(order)
	return &view, nil
}

func canSeeOrder(actor Actor, order *models.Order) bool {
	switch actor.Role {
	case enums.UserRoleAdmin, enums.UserRoleSuperAdmin:
		return true
	}
	if order.BuyerID == actor.UserID || order.SupplierID == actor.UserID {
		return true
	}
	if order.SalespersonID != nil && *order.SalespersonID == actor.UserID {
		return true
	}
	return false
}

var statusTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:   {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:   {enums.OrderStatusDelivered},
}

func canTransitionStatus(from, to enums.OrderStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
