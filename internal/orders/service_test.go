package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/metrics"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  login_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  email TEXT,
  phone TEXT,
  password_hash TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  unit TEXT NOT NULL DEFAULT 'unit',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  buyer_id TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  salesperson_id TEXT,
  status TEXT NOT NULL DEFAULT 'PENDING',
  total_amount NUMERIC NOT NULL,
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  total_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

type mapUserLoader struct {
	users map[uuid.UUID]*models.User
}

func (m *mapUserLoader) FindActiveByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mapProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (m *mapProductLoader) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := m.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type gormTxRunner struct {
	db *gorm.DB
}

func (g *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func seedUser(t *testing.T, db *gorm.DB, role enums.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		LoginID:  uuid.NewString(),
		Name:     string(role) + " user",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SKU:      uuid.NewString(),
		Name:     "product " + price,
		Price:    decimal.RequireFromString(price),
		Unit:     "unit",
		IsActive: true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func newOrderService(t *testing.T, db *gorm.DB, users *mapUserLoader, products *mapProductLoader) Service {
	t.Helper()

	repo := NewRepository(db)
	alloc, err := NewAllocator(repo, fixedClock(time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	svc, err := NewService(repo, users, products, &gormTxRunner{db: db}, alloc, metrics.NewCheckoutMetrics(nil), 3)
	require.NoError(t, err)
	return svc
}

func TestCreateRetailerOrder(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	ctx := context.Background()

	retailer := seedUser(t, db, enums.UserRoleRetailer)
	distributor := seedUser(t, db, enums.UserRoleDistributor)
	soap := seedProduct(t, db, "10.00")
	oil := seedProduct(t, db, "5.50")

	users := &mapUserLoader{users: map[uuid.UUID]*models.User{retailer.ID: retailer, distributor.ID: distributor}}
	products := &mapProductLoader{products: map[uuid.UUID]*models.Product{soap.ID: soap, oil.ID: oil}}
	svc := newOrderService(t, db, users, products)

	view, err := svc.CreateRetailerOrder(ctx, retailer.ID, RetailerOrderInput{
		SupplierID: distributor.ID,
		Items: []RetailerOrderItem{
			{ProductID: soap.ID, Quantity: 2},
			{ProductID: oil.ID, Quantity: 2},
			{ProductID: soap.ID, Quantity: 1}, // duplicate product merges
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-20260831-00001", view.OrderNumber)
	assert.Equal(t, enums.OrderStatusPending, view.Status)
	assert.Nil(t, view.Salesperson)
	require.Len(t, view.Lines, 2)
	byProduct := map[uuid.UUID]LineView{}
	for _, line := range view.Lines {
		byProduct[line.ProductID] = line
	}
	assert.Equal(t, 3, byProduct[soap.ID].Quantity)
	assert.True(t, byProduct[soap.ID].TotalPrice.Equal(decimal.RequireFromString("30.00")),
		"got %s", byProduct[soap.ID].TotalPrice)
	assert.Equal(t, 2, byProduct[oil.ID].Quantity)
	assert.True(t, view.TotalAmount.Equal(decimal.RequireFromString("41.00")),
		"got %s", view.TotalAmount)
}

func TestCreateRetailerOrderRejectsNonDistributorSupplier(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	retailer := seedUser(t, db, enums.UserRoleRetailer)
	stockist := seedUser(t, db, enums.UserRoleStockist)
	soap := seedProduct(t, db, "10.00")

	users := &mapUserLoader{users: map[uuid.UUID]*models.User{retailer.ID: retailer, stockist.ID: stockist}}
	products := &mapProductLoader{products: map[uuid.UUID]*models.Product{soap.ID: soap}}
	svc := newOrderService(t, db, users, products)

	_, err := svc.CreateRetailerOrder(context.Background(), retailer.ID, RetailerOrderInput{
		SupplierID: stockist.ID,
		Items:      []RetailerOrderItem{{ProductID: soap.ID, Quantity: 1}},
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInvalidRole, coded.Code())
}

func TestCreateRetailerOrderRejectsNonRetailerCaller(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	distributor := seedUser(t, db, enums.UserRoleDistributor)
	soap := seedProduct(t, db, "10.00")

	users := &mapUserLoader{users: map[uuid.UUID]*models.User{distributor.ID: distributor}}
	products := &mapProductLoader{products: map[uuid.UUID]*models.Product{soap.ID: soap}}
	svc := newOrderService(t, db, users, products)

	_, err := svc.CreateRetailerOrder(context.Background(), distributor.ID, RetailerOrderInput{
		SupplierID: distributor.ID,
		Items:      []RetailerOrderItem{{ProductID: soap.ID, Quantity: 1}},
	})
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInvalidRole, coded.Code())
}

func TestUpdateStatusTransitions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		from    enums.OrderStatus
		to      enums.OrderStatus
		allowed bool
	}{
		{enums.OrderStatusPending, enums.OrderStatusConfirmed, true},
		{enums.OrderStatusPending, enums.OrderStatusCancelled, true},
		{enums.OrderStatusPending, enums.OrderStatusShipped, false},
		{enums.OrderStatusPending, enums.OrderStatusDelivered, false},
		{enums.OrderStatusConfirmed, enums.OrderStatusShipped, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusCancelled, true},
		{enums.OrderStatusConfirmed, enums.OrderStatusDelivered, false},
		{enums.OrderStatusShipped, enums.OrderStatusDelivered, true},
		{enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{enums.OrderStatusDelivered, enums.OrderStatusCancelled, false},
		{enums.OrderStatusCancelled, enums.OrderStatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, canTransitionStatus(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestUpdateStatusSameStatusIsIdempotent(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	ctx := context.Background()
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20260831-00001",
		BuyerID:     uuid.New(),
		SupplierID:  uuid.New(),
		Status:      enums.OrderStatusShipped,
		TotalAmount: decimal.RequireFromString("10.00"),
	}
	require.NoError(t, db.Create(order).Error)

	svc := newOrderService(t, db, &mapUserLoader{}, &mapProductLoader{})
	view, err := svc.UpdateStatus(ctx, order.ID, enums.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, view.Status)
}

func TestUpdateStatusRejectsBackwardMove(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	order := &models.Order{
		ID:          uuid.New(),
		OrderNumber: "ORD-20260831-00001",
		BuyerID:     uuid.New(),
		SupplierID:  uuid.New(),
		Status:      enums.OrderStatusDelivered,
		TotalAmount: decimal.RequireFromString("10.00"),
	}
	require.NoError(t, db.Create(order).Error)

	svc := newOrderService(t, db, &mapUserLoader{}, &mapProductLoader{})
	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodePrecondition, coded.Code())
}

func TestGetEnforcesVisibility(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	ctx := context.Background()

	buyer := seedUser(t, db, enums.UserRoleDistributor)
	supplier := seedUser(t, db, enums.UserRoleStockist)
	salesperson := seedUser(t, db, enums.UserRoleSalesperson)
	spID := salesperson.ID

	order := &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD-20260831-00001",
		BuyerID:       buyer.ID,
		SupplierID:    supplier.ID,
		SalespersonID: &spID,
		Status:        enums.OrderStatusPending,
		TotalAmount:   decimal.RequireFromString("10.00"),
	}
	require.NoError(t, db.Create(order).Error)

	svc := newOrderService(t, db, &mapUserLoader{}, &mapProductLoader{})

	for _, actor := range []Actor{
		{UserID: buyer.ID, Role: enums.UserRoleDistributor},
		{UserID: supplier.ID, Role: enums.UserRoleStockist},
		{UserID: salesperson.ID, Role: enums.UserRoleSalesperson},
		{UserID: uuid.New(), Role: enums.UserRoleAdmin},
	} {
		_, err := svc.Get(ctx, actor, order.ID)
		assert.NoError(t, err, "actor role %s", actor.Role)
	}

	_, err := svc.Get(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleRetailer}, order.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())
}

func TestListScopesToActor(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	ctx := context.Background()

	buyerA := uuid.New()
	buyerB := uuid.New()
	for i, buyerID := range []uuid.UUID{buyerA, buyerA, buyerB} {
		order := &models.Order{
			ID:          uuid.New(),
			OrderNumber: fmt.Sprintf("ORD-20260831-%05d", i+1),
			BuyerID:     buyerID,
			SupplierID:  uuid.New(),
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.RequireFromString("10.00"),
		}
		require.NoError(t, db.Create(order).Error)
	}

	svc := newOrderService(t, db, &mapUserLoader{}, &mapProductLoader{})

	summaries, page, err := svc.List(ctx, Actor{UserID: buyerA, Role: enums.UserRoleDistributor}, pagination.Params{}, nil)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, int64(2), page.Total)

	summaries, page, err = svc.List(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, pagination.Params{}, nil)
	require.NoError(t, err)
	assert.Len(t, summaries, 3)
	assert.Equal(t, int64(3), page.Total)
}

func TestListIncludesSupplierSideOrders(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	ctx := context.Background()

	distributorID := uuid.New()
	numbers := map[string]uuid.UUID{
		"ORD-20260831-00001": distributorID, // buys from a stockist
		"ORD-20260831-00002": uuid.New(),
	}
	for number, buyerID := range numbers {
		supplierID := uuid.New()
		if buyerID != distributorID {
			supplierID = distributorID // incoming retailer order to fulfill
		}
		require.NoError(t, db.Create(&models.Order{
			ID:          uuid.New(),
			OrderNumber: number,
			BuyerID:     buyerID,
			SupplierID:  supplierID,
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.RequireFromString("10.00"),
		}).Error)
	}

	svc := newOrderService(t, db, &mapUserLoader{}, &mapProductLoader{})

	summaries, page, err := svc.List(ctx, Actor{UserID: distributorID, Role: enums.UserRoleDistributor}, pagination.Params{}, nil)
	require.NoError(t, err)
	require.NotEmpty(t, summaries, "distributor should see orders they must fulfill")
	assert.Len(t, summaries, 2)
	assert.Equal(t, int64(2), page.Total)

	// A stranger on neither side of either trade sees nothing.
	summaries, page, err = svc.List(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleDistributor}, pagination.Params{}, nil)
	require.NoError(t, err)
	assert.Empty(t, summaries)
	assert.Equal(t, int64(0), page.Total)
}

func TestFindMaxOrderNumber(t *testing.T) {
	t.Parallel()

	db := setupOrdersTestDB(t)
	ctx := context.Background()
	repo := NewRepository(db)

	max, err := repo.FindMaxOrderNumber(ctx, "ORD-20260831-")
	require.NoError(t, err)
	assert.Equal(t, "", max)

	for _, number := range []string{"ORD-20260831-00002", "ORD-20260831-00010", "ORD-20260830-00099"} {
		require.NoError(t, db.Create(&models.Order{
			ID:          uuid.New(),
			OrderNumber: number,
			BuyerID:     uuid.New(),
			SupplierID:  uuid.New(),
			Status:      enums.OrderStatusPending,
			TotalAmount: decimal.Zero,
		}).Error)
	}

	max, err = repo.FindMaxOrderNumber(ctx, "ORD-20260831-")
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260831-00010", max)
}
