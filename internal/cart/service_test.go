package cart

import (
	"context"
	"testing"

	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/db/models"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/enums"
	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
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
		`CREATE TABLE carts (
  id TEXT PRIMARY KEY,
  salesperson_id TEXT NOT NULL UNIQUE,
  buyer_id TEXT,
  supplier_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

// stubUsers serves loads from memory but mirrors rows into the DB so the
// repository's preloads resolve the same users.
type stubUsers struct {
	t     *testing.T
	db    *gorm.DB
	users map[uuid.UUID]*models.User
}

func (s *stubUsers) FindActiveByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUsers) add(role enums.UserRole) *models.User {
	s.t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		LoginID:  uuid.NewString(),
		Name:     string(role) + " user",
		Role:     role,
		IsActive: true,
	}
	require.NoError(s.t, s.db.Create(user).Error)
	s.users[user.ID] = user
	return user
}

type stubProducts struct {
	t        *testing.T
	db       *gorm.DB
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if product, ok := s.products[id]; ok {
		return product, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProducts) add(price string) *models.Product {
	s.t.Helper()
	product := &models.Product{
		ID:       uuid.New(),
		SKU:      uuid.NewString(),
		Name:     "product",
		Price:    decimal.RequireFromString(price),
		Unit:     "unit",
		IsActive: true,
	}
	require.NoError(s.t, s.db.Create(product).Error)
	s.products[product.ID] = product
	return product
}

func newCartFixture(t *testing.T) (Service, *stubUsers, *stubProducts) {
	t.Helper()

	db := setupCartTestDB(t)
	users := &stubUsers{t: t, db: db, users: map[uuid.UUID]*models.User{}}
	products := &stubProducts{t: t, db: db, products: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(NewRepository(db), users, products)
	require.NoError(t, err)
	return svc, users, products
}

func TestGetCartCreatesEmptyCartOnFirstUse(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCartFixture(t)
	view, err := svc.GetCart(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Nil(t, view.Buyer)
	assert.Nil(t, view.Supplier)
	assert.True(t, view.Total.IsZero())
}

func TestAddItemMergesAndRefreshesPrice(t *testing.T) {
	t.Parallel()

	svc, _, products := newCartFixture(t)
	ctx := context.Background()
	salespersonID := uuid.New()
	soap := products.add("10.00")

	first, err := svc.AddItem(ctx, salespersonID, soap.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)
	assert.True(t, first.UnitPrice.Equal(decimal.RequireFromString("10.00")))

	// Price changes between adds; the merge adopts the new price for the
	// whole line.
	soap.Price = decimal.RequireFromString("12.00")

	second, err := svc.AddItem(ctx, salespersonID, soap.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "merge must not create a second line")
	assert.Equal(t, 5, second.Quantity)
	assert.True(t, second.UnitPrice.Equal(decimal.RequireFromString("12.00")), "got %s", second.UnitPrice)

	view, err := svc.GetCart(ctx, salespersonID)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("60.00")), "got %s", view.Total)
}

func TestAddItemUnknownProduct(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCartFixture(t)
	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestUpdateItemQuantity(t *testing.T) {
	t.Parallel()

	svc, _, products := newCartFixture(t)
	ctx := context.Background()
	salespersonID := uuid.New()
	soap := products.add("10.00")

	item, err := svc.AddItem(ctx, salespersonID, soap.ID, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateItemQuantity(ctx, salespersonID, item.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, updated.Quantity)
	// Quantity edits keep the captured price.
	assert.True(t, updated.UnitPrice.Equal(decimal.RequireFromString("10.00")))
}

func TestRemoveItemNotFound(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCartFixture(t)
	err := svc.RemoveItem(context.Background(), uuid.New(), uuid.New())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestSetBuyerRejectsNonBuyerRoles(t *testing.T) {
	t.Parallel()

	svc, users, _ := newCartFixture(t)
	other := users.add(enums.UserRoleSalesperson)

	_, err := svc.SetBuyer(context.Background(), uuid.New(), other.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInvalidRole, coded.Code())
}

func TestSetSupplierRequiresBuyerFirst(t *testing.T) {
	t.Parallel()

	svc, users, _ := newCartFixture(t)
	distributor := users.add(enums.UserRoleDistributor)

	_, err := svc.SetSupplier(context.Background(), uuid.New(), distributor.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodePrecondition, coded.Code())
}

func TestSetSupplierEnforcesHierarchy(t *testing.T) {
	t.Parallel()

	svc, users, _ := newCartFixture(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	retailer := users.add(enums.UserRoleRetailer)
	stockist := users.add(enums.UserRoleStockist)
	distributor := users.add(enums.UserRoleDistributor)

	_, err := svc.SetBuyer(ctx, salespersonID, retailer.ID)
	require.NoError(t, err)

	_, err = svc.SetSupplier(ctx, salespersonID, stockist.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInvalidRole, coded.Code())

	view, err := svc.SetSupplier(ctx, salespersonID, distributor.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Supplier)
	assert.Equal(t, distributor.ID, view.Supplier.ID)
}

func TestSetBuyerDropsIncompatibleSupplier(t *testing.T) {
	t.Parallel()

	svc, users, _ := newCartFixture(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	distributor := users.add(enums.UserRoleDistributor)
	stockist := users.add(enums.UserRoleStockist)
	retailer := users.add(enums.UserRoleRetailer)

	_, err := svc.SetBuyer(ctx, salespersonID, distributor.ID)
	require.NoError(t, err)
	_, err = svc.SetSupplier(ctx, salespersonID, stockist.ID)
	require.NoError(t, err)

	// Retailer buyers cannot buy from stockists, so the supplier is dropped.
	view, err := svc.SetBuyer(ctx, salespersonID, retailer.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Buyer)
	assert.Equal(t, retailer.ID, view.Buyer.ID)
	assert.Nil(t, view.Supplier)

	reloaded, err := svc.GetCart(ctx, salespersonID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.Supplier)
}

func TestClearResetsCart(t *testing.T) {
	t.Parallel()

	svc, users, products := newCartFixture(t)
	ctx := context.Background()
	salespersonID := uuid.New()

	retailer := users.add(enums.UserRoleRetailer)
	distributor := users.add(enums.UserRoleDistributor)
	soap := products.add("10.00")

	_, err := svc.AddItem(ctx, salespersonID, soap.ID, 2)
	require.NoError(t, err)
	_, err = svc.SetBuyer(ctx, salespersonID, retailer.ID)
	require.NoError(t, err)
	_, err = svc.SetSupplier(ctx, salespersonID, distributor.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, salespersonID))

	view, err := svc.GetCart(ctx, salespersonID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Nil(t, view.Buyer)
	assert.Nil(t, view.Supplier)
}

func TestClearWithoutCartIsNoop(t *testing.T) {
	t.Parallel()

	svc, _, _ := newCartFixture(t)
	require.NoError(t, svc.Clear(context.Background(), uuid.New()))
}
