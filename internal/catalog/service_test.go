package catalog

import (
	"context"
	"testing"

	pkgerrors "github.com/developersvyapar-netizen/vyaapar-backend/pkg/errors"
	"github.com/developersvyapar-netizen/vyaapar-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  sku TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  unit TEXT NOT NULL DEFAULT 'unit',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func newCatalogService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		SKU:   "SOAP-001",
		Name:  "Lavender Soap",
		Price: decimal.RequireFromString("10.50"),
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive)
	// Unit falls back to the default when omitted.
	assert.Equal(t, "unit", created.Unit)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "SOAP-001", got.SKU)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("10.50")), "got %s", got.Price)
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name    string
		input   CreateInput
		message string
	}{
		{"missing sku", CreateInput{Name: "Soap", Price: decimal.NewFromInt(1)}, "sku required"},
		{"missing name", CreateInput{SKU: "SOAP-001", Price: decimal.NewFromInt(1)}, "name required"},
		{"negative price", CreateInput{SKU: "SOAP-001", Name: "Soap", Price: decimal.NewFromInt(-1)}, "price must not be negative"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input)
			coded := pkgerrors.As(err)
			require.NotNil(t, coded)
			assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
			assert.Equal(t, tc.message, coded.Message())
		})
	}
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	ctx := context.Background()

	input := CreateInput{SKU: "SOAP-001", Name: "Soap", Price: decimal.NewFromInt(10)}
	_, err := svc.Create(ctx, input)
	require.NoError(t, err)

	input.Name = "Another Soap"
	_, err = svc.Create(ctx, input)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
	assert.Equal(t, "sku already in use", coded.Message())
}

func TestUpdatePrice(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{SKU: "OIL-001", Name: "Oil", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	require.NoError(t, svc.UpdatePrice(ctx, created.ID, decimal.RequireFromString("12.75")))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("12.75")), "got %s", got.Price)
}

func TestUpdatePriceRejectsNegative(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	err := svc.UpdatePrice(context.Background(), uuid.New(), decimal.NewFromInt(-5))
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestUpdatePriceUnknownProduct(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	err := svc.UpdatePrice(context.Background(), uuid.New(), decimal.NewFromInt(5))
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())
}

func TestSetActiveHidesFromActiveLookups(t *testing.T) {
	t.Parallel()

	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{SKU: "OIL-001", Name: "Oil", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, created.ID, false))

	// Admin lookups still see the product; cart staging does not.
	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = NewRepository(db).FindActiveByID(ctx, created.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListActiveOnly(t *testing.T) {
	t.Parallel()

	svc := newCatalogService(t, setupCatalogTestDB(t))
	ctx := context.Background()

	soap, err := svc.Create(ctx, CreateInput{SKU: "SOAP-001", Name: "Soap", Price: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{SKU: "OIL-001", Name: "Oil", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, soap.ID, false))

	all, page, err := svc.List(ctx, pagination.Params{}, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(2), page.Total)

	active, page, err := svc.List(ctx, pagination.Params{}, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "OIL-001", active[0].SKU)
	assert.Equal(t, int64(1), page.Total)
}
