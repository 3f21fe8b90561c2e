package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rahulvermadev/tiffinbox-backend/pkg/db/models"
	"github.com/rahulvermadev/tiffinbox-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  category TEXT NOT NULL,
  price_amount NUMERIC NOT NULL,
  veg INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  tags TEXT,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec("DELETE FROM products").Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, createdAt time.Time, available bool) models.Product {
	t.Helper()

	product := models.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        Slugify(name) + "-" + uuid.NewString()[:8],
		Category:    "thali",
		PriceAmount: decimal.NewFromInt(100),
		Veg:         true,
		Available:   available,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedProduct(t, db, fmt.Sprintf("Thali %d", i), base.Add(time.Duration(i)*time.Minute), true)
	}

	first, err := repo.List(ctx, ListInput{
		Pagination:    pagination.Params{Limit: 2},
		AvailableOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, "Thali 4", first.Products[0].Name)

	second, err := repo.List(ctx, ListInput{
		Pagination:    pagination.Params{Limit: 2, Cursor: first.NextCursor},
		AvailableOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)
	assert.Equal(t, "Thali 2", second.Products[0].Name)
	assert.NotEqual(t, first.Products[0].ID, second.Products[0].ID)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	visible := seedProduct(t, db, "Masala Dosa", now, true)
	seedProduct(t, db, "Hidden Dish", now.Add(time.Second), false)

	result, err := repo.List(ctx, ListInput{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, visible.ID, result.Products[0].ID)

	result, err = repo.List(ctx, ListInput{
		Filters:       ListFilters{Query: "dosa"},
		AvailableOnly: true,
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	result, err = repo.List(ctx, ListInput{
		Filters:       ListFilters{Query: "biryani"},
		AvailableOnly: true,
	})
	require.NoError(t, err)
	assert.Empty(t, result.Products)
}

func TestRepositoryFindBySlug(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Veg Thali", time.Now().UTC(), true)

	found, err := repo.FindBySlug(ctx, product.Slug)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, product.ID, found.ID)

	missing, err := repo.FindBySlug(ctx, "no-such-slug")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
