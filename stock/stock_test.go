package stock

import (
	"fmt"
	"strings"
	"testing"

	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, stock int) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: 10.00, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func TestReserveDecrementsStock(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 5)

	require.NoError(t, Reserve(db, product.ID, 3))
	assert.Equal(t, 2, productStock(t, db, product.ID))
}

func TestReserveInsufficientStock(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 2)

	err := Reserve(db, product.ID, 3)
	require.Error(t, err)

	var insufficient *InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Adobo Meal", insufficient.ProductName)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available)

	// Nothing was decremented.
	assert.Equal(t, 2, productStock(t, db, product.ID))
}

func TestReserveUnknownProduct(t *testing.T) {
	db := setupTestDB(t)

	err := Reserve(db, 999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 5)

	assert.ErrorIs(t, Reserve(db, product.ID, 0), ErrInvalidQuantity)
	assert.ErrorIs(t, Reserve(db, product.ID, -1), ErrInvalidQuantity)
	assert.Equal(t, 5, productStock(t, db, product.ID))
}

func TestReleaseRestoresStock(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 5)

	require.NoError(t, Reserve(db, product.ID, 4))
	require.NoError(t, Release(db, product.ID, 4))
	assert.Equal(t, 5, productStock(t, db, product.ID))
}

func TestReleaseUnknownProduct(t *testing.T) {
	db := setupTestDB(t)

	assert.ErrorIs(t, Release(db, 999, 1), ErrProductNotFound)
}

// The reserve guard must never hand out more units than exist, no matter
// how many times it is hit.
func TestRepeatedReservesNeverOversell(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 5)

	granted := 0
	for i := 0; i < 10; i++ {
		if err := Reserve(db, product.ID, 1); err == nil {
			granted++
		} else {
			var insufficient *InsufficientStockError
			require.ErrorAs(t, err, &insufficient)
		}
	}

	assert.Equal(t, 5, granted)
	assert.Equal(t, 0, productStock(t, db, product.ID))
}
