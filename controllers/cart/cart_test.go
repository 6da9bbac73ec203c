package cartControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}))
	return db
}

func newCartRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", string(models.RoleCustomer))
		c.Next()
	})
	r.GET("/cart", GetCart(db))
	r.POST("/cart", AddCartItem(db))
	r.DELETE("/cart/:product_id", RemoveCartItem(db))
	r.POST("/cart/clear", ClearCart(db))
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func cartItems(t *testing.T, db *gorm.DB, userID uint) []models.CartItem {
	t.Helper()
	var cart models.Cart
	err := db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		require.ErrorIs(t, err, gorm.ErrRecordNotFound)
		return nil
	}
	return cart.Items
}

func TestAddCartItemCreatesCartLazily(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 10.00, 5)
	r := newCartRouter(db, 1)

	w := doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	items := cartItems(t, db, 1)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Adobo Meal", items[0].ProductName)
	assert.Equal(t, 10.00, items[0].ProductPrice)
}

func TestAddCartItemMergesQuantities(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 10.00, 10)
	r := newCartRouter(db, 1)

	doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 2})
	w := doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 3})
	require.Equal(t, http.StatusOK, w.Code)

	items := cartItems(t, db, 1)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

// The merged quantity is checked against live stock, not the snapshot.
func TestAddCartItemRejectsMergedQuantityBeyondStock(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 10.00, 4)
	r := newCartRouter(db, 1)

	doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 2})
	w := doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 3})
	require.Equal(t, http.StatusBadRequest, w.Code)

	items := cartItems(t, db, 1)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddCartItemUnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	r := newCartRouter(db, 1)

	w := doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: 999, Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCartEmptyForNewUser(t *testing.T) {
	db := setupTestDB(t)
	r := newCartRouter(db, 1)

	w := doRequest(t, r, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string][]models.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["cart"])
}

func TestRemoveCartItem(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 10.00, 5)
	r := newCartRouter(db, 1)

	doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 2})

	w := doRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/%d", product.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartItems(t, db, 1))

	w = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/cart/%d", product.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearCart(t *testing.T) {
	db := setupTestDB(t)
	first := createProduct(t, db, "Adobo Meal", 10.00, 5)
	second := createProduct(t, db, "Halo-Halo", 6.50, 5)
	r := newCartRouter(db, 1)

	doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: first.ID, Quantity: 1})
	doRequest(t, r, http.MethodPost, "/cart", CartItemInput{ProductID: second.ID, Quantity: 1})

	w := doRequest(t, r, http.MethodPost, "/cart/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, cartItems(t, db, 1))
}

// Carts are scoped per principal.
func TestCartsAreIsolatedBetweenUsers(t *testing.T) {
	db := setupTestDB(t)
	product := createProduct(t, db, "Adobo Meal", 10.00, 5)

	alice := newCartRouter(db, 1)
	bob := newCartRouter(db, 2)

	doRequest(t, alice, http.MethodPost, "/cart", CartItemInput{ProductID: product.ID, Quantity: 2})

	w := doRequest(t, bob, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string][]models.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["cart"])

	require.Len(t, cartItems(t, db, 1), 1)
}
