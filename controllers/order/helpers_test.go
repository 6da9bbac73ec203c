package orderControllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
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
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusLog{},
	))
	return db
}

// authAs injects the authenticated principal the way middleware.ValidateToken
// would after parsing a real token.
func authAs(userID uint, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", string(role))
		c.Next()
	}
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

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func createOrder(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus, items []models.OrderItem) models.Order {
	t.Helper()
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	order := models.Order{
		OrderRef:        fmt.Sprintf("test-%s-%d", strings.ReplaceAll(t.Name(), "/", "_"), userID),
		UserID:          userID,
		Items:           items,
		Total:           total,
		Status:          status,
		DeliveryAddress: "123 Mabini St",
		ContactNumber:   "09171234567",
		PaymentMethod:   models.PaymentMethodCash,
	}
	require.NoError(t, db.Create(&order).Error)
	return order
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", id).Error)
	return product.Stock
}

func newCheckoutRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := gin.New()
	r.POST("/checkout", authAs(userID, models.RoleCustomer), CheckoutHandler(db, nil, nil))
	return r
}

func newOrderRouter(db *gorm.DB, userID uint) *gin.Engine {
	r := gin.New()
	employee := r.Group("/", authAs(userID, models.RoleEmployee))
	employee.GET("/orders", GetOrdersHandler(db))
	employee.GET("/orders/sales/total", SalesTotalHandler(db, nil))
	employee.GET("/orders/:orderID", GetOrderByIDHandler(db))
	employee.PUT("/orders/:orderID/status", UpdateOrderStatusHandler(db, nil, nil))
	employee.GET("/orders/:orderID/allowed-transitions", AllowedTransitionsHandler(db))
	employee.GET("/orders/:orderID/items", GetOrderItemsHandler(db))
	employee.DELETE("/orders/:orderID", DeleteOrderHandler(db, nil))
	employee.POST("/order-items", CreateOrderItemHandler(db))
	employee.PUT("/order-items/:itemID", UpdateOrderItemHandler(db))
	employee.DELETE("/order-items/:itemID", DeleteOrderItemHandler(db))
	return r
}
