package orderControllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/RoelVilladiego02/ecommerce-api/cache"
	"github.com/RoelVilladiego02/ecommerce-api/events"
	"github.com/RoelVilladiego02/ecommerce-api/middleware"
	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/RoelVilladiego02/ecommerce-api/stock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// -------- Request Structs --------

type CheckoutItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Price     float64 `json:"price" binding:"min=0"` // declared by the client, never trusted
}

type CheckoutRequest struct {
	DeliveryAddress string               `json:"delivery_address" binding:"required"`
	ContactNumber   string               `json:"contact_number" binding:"required"`
	Message         string               `json:"message"`
	PaymentMethod   models.PaymentMethod `json:"payment_method" binding:"required"`
	Items           []CheckoutItemInput  `json:"items" binding:"required,min=1,dive"`
}

var ErrInvalidPaymentMethod = errors.New("invalid payment method")

// Generate unique order reference
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// -------- Core Logic --------

// Checkout converts the submitted line items into a persisted order with
// consistent stock accounting. Everything inside the transaction either
// commits together or not at all; a failed item leaves no stock decrement
// and no order rows behind. Items are processed in submission order and
// the total is computed from the authoritative product price, not the
// client-declared one.
func Checkout(db *gorm.DB, userID uint, req CheckoutRequest) (*models.Order, error) {
	if !models.ValidPaymentMethod(req.PaymentMethod) {
		return nil, ErrInvalidPaymentMethod
	}

	var order models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		var total float64
		var orderItems []models.OrderItem

		for _, item := range req.Items {
			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return stock.ErrProductNotFound
				}
				return err
			}

			if err := stock.Reserve(tx, product.ID, item.Quantity); err != nil {
				return err
			}

			total += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    item.Quantity,
				Price:       product.Price,
			})
		}

		order = models.Order{
			OrderRef:        generateOrderRef(),
			UserID:          userID,
			Items:           orderItems,
			Total:           total,
			Status:          models.OrderStatusPending,
			DeliveryAddress: req.DeliveryAddress,
			ContactNumber:   req.ContactNumber,
			Message:         req.Message,
			PaymentMethod:   req.PaymentMethod,
			CreatedAt:       time.Now(),
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// clearCheckedOutItems removes the ordered products from the user's cart.
// Runs after the checkout transaction commits; the order stands even if
// this cleanup fails.
func clearCheckedOutItems(db *gorm.DB, userID uint, items []CheckoutItemInput) error {
	var cart models.Cart
	if err := db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	return db.Where("cart_id = ? AND product_id IN ?", cart.CartID, productIDs).
		Delete(&models.CartItem{}).Error
}

// -------- Handlers --------

// POST /checkout (customer)
func CheckoutHandler(db *gorm.DB, pub *events.Publisher, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := Checkout(db, userID, req)
		if err != nil {
			middleware.RecordOrderOperation("checkout", false)

			var insufficient *stock.InsufficientStockError
			switch {
			case errors.As(err, &insufficient):
				c.JSON(http.StatusBadRequest, gin.H{"error": insufficient.Error()})
			case errors.Is(err, stock.ErrProductNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			case errors.Is(err, ErrInvalidPaymentMethod):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment method"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Checkout failed"})
			}
			return
		}

		if err := clearCheckedOutItems(db, userID, req.Items); err != nil {
			log.Printf("⚠️ Failed to clear cart for user %d: %v", userID, err)
		}

		middleware.RecordOrderOperation("checkout", true)
		BroadcastOrderUpdate("order.created", *order)
		pub.Publish(events.OrderEvent{OrderID: order.ID, Event: "created", ActorID: userID})
		store.Del(context.Background(), salesTotalCacheKey)

		c.JSON(http.StatusCreated, gin.H{"order_id": order.ID, "data": order})
	}
}
