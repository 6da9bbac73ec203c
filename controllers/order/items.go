package orderControllers

import (
	"errors"
	"net/http"

	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/RoelVilladiego02/ecommerce-api/stock"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateOrderItemRequest struct {
	OrderID   uint `json:"order_id" binding:"required"`
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateOrderItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

type orderItemView struct {
	models.OrderItem
	Subtotal float64 `json:"subtotal"`
}

var errOrderNotPending = errors.New("order is not pending")

// recomputeOrderTotal keeps order.total equal to the sum of its items'
// price×quantity after an item mutation.
func recomputeOrderTotal(tx *gorm.DB, orderID uint) error {
	var total float64
	if err := tx.Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(SUM(price * quantity), 0)").
		Scan(&total).Error; err != nil {
		return err
	}
	return tx.Model(&models.Order{}).Where("id = ?", orderID).Update("total", total).Error
}

func itemViews(items []models.OrderItem) []orderItemView {
	views := make([]orderItemView, 0, len(items))
	for _, item := range items {
		views = append(views, orderItemView{OrderItem: item, Subtotal: item.Subtotal()})
	}
	return views
}

// -------- Handlers --------

// GET /orders/:orderID/items (employee)
func GetOrderItemsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		if err := db.Preload("Items").First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order items"})
			return
		}

		var total float64
		for _, item := range order.Items {
			total += item.Subtotal()
		}
		c.JSON(http.StatusOK, gin.H{"data": itemViews(order.Items), "total": total})
	}
}

// POST /order-items (employee)
//
// Adds a line to a pending order, reserving the requested stock and
// bringing the order total back in line with its items.
func CreateOrderItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateOrderItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var created models.OrderItem
		err := db.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.First(&order, "id = ?", req.OrderID).Error; err != nil {
				return err
			}
			if order.Status != models.OrderStatusPending {
				return errOrderNotPending
			}

			var product models.Product
			if err := tx.First(&product, "id = ?", req.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return stock.ErrProductNotFound
				}
				return err
			}

			if err := stock.Reserve(tx, product.ID, req.Quantity); err != nil {
				return err
			}

			created = models.OrderItem{
				OrderID:     order.ID,
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    req.Quantity,
				Price:       product.Price,
			}
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
			return recomputeOrderTotal(tx, order.ID)
		})
		if err != nil {
			respondOrderItemError(c, err, "Failed to create order item")
			return
		}

		c.JSON(http.StatusCreated, orderItemView{OrderItem: created, Subtotal: created.Subtotal()})
	}
}

// PUT /order-items/:itemID (employee)
//
// The old quantity is released before the new one is reserved, so shrinking
// a line always succeeds and growing it is checked against live stock.
func UpdateOrderItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateOrderItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updated models.OrderItem
		err := db.Transaction(func(tx *gorm.DB) error {
			var item models.OrderItem
			if err := tx.First(&item, "id = ?", c.Param("itemID")).Error; err != nil {
				return err
			}

			var order models.Order
			if err := tx.First(&order, "id = ?", item.OrderID).Error; err != nil {
				return err
			}
			if order.Status != models.OrderStatusPending {
				return errOrderNotPending
			}

			if err := stock.Release(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := stock.Reserve(tx, item.ProductID, req.Quantity); err != nil {
				return err
			}

			if err := tx.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
				return err
			}
			updated = item
			return recomputeOrderTotal(tx, order.ID)
		})
		if err != nil {
			respondOrderItemError(c, err, "Failed to update order item")
			return
		}

		c.JSON(http.StatusOK, orderItemView{OrderItem: updated, Subtotal: updated.Subtotal()})
	}
}

// DELETE /order-items/:itemID (employee)
func DeleteOrderItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := db.Transaction(func(tx *gorm.DB) error {
			var item models.OrderItem
			if err := tx.First(&item, "id = ?", c.Param("itemID")).Error; err != nil {
				return err
			}

			var order models.Order
			if err := tx.First(&order, "id = ?", item.OrderID).Error; err != nil {
				return err
			}
			if order.Status != models.OrderStatusPending {
				return errOrderNotPending
			}

			if err := stock.Release(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			if err := tx.Delete(&item).Error; err != nil {
				return err
			}
			return recomputeOrderTotal(tx, order.ID)
		})
		if err != nil {
			respondOrderItemError(c, err, "Failed to delete order item")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order item removed"})
	}
}

func respondOrderItemError(c *gin.Context, err error, fallback string) {
	var insufficient *stock.InsufficientStockError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, errOrderNotPending):
		c.JSON(http.StatusForbidden, gin.H{"error": "Can only modify pending orders"})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{"error": insufficient.Error()})
	case errors.Is(err, stock.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
