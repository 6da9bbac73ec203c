package orderControllers

import (
	"context"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/RoelVilladiego02/ecommerce-api/cache"
	"github.com/RoelVilladiego02/ecommerce-api/events"
	"github.com/RoelVilladiego02/ecommerce-api/middleware"
	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/RoelVilladiego02/ecommerce-api/stock"
	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

const (
	ordersPerPage      = 15
	salesTotalCacheKey = "orders:sales_total"
	salesTotalCacheTTL = time.Minute
)

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// applyDateRange filters created_at by the optional start_date/end_date
// query params (YYYY-MM-DD, end date inclusive).
func applyDateRange(c *gin.Context, query *gorm.DB) (*gorm.DB, error) {
	if startDate := c.Query("start_date"); startDate != "" {
		start, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return nil, errors.New("invalid start_date")
		}
		query = query.Where("created_at >= ?", start)
	}
	if endDate := c.Query("end_date"); endDate != "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return nil, errors.New("invalid end_date")
		}
		query = query.Where("created_at < ?", end.Add(24*time.Hour))
	}
	return query, nil
}

// -------- Handlers --------

// GET /orders?status=&start_date=&end_date=&page= (employee)
func GetOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Order{})

		if status := c.Query("status"); status != "" {
			if !models.ValidOrderStatus(models.OrderStatus(status)) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
				return
			}
			query = query.Where("status = ?", status)
		}

		query, err := applyDateRange(c, query)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}

		var total int64
		if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}

		var orders []models.Order
		if err := query.
			Preload("Items").
			Order("created_at DESC").
			Offset((page - 1) * ordersPerPage).
			Limit(ordersPerPage).
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		lastPage := int(math.Ceil(float64(total) / float64(ordersPerPage)))
		if lastPage < 1 {
			lastPage = 1
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"meta": gin.H{
				"current_page": page,
				"last_page":    lastPage,
				"per_page":     ordersPerPage,
				"total":        total,
			},
		})
	}
}

// GET /orders/mine (customer)
func GetMyOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.CurrentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID (employee)
//
// Accepts either a numeric id or an order_ref. The two lookups stay
// separate so a non-numeric ref never hits the integer id column.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		query := db.Preload("Items")
		if _, convErr := strconv.Atoi(id); convErr == nil {
			query = query.Where("id = ?", id)
		} else {
			query = query.Where("order_ref = ?", id)
		}

		var order models.Order
		if err := query.First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status (employee)
//
// Setting the current status again is a no-op success; any other target
// must appear in the transition table for the order's current status.
func UpdateOrderStatusHandler(db *gorm.DB, pub *events.Publisher, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _ := middleware.CurrentUserID(c)

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if !models.ValidOrderStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
			return
		}

		var order models.Order
		if err := db.First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		if order.Status == req.Status {
			c.JSON(http.StatusOK, gin.H{
				"message": "Order already " + string(req.Status),
				"data":    order,
			})
			return
		}

		if !models.CanTransition(order.Status, req.Status) {
			middleware.RecordOrderOperation("status_update", false)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cannot transition from " + string(order.Status) + " to " + string(req.Status),
			})
			return
		}

		fromStatus := order.Status
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&order).Update("status", req.Status).Error; err != nil {
				return err
			}
			return tx.Create(&models.OrderStatusLog{
				OrderID:    order.ID,
				FromStatus: fromStatus,
				ToStatus:   req.Status,
				ActorID:    actorID,
			}).Error
		})
		if err != nil {
			middleware.RecordOrderOperation("status_update", false)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
			return
		}

		log.Printf("📦 Order %d status: %s → %s (by user %d)", order.ID, fromStatus, req.Status, actorID)
		middleware.RecordOrderOperation("status_update", true)
		BroadcastOrderUpdate("order.status_changed", order)
		pub.Publish(events.OrderEvent{
			OrderID:    order.ID,
			Event:      "status_changed",
			FromStatus: string(fromStatus),
			ToStatus:   string(req.Status),
			ActorID:    actorID,
		})
		store.Del(context.Background(), salesTotalCacheKey)

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully", "data": order})
	}
}

// GET /orders/:orderID/allowed-transitions (employee)
func AllowedTransitionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var order models.Order
		if err := db.First(&order, "id = ?", c.Param("orderID")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"current_status":     order.Status,
			"allowedTransitions": models.AllowedTransitions(order.Status),
		})
	}
}

// DELETE /orders/:orderID (employee)
//
// Only pending orders may be deleted; the status is re-checked inside the
// transaction so a concurrent completion cannot slip past the guard. Stock
// reserved by the order is returned.
func DeleteOrderHandler(db *gorm.DB, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, _ := middleware.CurrentUserID(c)
		orderID := c.Param("orderID")

		var notPending bool
		err := db.Transaction(func(tx *gorm.DB) error {
			var order models.Order
			if err := tx.Preload("Items").First(&order, "id = ?", orderID).Error; err != nil {
				return err
			}
			if order.Status != models.OrderStatusPending {
				notPending = true
				return errors.New("order is not pending")
			}

			for _, item := range order.Items {
				if err := stock.Release(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}

			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			return tx.Delete(&order).Error
		})
		if err != nil {
			middleware.RecordOrderOperation("delete", false)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
				return
			}
			if notPending {
				c.JSON(http.StatusForbidden, gin.H{"error": "Can only delete pending orders"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
			return
		}

		middleware.RecordOrderOperation("delete", true)
		pub.Publish(events.OrderEvent{Event: "deleted", ActorID: actorID})
		c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
	}
}

// GET /orders/sales/total?start_date=&end_date= (employee)
//
// Sales are the sum of completed order totals. The unfiltered figure is
// cached briefly; checkout and status changes invalidate it.
func SalesTotalHandler(db *gorm.DB, store *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		filtered := c.Query("start_date") != "" || c.Query("end_date") != ""

		if !filtered {
			var cached float64
			if found, err := store.GetJSON(c.Request.Context(), salesTotalCacheKey, &cached); err == nil && found {
				c.JSON(http.StatusOK, gin.H{"total_sales": cached})
				return
			}
		}

		query := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusCompleted)
		query, err := applyDateRange(c, query)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var totalSales float64
		if err := query.Select("COALESCE(SUM(total), 0)").Scan(&totalSales).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute sales total"})
			return
		}

		if !filtered {
			if err := store.SetJSON(c.Request.Context(), salesTotalCacheKey, totalSales, salesTotalCacheTTL); err != nil {
				log.Printf("⚠️ Failed to cache sales total: %v", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"total_sales": totalSales})
	}
}

// GET /orders/export (employee)
func ExportOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Model(&models.Order{})
		query, err := applyDateRange(c, query)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var orders []models.Order
		if err := query.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"ID", "OrderRef", "UserID", "Total", "Status",
			"DeliveryAddress", "ContactNumber", "PaymentMethod", "Items", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.OrderRef)
			row.AddCell().SetValue(o.UserID)
			row.AddCell().SetValue(o.Total)
			row.AddCell().SetValue(string(o.Status))
			row.AddCell().SetValue(o.DeliveryAddress)
			row.AddCell().SetValue(o.ContactNumber)
			row.AddCell().SetValue(string(o.PaymentMethod))
			row.AddCell().SetValue(len(o.Items))
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
