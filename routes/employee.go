package routes

import (
	"github.com/RoelVilladiego02/ecommerce-api/cache"
	orderControllers "github.com/RoelVilladiego02/ecommerce-api/controllers/order"
	productcontroller "github.com/RoelVilladiego02/ecommerce-api/controllers/product"
	"github.com/RoelVilladiego02/ecommerce-api/events"
	"github.com/RoelVilladiego02/ecommerce-api/middleware"
	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupEmployeeRoutes registers order management and catalog management.
// Requires a JWT with the employee role.
func SetupEmployeeRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher, store *cache.Cache) {
	employee := r.Group("/")
	employee.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleEmployee))
	{
		// ─────────── Product Management ───────────
		products := employee.Group("/manage/products")
		{
			products.POST("", productcontroller.CreateProduct(db))
			products.PUT("/:id", productcontroller.UpdateProduct(db))
			products.GET("", productcontroller.GetProducts(db))
			products.GET("/:id", productcontroller.GetProductByID(db))
			products.DELETE("/:id", productcontroller.DeleteProduct(db))
		}

		// ─────────── Order Management ───────────
		orders := employee.Group("/orders")
		{
			orders.GET("", orderControllers.GetOrdersHandler(db))
			orders.GET("/export", orderControllers.ExportOrdersHandler(db))
			orders.GET("/sales/total", orderControllers.SalesTotalHandler(db, store))
			orders.GET("/ws", orderControllers.OrderFeedHandler)
			orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))
			orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db, pub, store))
			orders.GET("/:orderID/allowed-transitions", orderControllers.AllowedTransitionsHandler(db))
			orders.GET("/:orderID/items", orderControllers.GetOrderItemsHandler(db))
			orders.DELETE("/:orderID", orderControllers.DeleteOrderHandler(db, pub))
		}

		// ─────────── Order Item Corrections ───────────
		items := employee.Group("/order-items")
		{
			items.POST("", orderControllers.CreateOrderItemHandler(db))
			items.PUT("/:itemID", orderControllers.UpdateOrderItemHandler(db))
			items.DELETE("/:itemID", orderControllers.DeleteOrderItemHandler(db))
		}
	}
}
