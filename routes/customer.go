package routes

import (
	"github.com/RoelVilladiego02/ecommerce-api/cache"
	cartControllers "github.com/RoelVilladiego02/ecommerce-api/controllers/cart"
	orderControllers "github.com/RoelVilladiego02/ecommerce-api/controllers/order"
	productcontroller "github.com/RoelVilladiego02/ecommerce-api/controllers/product"
	"github.com/RoelVilladiego02/ecommerce-api/events"
	"github.com/RoelVilladiego02/ecommerce-api/middleware"
	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupCustomerRoutes registers the storefront endpoints. Requires a JWT
// with the customer role.
func SetupCustomerRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher, store *cache.Cache) {
	customer := r.Group("/")
	customer.Use(middleware.ValidateToken, middleware.RequireRole(models.RoleCustomer))
	{
		// ──────────────── Browse Products ────────────────
		customer.GET("/products", productcontroller.GetProducts(db))
		customer.GET("/products/:id", productcontroller.GetProductByID(db))

		// ──────────────── Shopping Cart ────────────────
		customer.GET("/cart", cartControllers.GetCart(db))
		customer.POST("/cart", cartControllers.AddCartItem(db))
		customer.DELETE("/cart/:product_id", cartControllers.RemoveCartItem(db))
		customer.POST("/cart/clear", cartControllers.ClearCart(db))

		// ──────────────── Checkout & Order History ────────────────
		customer.POST("/checkout", orderControllers.CheckoutHandler(db, pub, store))
		customer.GET("/orders/mine", orderControllers.GetMyOrdersHandler(db))
	}
}
