package routes

import (
	"github.com/RoelVilladiego02/ecommerce-api/cache"
	"github.com/RoelVilladiego02/ecommerce-api/events"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRoutes is the single entry-point that wires up Auth, Customer, and
// Employee route groups. pub and store may be nil when the broker or cache
// is not configured.
func SetupRoutes(r *gin.Engine, db *gorm.DB, pub *events.Publisher, store *cache.Cache) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Customer routes (JWT-protected, customer role)
	SetupCustomerRoutes(r, db, pub, store)

	// Employee routes (JWT-protected, employee role)
	SetupEmployeeRoutes(r, db, pub, store)
}
