package routes

import (
	"github.com/RoelVilladiego02/ecommerce-api/auth"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterCustomer(db))
		authGroup.POST("/register/employee", auth.RegisterEmployee(db))
		authGroup.POST("/login", auth.Login(db))
	}
}
