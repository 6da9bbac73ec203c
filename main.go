package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/RoelVilladiego02/ecommerce-api/cache"
	"github.com/RoelVilladiego02/ecommerce-api/config"
	"github.com/RoelVilladiego02/ecommerce-api/events"
	"github.com/RoelVilladiego02/ecommerce-api/middleware"
	"github.com/RoelVilladiego02/ecommerce-api/models"
	"github.com/RoelVilladiego02/ecommerce-api/routes"
)

func main() {
	log.Println("✅ Starting application...")

	// Load environment variables
	_ = godotenv.Load()
	cfg := config.Load()

	// Init DB
	db := initDatabase(cfg)

	// Auto-migrate all tables
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusLog{},
	); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Optional order event publisher
	var pub *events.Publisher
	if cfg.RabbitMQURL != "" {
		var err error
		pub, err = events.NewPublisher(cfg.RabbitMQURL, cfg.OrderQueue)
		if err != nil {
			log.Printf("⚠️ RabbitMQ unavailable, order events disabled: %v", err)
		} else {
			defer pub.Close()
			log.Println("✅ Order event publisher connected")
		}
	}

	// Optional report cache
	var store *cache.Cache
	if cfg.RedisAddr != "" {
		store = cache.New(cfg.RedisAddr, cfg.RedisPass)
		defer store.Close()
		log.Println("✅ Redis cache enabled")
	}

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Metrics
	r.Use(middleware.PrometheusMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup routes
	routes.SetupRoutes(r, db, pub, store)

	// Start server
	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initDatabase sets up the GORM DB connection
func initDatabase(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("❌ Failed to connect DB: %v", err)
	}
	return db
}
