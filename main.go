package main

import (
	"errors"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tabletap/config"
	"tabletap/events"
	"tabletap/handlers"
	"tabletap/models"
	"tabletap/repositories"
	"tabletap/services"
	"tabletap/utils"
)

func main() {

	cfg := config.Load()
	utils.SetJWTSecret(cfg.JWTSecret)

	/* DATABASE SETUP STARTS */

	var dialector gorm.Dialector
	if cfg.UsesPostgres() {
		dialector = postgres.Open(cfg.DatabaseURI)
	} else {
		dialector = sqlite.Open(cfg.DatabaseURI)
	}

	db, openDbErr := gorm.Open(dialector, &gorm.Config{})
	if openDbErr != nil {
		log.Fatalf("Failed to connect to database: %v", openDbErr)
	}

	migrateErr := db.AutoMigrate(&models.User{}, &models.MenuItem{}, &models.Order{}, &models.OrderItem{})
	if migrateErr != nil {
		log.Fatalf("Failed to migrate database: %v", migrateErr)
	}
	/* DATABASE SETUP ENDS */

	/* EVENT PLUMBING STARTS */

	hub := events.NewHub()
	defer hub.Close()

	publishers := events.Fanout{hub}
	if cfg.AMQPURL != "" {
		rabbit, err := events.DialRabbit(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("Failed to connect to RabbitMQ: %v", err)
		}
		defer rabbit.Close()
		if err := rabbit.Ping(); err != nil {
			log.Fatalf("RabbitMQ ping failed: %v", err)
		}
		log.Printf("RabbitMQ connected, mirroring order events to exchange %q", cfg.AMQPExchange)
		publishers = append(publishers, rabbit)
	}
	/* EVENT PLUMBING ENDS */

	userRepo := repositories.NewUserRepository(db)
	menuRepo := repositories.NewMenuRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	authService := services.NewAuthService(userRepo)
	orderService := services.NewOrderService(orderRepo, menuRepo, publishers)

	seedAdmin(authService, cfg)

	authHandler := handlers.NewAuthHandler(authService)
	menuHandler := handlers.NewMenuHandler(menuRepo)
	orderHandler := handlers.NewOrderHandler(orderService, orderRepo)
	streamHandler := handlers.NewStreamHandler(hub, orderRepo)

	/* ROUTING STARTS */
	if cfg.AppEnv != "development" && cfg.AppEnv != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	var corsConfig cors.Config
	if cfg.AppEnv == "debug" || cfg.AppEnv == "development" {
		// Development: Allow all origins
		corsConfig = cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	} else {
		corsConfig = cors.Config{
			AllowOrigins:     []string{cfg.CORSAllowedOrigin},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	}

	router.Use(cors.New(corsConfig))

	// --- Authentication Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	// --- Public Menu Route --- (Auth token not needed)
	router.GET("/menu", menuHandler.ListMenu)

	// --- Diner Protected Routes ---
	dinerRoutes := router.Group("/diner", handlers.AuthMiddleware())
	{
		orderRoutes := dinerRoutes.Group("/orders")
		{
			orderRoutes.POST("", orderHandler.PlaceOrder)
			orderRoutes.POST("/quote", orderHandler.Quote)
			orderRoutes.GET("", orderHandler.GetMyOrders)
			orderRoutes.GET("/:order_id", orderHandler.GetMyOrder)
		}
		dinerRoutes.GET("/tables/:table_number/availability", orderHandler.TableAvailability)
	}

	// --- Admin Protected Routes ---
	adminRoutes := router.Group("/admin", handlers.AuthMiddleware(), handlers.RequireRole(models.UserRoleAdmin))
	{
		menuRoutes := adminRoutes.Group("/menu")
		{
			menuRoutes.POST("", menuHandler.CreateMenuItem)
			menuRoutes.GET("", menuHandler.ListAllMenu)
			menuRoutes.GET("/:item_id", menuHandler.GetMenuItem)
			menuRoutes.PUT("/:item_id", menuHandler.UpdateMenuItem)
			menuRoutes.DELETE("/:item_id", menuHandler.DeleteMenuItem)
		}

		orderRoutes := adminRoutes.Group("/orders")
		{
			orderRoutes.GET("", orderHandler.ListOrders)
			orderRoutes.GET("/:order_id", orderHandler.GetOrder)
			orderRoutes.PUT("/:order_id/status", orderHandler.UpdateOrderStatus)
		}

		// Lives outside /orders because the router cannot mix a static
		// segment with the :order_id parameter.
		adminRoutes.GET("/stream", streamHandler.LiveOrders)
		adminRoutes.GET("/reports/sales", orderHandler.SalesReport)
	}

	/* ROUTING ENDS */

	addr := ":" + cfg.Port
	log.Printf("Server listening on port %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// seedAdmin creates the configured admin account on first boot. An already
// registered admin email is not an error.
func seedAdmin(auth *services.AuthService, cfg config.Config) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}
	_, err := auth.Register(cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword, models.UserRoleAdmin)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return
		}
		log.Fatalf("Failed to seed admin account: %v", err)
	}
	log.Printf("Seeded admin account %s", models.NormalizeEmail(cfg.AdminEmail))
}
