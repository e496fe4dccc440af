package main

import (
	"context"
	"log"
	"net/http"

	"mallhub-server/config"
	"mallhub-server/database"
	"mallhub-server/handlers"
	"mallhub-server/models"
	"mallhub-server/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Connect to database
	db, err := database.Connect(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize tables
	if err := db.InitializeTables(); err != nil {
		log.Fatal("Failed to initialize tables:", err)
	}

	// Set Gin mode
	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure this properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "MallHub server is running",
		})
	})

	// Initialize handlers
	handlers.InitializeHandlers(db)

	// Start the delivery sweep job
	sweeper := services.NewDeliverySweeper(db, services.NewDeliveryService(db), config.AppConfig.SweepInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sweeper.Run(ctx)

	api := router.Group("/api/v1")
	{
		// Authentication routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.GET("/profile", handlers.AuthMiddleware(), handlers.Profile)
		}

		// Catalog routes (public reads)
		api.GET("/sections", handlers.ListSections)
		api.GET("/categories", handlers.ListCategories)
		api.GET("/stores", handlers.ListStores)
		api.GET("/products", handlers.ListProducts)
		api.GET("/products/:id", handlers.GetProduct)

		// Catalog management
		manage := api.Group("/", handlers.AuthMiddleware())
		{
			admin := manage.Group("/", handlers.RequireRole(models.RoleAdmin))
			{
				admin.POST("/sections", handlers.CreateSection)
				admin.POST("/categories", handlers.CreateCategory)
			}

			merchant := manage.Group("/", handlers.RequireRole(models.RoleStoreManager, models.RoleAdmin))
			{
				merchant.POST("/stores", handlers.CreateStore)
				merchant.POST("/stores/:id/discount", handlers.SetStoreDiscount)
				merchant.POST("/products", handlers.CreateProduct)
				merchant.PUT("/products/:id", handlers.UpdateProduct)
				merchant.DELETE("/products/:id", handlers.DeleteProduct)
			}
		}

		// Cart routes
		cart := api.Group("/cart", handlers.AuthMiddleware())
		{
			cart.GET("", handlers.GetCart)
			cart.GET("/bill", handlers.GetCart)
			cart.POST("/items", handlers.AddToCart)
			cart.PUT("/items/:item_id", handlers.UpdateCartItem)
			cart.POST("/items/:item_id/decrease", handlers.DecreaseCartItem)
			cart.DELETE("/items/:item_id", handlers.RemoveCartItem)
			cart.DELETE("", handlers.ClearCart)
		}

		// Loyalty routes
		loyalty := api.Group("/loyalty", handlers.AuthMiddleware())
		{
			loyalty.GET("/points", handlers.GetUserPoints)
			loyalty.GET("/points-conversion", handlers.PointsConversion)
			loyalty.GET("/prizes", handlers.ListPrizes)
			loyalty.GET("/prizes/:id", handlers.GetPrize)
			loyalty.POST("/redeem", handlers.RedeemPrize)
			loyalty.GET("/redemptions", handlers.ListRedemptions)
			loyalty.GET("/checkout/points-preview", handlers.CheckoutPointsPreview)
			loyalty.POST("/checkout/apply-discount", handlers.ApplyDiscount)

			loyaltyAdmin := loyalty.Group("/admin", handlers.RequireRole(models.RoleAdmin))
			{
				loyaltyAdmin.GET("/settings", handlers.GetLoyaltySettings)
				loyaltyAdmin.PUT("/settings", handlers.UpdateLoyaltySettings)
				loyaltyAdmin.POST("/diamonds", handlers.CreateDiamond)
				loyaltyAdmin.GET("/diamonds/store/:store_id", handlers.ListStoreDiamonds)
				loyaltyAdmin.PUT("/diamonds/:id", handlers.UpdateDiamond)
				loyaltyAdmin.DELETE("/diamonds/:id", handlers.DeleteDiamond)
			}

			loyaltyManage := loyalty.Group("/manage", handlers.RequireRole(models.RoleStoreManager, models.RoleAdmin))
			{
				loyaltyManage.POST("/prizes", handlers.CreatePrize)
				loyaltyManage.PUT("/prizes/:id", handlers.UpdatePrize)
				loyaltyManage.DELETE("/prizes/:id", handlers.DeletePrize)
				loyaltyManage.PUT("/redemptions/:id/status", handlers.UpdateRedemptionStatus)
			}
		}

		// Discount code routes
		discounts := api.Group("/discounts", handlers.AuthMiddleware())
		{
			discounts.POST("/discount-codes/validate", handlers.ValidateDiscountCode)
			discounts.GET("/discount-codes/active", handlers.ListActiveDiscountCodes)

			discountAdmin := discounts.Group("/", handlers.RequireRole(models.RoleAdmin))
			{
				discountAdmin.GET("/discount-codes", handlers.ListDiscountCodes)
				discountAdmin.POST("/discount-codes", handlers.CreateDiscountCode)
				discountAdmin.GET("/discount-codes/:id", handlers.GetDiscountCode)
				discountAdmin.PUT("/discount-codes/:id", handlers.UpdateDiscountCode)
				discountAdmin.DELETE("/discount-codes/:id", handlers.DeleteDiscountCode)
			}
		}

		// Payment routes
		payment := api.Group("/payment", handlers.AuthMiddleware())
		{
			payment.GET("/preview", handlers.PaymentPreview)
			payment.POST("/process", handlers.ProcessPayment)
			payment.GET("/history", handlers.PaymentHistory)
			payment.GET("/order-status", handlers.OrderStatus)
		}

		// Delivery routes
		delivery := api.Group("/delivery", handlers.AuthMiddleware())
		{
			courier := delivery.Group("/", handlers.RequireRole(models.RoleDelivery))
			{
				courier.GET("/orders", handlers.CourierOrders)
				courier.PUT("/orders/:id/status", handlers.UpdateDeliveryStatus)
				courier.GET("/history", handlers.DeliveryHistory)
				courier.GET("/returns", handlers.CourierReturns)
			}

			delivery.POST("/customer/returns", handlers.CreateReturnRequest)
			delivery.GET("/customer/returns", handlers.CustomerReturns)
			delivery.PUT("/returns/:id/status", handlers.UpdateReturnStatus)

			deliveryAdmin := delivery.Group("/admin", handlers.RequireRole(models.RoleAdmin))
			{
				deliveryAdmin.GET("/returns/pending", handlers.PendingReturns)
				deliveryAdmin.PUT("/returns/:id/assign", handlers.AssignReturn)
				deliveryAdmin.POST("/returns/auto-assign", handlers.AutoAssignReturns)
			}
		}
	}

	log.Printf("Server starting on port %s", config.AppConfig.ServerPort)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+config.AppConfig.ServerPort, corsHandler.Handler(router)))
}
