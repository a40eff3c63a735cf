// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/RomainLafont/project-g/internal/config"
	"github.com/RomainLafont/project-g/internal/handlers"
	"github.com/RomainLafont/project-g/internal/middleware"
	"github.com/RomainLafont/project-g/internal/models"
	"github.com/RomainLafont/project-g/internal/services"
	"github.com/RomainLafont/project-g/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	translator := services.NewPassthroughTranslator()

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	pricingService := services.NewPricingService(db)
	chatService := services.NewChatService(db, translator)
	orderService := services.NewOrderService(db, chatService)
	quoteService := services.NewQuoteService(db, pricingService, chatService)
	fileService := services.NewFileService(db, storageService, chatService, cfg.Upload.TokenTTLHours)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	orderHandler := handlers.NewOrderHandler(orderService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	pricingHandler := handlers.NewPricingFactorHandler(pricingService)
	chatHandler := handlers.NewChatHandler(chatService)
	fileHandler := handlers.NewFileHandler(fileService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(db), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(db), authHandler.GetProfile)
			auth.PUT("/me", middleware.AuthRequired(db), authHandler.UpdateProfile)
			auth.PUT("/me/password", middleware.AuthRequired(db), authHandler.ChangePassword)
		}

		// Tokenized file access, no session required
		public := v1.Group("/public")
		{
			public.GET("/files/:id", fileHandler.DownloadByToken)
		}

		// Everything below requires an authenticated, active account
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired(db))
		{
			// Supplier directory for order intake
			protected.GET("/suppliers", userHandler.ListSuppliers)

			// Orders
			orders := protected.Group("/orders")
			{
				orders.POST("", middleware.RoleRequired(models.UserRoleAdmin, models.UserRoleDentist), orderHandler.CreateOrder)
				orders.GET("", orderHandler.ListOrders)
				orders.GET("/:id", orderHandler.GetOrder)
				orders.PUT("/:id", orderHandler.UpdateOrder)
				orders.PATCH("/:id/status", orderHandler.UpdateStatus)

				// Quotes scoped to one order
				orders.POST("/:id/quotes", middleware.RoleRequired(models.UserRoleAdmin, models.UserRoleSupplier), quoteHandler.CreateQuote)
				orders.GET("/:id/quotes", quoteHandler.ListQuotes)

				// In-order conversation
				orders.POST("/:id/messages", chatHandler.PostMessage)
				orders.GET("/:id/messages", chatHandler.ListMessages)
				orders.POST("/:id/messages/read", chatHandler.MarkRead)

				// Attachments
				orders.POST("/:id/files", middleware.UploadRateLimit(), fileHandler.Upload)
				orders.GET("/:id/files", fileHandler.ListFiles)
			}

			// Quotes addressed directly
			quotes := protected.Group("/quotes")
			{
				quotes.GET("/:id", quoteHandler.GetQuote)
				quotes.PUT("/:id", middleware.RoleRequired(models.UserRoleAdmin, models.UserRoleSupplier), quoteHandler.ReviseQuote)
				quotes.POST("/:id/accept", quoteHandler.AcceptQuote)
				quotes.POST("/:id/reject", quoteHandler.RejectQuote)
			}

			// Conversations overview
			conversations := protected.Group("/conversations")
			{
				conversations.GET("", chatHandler.ListConversations)
				conversations.GET("/unread-count", chatHandler.UnreadCount)
			}

			// Messages addressed directly
			protected.DELETE("/messages/:id", chatHandler.DeleteMessage)

			// Files addressed directly
			files := protected.Group("/files")
			{
				files.GET("/:id/download", fileHandler.Download)
				files.POST("/:id/token", fileHandler.IssueToken)
				files.DELETE("/:id", fileHandler.Delete)
			}

			// Admin routes
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminRequired())
			{
				adminUsers := admin.Group("/users")
				{
					adminUsers.GET("", userHandler.ListUsers)
					adminUsers.GET("/:id", userHandler.GetUser)
					adminUsers.POST("/:id/activate", userHandler.ActivateUser)
					adminUsers.POST("/:id/deactivate", userHandler.DeactivateUser)
					adminUsers.POST("/:id/verify", userHandler.VerifyUser)
				}

				adminPricing := admin.Group("/pricing-factors")
				{
					adminPricing.POST("", pricingHandler.CreateFactor)
					adminPricing.GET("", pricingHandler.ListFactors)
					adminPricing.GET("/:id", pricingHandler.GetFactor)
					adminPricing.PUT("/:id", pricingHandler.UpdateFactor)
					adminPricing.DELETE("/:id", pricingHandler.DeactivateFactor)
				}
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", cfg.Upload.LocalDir)
	}

	return r
}
