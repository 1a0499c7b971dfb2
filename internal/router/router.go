// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/bookswap/bookswap-backend/internal/config"
	"github.com/bookswap/bookswap-backend/internal/handlers"
	"github.com/bookswap/bookswap-backend/internal/middleware"
	"github.com/bookswap/bookswap-backend/internal/services"
	"github.com/bookswap/bookswap-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 storage unavailable, falling back to local uploads")
		storageService = services.NewLocalStorageService(cfg)
	}
	paymentService := services.NewPaymentService(cfg)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db, storageService)
	bookService := services.NewBookService(db, cfg)
	exchangeService := services.NewExchangeService(db, cfg, paymentService, notificationService)
	transactionService := services.NewTransactionService(db, cfg, paymentService, notificationService)
	reviewService := services.NewReviewService(db, notificationService)
	wishlistService := services.NewWishlistService(db)
	adminService := services.NewAdminService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, storageService)
	bookHandler := handlers.NewBookHandler(bookService, storageService)
	exchangeHandler := handlers.NewExchangeHandler(exchangeService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(adminService, transactionService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
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
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/verify-email/:token", authHandler.VerifyEmail)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", userHandler.GetPublicProfile)
			users.GET("/:id/reviews", reviewHandler.GetUserReviews)
			users.PUT("/me", middleware.AuthRequired(), userHandler.UpdateProfile)
			users.POST("/me/avatar", middleware.AuthRequired(), middleware.UploadRateLimit(), userHandler.UploadAvatar)
			users.DELETE("/me", middleware.AuthRequired(), userHandler.DeleteAccount)
		}

		// Book routes
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.SearchBooks)
			books.GET("/mine", middleware.AuthRequired(), bookHandler.GetMyBooks)
			books.GET("/:id", middleware.OptionalAuth(), bookHandler.GetBook)
			books.GET("/:id/reviews", reviewHandler.GetBookReviews)
			books.POST("", middleware.AuthRequired(), bookHandler.CreateBook)
			books.POST("/images", middleware.AuthRequired(), middleware.UploadRateLimit(), bookHandler.UploadImage)
			books.PUT("/:id", middleware.AuthRequired(), bookHandler.UpdateBook)
			books.DELETE("/:id", middleware.AuthRequired(), bookHandler.DeleteBook)
			books.POST("/:id/delist", middleware.AuthRequired(), bookHandler.DelistBook)
			books.POST("/:id/relist", middleware.AuthRequired(), bookHandler.RelistBook)
		}

		// Exchange routes
		exchanges := v1.Group("/exchanges")
		exchanges.Use(middleware.AuthRequired())
		{
			exchanges.POST("", exchangeHandler.CreateExchange)
			exchanges.GET("/sent", exchangeHandler.GetSentExchanges)
			exchanges.GET("/received", exchangeHandler.GetReceivedExchanges)
			exchanges.GET("/:id", exchangeHandler.GetExchange)
			exchanges.POST("/:id/accept", exchangeHandler.AcceptExchange)
			exchanges.POST("/:id/reject", exchangeHandler.RejectExchange)
			exchanges.POST("/:id/counter", exchangeHandler.MakeCounterOffer)
			exchanges.POST("/:id/pay", exchangeHandler.PayBalance)
			exchanges.POST("/:id/verify-payment", exchangeHandler.VerifyBalancePayment)
			exchanges.POST("/:id/complete", exchangeHandler.CompleteExchange)
			exchanges.POST("/:id/cancel", exchangeHandler.CancelExchange)
		}

		// Transaction routes
		transactions := v1.Group("/transactions")
		transactions.Use(middleware.AuthRequired())
		{
			transactions.POST("", transactionHandler.CreatePurchase)
			transactions.GET("", transactionHandler.GetUserTransactions)
			transactions.GET("/:txn_id", transactionHandler.GetTransaction)
			transactions.POST("/:txn_id/verify-payment", transactionHandler.VerifyPayment)
			transactions.PUT("/:txn_id/status", transactionHandler.UpdateStatus)
			transactions.POST("/:txn_id/cancel", transactionHandler.CancelPurchase)
		}

		// Review routes
		reviews := v1.Group("/reviews")
		reviews.Use(middleware.AuthRequired())
		{
			reviews.POST("", reviewHandler.CreateReview)
		}

		// Wishlist routes
		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.AuthRequired())
		{
			wishlist.GET("", wishlistHandler.GetWishlist)
			wishlist.POST("/:book_id", wishlistHandler.AddToWishlist)
			wishlist.DELETE("/:book_id", wishlistHandler.RemoveFromWishlist)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		notifications.Use(middleware.AuthRequired())
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)
			admin.GET("/users", adminHandler.GetUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
			admin.GET("/transactions", adminHandler.GetTransactions)
			admin.POST("/transactions/:txn_id/refund", adminHandler.RefundTransaction)
			admin.POST("/maintenance/release-reservations", adminHandler.ReleaseStaleReservations)
			admin.GET("/analytics", adminHandler.GetAnalytics)
		}
	}

	return r
}
