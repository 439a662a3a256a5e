package router

import (
	"net/http"

	"github.com/gamevault/storefront-backend/config"
	"github.com/gamevault/storefront-backend/internal/app/controller"
	"github.com/gamevault/storefront-backend/internal/middleware"
	"github.com/gamevault/storefront-backend/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	reviewController  *controller.ReviewController
	orderController   *controller.OrderController
	cartController    *controller.CartController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	httpMetrics       *metrics.HTTPMetrics
	gatherer          prometheus.Gatherer
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	reviewController *controller.ReviewController,
	orderController *controller.OrderController,
	cartController *controller.CartController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	httpMetrics *metrics.HTTPMetrics,
	gatherer prometheus.Gatherer,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		reviewController:  reviewController,
		orderController:   orderController,
		cartController:    cartController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		httpMetrics:       httpMetrics,
		gatherer:          gatherer,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware(r.httpMetrics))
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Storefront API is running",
		})
	})
	if r.gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(r.gatherer)))
	}

	authenticate := r.authMiddleware.Authenticate()
	requireAdmin := r.authMiddleware.RequireAdmin()
	authLimiter := middleware.NewRateLimiter(r.config.RateLimit.AuthPerSecond, r.config.RateLimit.AuthBurst)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimiter.Middleware(), r.authController.Register)
			auth.POST("/login", authLimiter.Middleware(), r.authController.Login)
			auth.GET("/validate", authenticate, r.authController.Validate)
			auth.GET("/me", authenticate, r.authController.GetMe)
			auth.POST("/logout", authenticate, r.authController.Logout)
		}

		products := api.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/categories", r.productController.ListCategories)
			products.GET("/brands", r.productController.ListBrands)
			products.GET("/:id", r.productController.GetProductByID)
			products.POST("/:id/reviews", authenticate, r.reviewController.CreateReview)

			admin := products.Group("", authenticate, requireAdmin)
			admin.POST("", r.productController.CreateProduct)
			admin.POST("/upload-url", r.uploadController.PresignProductImage)
			admin.PUT("/:id", r.productController.UpdateProduct)
			admin.DELETE("/:id", r.productController.DeleteProduct)
		}

		orders := api.Group("/orders", authenticate)
		{
			orders.POST("", r.orderController.CreateOrder)
			orders.GET("/myorders", r.orderController.GetMyOrders)
			orders.GET("/:id", r.orderController.GetOrderByID)
			orders.PUT("/:id/pay", r.orderController.PayOrder)
			orders.PUT("/:id/deliver", requireAdmin, r.orderController.DeliverOrder)
		}

		cart := api.Group("/cart", authenticate)
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddToCart)
			cart.PUT("/items/:productId", r.cartController.UpdateCartItem)
			cart.DELETE("/items/:productId", r.cartController.RemoveFromCart)
			cart.DELETE("", r.cartController.ClearCart)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
