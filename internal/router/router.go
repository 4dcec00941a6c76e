package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/config"
	"github.com/storerate/storerate-backend/internal/app/controller"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/middleware"
	"github.com/storerate/storerate-backend/internal/validation"
)

type Router struct {
	authController      *controller.AuthController
	userController      *controller.UserController
	storeController     *controller.StoreController
	ratingController    *controller.RatingController
	dashboardController *controller.DashboardController
	authMiddleware      *middleware.AuthMiddleware
	rateLimiter         *middleware.RateLimiter
	metrics             *middleware.Metrics
	config              *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	storeController *controller.StoreController,
	ratingController *controller.RatingController,
	dashboardController *controller.DashboardController,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	metrics *middleware.Metrics,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:      authController,
		userController:      userController,
		storeController:     storeController,
		ratingController:    ratingController,
		dashboardController: dashboardController,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		metrics:             metrics,
		config:              cfg,
	}
}

// Setup builds the engine. It fails when the custom validation tags
// cannot be installed on gin's validator.
func (r *Router) Setup() (*gin.Engine, error) {
	gin.SetMode(r.config.Server.GinMode)
	if err := validation.Register(); err != nil {
		return nil, err
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
	}
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
		})
	})
	if r.metrics != nil {
		router.GET("/metrics", r.metrics.Handler())
	}

	authenticated := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.limited(r.authController.Register)...)
			auth.POST("/login", r.limited(r.authController.Login)...)
			auth.PUT("/password", authenticated, r.authController.UpdatePassword)
			auth.GET("/profile", authenticated, r.authController.GetProfile)
			auth.POST("/logout", authenticated, r.authController.Logout)
		}

		stores := api.Group("/stores")
		{
			stores.GET("", r.authMiddleware.OptionalAuthenticate(), r.storeController.ListStores)
			stores.GET("/admin/list", authenticated, adminOnly, r.storeController.ListStoresForAdmin)
			stores.GET("/:id", r.authMiddleware.OptionalAuthenticate(), r.storeController.GetStore)
			stores.POST("", authenticated, adminOnly, r.storeController.CreateStore)
			stores.DELETE("/:id", authenticated, adminOnly, r.storeController.DeleteStore)
		}

		users := api.Group("/users")
		users.Use(authenticated, adminOnly)
		{
			users.GET("", r.userController.ListUsers)
			users.GET("/:id", r.userController.GetUser)
			users.POST("", r.userController.CreateUser)
			users.DELETE("/:id", r.userController.DeleteUser)
		}

		ratings := api.Group("/ratings")
		ratings.Use(authenticated)
		{
			ratings.POST("",
				r.authMiddleware.RequireRole(model.RoleUser),
				r.ratingController.SubmitRating,
			)
			ratings.GET("/store/:storeId", r.ratingController.GetUserRatingForStore)
			ratings.GET("/my-store",
				r.authMiddleware.RequireRole(model.RoleStoreOwner),
				r.ratingController.GetMyStoreRatings,
			)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(authenticated, adminOnly)
		{
			dashboard.GET("/stats", r.dashboardController.GetStats)
		}
	}

	return router, nil
}

// limited puts the per-IP limiter in front of h when one is configured.
func (r *Router) limited(h gin.HandlerFunc) []gin.HandlerFunc {
	if r.rateLimiter == nil {
		return []gin.HandlerFunc{h}
	}
	return []gin.HandlerFunc{r.rateLimiter.Handler(), h}
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

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
