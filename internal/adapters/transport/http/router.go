package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kilnworks/brickline/internal/adapters/transport/http/middleware"
	"github.com/kilnworks/brickline/internal/domain/auth/jwt"
	"github.com/kilnworks/brickline/internal/domain/auth/model"
	"github.com/kilnworks/brickline/internal/infra/config"
)

type RouterDeps struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Users   *UserHandler
	Issuer  jwt.TokenIssuer
}

// NewRouter assembles the gin engine with the full middleware chain
// and the /api/v1 route tree.
func NewRouter(cfg *config.Config, log *zap.Logger, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.NewRateLimitPerIP(50, 100, 10_000, time.Hour))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	authed := middleware.Authenticate(deps.Issuer)
	adminOnly := middleware.RequireRoles(model.RoleAdmin)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/register", deps.Auth.Register)
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/logout", deps.Auth.Logout)
		auth.POST("/refresh", deps.Auth.Refresh)
		auth.POST("/forgot-password", deps.Auth.ForgotPassword)
		auth.POST("/reset-password", deps.Auth.ResetPassword)
		auth.GET("/me", authed, deps.Auth.Me)
	}

	products := v1.Group("/products")
	{
		products.GET("", deps.Catalog.List)
		products.GET("/search", deps.Catalog.Search)
		products.GET("/categories", deps.Catalog.Categories)
		products.GET("/category/:category", deps.Catalog.ByCategory)
		products.GET("/:id", deps.Catalog.Get)

		products.POST("", authed, adminOnly, deps.Catalog.Create)
		products.PUT("/:id", authed, adminOnly, deps.Catalog.Update)
		products.PUT("/:id/stock", authed, adminOnly, deps.Catalog.UpdateStock)
		products.DELETE("/:id", authed, adminOnly, deps.Catalog.Delete)
	}

	users := v1.Group("/users", authed)
	{
		users.GET("/profile", deps.Users.GetProfile)
		users.PUT("/profile", deps.Users.UpdateProfile)
		users.PUT("/password", deps.Users.ChangePassword)

		users.GET("", adminOnly, deps.Users.List)
		users.GET("/:id", adminOnly, deps.Users.Get)
		users.PUT("/:id", adminOnly, deps.Users.Update)
		users.DELETE("/:id", adminOnly, deps.Users.Delete)
	}

	return router
}
