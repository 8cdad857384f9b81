package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing
	"github.com/redis/go-redis/v9"

	"github.com/Andressalasf/API-Store/internal/config"     // cache and rate-limit settings
	"github.com/Andressalasf/API-Store/internal/handler"    // handlers implementing the business logic
	"github.com/Andressalasf/API-Store/internal/middleware" // JWT, role, cache and rate-limit middleware
)

// RegisterRoutes registers routes that live outside the API base path.
// Currently this is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI mounts the whole /api/v1 surface:
//
//	/api/v1                   – API index
//	/api/v1/auth/...          – session lifecycle (rate limited)
//	/api/v1/products/...      – public catalog (GET responses cached)
//	/api/v1/users/...         – admin user management (JWT + admin role)
//
// The rdb client may be nil, in which case caching and rate limiting
// degrade to pass-through middleware.
func RegisterAPI(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	a *handler.AuthHandler, p *handler.ProductHandler, u *handler.UserHandler) {

	api := e.Group("/api/v1")
	api.GET("", handler.Index)

	// Auth endpoints are the natural brute-force target, so the token
	// bucket goes on this group only.
	auth := api.Group("/auth", middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	auth.POST("/register", a.Register)
	auth.POST("/login", a.Login)
	auth.POST("/refresh-token", a.Refresh)
	auth.POST("/logout", a.Logout)
	// Profile is the one auth route behind the JWT middleware; everything
	// else on this group authenticates through credentials or the
	// refresh token itself.
	auth.GET("/profile", a.Profile, middleware.JWTAuth(cfg.JWTSecret))

	// The catalog is public per the storefront design; GET responses go
	// through the Redis response cache.
	products := api.Group("/products", middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	products.GET("", p.GetAll)
	products.GET("/search", p.Search)
	products.GET("/category/:categoryId", p.GetByCategory)
	products.GET("/:id", p.GetByID)
	products.POST("", p.Create)
	products.PUT("/:id", p.Update)
	products.DELETE("/:id", p.Delete)

	// User management is admin-only.
	users := api.Group("/users", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole("admin"))
	users.GET("", u.List)
	users.PUT("/:id", u.Update)
	users.DELETE("/:id", u.Delete)
}
