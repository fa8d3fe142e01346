package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/railway-seat-reservation/internal/config"
    "github.com/iliyamo/railway-seat-reservation/internal/handler"
    "github.com/iliyamo/railway-seat-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check, used by load balancers to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.
// Unauthenticated operations live under /v1/auth; /v1/me requires a
// valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    // Logout accepts a refresh token in the body and needs no JWT.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints:
// cities, trip search, today's trains, train stations and seat maps.
// They sit behind the Redis response cache and the rate limiter so
// guest traffic cannot hammer the database.
func RegisterPublic(e *echo.Echo, cat *handler.CatalogHandler, av *handler.AvailabilityHandler,
    cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {
    g := e.Group("/v1",
        middleware.NewTokenBucket(rlCfg, rdb),
        middleware.NewRedisCache(cacheCfg, rdb),
    )
    g.GET("/cities", cat.ListCities)
    g.GET("/trains/search", cat.Search)
    g.GET("/trains/active", cat.ActiveToday)
    g.GET("/trains/:id/stations", cat.Stations)
    g.GET("/trips/:id/seats", av.SeatMap)
}
