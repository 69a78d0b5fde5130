package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/maxwellzeha/jonduplastics/controllers"
	"github.com/maxwellzeha/jonduplastics/middleware"
)

// Handlers groups everything the routes need.
type Handlers struct {
	Auth    *controllers.AuthController
	Profile *controllers.ProfileController
	Order   *controllers.OrderController
	Catalog *controllers.CatalogController
	Inquiry *controllers.InquiryController

	Tokens middleware.TokenValidator
	// Limiter throttles the unauthenticated write endpoints (auth and inquiries).
	Limiter *middleware.RateLimiter
}

// RegisterRoutes sets up every API route.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	requireAuth := middleware.AuthMiddleware(h.Tokens)
	optionalAuth := middleware.OptionalAuth(h.Tokens)
	throttle := func(c *gin.Context) { c.Next() }
	if h.Limiter != nil {
		throttle = h.Limiter.Middleware()
	}

	// Public: catalogue, pricing and setup help
	r.GET("/products", h.Catalog.ListProducts)
	r.GET("/products/:id", h.Catalog.GetProduct)
	r.GET("/configurator/options", h.Catalog.Options)
	r.POST("/pricing/quote", h.Catalog.Quote)
	r.GET("/setup/sql", controllers.SetupSQL)

	auth := r.Group("/auth")
	{
		auth.POST("/signup", throttle, h.Auth.Signup)
		auth.POST("/verify", throttle, h.Auth.VerifyEmail)
		auth.POST("/login", throttle, h.Auth.Login)
		auth.POST("/refresh", throttle, h.Auth.Refresh)
		auth.POST("/logout", optionalAuth, h.Auth.Logout)
		auth.GET("/session", requireAuth, h.Auth.Session)
	}

	profiles := r.Group("/profiles", requireAuth)
	profiles.GET("/me", h.Profile.GetMe)
	profiles.PUT("/me", h.Profile.UpdateMe)

	// Protected: every order route is scoped to the caller
	orders := r.Group("/orders", requireAuth)
	orders.POST("/artwork-uploads", h.Order.PresignArtwork)
	orders.POST("", h.Order.PlaceOrder)
	orders.GET("", h.Order.ListOrders)
	orders.GET("/:id", h.Order.GetOrder)

	r.POST("/inquiries", throttle, optionalAuth, h.Inquiry.Submit)
}
