package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"travelnest/internal/infra/config"
	"travelnest/internal/infra/obs"
)

const maxMultipartMemory = 12 << 20

type Handlers struct {
	Auth           AuthHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	Me             MeHTTP
	Membership     MembershipHTTP
	Manager        ManagerHTTP
	Admin          AdminHTTP
	Contact        ContactHTTP
	Reviews        ReviewsHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without binding an address so tests can drive
// it through httptest.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Catalog)
		api.GET("/listings/:id", h.Listing.Detail)
		api.GET("/listings/:id/quote", h.Listing.Quote)
	}
	if h.Booking != nil {
		api.POST("/listings/:id/bookings", h.Booking.Create)
		api.POST("/listings/:id/checkout", h.Booking.StartCheckout)
		api.POST("/checkout/verify", h.Booking.VerifyCheckout)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
		meGroup.GET("/membership", h.Me.Membership)
	}
	if h.Membership != nil {
		api.POST("/membership/checkout", h.Membership.Checkout)
		api.POST("/membership/verify", h.Membership.Verify)
	}
	if h.Manager != nil {
		managerGroup := api.Group("/manager/listings")
		managerGroup.POST("", h.Manager.Create)
		managerGroup.PUT("/:id", h.Manager.Update)
		managerGroup.DELETE("/:id", h.Manager.Delete)
		managerGroup.POST("/:id/image", h.Manager.UploadImage)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.GET("/dashboard", h.Admin.Dashboard)
		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.GET("/contact", h.Admin.ListContact)
		adminGroup.PATCH("/contact/:id", h.Admin.UpdateContact)
	}
	if h.Contact != nil {
		api.POST("/contact", h.Contact.Submit)
	}
	if h.Reviews != nil {
		api.GET("/listings/:id/reviews", h.Reviews.ListByListing)
		api.POST("/listings/:id/reviews", h.Reviews.Submit)
		api.DELETE("/reviews/:id", h.Reviews.Delete)
	}
	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "development":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
