package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"homestay/internal/infra/config"
	"homestay/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	List(c *gin.Context)
}

type ReviewHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Stats(c *gin.Context)
}

type ListingHTTP interface {
	Summary(c *gin.Context)
}

type HostListingHTTP interface {
	Create(c *gin.Context)
	Update(c *gin.Context)
	SetAvailability(c *gin.Context)
}

type Handlers struct {
	Booking     BookingHTTP
	Review      ReviewHTTP
	Listing     ListingHTTP
	HostListing HostListingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", ActorHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.List)
		api.POST("/bookings/:id/confirm", h.Booking.Confirm)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Review != nil {
		api.POST("/listings/:id/reviews", h.Review.Create)
		api.GET("/listings/:id/reviews", h.Review.List)
		api.GET("/listings/:id/stats", h.Review.Stats)
	}
	if h.Listing != nil {
		api.GET("/listings/:id/summary", h.Listing.Summary)
	}
	if h.HostListing != nil {
		hostGroup := api.Group("/host/listings")
		hostGroup.POST("", h.HostListing.Create)
		hostGroup.PUT("/:id", h.HostListing.Update)
		hostGroup.POST("/:id/availability", h.HostListing.SetAvailability)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
