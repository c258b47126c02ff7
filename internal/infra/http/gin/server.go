package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"dwelling/internal/infra/config"
	"dwelling/internal/infra/obs"
)

type Handlers struct {
	Reservations   ReservationHTTP
	Listings       ListingHTTP
	Cards          CardHTTP
	Sessions       SessionHTTP
	AuthMiddleware gin.HandlerFunc
}

// Observability groups the optional cross-cutting pieces of the router.
type Observability struct {
	Middleware obs.Middleware
	Health     obs.HealthHandlers
	Metrics    *obs.Metrics
	Tracing    bool
}

func NewServer(cfg config.Config, o Observability, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if o.Middleware.Logger != nil {
		o.Middleware.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(o, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(o Observability, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(o.Middleware.RequestID())
	if o.Tracing {
		router.Use(obs.TracingMiddleware(nil))
	}
	if o.Metrics != nil {
		router.Use(o.Metrics.Middleware())
	}
	router.Use(o.Middleware.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key", "X-Request-ID", "traceparent"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", o.Health.Livez)
	router.GET("/readyz", o.Health.Readyz)
	if o.Metrics != nil {
		router.GET("/metrics", gin.WrapH(o.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	if h.Sessions != nil {
		api.GET("/auth/me", h.Sessions.Me)
		api.POST("/auth/logout", h.Sessions.Logout)
	}
	if h.Reservations != nil {
		api.POST("/reservations", h.Reservations.Create)
	}
	if h.Listings != nil {
		listings := api.Group("/listings/:id")
		listings.GET("", h.Listings.Get)
		listings.GET("/disabled-dates", h.Listings.DisabledDates)
		listings.GET("/quote", h.Listings.Quote)
		listings.GET("/reservations", h.Listings.Reservations)
		listings.POST("/image", h.Listings.UploadImage)
	}
	if h.Cards != nil {
		api.POST("/cards", h.Cards.Create)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
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
