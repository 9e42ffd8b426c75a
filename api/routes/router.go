// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"triptrek/internal/bookings"
	"triptrek/internal/catalog"
	"triptrek/internal/notifications"
	"triptrek/internal/offers"
	"triptrek/internal/payments"
	"triptrek/internal/shared/config"
	"triptrek/internal/shared/database"
	"triptrek/internal/shared/middleware"
	"triptrek/internal/tickets"
	"triptrek/pkg/cache"
	"triptrek/pkg/logger"

	_ "triptrek/docs"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Dependencies are the infrastructure adapters built in main
type Dependencies struct {
	Publisher notifications.Publisher
	Mailer    notifications.Mailer
	Gateway   payments.Gateway
	Store     tickets.Store
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB
	deps   Dependencies
	log    *logger.Logger
	auth   gin.HandlerFunc

	// Shared across route groups
	bookingRepo    bookings.Repository
	bookingService bookings.Service
	ticketIssuer   *tickets.Issuer
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, deps Dependencies, log *logger.Logger) *Router {
	if log == nil {
		log = logger.GetDefault()
	}
	if deps.Publisher == nil {
		deps.Publisher = notifications.NoopPublisher{}
	}
	return &Router{
		config: cfg,
		db:     db,
		deps:   deps,
		log:    log,
		auth:   middleware.JWTAuthWithConfig(cfg),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// Booking routes build the services the other groups share
		r.setupBookingRoutes(api)
		r.setupTicketRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "triptrek-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "triptrek-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "operational",
			"api_version":     r.config.APIVersion,
			"redis":           r.db.GetRedisClient() != nil,
			"payment_gateway": r.config.PaymentGatewayConfigured(),
			"email":           r.config.EmailConfigured(),
			"events":          r.config.Kafka.Enabled,
			"timestamp":       time.Now(),
		})
	})
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	var cacheService cache.Service
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		cacheService = cache.NewService(redisClient, r.log)
	}

	pg := r.db.GetPostgreSQL()
	catalogService := catalog.NewService(catalog.NewRepository(pg), cacheService, r.log)
	offerService := offers.NewService(offers.NewRepository(pg), r.log)

	r.bookingRepo = bookings.NewRepository(pg)
	r.bookingService = bookings.NewService(r.bookingRepo, catalogService, offerService, r.deps.Publisher, r.log)

	bookings.SetupBookingRoutes(rg, bookings.NewController(r.bookingService, r.log), r.auth)
}

func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	r.ticketIssuer = tickets.NewIssuer(r.bookingRepo, r.deps.Store, r.deps.Mailer, r.deps.Publisher, r.config.Ticket, r.log)

	// Confirmation issues and emails the ticket
	r.bookingService.SetConfirmationHook(r.ticketIssuer)

	tickets.SetupTicketRoutes(rg, tickets.NewController(r.bookingService, r.ticketIssuer, r.log), r.auth)
}

func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	var locker payments.OrderLocker = payments.NoopOrderLocker{}
	if redisClient := r.db.GetRedisClient(); redisClient != nil {
		locker = payments.NewRedisOrderLock(redisClient, r.config.Redis.PaymentLockTTL)
	}

	paymentService := payments.NewService(
		r.bookingService,
		r.bookingRepo,
		r.deps.Gateway,
		locker,
		r.deps.Publisher,
		r.config.Payment,
		r.log,
	)
	controller := payments.NewController(paymentService, r.config.GetAPIBasePath()+"/bookings", r.log)

	payments.SetupPaymentRoutes(rg, controller, r.auth)
}
