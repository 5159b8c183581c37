package api

import (
	"fmt"
	"net/http"

	"backstage/internal/cache"
	"backstage/internal/config"
	"backstage/internal/database"
	"backstage/internal/handlers"
	"backstage/internal/logger"
	"backstage/internal/messaging"
	"backstage/internal/middleware"
	"backstage/internal/repository"
	"backstage/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the HTTP surface: storage, messaging, cache, services, routes.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Cache)
	if err != nil {
		// The cache is an optimization; the engine is correct without it.
		logger.Warn("Wallet cache unavailable, continuing without it", "error", err)
		valkeyClient = nil
	}

	st := repository.NewStore(db)
	services := service.NewServices(st, natsClient, cfg.Policy)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")

	// The gateway webhook carries no actor identity.
	api.POST("/payments/notifications", h.PaymentNotification)

	authed := api.Group("")
	authed.Use(middleware.Actor())
	{
		events := authed.Group("/events")
		{
			events.POST("", h.CreateEvent)
			events.GET("", h.ListEvents)
		}

		bookings := authed.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PATCH("/:id/accept", h.AcceptBooking)
			bookings.PATCH("/:id/decline", h.DeclineBooking)
			bookings.PATCH("/:id/pay", h.PayBooking)
			bookings.PATCH("/:id/complete", h.CompleteBooking)
			bookings.PATCH("/:id/cancel", h.CancelBooking)
		}

		wallets := authed.Group("/wallets")
		{
			wallets.GET("/me", h.GetMyWallet)
			wallets.GET("/:id/transactions", h.ListWalletTransactions)
		}

		admin := authed.Group("/admin")
		{
			admin.POST("/wallets/adjust", h.AdjustWallet)
			admin.GET("/audit", h.ListAuditLog)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	db := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if db.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   db.Status,
		"service":  "backstage-api",
		"database": db,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes external connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
