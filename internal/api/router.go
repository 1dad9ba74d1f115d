package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/antu/logistics-system/internal/api/handler"
	"github.com/antu/logistics-system/internal/api/middleware"
	"github.com/antu/logistics-system/internal/core/service"
	"github.com/antu/logistics-system/internal/infrastructure/config"
	mongorepo "github.com/antu/logistics-system/internal/infrastructure/db/mongo"
	redisstore "github.com/antu/logistics-system/internal/infrastructure/db/redis"
	"github.com/antu/logistics-system/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the ping dispatcher, which the caller must Start.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("logistics"))

	// --- Repositories ---
	shipmentRepo := mongorepo.NewShipmentRepository(db)
	driverRepo := mongorepo.NewDriverRepository(db)
	vehicleRepo := mongorepo.NewVehicleRepository(db)
	trackingRepo := mongorepo.NewTrackingRepository(db)
	dedup := redisstore.NewPingDeduper(rdb)
	locationCache := redisstore.NewLocationCache(rdb)

	// --- Services ---
	threshold := cfg.Tracking.DeviationThresholdM
	trackingService := service.NewTrackingService(
		shipmentRepo, driverRepo, trackingRepo, dedup, locationCache, threshold, log)
	analyticsService := service.NewAnalyticsService(
		shipmentRepo, trackingRepo, service.NewEstimator(), threshold, log)
	dispatchService := service.NewDispatchService(driverRepo, shipmentRepo, vehicleRepo, log)
	vehicleService := service.NewVehicleService(vehicleRepo, shipmentRepo, log)

	dispatcher := queue.NewDispatcher(cfg.Tracking.PingWorkers, cfg.Tracking.PingQueueSize, trackingService, log)

	// --- Handlers ---
	trackingHandler := handler.NewTrackingHandler(dispatcher, trackingService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	dispatchHandler := handler.NewDispatchHandler(dispatchService, vehicleService, driverRepo, locationCache, log)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))

	v1.POST("/tracking/pings", trackingHandler.Receive)
	v1.POST("/tracking/pings/batch", trackingHandler.ReceiveBatch)
	v1.POST("/tracking/pings/sync", trackingHandler.ReceiveSync)

	v1.GET("/shipments/:id/summary", analyticsHandler.Summary)
	v1.GET("/shipments/:id/distance", analyticsHandler.Distance)
	v1.GET("/shipments/:id/speed", analyticsHandler.Speed)
	v1.GET("/shipments/:id/stops", analyticsHandler.Stops)
	v1.GET("/shipments/:id/anomalies", analyticsHandler.Anomalies)
	v1.GET("/shipments/:id/eta", analyticsHandler.ETA)

	v1.GET("/drivers/:id/availability", dispatchHandler.Availability)
	v1.GET("/drivers/:id/workload", dispatchHandler.Workload)
	v1.GET("/drivers/:id/location", dispatchHandler.Location)

	// Dispatch decisions are restricted to back-office roles.
	dispatchGroup := v1.Group("/dispatch", middleware.RBAC("admin", "dispatcher"))
	dispatchGroup.POST("/nearest-driver", dispatchHandler.NearestDriver)
	dispatchGroup.POST("/vehicle", dispatchHandler.SelectVehicle)

	v1.GET("/vehicles/:id/maintenance", dispatchHandler.Maintenance)

	return e, dispatcher
}
