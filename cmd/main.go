package main

import (
	"net/http"

	"fleet-service/internal/handler"
	mid "fleet-service/internal/middleware"
	"fleet-service/internal/service"
	"fleet-service/pkg/config"
	"fleet-service/pkg/database"
	"fleet-service/pkg/jwtutil"
	"fleet-service/pkg/logger"
	"fleet-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	appConfig, err := config.Load("fleet-service")
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting fleet-service", appConfig.LogConfig()...)

	// Initialize JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&appConfig.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize database
	if err := database.InitDB(appConfig); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	db := database.GetDB()
	opTimeout := appConfig.DB.OperationTimeout

	// Wire up the service layer
	resolver := service.NewTenantResolver(db, opTimeout)
	validator := service.NewLocationValidator(db, opTimeout)
	hq := service.NewHeadquartersProvisioner(db, opTimeout)
	synchronizer := service.NewAssociationSynchronizer(db, validator, opTimeout)
	vehicles := service.NewVehicleService(db, resolver, validator, synchronizer, opTimeout)
	locations := service.NewLocationService(db, resolver, hq, opTimeout)
	tenants := service.NewTenantService(db, opTimeout)

	vehicleHandler := handler.NewVehicleHandler(vehicles)
	locationHandler := handler.NewLocationHandler(locations)
	tenantHandler := handler.NewTenantHandler(tenants)

	// Initialize Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", handler.Health)

	// Tenant API routes
	tenantAPI := e.Group("/api/tenants", mid.JWTAuthMiddleware(jwtUtil))
	tenantAPI.POST("", tenantHandler.Create)
	tenantAPI.GET("/me", tenantHandler.Me)

	// Location API routes
	locationAPI := e.Group("/api/locations", mid.JWTAuthMiddleware(jwtUtil))
	locationAPI.GET("", locationHandler.List)
	locationAPI.POST("", locationHandler.Create)
	locationAPI.PUT("/:id", locationHandler.Update)
	locationAPI.DELETE("/:id", locationHandler.Delete)

	// Vehicle API routes
	vehicleAPI := e.Group("/api/vehicles", mid.JWTAuthMiddleware(jwtUtil))
	vehicleAPI.GET("", vehicleHandler.List)
	vehicleAPI.GET("/:id", vehicleHandler.Get)
	vehicleAPI.POST("", vehicleHandler.Save)
	vehicleAPI.PUT("/:id", vehicleHandler.Save)
	vehicleAPI.DELETE("/:id", vehicleHandler.Delete)

	// Start server
	port := appConfig.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != http.ErrServerClosed {
		log.Fatal("Server error", zap.Error(err))
	}
}
