package main

import (
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"pothole-service/config"
	"pothole-service/database"
	"pothole-service/handlers"
	"pothole-service/metrics"
	"pothole-service/middleware"
	"pothole-service/rabbitmq"
	"pothole-service/utils"
	"pothole-service/version"
)

const (
	EndPointHealth       = "/health"
	EndPointVersion      = "/version"
	EndPointMetrics      = "/metrics"
	EndPointReports      = "/reports"
	EndPointReport       = "/reports/:seq"
	EndPointArea         = "/area"
	EndPointMap          = "/map"
	EndPointLeaderboard  = "/leaderboard"
	EndPointReportStatus = "/reports/:seq/status"
	EndPointExportRegion = "/export/region"
	EndPointHeatmap      = "/heatmap"
)

func main() {
	cfg := config.Load()

	log.Info("Starting the pothole service...")
	metrics.Register()

	store, closeStore := openStore(cfg)
	defer closeStore()

	var notifier handlers.Notifier
	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPStatusRoutingKey)
		if err != nil {
			log.Warnf("Status notifications disabled, RabbitMQ unavailable: %v", err)
		} else {
			defer publisher.Close()
			notifier = publisher
			log.Infof("Publishing status changes to exchange %s with routing key %s", cfg.AMQPExchange, cfg.AMQPStatusRoutingKey)
		}
	} else {
		log.Info("AMQP_URL not set, status notifications disabled")
	}

	router := setupRouter(cfg, handlers.NewReportsHandler(store, notifier, cfg))

	serverPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("Invalid PORT configuration: %v", err)
	}

	log.Infof("Pothole service starting on port %d", serverPort)
	if err := router.Run(fmt.Sprintf(":%d", serverPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func openStore(cfg *config.Config) (handlers.ReportStore, func()) {
	if cfg.StoreBackend == config.StoreMemory {
		log.Warn("Using the in-memory report store, data is lost on restart")
		return database.NewMemoryStore(), func() {}
	}

	db, err := utils.DBConnect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}
	return database.NewReportsService(db), func() { db.Close() }
}

func setupRouter(cfg *config.Config, h *handlers.ReportsHandler) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS())

	router.GET(EndPointVersion, func(c *gin.Context) {
		c.JSON(200, version.Get(cfg.StoreBackend))
	})
	router.GET(EndPointHealth, h.HealthCheck)
	router.GET(EndPointMetrics, gin.WrapH(metrics.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST(EndPointReports, h.CreateReport)
		apiV1.GET(EndPointReport, h.GetReport)
		apiV1.POST(EndPointArea, h.Area)
		apiV1.POST(EndPointMap, h.Map)
		apiV1.GET(EndPointLeaderboard, h.Leaderboard)
	}

	admin := apiV1.Group("/admin", middleware.AuthMiddleware(cfg))
	{
		admin.POST(EndPointReportStatus, h.UpdateStatus)
		admin.POST(EndPointExportRegion, middleware.RateLimit(middleware.NewIPRateLimiter(cfg.ExportRatePerMinute, cfg.ExportRateBurst)), h.ExportRegion)
		admin.GET(EndPointHeatmap, h.Heatmap)
	}

	return router
}
