package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wms-platform/sla-service/internal/application"
	"github.com/wms-platform/sla-service/internal/domain"
	infrakafka "github.com/wms-platform/sla-service/internal/infrastructure/kafka"
	inframongo "github.com/wms-platform/sla-service/internal/infrastructure/mongodb"
	"github.com/wms-platform/sla-service/pkg/api"
	"github.com/wms-platform/sla-service/pkg/errors"
	"github.com/wms-platform/sla-service/pkg/kafka"
	"github.com/wms-platform/sla-service/pkg/logging"
	"github.com/wms-platform/sla-service/pkg/metrics"
	"github.com/wms-platform/sla-service/pkg/middleware"
	"github.com/wms-platform/sla-service/pkg/mongodb"
	"github.com/wms-platform/sla-service/pkg/resilience"
)

const serviceName = "sla-service"

type config struct {
	Port            string
	Environment     string
	MongoURI        string
	MongoDatabase   string
	KafkaBrokers    []string
	PolicyFile      string
	RefreshInterval time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() config {
	return config{
		Port:            getEnv("PORT", "8086"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "sla_engine"),
		KafkaBrokers:    strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		PolicyFile:      getEnv("POLICY_FILE", ""),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 30*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func main() {
	cfg := loadConfig()

	logger := logging.New(logging.DefaultConfig(serviceName))
	logger.SetDefault()

	m := metrics.New(metrics.DefaultConfig(serviceName))

	matrix := domain.DefaultPolicyMatrix()
	if cfg.PolicyFile != "" {
		loaded, err := domain.LoadPolicyMatrix(cfg.PolicyFile)
		if err != nil {
			logger.WithError(err).Error("failed to load policy file, using built-in matrix",
				"path", cfg.PolicyFile)
		} else {
			matrix = loaded
			logger.Info("policy matrix loaded", "path", cfg.PolicyFile, "cells", matrix.Len())
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoConfig := mongodb.DefaultConfig()
	mongoConfig.URI = cfg.MongoURI
	mongoConfig.Database = cfg.MongoDatabase
	mongoClient, err := mongodb.NewClient(ctx, mongoConfig)
	if err != nil {
		logger.WithError(err).Error("failed to connect to mongodb")
		os.Exit(1)
	}
	defer mongoClient.Close(context.Background())

	repository, err := inframongo.NewOrderRepository(ctx, mongoClient, logger, m)
	if err != nil {
		logger.WithError(err).Error("failed to initialize order repository")
		os.Exit(1)
	}

	kafkaConfig := kafka.DefaultConfig(serviceName)
	kafkaConfig.Brokers = cfg.KafkaBrokers
	producer := kafka.NewProducer(kafkaConfig)
	breaker := resilience.NewCircuitBreaker(
		resilience.DefaultCircuitBreakerConfig("kafka-publisher"), logger.Logger)
	publisher := infrakafka.NewEventPublisher(producer, breaker, logger, m)
	defer publisher.Close()

	store := application.NewBatchStore()
	service := application.NewSLAService(store, matrix, repository, publisher, logger, m, time.Now)
	refresher := application.NewRefresher(store, matrix, publisher, logger, m, cfg.RefreshInterval, time.Now)

	// Reload the last mirrored batch so a restart does not lose the
	// active order set.
	if batchID, err := repository.LatestBatchID(ctx); err != nil {
		logger.WithError(err).Error("failed to look up last batch")
	} else if batchID != "" {
		count, err := service.RestoreBatch(ctx, batchID)
		if err != nil {
			logger.WithError(err).Error("failed to restore batch", "batchId", batchID)
		} else {
			logger.Info("batch restored", "batchId", batchID, "orders", count)
		}
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))
	router.HandleMethodNotAllowed = true
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(context.Background())
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	v1 := router.Group("/api/v1")
	{
		orders := v1.Group("/orders")
		{
			orders.POST("/ingest", ingestOrders(service, logger))
			orders.POST("/demo", generateDemoOrders(service, logger))
			orders.GET("", listOrders(service, logger))
			orders.GET("/summary", getSummary(service))
			orders.GET("/quality", getQuality(service))
			orders.POST("/confirm", confirmOrders(service, logger))
			orders.GET("/export", exportOrders(service, logger))
		}

		refresherGroup := v1.Group("/refresher")
		{
			refresherGroup.POST("/start", startRefresher(refresher, logger))
			refresherGroup.POST("/stop", stopRefresher(refresher))
			refresherGroup.GET("", refresherStatus(refresher, store))
		}
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	refresher.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("forced shutdown")
	}
	logger.Info("server stopped")
}

type ingestRequest struct {
	Records []map[string]any `json:"records" binding:"required,min=1"`
}

func ingestOrders(service *application.SLAService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req ingestRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		result := service.IngestOrders(c.Request.Context(), req.Records)
		c.JSON(http.StatusOK, result)
	}
}

type demoRequest struct {
	Count int `json:"count" binding:"omitempty,min=1,max=10000"`
}

func generateDemoOrders(service *application.SLAService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		req := demoRequest{Count: 50}
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
			if req.Count == 0 {
				req.Count = 50
			}
		}

		result := service.GenerateDemoOrders(c.Request.Context(), req.Count)
		c.JSON(http.StatusOK, result)
	}
}

func listOrders(service *application.SLAService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		filter, sortSpec, appErr := parseQuerySpecs(c)
		if appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		page := service.ListOrders(filter, sortSpec, api.ParsePagination(c))
		c.JSON(http.StatusOK, page)
	}
}

func getSummary(service *application.SLAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.GetSummary())
	}
}

func getQuality(service *application.SLAService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, service.GetQuality())
	}
}

type confirmRequest struct {
	OrderIDs []string `json:"orderIds" binding:"required,min=1,dive,order_id"`
}

func confirmOrders(service *application.SLAService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req confirmRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		confirmed, err := service.ConfirmOrders(c.Request.Context(), req.OrderIDs)
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"requested": len(req.OrderIDs),
			"confirmed": confirmed,
		})
	}
}

func exportOrders(service *application.SLAService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		filter, sortSpec, appErr := parseQuerySpecs(c)
		if appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="orders.csv"`)
		if err := service.ExportCSV(c.Writer, filter, sortSpec); err != nil {
			responder.RespondInternalError(err)
		}
	}
}

func startRefresher(refresher *application.Refresher, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := refresher.Start(context.Background()); err != nil {
			responder.RespondConflict(err.Error())
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"running":    true,
			"intervalMs": refresher.Interval().Milliseconds(),
		})
	}
}

func stopRefresher(refresher *application.Refresher) gin.HandlerFunc {
	return func(c *gin.Context) {
		refresher.Stop()
		c.JSON(http.StatusOK, gin.H{"running": false})
	}
}

func refresherStatus(refresher *application.Refresher, store *application.BatchStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, application.RefresherStatus{
			Running:    refresher.Running(),
			IntervalMs: refresher.Interval().Milliseconds(),
			BatchSize:  store.Len(),
			BatchID:    store.BatchID(),
		})
	}
}

// parseQuerySpecs builds filter and sort specs from query parameters.
// Every dimension is optional; an absent parameter means no constraint.
func parseQuerySpecs(c *gin.Context) (application.FilterSpec, application.SortSpec, *errors.AppError) {
	filter := application.FilterSpec{
		Platform:   c.Query("platform"),
		Carrier:    c.Query("carrier"),
		Status:     c.Query("status"),
		SLALevel:   c.Query("level"),
		TimeBucket: c.Query("bucket"),
		Search:     middleware.SanitizeString(c.Query("search")),
	}

	if raw := c.Query("minValue"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, application.SortSpec{}, badQueryParam("minValue")
		}
		filter.MinValue = &value
	}
	if raw := c.Query("maxValue"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, application.SortSpec{}, badQueryParam("maxValue")
		}
		filter.MaxValue = &value
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, application.SortSpec{}, badQueryParam("from")
		}
		filter.From = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, application.SortSpec{}, badQueryParam("to")
		}
		filter.To = &to
	}

	sortSpec := application.SortSpec{
		Field:     c.Query("sortBy"),
		Direction: c.DefaultQuery("sortDir", "asc"),
	}
	if sortSpec.Direction != "asc" && sortSpec.Direction != "desc" {
		return filter, sortSpec, badQueryParam("sortDir")
	}

	return filter, sortSpec, nil
}

func badQueryParam(name string) *errors.AppError {
	return errors.ErrBadRequest("invalid query parameter: " + name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
