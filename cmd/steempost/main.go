package main

import (
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/clients/steemd"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/config"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/handlers"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/logging"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/middleware"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/monitoring"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/publisher"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/server"
	"github.com/ismdrobiul489-sudo/steemit-posting/internal/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("steempost")

	logger.Info("Starting Steempost (Posting API)")

	cfg, err := config.Load(logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("steempost", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("steempost", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"STEEM_AUTHOR":      cfg.Author,
		"STEEM_POSTING_KEY": cfg.PostingKey,
	}))
	healthChecker.AddCheck("nodes", monitoring.NodeHealthCheck(cfg.Nodes))

	// Create custom publishing metrics
	operations, attempts, duration := metricsCollector.CreatePublishMetrics()

	// Node client with ordered failover
	node := steemd.NewClient(cfg.Nodes, logger,
		steemd.WithAttemptTimeout(cfg.BroadcastTimeout),
		steemd.WithAttemptMetrics(attempts),
	)

	// Publish pipeline
	pub := publisher.New(cfg.Author, cfg.PostingKey, node, logger, &publisher.Metrics{
		Operations: operations,
		Duration:   duration,
	})

	// Initialize handlers
	handlers.Init(logger, pub, healthChecker, cfg.Author, cfg.PostingKey != "")

	// Setup router with unified monitoring
	router := server.SetupRouter(logger, metricsCollector)

	router.GET("/health", handlers.GetHealth)

	// Publishing requires the shared API key
	protected := router.Group("")
	protected.Use(middleware.APIKeyAuthMiddleware(cfg.APIKey, logger))
	{
		protected.POST("/post", handlers.CreatePost)
	}

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("steempost", cfg.Port)
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
