package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-power-rankings/internal/admin/config"
	delivery "ai-power-rankings/internal/admin/delivery/http"
	_ "ai-power-rankings/internal/admin/docs"
	"ai-power-rankings/internal/admin/service"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/common"
	pkgconfig "ai-power-rankings/pkg/config"
	"ai-power-rankings/pkg/jina"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/postgres"
	"ai-power-rankings/pkg/redis"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the admin API and the job scheduler",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Admin Service", logger.StringField("name", cfg.App.Name))
	if cfg.Admin.APIKey == "" {
		appLogger.Warn("Admin API key is not configured, every admin request will be rejected")
	}

	// Initialize database
	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	if err := redisClient.EnsureGroup(ctx, common.RedisStreamSchedulerTaskExecution, common.RedisStreamGroup); err != nil {
		appLogger.Fatal("Failed to create consumer group", logger.ErrorField(err))
	}

	// Initialize repositories
	toolRepo := repository.NewToolRepository(db.DB)
	newsRepo := repository.NewNewsRepository(db.DB)
	rankingRepo := repository.NewRankingRepository(db.DB)
	jobRepo := repository.NewJobRepository(db.DB)
	scheduleRepo := repository.NewTaskScheduleRepository(db.DB)
	historyRepo := repository.NewTaskExecutionHistoryRepository(db.DB)
	fileStore := repository.NewRankingFileStore(cfg.Ranking.ExportDir)

	// Initialize ranking pipeline
	defaults, err := loadDefaults(cfg.Ranking)
	if err != nil {
		appLogger.Fatal("Failed to load metric defaults", logger.ErrorField(err))
	}
	var analyzer newsmetrics.QualitativeAnalyzer
	if cfg.Ranking.EnableAIAnalysis && cfg.Gemini.APIKey != "" {
		genAiClient, err := repository.NewGenAIClient(ctx, cfg.Gemini)
		if err != nil {
			appLogger.Fatal("Failed to initialize Gemini AI client", logger.ErrorField(err))
		}
		analyzer = repository.NewGeminiAIRepository(cfg.Gemini, appLogger, genAiClient)
	}
	enhancer := newsmetrics.NewEnhancer(analyzer, appLogger)
	rankingSvc := ranking.NewService(ranking.Config{AlgorithmVersion: cfg.Ranking.AlgorithmVersion},
		toolRepo, newsRepo, rankingRepo, defaults, enhancer, appLogger)

	jinaClient := jina.NewClient(jina.Config{
		APIKey:            cfg.Jina.APIKey,
		BaseURL:           cfg.Jina.BaseURL,
		Timeout:           pkgconfig.Duration(cfg.Jina.Timeout, jina.DefaultTimeout),
		MaxRetries:        cfg.Jina.MaxRetries,
		RequestsPerMinute: cfg.Jina.MaxRequestPerMinute,
		CacheTTL:          pkgconfig.Duration(cfg.Jina.CacheTTL, time.Hour),
	}, appLogger)

	// Initialize services
	dispatcher := service.NewTaskDispatcher(historyRepo, redisClient.Client, cfg.Redis.StreamMaxLen, appLogger)
	jobSvc := service.NewJobService(jobRepo, historyRepo, dispatcher, appLogger)
	rankingAdminSvc := service.NewRankingAdminService(rankingSvc, rankingRepo, fileStore, cfg.Ranking.AlgorithmVersion,
		pkgconfig.Duration(cfg.Admin.CurrentCacheTTL, time.Minute), appLogger)
	toolSvc := service.NewToolService(toolRepo, newsRepo, rankingRepo, appLogger)
	newsSvc := service.NewNewsService(newsRepo, toolRepo, jobSvc, jinaClient, appLogger)

	if cfg.Scheduler.Enabled {
		schedulerSvc := service.NewSchedulerService(jobRepo, scheduleRepo, dispatcher, appLogger,
			pkgconfig.Duration(cfg.Scheduler.PollingInterval, time.Minute))
		go schedulerSvc.Start(ctx)
	}

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(delivery.RequestID())
	e.Use(delivery.RequestLogger(appLogger))

	delivery.Handlers{
		Rankings: delivery.NewRankingHandler(rankingAdminSvc, jobSvc, appLogger),
		Tools:    delivery.NewToolHandler(toolSvc, appLogger),
		News:     delivery.NewNewsHandler(newsSvc, appLogger),
		Jobs:     delivery.NewJobHandler(jobSvc, appLogger),
	}.Register(e, cfg.Admin.APIKey)

	e.GET("/swagger/*", swagger.WrapHandler)
	delivery.NewHealthHandler(jinaClient, 5*time.Second, appLogger).RegisterRoutes(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop()
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

func loadDefaults(cfg pkgconfig.Ranking) (*scoring.DefaultsTable, error) {
	if cfg.DefaultsFile == "" {
		return scoring.EmbeddedDefaults()
	}
	return scoring.LoadDefaults(cfg.DefaultsFile)
}

// @title AI Power Rankings Admin API
// @version 1.0
// @description Administrative API for building rankings and maintaining tools and news.
// @BasePath /api/admin
// @securityDefinitions.apikey AdminKey
// @in header
// @name X-Admin-Key
func main() {
	rootCmd := &cobra.Command{Use: "admin-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/admin-service.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing admin-service CLI: %s\n", err)
		os.Exit(1)
	}
}
