package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-power-rankings/internal/ingestion/config"
	"ai-power-rankings/internal/ingestion/delivery/consumer"
	"ai-power-rankings/internal/ingestion/service"
	"ai-power-rankings/internal/ingestion/strategy"
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
	"ai-power-rankings/pkg/telegram"

	"github.com/mmcdole/gofeed"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the ingestion worker",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	appLogger.Info("Starting Ingestion Service", logger.StringField("name", cfg.App.Name))

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
	historyRepo := repository.NewTaskExecutionHistoryRepository(db.DB)

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
	rankingSvc := ranking.NewService(ranking.Config{AlgorithmVersion: cfg.Ranking.AlgorithmVersion},
		toolRepo, newsRepo, rankingRepo, defaults, newsmetrics.NewEnhancer(analyzer, appLogger), appLogger)

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram notifier", logger.ErrorField(err))
	}

	// Content is read through Jina first, then fetched directly.
	jinaClient := jina.NewClient(jina.Config{
		APIKey:            cfg.Jina.APIKey,
		BaseURL:           cfg.Jina.BaseURL,
		Timeout:           pkgconfig.Duration(cfg.Jina.Timeout, jina.DefaultTimeout),
		MaxRetries:        cfg.Jina.MaxRetries,
		RequestsPerMinute: cfg.Jina.MaxRequestPerMinute,
		CacheTTL:          pkgconfig.Duration(cfg.Jina.CacheTTL, time.Hour),
	}, appLogger)
	fetcher := strategy.ChainFetcher{
		strategy.NewJinaFetcher(jinaClient),
		strategy.NewReadabilityFetcher(cfg.Ingestion.FetchTimeout),
	}

	feedParser := gofeed.NewParser()
	feedParser.UserAgent = "ai-power-rankings/1.0"

	// Initialize Strategies
	strategies := []strategy.JobExecutionStrategy{
		strategy.NewNewsIngestionStrategy(toolRepo, newsRepo, feedParser, fetcher, appLogger),
		strategy.NewRankingBuildStrategy(rankingSvc, telegramNotifier, cfg.Ingestion.NotifyTopN, appLogger),
	}

	executorSvc := service.NewExecutorService(redisClient.Client, jobRepo, historyRepo, cfg.Ingestion.ReadBlock, appLogger, strategies)

	redisConsumer := consumer.NewRedisConsumer(cfg, executorSvc, appLogger)
	redisConsumer.Start(ctx)

	appLogger.Info("Ingestion service started. Waiting for tasks...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down ingestion service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Ingestion service stopped.")
}

func loadDefaults(cfg pkgconfig.Ranking) (*scoring.DefaultsTable, error) {
	if cfg.DefaultsFile == "" {
		return scoring.EmbeddedDefaults()
	}
	return scoring.LoadDefaults(cfg.DefaultsFile)
}

func main() {
	rootCmd := &cobra.Command{Use: "ingestion-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/ingestion-service.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing ingestion-service CLI: %s\n", err)
		os.Exit(1)
	}
}
