package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ai-power-rankings/internal/cli"
	"ai-power-rankings/internal/newsmetrics"
	"ai-power-rankings/internal/ranking"
	"ai-power-rankings/internal/repository"
	"ai-power-rankings/internal/scoring"
	"ai-power-rankings/pkg/logger"
	"ai-power-rankings/pkg/postgres"

	"github.com/spf13/cobra"
)

var (
	configPath string
	opts       cli.Options

	period      string
	version     string
	previewDate string
	compareWith string
	setCurrent  bool
	asJSON      bool
)

// newRunner wires the CLI against the configured database.
func newRunner(ctx context.Context) (*cli.Runner, func()) {
	cfg, err := cli.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

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

	defaults, err := scoring.EmbeddedDefaults()
	if cfg.Ranking.DefaultsFile != "" {
		defaults, err = scoring.LoadDefaults(cfg.Ranking.DefaultsFile)
	}
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

	toolRepo := repository.NewToolRepository(db.DB)
	newsRepo := repository.NewNewsRepository(db.DB)
	rankingRepo := repository.NewRankingRepository(db.DB)
	rankingSvc := ranking.NewService(ranking.Config{AlgorithmVersion: cfg.Ranking.AlgorithmVersion},
		toolRepo, newsRepo, rankingRepo, defaults, newsmetrics.NewEnhancer(analyzer, appLogger), appLogger)

	runner := cli.NewRunner(rankingSvc, rankingRepo, repository.NewRankingFileStore(cfg.Ranking.ExportDir),
		os.Stdin, os.Stdout, appLogger)

	cleanup := func() {
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = appLogger.Sync()
	}
	return runner, cleanup
}

func withRunner(fn func(ctx context.Context, r *cli.Runner) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		runner, cleanup := newRunner(ctx)
		defer cleanup()
		return fn(ctx, runner)
	}
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compute and store the rankings of a period",
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Build(ctx, cli.BuildParams{
			Period:           period,
			AlgorithmVersion: version,
			PreviewDate:      previewDate,
			SetCurrent:       setCurrent,
		}, opts)
	}),
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Compute the rankings of a period and compare them without storing",
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Preview(ctx, period, compareWith, previewDate, asJSON)
	}),
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check positions and score ordering of a stored period",
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Verify(ctx, period)
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored periods to JSON files",
	RunE: withRunner(func(ctx context.Context, r *cli.Runner) error {
		return r.Export(ctx, period)
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store a period from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *cli.Runner) error {
			return r.Import(ctx, args[0], setCurrent, opts)
		})(cmd, args)
	},
}

var setCurrentCmd = &cobra.Command{
	Use:   "set-current <period>",
	Short: "Mark a stored period as current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(func(ctx context.Context, r *cli.Runner) error {
			return r.SetCurrent(ctx, args[0], opts)
		})(cmd, args)
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "rankings-cli",
		Short:         "Build, verify and publish AI tool rankings",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/rankings-cli.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would change without storing anything")
	rootCmd.PersistentFlags().BoolVar(&opts.AutoConfirm, "auto-confirm", false, "Skip confirmation prompts")

	for _, c := range []*cobra.Command{buildCmd, previewCmd, verifyCmd, exportCmd} {
		c.Flags().StringVarP(&period, "period", "p", "", "Period key (YYYY-MM); defaults to the current month or current period")
	}
	for _, c := range []*cobra.Command{buildCmd, previewCmd} {
		c.Flags().StringVar(&previewDate, "preview-date", "", "Only use tools and news known at this date")
	}
	buildCmd.Flags().StringVar(&version, "algorithm-version", "", "Scoring algorithm version")
	buildCmd.Flags().BoolVar(&setCurrent, "set-current", false, "Mark the built period as current")
	previewCmd.Flags().StringVar(&compareWith, "compare-with", "auto", "Period to compare against")
	previewCmd.Flags().BoolVar(&asJSON, "json", false, "Print the full preview as JSON")
	importCmd.Flags().BoolVar(&setCurrent, "set-current", false, "Mark the imported period as current")

	rootCmd.AddCommand(buildCmd, previewCmd, verifyCmd, exportCmd, importCmd, setCurrentCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing rankings-cli: %s\n", err)
		os.Exit(1)
	}
}
