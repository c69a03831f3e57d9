package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/config"
	"github.com/gdg-garage/academic-nft-api/internal/database"
	"github.com/gdg-garage/academic-nft-api/internal/fixtures"
	"github.com/gdg-garage/academic-nft-api/internal/handlers"
	"github.com/gdg-garage/academic-nft-api/internal/logging"
	"github.com/gdg-garage/academic-nft-api/internal/notifier"
	"github.com/gdg-garage/academic-nft-api/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "academic-nft",
	Short: "Academic NFT marketplace API server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
	RunE:         runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := database.Connect(cfg.DatabasePath); err != nil {
			return err
		}
		logger.Info("Database migrated", zap.String("path", cfg.DatabasePath))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		return err
	}

	provider, err := fixtures.Load(cfg.FixturesPath)
	if err != nil {
		return err
	}

	var discordNotifier notifier.Notifier
	session, err := notifier.NewDiscordSession(cfg.DiscordBotToken)
	switch {
	case err != nil:
		logger.Warn("Discord notifier not initialized", zap.Error(err))
	case cfg.DiscordNotificationsChannelID == "":
		logger.Warn("Discord notifier not initialized: no notifications channel")
	default:
		discordNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
	}

	if cfg.DemoToken != "" {
		logger.Warn("Demo token authentication is enabled", zap.String("demo_user", cfg.DemoUsername))
	}

	authHandler := auth.NewAuthHandler(cfg, db, logger)
	statOpts := stats.Options{TotalXP: cfg.TotalXP, MaxStreakDays: cfg.MaxStreakDays}

	r := chi.NewRouter()
	handlers.RegisterRoutes(r, handlers.Handlers{
		Auth:         authHandler,
		Achievements: handlers.NewAchievementHandler(db, discordNotifier, authHandler, logger),
		Events:       handlers.NewEventHandler(db, discordNotifier, authHandler, logger),
		Dashboard:    handlers.NewDashboardHandler(db, authHandler, statOpts, logger),
		APIKeys:      handlers.NewAPIKeyHandler(db, authHandler, logger),
		Demo:         handlers.NewDemoHandler(provider, logger),
	})

	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
