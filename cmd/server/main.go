package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/cobra"

	"github.com/developia-II/longform-translator-backend/internal/config"
	"github.com/developia-II/longform-translator-backend/internal/database"
	"github.com/developia-II/longform-translator-backend/internal/handlers"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Long-form translation service",
	Long: `server runs the translation API. Long texts are split into
sentence-aligned parts and translated part by part through the
configured LLM backend.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (environment variables take precedence)")
	rootCmd.AddCommand(translateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close(context.Background())

	runners, err := buildRunners(ctx, cfg)
	if err != nil {
		return err
	}

	h := handlers.New(store, handlers.Settings{
		Runners:        runners,
		DefaultProfile: cfg.TranslationProfile,
		JWTSecret:      cfg.JWTSecret,
	})

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.HTTPRateLimit,
		Expiration: 1 * time.Minute,
	}))

	h.Register(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	log.Infow("server starting", "port", cfg.Port, "provider", cfg.LLMProvider, "store", cfg.StoreDriver,
		"apiKeyPresent", cfg.APIKey() != "")
	if err := app.Listen(":" + cfg.Port); err != nil {
		return err
	}

	// let background translations record their outcome
	waitCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.Wait(waitCtx); err != nil {
		log.Warnw("background translations still running at exit", "error", err)
	}
	return nil
}

func openStore(cfg *config.Config) (database.Store, error) {
	if cfg.StoreDriver == config.StoreSQLite {
		return database.OpenSQLite(cfg.SQLitePath)
	}
	return database.ConnectMongo(cfg.MongoURI, cfg.DBName)
}
