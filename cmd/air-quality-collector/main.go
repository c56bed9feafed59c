package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/i474232898/air-quality-collector/internal/airquality"
	"github.com/i474232898/air-quality-collector/internal/airquality/openweather"
	httpapi "github.com/i474232898/air-quality-collector/internal/api/http"
	"github.com/i474232898/air-quality-collector/internal/config"
	"github.com/i474232898/air-quality-collector/internal/logging"
	"github.com/i474232898/air-quality-collector/internal/registry"
	"github.com/i474232898/air-quality-collector/internal/scheduler"
	"github.com/i474232898/air-quality-collector/internal/store"
)

func main() {
	once := flag.Bool("once", false, "run a single collection pass and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// Monitoring points: built-in set unless a locations file is configured.
	reg := registry.Default()
	if cfg.LocationsFile != "" {
		reg, err = registry.LoadFile(cfg.LocationsFile)
		if err != nil {
			logger.Fatal("failed to load locations", zap.Error(err))
		}
	}

	// Measurement store: Postgres when configured, in-memory otherwise.
	var measurements airquality.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to open postgres store", zap.Error(err))
		}
		defer pg.Close()
		measurements = pg
	} else {
		logger.Info("no DATABASE_URL configured; using in-memory store")
		measurements = store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)
	}

	// Shared HTTP client for outbound API calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	client := openweather.NewClient(httpClient, cfg.OpenWeatherAPIKey, logger)
	collector := airquality.NewCollector(reg, client, measurements, cfg.LocationPause, logger)

	if *once {
		tally := collector.CollectAll(context.Background())
		logger.Info("one-shot collection finished",
			zap.Int("succeeded", tally.Succeeded),
			zap.Int("failed", tally.Failed),
		)
		if tally.Failed > 0 {
			os.Exit(1)
		}
		return
	}

	sched := scheduler.New(collector, cfg.CollectInterval, logger)
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "air-quality-collector",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "air-quality-collector",
		})
	})

	httpapi.RegisterRoutes(app, reg, measurements, collector)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
