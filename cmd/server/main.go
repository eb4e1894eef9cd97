package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/georgeshao/sdstudio/internal/api"
	"github.com/georgeshao/sdstudio/internal/awsclient"
	"github.com/georgeshao/sdstudio/internal/backend"
	"github.com/georgeshao/sdstudio/internal/config"
	"github.com/georgeshao/sdstudio/internal/generation"
	"github.com/georgeshao/sdstudio/internal/inference"
	"github.com/georgeshao/sdstudio/internal/logger"
	"github.com/georgeshao/sdstudio/internal/storage/pebbledb"
	"github.com/georgeshao/sdstudio/internal/storage/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load config")
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to create logger")
	}

	// Settings live next to the local index
	store, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer store.Close()

	ctx := context.Background()
	resolver := config.NewResolver(store.Settings())
	if err := resolver.Seed(ctx, cfg.Seed.Values()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed settings")
	}

	b, closeBackend, err := newBackend(cfg, store, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize backend")
	}
	defer closeBackend()

	svc := generation.NewService(resolver, b, generation.Options{
		InferenceTimeout:  cfg.InferenceTimeout,
		RequestsPerSecond: cfg.InferenceRPS,
		PersistWorkers:    cfg.PersistWorkers,
	}, log)

	if projectID, err := svc.EnsureProjectID(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to assign project id")
	} else {
		log.Info().Str("project_id", projectID).Msg("project ready")
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.InferenceTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api.SetupRoutes(app, svc)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("shutting down server")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Error().Err(err).Msg("error during shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("backend", b.Name()).Msg("starting server")
	if err := app.Listen(cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}

func newBackend(cfg *config.Config, store *sqlite.SQLiteStore, log zerolog.Logger) (backend.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendLocal:
		objects, err := pebbledb.New(cfg.ObjectsPath)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := objects.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close object store")
			}
		}
		return backend.NewLocal(objects, store, inference.NewHTTP(cfg.InferenceTimeout)), closeFn, nil
	default:
		return backend.NewAWS(awsclient.NewFactory(log), log), func() {}, nil
	}
}
