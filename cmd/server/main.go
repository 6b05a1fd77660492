package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "video-merger/docs"

	"video-merger/internal/delivery/http/handlers"
	"video-merger/internal/delivery/http/middleware"
	"video-merger/internal/delivery/http/routers"
	"video-merger/internal/domain/filtergraph"
	"video-merger/internal/infrastructure/processor"
	"video-merger/internal/infrastructure/queue"
	"video-merger/internal/infrastructure/storage"
	"video-merger/internal/pkg/config"
	"video-merger/internal/pkg/logging"
	"video-merger/internal/usecases"
	"video-merger/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.LoadConfig()
	logging.Configure(logging.Config{Level: cfg.Log.Level})
	log := logging.WithComponent("main")
	if envErr != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Merge.TempDir).Msg("cannot create scratch directory")
	}
	if cfg.Merge.StaleAfter <= cfg.Merge.TranscodeTimeout {
		cfg.Merge.StaleAfter = 2 * cfg.Merge.TranscodeTimeout
		log.Warn().Dur("stale_after", cfg.Merge.StaleAfter).Msg("stale age raised above transcode timeout")
	}

	// Storage
	scratch := storage.NewLocalStorage(cfg.Merge.TempDir)

	// Services
	pool := queue.NewWorkerPool(cfg.Merge.Workers)
	planner := filtergraph.NewPlanner(filtergraph.Profile{
		FrameRate:     cfg.Encoding.FrameRate,
		PixelFormat:   cfg.Encoding.PixelFormat,
		SampleRate:    cfg.Encoding.SampleRate,
		ChannelLayout: cfg.Encoding.ChannelLayout,
		Width:         cfg.Encoding.Width,
		Height:        cfg.Encoding.Height,
	})
	opts := []usecases.Option{usecases.WithTranscodeTimeout(cfg.Merge.TranscodeTimeout)}
	if cfg.Archive.Bucket != "" {
		archive, err := storage.NewS3Storage(context.Background(), cfg.Archive.Bucket, cfg.Archive.Region, cfg.Archive.Prefix)
		if err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Archive.Bucket).Msg("cannot configure archive storage")
		}
		opts = append(opts, usecases.WithArchive(archive))
		log.Info().Str("bucket", cfg.Archive.Bucket).Msg("archiving merged outputs")
	}
	mergeService := usecases.NewMergeService(
		processor.NewInspector(cfg.Merge.FFprobePath, cfg.Merge.ProbeTimeout),
		planner,
		processor.NewTranscoder(cfg.Merge.FFmpegPath, cfg.Encoding),
		scratch,
		pool,
		opts...,
	)

	// Stale scratch sweep
	cleanupUC := usecases.NewCleanupService(scratch)
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Merge.SweepSchedule, func() {
		if _, err := cleanupUC.CleanupOldTempFiles(cfg.Merge.StaleAfter); err != nil {
			cleanupLog := logging.WithComponent("cleanup")
			cleanupLog.Error().Err(err).Msg("sweeping scratch directory failed")
		}
	}); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Merge.SweepSchedule).Msg("invalid sweep schedule")
	}
	c.Start()

	app := fiber.New(fiber.Config{
		BodyLimit:             int(cfg.Server.BodyLimit),
		ErrorHandler:          errors.HandleError,
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.AccessLog())
	app.Use(cors.New())

	// Routes
	routers.SetupMergeRoutes(app, handlers.NewMergeHandler(mergeService))
	routers.SetupOpsRoutes(app)

	addr := cfg.Addr()
	go func() {
		log.Info().Str("addr", addr).Int("workers", cfg.Merge.Workers).Msg("server starting")
		if err := app.Listen(addr); err != nil {
			log.Fatal().Err(err).Msg("server could not start")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctxShut, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		log.Error().Err(err).Msg("server did not shut down cleanly")
	}
	pool.Shutdown()
	<-c.Stop().Done()
	log.Info().Msg("server stopped")
}
