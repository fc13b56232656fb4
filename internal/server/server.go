// Package server boots the marketplace and runs it until a signal arrives:
// config, logging sinks, database, cache, storage, the realtime hub, queue
// workers, the scheduler, then the HTTP and gRPC listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/agriconnect-ug/agriconnect/app/jobs"
	"github.com/agriconnect-ug/agriconnect/app/listeners"
	"github.com/agriconnect-ug/agriconnect/app/models"
	"github.com/agriconnect-ug/agriconnect/app/repositories"
	"github.com/agriconnect-ug/agriconnect/app/routes"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/internal/kernel"
	"github.com/agriconnect-ug/agriconnect/pkg/cache"
	"github.com/agriconnect-ug/agriconnect/pkg/database"
	"github.com/agriconnect-ug/agriconnect/pkg/grpcx"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/queue"
	"github.com/agriconnect-ug/agriconnect/pkg/realtime"
	"github.com/agriconnect-ug/agriconnect/pkg/schedule"
	"github.com/agriconnect-ug/agriconnect/pkg/storage"
)

const queueWorkers = 5

// Start boots every subsystem and serves until SIGINT or SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("server: load config: %w", err)
	}

	if uri := config.MongoLogURI(); uri != "" {
		mh, err := logger.EnableMongo(uri, "agriconnect", "logs")
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			defer mh.Close()
		}
	}

	if err := database.Connect(); err != nil {
		return err
	}

	// The migration files carry the authoritative schema; this pass keeps
	// dev databases in step without running the migrate command.
	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Listing{},
		&models.Demand{},
		&models.Offer{},
		&models.Order{},
		&models.Favorite{},
	); err != nil {
		return fmt.Errorf("server: automigrate: %w", err)
	}

	// Redis is optional: sessions, throttles and cached reads all degrade
	// to pass-through when it is down.
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, cache and sessions degraded", "error", err)
	}

	storage.Connect()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub()
	go hub.Run()
	defer hub.Stop()

	listeners.Register(hub)

	queue.UseDB(database.DB)
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	jobs.Register()
	queue.StartWorkers(ctx, queueWorkers)

	notify.UseDB(database.DB)
	notify.SetSlackWebhook(config.SlackWebhook())
	defer notify.Shutdown()

	feed := services.NewLiveFeed(hub, repositories.NewListingRepository())
	if err := feed.Start(ctx); err != nil {
		return fmt.Errorf("server: start live feed: %w", err)
	}

	listingSvc := services.NewListingService()
	schedule.Daily().Name("listings:sweep-stale").WithoutOverlapping().Run(func() {
		if err := listingSvc.SweepStale(); err != nil {
			logger.Error("sweep stale listings", "error", err)
		}
	})
	schedule.Start(ctx)

	grpcSrv, err := grpcx.Start(ctx, config.GRPCPort())
	if err != nil {
		return err
	}
	defer grpcx.Stop(grpcSrv)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           kernel.New(routes.Deps{Hub: hub, Feed: feed}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: http: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
