package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agriconnect-ug/agriconnect/app/jobs"
	"github.com/agriconnect-ug/agriconnect/app/services"
	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/pkg/cache"
	"github.com/agriconnect-ug/agriconnect/pkg/database"
	"github.com/agriconnect-ug/agriconnect/pkg/logger"
	"github.com/agriconnect-ug/agriconnect/pkg/notify"
	"github.com/agriconnect-ug/agriconnect/pkg/queue"
	"github.com/agriconnect-ug/agriconnect/pkg/schedule"
)

var queueWorkersFlag int

// bootWorkers prepares everything a standalone worker process needs: the
// database for job handlers, Redis for the shared queue, and the
// notification channels.
func bootWorkers() error {
	if err := bootDB(); err != nil {
		return err
	}
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, using in-memory queue", "error", err)
	}

	queue.UseDB(database.DB)
	if config.QueueDriver() == "redis" && cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}
	notify.UseDB(database.DB)
	notify.SetSlackWebhook(config.SlackWebhook())
	jobs.Register()
	return nil
}

// agriconnect queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootWorkers(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		fmt.Printf("🚀 Processing jobs on %d workers. Ctrl+C to stop.\n", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		notify.Shutdown()
		fmt.Println("\n⚡ Workers drained, bye.")
		return nil
	},
}

// agriconnect schedule:run
var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Start the task scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		listingSvc := services.NewListingService()
		schedule.Daily().Name("listings:sweep-stale").WithoutOverlapping().Run(func() {
			if err := listingSvc.SweepStale(); err != nil {
				logger.Error("sweep stale listings", "error", err)
			}
		})

		tasks := schedule.List()
		if len(tasks) == 0 {
			fmt.Println("Nothing on the schedule.")
		} else {
			fmt.Println("Scheduled tasks:")
			for _, t := range tasks {
				fmt.Println("  •", t)
			}
		}

		fmt.Println("🕐 Scheduler running. Ctrl+C to stop.")
		schedule.Start(ctx)

		<-ctx.Done()
		fmt.Println("\n⚡ Scheduler shut down.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
