package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/swingscan/internal/app"
	"github.com/newthinker/swingscan/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runOnStart bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the scan on the configured cron schedule",
	Long:  "Run the scan at every activation of schedule.cron, evaluated in the market timezone, until interrupted",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&runOnStart, "now", false, "also run once immediately")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.ValidateSchedule(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scan := func(ctx context.Context) error {
		_, err := a.Run(ctx)
		return err
	}

	s := scheduler.New(ctx, loc, log)
	if err := s.Register(cfg.Schedule.Cron, "scan", scan); err != nil {
		return err
	}

	if runOnStart {
		if err := scan(ctx); err != nil {
			log.Error("initial run failed", zap.Error(err))
		}
	}

	s.Start()
	for _, next := range s.Next(time.Now()) {
		log.Info("next run", zap.Time("at", next))
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down scheduler")
	cancel()
	s.Stop()
	return nil
}
