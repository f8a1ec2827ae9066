package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/swingscan/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Analyze the universe once and publish the snapshot",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := a.Run(ctx)
	if err != nil {
		log.Error("run failed", zap.String("run_id", rep.RunID), zap.Error(err))
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d tickers, %d rows, %d skipped",
		rep.RunID, rep.Tickers, rep.Rows, len(rep.Skipped))
	if rep.Published {
		fmt.Fprintf(cmd.OutOrStdout(), ", published to %s\n", rep.Key)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), ", nothing published")
	}
	return nil
}
