package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/newthinker/swingscan/internal/app"
	"github.com/newthinker/swingscan/internal/report"
	"github.com/spf13/cobra"
)

var (
	showKey     string
	showHistory bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the published snapshot",
	Long:  "Read a published snapshot back from storage and print it as a table",
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showKey, "key", "", "snapshot key (default: output.key)")
	showCmd.Flags().BoolVar(&showHistory, "history", false, "list archived snapshots instead")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}
	sink := a.Sink()
	ctx := context.Background()

	if showHistory {
		keys, err := sink.History(ctx)
		if err != nil {
			return fmt.Errorf("listing history: %w", err)
		}
		if len(keys) == 0 {
			fmt.Println("No archived snapshots")
			return nil
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	key := showKey
	if key == "" {
		key = cfg.Output.Key
	}
	rows, err := sink.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}

	header, err := report.HeaderByName(cfg.Output.Header)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header[:], "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(report.Row(r), "\t"))
	}
	w.Flush()

	fmt.Printf("\n%d rows in %s\n", len(rows), key)
	return nil
}
