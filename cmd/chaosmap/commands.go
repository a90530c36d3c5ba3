package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosmap/internal/automation"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/storage"
)

var forceWrite bool

func runBatch(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd, "batch")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("scenario: %s\n", scenario.Name)
	if scenario.Description != "" {
		fmt.Printf("  %s\n", scenario.Description)
	}

	runner := automation.NewRunner(*cfg, storage.New(dataDir).WithLogger(logger), logger)
	results, err := runner.Run(ctx, scenario)

	for _, r := range results {
		status := "saved " + r.RunID
		switch {
		case !r.Result.Complete():
			status = "cancelled"
		case r.RunID == "":
			status = "not saved"
		}
		fmt.Printf("  %-24s %s  flipped %.1f%%  %v\n",
			r.Result.Name, status, 100*r.Result.Summary.FlippedFraction(), r.Result.Elapsed.Round(time.Millisecond))
	}

	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted after %d step(s)", len(results))
	}
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tG\tM1\tM2\tL1\tL2\tDT\tMAX_T")
	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.3f\t%.1f\n",
			name, p.Physics.G, p.Physics.M1, p.Physics.M2, p.Physics.L1, p.Physics.L2, p.Dt, p.MaxTime)
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "chaosmap.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil && !forceWrite {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return err
	}
	logger.Info("wrote config", "path", path)
	fmt.Printf("wrote %s\n", path)
	return nil
}
