package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/chaosmap/internal/analysis"
	"github.com/san-kum/chaosmap/internal/experiment"
	"github.com/san-kum/chaosmap/internal/export"
	"github.com/san-kum/chaosmap/internal/scan"
	"github.com/san-kum/chaosmap/internal/storage"
	"github.com/san-kum/chaosmap/internal/tui"
	"github.com/san-kum/chaosmap/internal/viz"
)

var (
	renderOut    string
	renderName   string
	renderNoSave bool
)

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, "preview")
	if err != nil {
		return err
	}
	return viz.RunPreview(*cfg, logger)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd, "batch")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	grid := scan.Grid{Width: cfg.Width, Height: cfg.Height, Resolution: cfg.Resolution}
	fmt.Printf("rendering %s (%d samples)...\n", grid, grid.Total())

	printer := tui.NewProgressPrinter(os.Stdout, fmt.Sprintf("Rendering %dx%d", cfg.Width, cfg.Height), 10)
	printer.Start()
	res, err := experiment.New(
		experiment.Config{Name: renderName, Settings: *cfg},
		experiment.WithLogger(logger),
		experiment.WithProgress(printer),
	).Run(ctx)
	printer.Stop()
	if err != nil {
		return err
	}

	if !res.Complete() {
		fmt.Printf("render cancelled after %d of %d samples; nothing saved\n", res.Summary.Count, grid.Total())
		return nil
	}

	fmt.Printf("completed in %v (%s)\n", res.Elapsed.Round(time.Millisecond), res.Backend)
	printSummary(res.Summary)
	printHistogram(res.Histogram, res.Params.MaxTime)

	if renderOut != "" {
		path := renderOut
		if path == "auto" {
			path = storage.RunID(grid, time.Now()) + ".png"
		}
		if err := export.SavePNG(path, res.Raster.Image()); err != nil {
			return err
		}
		fmt.Printf("image: %s\n", path)
	}

	if renderNoSave {
		return nil
	}

	st := storage.New(dataDir).WithLogger(logger)
	runID, err := st.Save(res.StorageRun())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("map: %s\n", st.ImagePath(runID))
	return nil
}

func printSummary(s analysis.Summary) {
	fmt.Printf("samples: %d\n", s.Count)
	fmt.Printf("flipped: %d (%.1f%%)\n", s.Flipped, 100*s.FlippedFraction())
	if s.Count > 0 {
		fmt.Printf("time to flip: mean %.3f, min %.3f, max %.3f (cutoff %.1f)\n", s.Mean, s.Min, s.Max, s.MaxTime)
	}
}

func printHistogram(hist []float64, maxTime float64) {
	if len(hist) < 2 {
		return
	}
	// The last bucket also holds every sample that never flipped.
	fmt.Println()
	fmt.Println(asciigraph.Plot(hist,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Caption(fmt.Sprintf("samples per time-to-flip bucket, 0 to %.1f", maxTime)),
	))
	fmt.Println()
}
