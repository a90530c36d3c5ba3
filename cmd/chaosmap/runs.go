package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/chaosmap/internal/export"
	"github.com/san-kum/chaosmap/internal/storage"
)

var (
	histogramPNG string
	exportValues bool
	exportOut    string
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir).WithLogger(logger)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tG\tDT\tMAX_T\tFLIPPED\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.3f\t%.1f\t%.1f%%\t%.1fs\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Grid(),
			run.Physics.G,
			run.Dt,
			run.MaxTime,
			100*run.Summary.FlippedFraction(),
			run.Elapsed,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir).WithLogger(logger)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "run:\t%s\n", meta.ID)
	if meta.Name != "" {
		fmt.Fprintf(w, "name:\t%s\n", meta.Name)
	}
	fmt.Fprintf(w, "time:\t%s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "grid:\t%s (%d samples)\n", meta.Grid(), meta.Grid().Total())
	fmt.Fprintf(w, "physics:\tg=%.3f m1=%.3f m2=%.3f l1=%.3f l2=%.3f\n",
		meta.Physics.G, meta.Physics.M1, meta.Physics.M2, meta.Physics.L1, meta.Physics.L2)
	fmt.Fprintf(w, "integration:\tdt=%.4f max_time=%.2f\n", meta.Dt, meta.MaxTime)
	fmt.Fprintf(w, "backend:\t%s\n", meta.Backend)
	fmt.Fprintf(w, "elapsed:\t%.2fs\n", meta.Elapsed)
	fmt.Fprintf(w, "map:\t%s\n", st.ImagePath(meta.ID))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	printSummary(meta.Summary)
	printHistogram(meta.Histogram, meta.MaxTime)

	if histogramPNG == "" {
		return nil
	}
	if !meta.HasValues {
		return fmt.Errorf("run %s did not store its values; histogram plot needs them", meta.ID)
	}
	values, err := st.LoadValues(meta.ID)
	if err != nil {
		return err
	}

	f, err := os.Create(histogramPNG)
	if err != nil {
		return err
	}
	if err := export.WriteHistogramPNG(f, values, meta.MaxTime, 50); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("histogram: %s\n", histogramPNG)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir).WithLogger(logger)

	var out io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return st.ExportJSON(out, args[0], exportValues)
}
