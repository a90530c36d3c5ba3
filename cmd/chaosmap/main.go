package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	logFile    string

	logger  = log.New(io.Discard)
	logSink io.Closer
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "chaosmap",
		Short:         "double pendulum chaos map explorer",
		Long:          "chaosmap colors every initial angle pair of a double pendulum released at rest by how long it takes to flip.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logSink != nil {
				logSink.Close()
			}
		},
		RunE: runPreview,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".chaosmap", "data directory for saved runs")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "physics preset (see 'chaosmap presets')")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to this file instead of stderr")
	addSettingsFlags(rootCmd)

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "live low-resolution chaos map in the terminal",
		RunE:  runPreview,
	}
	addSettingsFlags(previewCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render a full-resolution chaos map to PNG",
		RunE:  runRender,
	}
	addSettingsFlags(renderCmd)
	renderCmd.Flags().StringVar(&renderOut, "out", "", "also write the image to this PNG path ('auto' for a timestamped name)")
	renderCmd.Flags().StringVar(&renderName, "name", "", "name stored with the run")
	renderCmd.Flags().BoolVar(&renderNoSave, "no-save", false, "do not save the run to the data directory")

	probeCmd := &cobra.Command{
		Use:   "probe",
		Short: "time to flip, Lyapunov exponent, energy drift and stability for one initial condition",
		RunE:  runProbe,
	}
	addSettingsFlags(probeCmd)
	probeCmd.Flags().Float64Var(&probeTheta1, "theta1", 2.0, "initial upper arm angle (rad)")
	probeCmd.Flags().Float64Var(&probeTheta2, "theta2", 2.0, "initial lower arm angle (rad)")
	probeCmd.Flags().Float64Var(&probePerturbation, "perturbation", 1e-8, "Lyapunov separation")
	probeCmd.Flags().Float64Var(&probeCalmSpeed, "calm-speed", 1.0, "angular speed threshold for the stability fraction (rad/s)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run's parameters, summary and flip-time histogram",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&histogramPNG, "png", "", "write the histogram as a PNG plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&exportValues, "values", false, "include sampled values")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of renders",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list physics presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "configuration helpers",
	}
	configInitCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	configInitCmd.Flags().BoolVar(&forceWrite, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)

	rootCmd.AddCommand(previewCmd, renderCmd, probeCmd, listCmd, showCmd, exportCmd, batchCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setupLogger builds the package logger. The preview owns the terminal,
// so it only logs when a log file is given.
func setupLogger(cmd *cobra.Command) error {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	var w io.Writer = os.Stderr
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		logSink = f
		w = f
	case cmd.Name() == "preview" || cmd == cmd.Root():
		w = io.Discard
	}

	logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "chaosmap",
		ReportTimestamp: true,
	})
	return nil
}
