package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/physarum/internal/config"
	"github.com/san-kum/physarum/internal/viz"
)

var (
	dataDir   string
	logFormat string
	logLevel  string
	logger    = slog.Default()

	// run configuration
	configFile    string
	preset        string
	profileName   string
	width         int
	height        int
	agentFraction float64
	seed          int64
	steps         int
	backendName   string
	statsEvery    int
	frameEvery    int
	overrides     []string

	// ensemble
	numRuns   int
	seedStart int64

	// plot / export
	columns    []string
	outputPath string

	// sweep / search
	sweepMin     float64
	sweepMax     float64
	sweepPoints  int
	gridSpecs    []string
	searchColumn string
	minimize     bool
	refineEvals  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "physarum",
		Short:         "physarum slime mould transport simulation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logFormat, logLevel)
			if err != nil {
				return err
			}
			logger = l
			slog.SetDefault(l)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunMenu(func(cfg *config.Config) (viz.Model, error) {
				e, err := newEngine(cfg)
				if err != nil {
					return viz.Model{}, err
				}
				return viz.NewModel(e, cfg.Profile, logger), nil
			}, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".physarum", "data directory")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its statistics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	runCmd.Flags().IntVar(&statsEvery, "stats-every", config.DefaultStatsEvery, "record stats every n steps (0 disables)")
	runCmd.Flags().IntVar(&frameEvery, "frame-every", 0, "write a PNG frame every n steps (0 disables)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&columns, "column", []string{"trail_mean", "coverage"}, "stats columns to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets or print one as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	paramsCmd := &cobra.Command{
		Use:   "params [profile]",
		Short: "list the parameters of a profile",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showParams,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure steps per second for each backend",
		Args:  cobra.NoArgs,
		RunE:  benchBackends,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&steps, "steps", 200, "steps per backend")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run several seeds concurrently and summarise them",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&steps, "steps", 500, "steps per run")
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of runs")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "seed of the first run")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario that changes parameters at fixed steps",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(scenarioCmd)
	scenarioCmd.Flags().IntVar(&statsEvery, "stats-every", config.DefaultStatsEvery, "record stats every n steps")

	sweepCmd := &cobra.Command{
		Use:   "sweep [param]",
		Short: "run one simulation per value of a parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&steps, "steps", 300, "steps per run")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.05, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.95, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "grid search parameters for the best final statistic",
		Args:  cobra.NoArgs,
		RunE:  runSearch,
	}
	addRunFlags(searchCmd)
	searchCmd.Flags().IntVar(&steps, "steps", 300, "steps per grid point")
	searchCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "grid axis name=v1,v2,... (repeatable)")
	searchCmd.Flags().StringVar(&searchColumn, "column", "coverage", "stats column to score")
	searchCmd.Flags().BoolVar(&minimize, "minimize", false, "pick the lowest score instead of the highest")
	searchCmd.Flags().IntVar(&refineEvals, "refine", 0, "CMA-ES evaluations spent polishing the best grid point (0 disables)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, presetsCmd, paramsCmd, benchCmd, ensembleCmd,
		scenarioCmd, sweepCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&profileName, "profile", config.DefaultProfile, "parameter profile (minimal, classic, extended)")
	cmd.Flags().IntVar(&width, "width", config.DefaultWidth, "grid width")
	cmd.Flags().IntVar(&height, "height", config.DefaultHeight, "grid height")
	cmd.Flags().Float64Var(&agentFraction, "agents", config.DefaultAgentFraction, "agents per cell, in (0, 1]")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: time based)")
	cmd.Flags().StringVar(&backendName, "backend", config.DefaultBackend, "compute backend (auto, cpu, serial)")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "parameter override name=value (repeatable)")
}

func newLogger(format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format: %s (available: text, json)", format)
	}
}
