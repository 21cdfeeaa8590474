package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/physarum/internal/compute"
	"github.com/san-kum/physarum/internal/config"
	"github.com/san-kum/physarum/internal/metrics"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/sim"
	"github.com/san-kum/physarum/internal/storage"
	"github.com/san-kum/physarum/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}

	e, err := newEngine(cfg)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID := st.NewRunID(cfg.Profile)

	logger.Info("starting run",
		"id", runID,
		"profile", cfg.Profile,
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"agents", e.AgentCount(),
		"steps", cfg.Steps,
		"backend", e.Backend().Name(),
		"seed", cfg.Seed,
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var (
		history []metrics.Stats
		frames  int
		saveErr error
	)
	start := time.Now()
	runErr := e.Run(ctx, cfg.Steps, func(e *sim.Engine) bool {
		step := e.StepCount()
		if cfg.StatsEvery > 0 && step%cfg.StatsEvery == 0 {
			s := e.Stats()
			history = append(history, s)
			logger.Debug("stats", "stats", s)
		}
		if cfg.FrameEvery > 0 && step%cfg.FrameEvery == 0 {
			if _, saveErr = st.SaveFrame(runID, step, e.RenderFrame().Image()); saveErr != nil {
				return false
			}
			frames++
		}
		return true
	})
	elapsed := time.Since(start)
	if saveErr != nil {
		return fmt.Errorf("save frame: %w", saveErr)
	}

	final := e.Stats()
	spectrum := e.Spectrum()
	meta := storage.RunMetadata{
		ID:            runID,
		Profile:       cfg.Profile,
		Seed:          cfg.Seed,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Agents:        e.AgentCount(),
		AgentFraction: cfg.AgentFraction,
		Steps:         e.StepCount(),
		Backend:       e.Backend().Name(),
		Params:        e.ParameterSet().Map(),
		Frames:        frames,
		Final:         final,
		Wavelength:    spectrum.Wavelength,
	}
	if _, err := st.Save(meta, history); err != nil {
		return err
	}

	if runErr != nil {
		logger.Error("run stopped", "id", runID, "step", e.StepCount(), "error", runErr)
		return runErr
	}

	logger.Info("run complete",
		"id", runID,
		"elapsed", elapsed.Round(time.Millisecond),
		"steps_per_sec", fmt.Sprintf("%.1f", float64(e.StepCount())/elapsed.Seconds()),
		"final", final,
		"wavelength", spectrum.Wavelength,
	)
	fmt.Println(runID)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}
	return viz.RunLive(e, cfg.Profile, logger)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROFILE\tTIME\tGRID\tAGENTS\tSTEPS\tSEED\tCOVERAGE\tWAVELENGTH")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d\t%d\t%.3f\t%.1f\n",
			run.ID,
			run.Profile,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width,
			run.Height,
			run.Agents,
			run.Steps,
			run.Seed,
			run.Final.Coverage,
			run.Wavelength,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("profile: %s\n", meta.Profile)
	fmt.Printf("samples: %d\n\n", len(stats))

	for _, col := range columns {
		data, err := metrics.Column(stats, col)
		if err != nil {
			return err
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(strings.ReplaceAll(col, "_", " ")),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	var w io.Writer = os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return st.Export(args[0], w)
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		cfg := config.GetPreset(args[0])
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(cfg)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPROFILE\tGRID\tAGENTS\tSTEPS\tOVERRIDES")
	for _, name := range config.ListPresets() {
		cfg := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.2f\t%d\t%d\n",
			name, cfg.Profile, cfg.Width, cfg.Height, cfg.AgentFraction, cfg.Steps, len(cfg.Params))
	}
	return w.Flush()
}

func showParams(cmd *cobra.Command, args []string) error {
	name := config.DefaultProfile
	if len(args) == 1 {
		name = args[0]
	}
	profile, err := params.GetProfile(name)
	if err != nil {
		return err
	}
	set, err := params.New(profile, nil)
	if err != nil {
		return err
	}

	fmt.Printf("profile: %s (nutrient channels: %d)\n\n", profile.Name, profile.Channels)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDEFAULT\tMIN\tMAX\tNUDGE\tDESCRIPTION")
	for _, p := range set.Params() {
		spec, _ := set.Spec(p.Name)
		fmt.Fprintf(w, "%s\t%.4g\t%g\t%g\t%s\t%s\n", p.Name, p.Value, spec.Min, spec.Max, spec.Nudge, spec.Help)
	}
	return w.Flush()
}

func benchBackends(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	n, err := commandSteps(cmd, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s %dx%d, %d steps\n\n", cfg.Profile, cfg.Width, cfg.Height, n)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tWORKERS\tAGENTS\tTIME\tSTEPS/SEC\tAGENT-STEPS/SEC")

	for _, name := range []string{"serial", "cpu"} {
		backend, err := compute.Get(name)
		if err != nil {
			return err
		}
		e, err := newEngine(cfg, sim.WithBackend(backend))
		if err != nil {
			return err
		}

		start := time.Now()
		if err := e.Run(context.Background(), n, nil); err != nil {
			return err
		}
		elapsed := time.Since(start)

		rate := float64(n) / elapsed.Seconds()
		fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.1f\t%.0f\n",
			name, backend.Workers(), e.AgentCount(), elapsed.Round(time.Millisecond), rate, rate*float64(e.AgentCount()))
	}

	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	profile, err := params.GetProfile(cfg.Profile)
	if err != nil {
		return err
	}
	n, err := commandSteps(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	ens := sim.NewEnsemble(cfg.Width, cfg.Height, cfg.AgentFraction, cfg.Params, numRuns, seedStart,
		sim.WithProfile(profile), sim.WithLogger(logger))

	start := time.Now()
	results, err := ens.Run(ctx, n, 0)
	if err != nil {
		return err
	}
	logger.Info("ensemble complete", "runs", len(results), "elapsed", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tTRAIL MEAN\tTRAIL STD\tCOVERAGE\tOCCUPIED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.4f\t%d\n",
			r.Seed, r.Final.TrailMean, r.Final.TrailStd, r.Final.Coverage, r.Final.OccupiedCells)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COLUMN\tMEAN\tSTD\tMIN\tMAX")
	for _, col := range []string{"trail_mean", "coverage", "occupied_cells"} {
		s, err := sim.Summarize(results, col)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", s.Column, s.Mean, s.Std, s.Min, s.Max)
	}
	return w.Flush()
}
