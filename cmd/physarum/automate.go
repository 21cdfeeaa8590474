package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/physarum/internal/automation"
	"github.com/san-kum/physarum/internal/config"
	"github.com/san-kum/physarum/internal/optim"
	"github.com/san-kum/physarum/internal/sim"
)

// builderFor returns an engine constructor that layers overrides on top
// of cfg.Params.
func builderFor(cfg *config.Config) func(map[string]float64) (*sim.Engine, error) {
	return func(overrides map[string]float64) (*sim.Engine, error) {
		c := cfg.Clone()
		for k, v := range overrides {
			c.SetParam(k, v)
		}
		return newEngine(c)
	}
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	e, err := newEngine(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("running scenario", "name", scenario.Name, "steps", scenario.Steps, "events", len(scenario.Events))
	history, err := automation.Run(ctx, scenario, e, cfg.StatsEvery)
	if err != nil {
		return err
	}
	logger.Info("scenario complete", "final", e.Stats())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tTRAIL MEAN\tCOVERAGE\tOCCUPIED")
	for _, s := range history {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%d\n", s.Step, s.TrailMean, s.Coverage, s.OccupiedCells)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	n, err := commandSteps(cmd, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sweep := &automation.ParameterSweep{
		Param:  args[0],
		Min:    sweepMin,
		Max:    sweepMax,
		Points: sweepPoints,
		Steps:  n,
	}
	results, err := automation.RunSweep(ctx, sweep, builderFor(cfg))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tTRAIL MEAN\tTRAIL STD\tCOVERAGE\tOCCUPIED\n", strings.ToUpper(sweep.Param))
	for _, r := range results {
		fmt.Fprintf(w, "%.4g\t%.4f\t%.4f\t%.4f\t%d\n",
			r.Value, r.Final.TrailMean, r.Final.TrailStd, r.Final.Coverage, r.Final.OccupiedCells)
	}
	return w.Flush()
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	n, err := commandSteps(cmd, cfg)
	if err != nil {
		return err
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges, n, !minimize)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("grid search", "points", g.Size(), "column", searchColumn, "steps", n)
	best, trials, err := g.Search(ctx, builderFor(cfg), searchColumn)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(strings.Join(names, "\t")), strings.ToUpper(searchColumn))
	for _, t := range trials {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(t.Params[n], 'g', 4, 64))
		}
		if t.Err != nil {
			row = append(row, "error: "+t.Err.Error())
		} else {
			row = append(row, strconv.FormatFloat(t.Score, 'f', 4, 64))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.4f with %v\n", searchColumn, best.Score, formatParams(best.Params))
	if refineEvals <= 0 {
		return nil
	}

	r, err := optim.NewRefiner(names, n, refineEvals, !minimize)
	if err != nil {
		return err
	}
	refined, evals, err := r.Refine(ctx, best.Params, builderFor(cfg), searchColumn)
	if err != nil {
		return err
	}
	logger.Info("refinement complete", "evaluations", evals, "score", refined.Score)
	fmt.Printf("refined %s = %.4f with %v\n", searchColumn, refined.Score, formatParams(refined.Params))
	return nil
}

// parseGrid parses specs of the form name=v1,v2,... into parallel
// name and value slices.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	if len(specs) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid name=v1,v2 is required")
	}
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, nil, fmt.Errorf("invalid grid %q, expected name=v1,v2", spec)
		}
		var values []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid grid %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func formatParams(m map[string]float64) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%g", k, m[k])
	}
	return strings.Join(parts, " ")
}
