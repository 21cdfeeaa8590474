package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/physarum/internal/compute"
	"github.com/san-kum/physarum/internal/config"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/sim"
)

// resolveConfig layers defaults, then a preset, then a config file, then
// any flag the user set explicitly.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = profileName
	}
	if flags.Changed("width") {
		cfg.Width = width
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("agents") {
		cfg.AgentFraction = agentFraction
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("backend") {
		cfg.Backend = backendName
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("stats-every") {
		cfg.StatsEvery = statsEvery
	}
	if flags.Changed("frame-every") {
		cfg.FrameEvery = frameEvery
	}

	for _, kv := range overrides {
		name, value, err := parseOverride(kv)
		if err != nil {
			return nil, err
		}
		cfg.SetParam(name, value)
	}

	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return cfg, nil
}

// commandSteps is the step count for commands whose --steps default is
// their own: the flag when set or when nothing else supplies steps,
// otherwise the preset or config file value.
func commandSteps(cmd *cobra.Command, cfg *config.Config) (int, error) {
	n := steps
	if !cmd.Flags().Changed("steps") && (preset != "" || configFile != "") {
		n = cfg.Steps
	}
	if n <= 0 {
		return 0, fmt.Errorf("steps must be positive, got %d", n)
	}
	return n, nil
}

func parseOverride(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid override %q: want name=value", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid override %q: %w", kv, err)
	}
	return strings.TrimSpace(name), v, nil
}

func newEngine(cfg *config.Config, extra ...sim.Option) (*sim.Engine, error) {
	profile, err := params.GetProfile(cfg.Profile)
	if err != nil {
		return nil, err
	}
	backend, err := compute.Get(cfg.Backend)
	if err != nil {
		return nil, err
	}

	opts := []sim.Option{
		sim.WithSeed(cfg.Seed),
		sim.WithProfile(profile),
		sim.WithBackend(backend),
		sim.WithLogger(logger),
	}
	return sim.New(cfg.Width, cfg.Height, cfg.AgentFraction, cfg.Params, append(opts, extra...)...)
}
