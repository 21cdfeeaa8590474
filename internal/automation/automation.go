// Package automation runs scripted simulations: scenarios that change
// parameters at fixed steps, and one-parameter sweeps.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/physarum/internal/metrics"
	"github.com/san-kum/physarum/internal/sim"
)

// Scenario changes parameters of one running simulation at fixed steps.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Steps       int     `yaml:"steps"`
	Events      []Event `yaml:"events"`
}

// Event applies Set when the engine has completed At steps.
type Event struct {
	At  int                `yaml:"at"`
	Set map[string]float64 `yaml:"set"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Validate checks step bounds and orders events by step.
func (s *Scenario) Validate() error {
	if s.Steps <= 0 {
		return fmt.Errorf("scenario %q: steps must be positive", s.Name)
	}
	for i, ev := range s.Events {
		if ev.At < 0 || ev.At > s.Steps {
			return fmt.Errorf("scenario %q: event %d at step %d outside [0, %d]", s.Name, i+1, ev.At, s.Steps)
		}
	}
	sort.SliceStable(s.Events, func(i, j int) bool { return s.Events[i].At < s.Events[j].At })
	return nil
}

// ErrEngineStarted is returned by Run for an engine that has already
// stepped; event steps count from a fresh or reset engine.
var ErrEngineStarted = errors.New("automation: engine has already stepped")

// Run advances e through the scenario, sampling stats every statsEvery
// steps and right after each event. A rejected event stops the run.
func Run(ctx context.Context, s *Scenario, e *sim.Engine, statsEvery int) ([]metrics.Stats, error) {
	if e.StepCount() != 0 {
		return nil, fmt.Errorf("%w (step %d)", ErrEngineStarted, e.StepCount())
	}
	history := make([]metrics.Stats, 0)
	next := 0

	apply := func() error {
		for next < len(s.Events) && s.Events[next].At == e.StepCount() {
			ev := s.Events[next]
			if err := e.UpdateParameters(ev.Set); err != nil {
				return fmt.Errorf("event %d at step %d: %w", next+1, ev.At, err)
			}
			history = append(history, e.Stats())
			next++
		}
		return nil
	}

	if err := apply(); err != nil {
		return history, err
	}
	for e.StepCount() < s.Steps {
		select {
		case <-ctx.Done():
			return history, ctx.Err()
		default:
		}

		if err := e.Step(); err != nil {
			return history, err
		}
		if statsEvery > 0 && e.StepCount()%statsEvery == 0 {
			history = append(history, e.Stats())
		}
		if err := apply(); err != nil {
			return history, err
		}
	}
	return history, nil
}

// ParameterSweep runs one simulation per value of a single parameter.
type ParameterSweep struct {
	Param  string
	Min    float64
	Max    float64
	Points int
	Steps  int
}

// SweepResult holds the final stats for one value.
type SweepResult struct {
	Value float64
	Final metrics.Stats
}

// Values returns Points evenly spaced values from Min to Max inclusive.
func (p *ParameterSweep) Values() []float64 {
	if p.Points <= 1 {
		return []float64{p.Min}
	}
	out := make([]float64, p.Points)
	step := (p.Max - p.Min) / float64(p.Points-1)
	for i := range out {
		out[i] = p.Min + float64(i)*step
	}
	out[len(out)-1] = p.Max
	return out
}

// RunSweep builds an engine for each value with build and runs it for
// Steps steps.
func RunSweep(ctx context.Context, p *ParameterSweep, build func(overrides map[string]float64) (*sim.Engine, error)) ([]SweepResult, error) {
	values := p.Values()
	results := make([]SweepResult, 0, len(values))

	for _, v := range values {
		e, err := build(map[string]float64{p.Param: v})
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", p.Param, v, err)
		}
		if err := e.Run(ctx, p.Steps, nil); err != nil {
			return results, fmt.Errorf("%s=%g: %w", p.Param, v, err)
		}
		results = append(results, SweepResult{Value: v, Final: e.Stats()})
	}

	return results, nil
}
