package optim

import (
	"context"
	"errors"
	"testing"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/slime"
)

func TestRefinerNormalizeRoundTrip(t *testing.T) {
	r, err := NewRefiner([]string{params.TrailDecay, params.SensorOffset}, 1, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	x := r.normalize(map[string]float64{params.TrailDecay: 0.25})
	if x[0] != 0.25 {
		t.Errorf("trail_decay normalised to %v", x[0])
	}
	// missing keys start from the catalog default
	if x[1] != 5.0/64 {
		t.Errorf("sensor_offset normalised to %v", x[1])
	}

	back := r.denormalize([]float64{1.5, -0.2})
	if back[params.TrailDecay] != 1 || back[params.SensorOffset] != 0 {
		t.Errorf("denormalize did not clamp: %v", back)
	}
}

func TestRefineNeverWorseThanStart(t *testing.T) {
	r, err := NewRefiner([]string{params.TrailDecay}, 4, 12, true)
	if err != nil {
		t.Fatal(err)
	}
	start := map[string]float64{params.TrailDecay: 0.6}
	base := evaluate(context.Background(), 4, start, build, "trail_mean")
	if base.Err != nil {
		t.Fatal(base.Err)
	}

	best, evals, err := r.Refine(context.Background(), start, build, "trail_mean")
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if evals < 2 {
		t.Errorf("evaluations = %d", evals)
	}
	if best.Score < base.Score {
		t.Errorf("refined score %v below start %v", best.Score, base.Score)
	}
	if v := best.Params[params.TrailDecay]; v < 0 || v > 1 {
		t.Errorf("trail_decay %v outside its range", v)
	}
}

func TestNewRefinerErrors(t *testing.T) {
	if _, err := NewRefiner(nil, 1, 1, true); err == nil {
		t.Error("expected error for no parameters")
	}
	if _, err := NewRefiner([]string{params.TrailDecay}, 1, 0, true); err == nil {
		t.Error("expected error for zero budget")
	}
	if _, err := NewRefiner([]string{"viscosity"}, 1, 1, true); !errors.Is(err, slime.ErrUnknownParameter) {
		t.Errorf("expected unknown parameter, got %v", err)
	}
}

func TestRefineCancelled(t *testing.T) {
	r, _ := NewRefiner([]string{params.TrailDecay}, 2, 5, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := r.Refine(ctx, nil, build, "coverage"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want canceled", err)
	}
}

func TestMinimizeErr(t *testing.T) {
	boom := errors.New("optimize: bad settings")
	if err := minimizeErr(&optimize.Result{Status: optimize.FunctionEvaluationLimit}, boom); err != nil {
		t.Errorf("budget stop should not fail: %v", err)
	}
	if err := minimizeErr(&optimize.Result{Status: optimize.Failure}, boom); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if err := minimizeErr(nil, boom); !errors.Is(err, boom) {
		t.Errorf("nil result should keep the error, got %v", err)
	}
	if err := minimizeErr(&optimize.Result{Status: optimize.MethodConverge}, nil); err != nil {
		t.Errorf("converged run failed: %v", err)
	}
}
