package params

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/san-kum/physarum/internal/slime"
)

func TestNewDefaults(t *testing.T) {
	s, err := New(Classic, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := []string{TrailDecay, SensorAngle, SensorOffset, RotationAngle, StepSize, DepositAmount, MaxDensity}
	if got := s.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}

	if v, _ := s.Get(TrailDecay); v != 0.3 {
		t.Errorf("trail_decay = %v, want 0.3", v)
	}
	if v, _ := s.Get(SensorAngle); math.Abs(v-math.Pi/3) > 1e-12 {
		t.Errorf("sensor_angle = %v, want π/3", v)
	}
	if v, _ := s.Get(MaxDensity); v != 2 {
		t.Errorf("max_density = %v, want 2", v)
	}
}

func TestProfileDefaults(t *testing.T) {
	ext, err := New(Extended, nil)
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range Extended.Defaults {
		if v, _ := ext.Get(name); v != want {
			t.Errorf("extended %s = %v, want %v", name, v, want)
		}
	}
	// keys without a profile default fall back to the catalog
	if v, _ := ext.Get(RotationAngle); math.Abs(v-math.Pi/8) > 1e-12 {
		t.Errorf("rotation_angle = %v, want π/8", v)
	}

	classic, _ := New(Classic, nil)
	if v, _ := classic.Get(TrailDecay); v != 0.3 {
		t.Errorf("classic trail_decay = %v, want catalog 0.3", v)
	}

	over, _ := New(Extended, map[string]float64{TrailDecay: 0.4})
	if v, _ := over.Get(TrailDecay); v != 0.4 {
		t.Errorf("override lost to profile default: %v", v)
	}
}

func TestIterationOrderStable(t *testing.T) {
	a, _ := New(Extended, map[string]float64{Attraction: 2, TrailDecay: 0.1, CarryMax: 3})
	b, _ := New(Extended, map[string]float64{CarryMax: 3, Attraction: 2, TrailDecay: 0.1})

	for i := 0; i < 5; i++ {
		if !reflect.DeepEqual(a.Params(), b.Params()) {
			t.Fatalf("params differ:\n%v\n%v", a.Params(), b.Params())
		}
	}
	if a.Names()[0] != TrailDecay || a.Names()[a.Len()-1] != CarryMax {
		t.Errorf("unexpected order: %v", a.Names())
	}
}

func TestWithRejectsWholeUpdate(t *testing.T) {
	s, _ := New(Minimal, nil)

	tests := []struct {
		name      string
		overrides map[string]float64
		target    error
	}{
		{"unknown key", map[string]float64{StepSize: 4, "speed": 1}, slime.ErrUnknownParameter},
		{"key outside profile", map[string]float64{MaxDensity: 4}, slime.ErrUnknownParameter},
		{"decay above one", map[string]float64{StepSize: 4, TrailDecay: 1.5}, slime.ErrParameterBounds},
		{"decay negative", map[string]float64{TrailDecay: -0.1}, slime.ErrParameterBounds},
		{"nan", map[string]float64{SensorOffset: math.NaN()}, slime.ErrParameterBounds},
		{"inf", map[string]float64{StepSize: math.Inf(1)}, slime.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := s.With(tt.overrides)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if next != nil {
				t.Error("expected nil set on error")
			}
			if v, _ := s.Get(StepSize); v != 1 {
				t.Errorf("original set mutated: step_size = %v", v)
			}
		})
	}
}

func TestWithUncheckedValuesPassThrough(t *testing.T) {
	s, _ := New(Minimal, nil)
	next, err := s.With(map[string]float64{SensorOffset: 500, StepSize: -2})
	if err != nil {
		t.Fatalf("With failed: %v", err)
	}
	if v, _ := next.Get(SensorOffset); v != 500 {
		t.Errorf("sensor_offset = %v, want 500", v)
	}
	if v, _ := s.Get(SensorOffset); v != 5 {
		t.Errorf("original mutated: %v", v)
	}
}

func TestAdjust(t *testing.T) {
	s, _ := New(Extended, map[string]float64{MaxDensity: 0})

	tests := []struct {
		name string
		key  string
		sign int
		want float64
	}{
		{"angle up", SensorAngle, 1, math.Pi / 3 * 1.1},
		{"angle down", SensorAngle, -1, math.Pi / 3 * 0.9},
		{"offset up", SensorOffset, 1, 6},
		{"offset down", SensorOffset, -1, 4},
		{"step clamps at zero", StepSize, -1, 0},
		{"cap from zero", MaxDensity, 1, 1},
		{"zero sign is a no-op", TrailDecay, 0, 0.3},
		{"large sign normalised", DepositAmount, 5, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Adjusted(tt.key, tt.sign)
			if err != nil {
				t.Fatalf("Adjusted failed: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Adjusted(%s, %d) = %v, want %v", tt.key, tt.sign, got, tt.want)
			}
		})
	}

	if _, err := s.Adjusted("nope", 1); !errors.Is(err, slime.ErrUnknownParameter) {
		t.Errorf("expected unknown parameter, got %v", err)
	}
}

func TestAdjustRelativeFromZero(t *testing.T) {
	spec, _ := Lookup(Attraction)
	if got := spec.Adjust(0, 1); got != spec.Floor {
		t.Errorf("Adjust(0, +1) = %v, want floor %v", got, spec.Floor)
	}
	if got := spec.Adjust(0, -1); got != 0 {
		t.Errorf("Adjust(0, -1) = %v, want 0", got)
	}

	decay, _ := Lookup(TrailDecay)
	if got := decay.Adjust(0.95, 1); got != 1 {
		t.Errorf("decay not clamped to 1: %v", got)
	}
}

func TestGetProfile(t *testing.T) {
	p, err := GetProfile("extended")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}
	if p.Channels != NutrientChannels {
		t.Errorf("extended channels = %d, want %d", p.Channels, NutrientChannels)
	}
	if !p.Has(PickupRate) || Minimal.Has(MaxDensity) {
		t.Error("profile key membership wrong")
	}

	if _, err := GetProfile("nonexistent"); err == nil {
		t.Error("expected error for unknown profile")
	}

	if got := ListProfiles(); !reflect.DeepEqual(got, []string{"classic", "extended", "minimal"}) {
		t.Errorf("ListProfiles() = %v", got)
	}
}
