// Package params holds the ordered parameter table of a simulation.
//
// A [Set] is created once from a [Profile] and named overrides. Its keys
// never change; values are replaced only through [Set.With], which
// validates the whole update and returns a new Set, so a caller swapping
// the result in never observes a half-applied configuration.
package params

import (
	"fmt"

	"github.com/san-kum/physarum/internal/slime"
)

// Param is one name/value pair in iteration order.
type Param struct {
	Name  string
	Value float64
}

// Set is an ordered mapping from parameter name to value.
type Set struct {
	profile Profile
	specs   []Spec
	index   map[string]int
	values  []float64
}

// New builds a Set for profile and applies overrides on top of the
// defaults.
func New(profile Profile, overrides map[string]float64) (*Set, error) {
	s := &Set{
		profile: profile,
		specs:   make([]Spec, 0, len(profile.Keys)),
		index:   make(map[string]int, len(profile.Keys)),
		values:  make([]float64, 0, len(profile.Keys)),
	}
	for _, key := range profile.Keys {
		spec, ok := Lookup(key)
		if !ok {
			return nil, fmt.Errorf("profile %s: %w", profile.Name, &slime.UnknownParameterError{Name: key})
		}
		s.index[key] = len(s.specs)
		s.specs = append(s.specs, spec)
		s.values = append(s.values, profile.defaultFor(spec))
	}
	if len(overrides) == 0 {
		return s, nil
	}
	return s.With(overrides)
}

// Profile returns the profile the set was built from.
func (s *Set) Profile() Profile { return s.profile }

// Len returns the number of parameters.
func (s *Set) Len() int { return len(s.specs) }

// Names returns parameter names in iteration order.
func (s *Set) Names() []string {
	names := make([]string, len(s.specs))
	for i, spec := range s.specs {
		names[i] = spec.Name
	}
	return names
}

// Params returns name/value pairs in iteration order.
func (s *Set) Params() []Param {
	out := make([]Param, len(s.specs))
	for i, spec := range s.specs {
		out[i] = Param{Name: spec.Name, Value: s.values[i]}
	}
	return out
}

// Map returns the values keyed by name.
func (s *Set) Map() map[string]float64 {
	m := make(map[string]float64, len(s.specs))
	for i, spec := range s.specs {
		m[spec.Name] = s.values[i]
	}
	return m
}

// Get returns the value of name.
func (s *Set) Get(name string) (float64, bool) {
	i, ok := s.index[name]
	if !ok {
		return 0, false
	}
	return s.values[i], true
}

// GetOr returns the value of name, or fallback when the set has no such key.
func (s *Set) GetOr(name string, fallback float64) float64 {
	if v, ok := s.Get(name); ok {
		return v
	}
	return fallback
}

// Spec returns the spec of name.
func (s *Set) Spec(name string) (Spec, bool) {
	i, ok := s.index[name]
	if !ok {
		return Spec{}, false
	}
	return s.specs[i], true
}

// With returns a copy of s with overrides applied. Any unknown key or
// invalid value rejects the whole update and s is left as it was.
func (s *Set) With(overrides map[string]float64) (*Set, error) {
	next := s.clone()
	for name, v := range overrides {
		i, ok := next.index[name]
		if !ok {
			return nil, &slime.UnknownParameterError{Name: name}
		}
		spec := next.specs[i]
		if !slime.Finite(v) {
			return nil, &slime.BoundsError{Name: name, Value: v, Min: spec.Min, Max: spec.Max}
		}
		if spec.Checked && (v < spec.Min || v > spec.Max) {
			return nil, &slime.BoundsError{Name: name, Value: v, Min: spec.Min, Max: spec.Max}
		}
		next.values[i] = v
	}
	return next, nil
}

// Adjusted returns the value name would take after a nudge in direction sign.
func (s *Set) Adjusted(name string, sign int) (float64, error) {
	i, ok := s.index[name]
	if !ok {
		return 0, &slime.UnknownParameterError{Name: name}
	}
	return s.specs[i].Adjust(s.values[i], sign), nil
}

func (s *Set) clone() *Set {
	c := &Set{
		profile: s.profile,
		specs:   s.specs,
		index:   s.index,
		values:  make([]float64, len(s.values)),
	}
	copy(c.values, s.values)
	return c
}
