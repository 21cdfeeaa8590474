package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultProfile       = "classic"
	DefaultWidth         = 256
	DefaultHeight        = 256
	DefaultAgentFraction = 0.08
	DefaultSteps         = 1000
	DefaultStatsEvery    = 10
	DefaultBackend       = "auto"
)

type Config struct {
	Profile       string             `yaml:"profile" json:"profile"`
	Width         int                `yaml:"width" json:"width"`
	Height        int                `yaml:"height" json:"height"`
	AgentFraction float64            `yaml:"agent_fraction" json:"agent_fraction"`
	Seed          int64              `yaml:"seed" json:"seed"`
	Steps         int                `yaml:"steps" json:"steps"`
	Backend       string             `yaml:"backend" json:"backend"`
	StatsEvery    int                `yaml:"stats_every" json:"stats_every"`
	FrameEvery    int                `yaml:"frame_every" json:"frame_every"`
	Params        map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Profile:       DefaultProfile,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		AgentFraction: DefaultAgentFraction,
		Steps:         DefaultSteps,
		Backend:       DefaultBackend,
		StatsEvery:    DefaultStatsEvery,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// SetParam records a parameter override.
func (c *Config) SetParam(name string, value float64) {
	if c.Params == nil {
		c.Params = make(map[string]float64)
	}
	c.Params[name] = value
}
