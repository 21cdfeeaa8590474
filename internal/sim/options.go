package sim

import (
	"log/slog"

	"github.com/san-kum/physarum/internal/compute"
	"github.com/san-kum/physarum/internal/params"
)

type options struct {
	seed    int64
	profile params.Profile
	backend compute.Backend
	logger  *slog.Logger
}

func defaultOptions() options {
	return options{
		seed:    DefaultSeed,
		profile: params.Classic,
		backend: compute.NewSerialBackend(),
		logger:  slog.Default(),
	}
}

// Option configures an Engine.
type Option func(*options)

// WithSeed fixes the random seed. Two engines with equal seeds, sizes,
// parameters and backends produce identical state after every step.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithProfile selects the parameter profile. The default is classic.
func WithProfile(p params.Profile) Option {
	return func(o *options) { o.profile = p }
}

// WithBackend sets how the step is parallelised. Results do not depend
// on the backend.
func WithBackend(b compute.Backend) Option {
	return func(o *options) {
		if b != nil {
			o.backend = b
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
