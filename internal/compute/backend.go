package compute

import (
	"fmt"
	"runtime"
)

type Backend interface {
	Name() string
	// Workers is an upper bound on the worker ids passed to For callbacks.
	Workers() int
	// For splits [0, n) into contiguous chunks and blocks until fn has run
	// on every chunk.
	For(n int, fn func(worker, start, end int))
}

// Names lists the backends Get accepts.
func Names() []string { return []string{"auto", "cpu", "serial"} }

// Get returns the named backend.
func Get(name string) (Backend, error) {
	switch name {
	case "serial":
		return NewSerialBackend(), nil
	case "cpu":
		return NewCPUBackend(), nil
	case "", "auto":
		return AutoSelectBackend(), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
}

func AutoSelectBackend() Backend {
	if runtime.NumCPU() > 1 {
		return NewCPUBackend()
	}
	return NewSerialBackend()
}

type SerialBackend struct{}

func NewSerialBackend() *SerialBackend { return &SerialBackend{} }

func (s *SerialBackend) Name() string { return "serial" }
func (s *SerialBackend) Workers() int { return 1 }

func (s *SerialBackend) For(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	fn(0, 0, n)
}
