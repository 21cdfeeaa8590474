package compute

import (
	"runtime"
	"sync"
)

// minChunk is the smallest range worth handing to another goroutine.
const minChunk = 1024

type CPUBackend struct {
	workers  int
	minChunk int
}

func NewCPUBackend() *CPUBackend {
	return NewCPUBackendWorkers(runtime.NumCPU())
}

// NewCPUBackendWorkers pins the worker count. Tests use it to force
// several chunks on small inputs.
func NewCPUBackendWorkers(workers int) *CPUBackend {
	if workers < 1 {
		workers = 1
	}
	return &CPUBackend{workers: workers, minChunk: minChunk}
}

func (c *CPUBackend) Name() string { return "cpu" }
func (c *CPUBackend) Workers() int { return c.workers }

// WithMinChunk returns a copy that splits ranges down to size chunks.
func (c *CPUBackend) WithMinChunk(size int) *CPUBackend {
	if size < 1 {
		size = 1
	}
	return &CPUBackend{workers: c.workers, minChunk: size}
}

func (c *CPUBackend) For(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}

	workers := c.workers
	if n/c.minChunk < workers {
		workers = n / c.minChunk
	}
	if workers <= 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(worker, s, e int) {
			defer wg.Done()
			fn(worker, s, e)
		}(w, start, end)
	}

	wg.Wait()
}
