package compute

import (
	"sync/atomic"
	"testing"
)

func coverage(t *testing.T, b Backend, n int) {
	t.Helper()
	seen := make([]int32, n)
	var calls int32
	b.For(n, func(worker, start, end int) {
		atomic.AddInt32(&calls, 1)
		if worker < 0 || worker >= b.Workers() {
			t.Errorf("%s: worker %d outside [0, %d)", b.Name(), worker, b.Workers())
		}
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("%s: index %d visited %d times", b.Name(), i, c)
		}
	}
	if n > 0 && calls == 0 {
		t.Errorf("%s: fn never called", b.Name())
	}
}

func TestBackendsCoverRange(t *testing.T) {
	backends := []Backend{
		NewSerialBackend(),
		NewCPUBackend(),
		NewCPUBackendWorkers(4).WithMinChunk(1),
		NewCPUBackendWorkers(7).WithMinChunk(3),
	}
	sizes := []int{0, 1, 5, 64, 1000, 4099}

	for _, b := range backends {
		for _, n := range sizes {
			coverage(t, b, n)
		}
	}
}

func TestCPUBackendSmallInputRunsInline(t *testing.T) {
	b := NewCPUBackendWorkers(8)
	var calls int
	b.For(10, func(worker, start, end int) {
		calls++
		if worker != 0 || start != 0 || end != 10 {
			t.Errorf("unexpected chunk (%d, %d, %d)", worker, start, end)
		}
	})
	if calls != 1 {
		t.Errorf("expected one inline call, got %d", calls)
	}
}

func TestGet(t *testing.T) {
	for _, name := range Names() {
		b, err := Get(name)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if b.Workers() < 1 {
			t.Errorf("%s: workers = %d", name, b.Workers())
		}
	}

	if _, err := Get("cuda"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
