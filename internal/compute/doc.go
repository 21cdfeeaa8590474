// Package compute provides the backends that dispatch the kernel's
// per-agent and per-cell passes.
//
//   - serial: one chunk on the calling goroutine
//   - cpu: contiguous chunks on one goroutine per core
//
// Both backends call the same chunk function over the same index space, so
// any pass whose chunks write disjoint memory (or reduce exactly) produces
// identical results on either:
//
//	b, _ := compute.Get("cpu")
//	b.For(len(xs), func(worker, start, end int) { ... })
package compute
