package field

import "sync/atomic"

// Deposits counts agent deposits per cell during a step. Every agent
// deposits the same amount, so integer counts make the applied result
// independent of the order agents were processed and of how the pass was
// split across workers.
type Deposits struct {
	Counts []int32
}

// NewDeposits allocates a zeroed accumulator for n cells.
func NewDeposits(n int) *Deposits {
	return &Deposits{Counts: make([]int32, n)}
}

// Add records one deposit into cell i.
func (d *Deposits) Add(i int) { atomic.AddInt32(&d.Counts[i], 1) }

// Reset zeroes every count.
func (d *Deposits) Reset() {
	clear(d.Counts)
}

// Total returns the number of deposits recorded.
func (d *Deposits) Total() int {
	n := 0
	for _, c := range d.Counts {
		n += int(c)
	}
	return n
}

// ApplyDeposits adds counts*amount to every trail cell in [start, end) and
// clamps the result to [0, maxDensity] (maxDensity <= 0 caps it at the
// largest finite float32). Every cell in the range is clamped, deposited or not.
func (f *Field) ApplyDeposits(d *Deposits, amount, maxDensity float32, start, end int) {
	trail := f.Trail[start:end]
	for i, c := range d.Counts[start:end] {
		v := float64(trail[i])
		if c != 0 {
			v += float64(c) * float64(amount)
		}
		trail[i] = capDensity(v, maxDensity)
	}
}
