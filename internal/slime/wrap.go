package slime

import "math"

// TwoPi is one full turn in radians.
const TwoPi = 2 * math.Pi

// Wrap maps v into [0, size) toroidally.
func Wrap(v float64, size int) float64 {
	s := float64(size)
	r := v - s*math.Floor(v/s)
	if r >= s || r < 0 {
		return 0
	}
	return r
}

// Wrap32 wraps v and stores it as float32. Rounding to float32 can land
// exactly on size, which is folded back to 0.
func Wrap32(v float64, size int) float32 {
	r := float32(Wrap(v, size))
	if float64(r) >= float64(size) {
		return 0
	}
	return r
}

// WrapAngle maps a heading into [0, 2π).
func WrapAngle(h float64) float32 {
	r := h - TwoPi*math.Floor(h/TwoPi)
	a := float32(r)
	if float64(a) >= TwoPi || a < 0 {
		return 0
	}
	return a
}

// ModInt returns a mod m in [0, m).
func ModInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// Cell returns the nearest cell to (x, y), wrapped into the grid.
func Cell(x, y float64, w, h int) (int, int) {
	cx := ModInt(int(math.Round(x)), w)
	cy := ModInt(int(math.Round(y)), h)
	return cx, cy
}

// CellIndex returns the row-major index of the nearest cell to (x, y).
func CellIndex(x, y float64, w, h int) int {
	cx, cy := Cell(x, y, w, h)
	return cy*w + cx
}

// Finite reports whether v is neither NaN nor Inf.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
