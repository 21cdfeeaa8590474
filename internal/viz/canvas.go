package viz

import (
	"math/bits"
	"strings"
)

const brailleBase = 0x2800

// dotBit[y%4][x%2] is the braille bit of a dot within its cell.
var dotBit = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// Canvas is a grid of braille cells, each holding 2x4 dots. It draws one
// dot per agent in the agent view.
type Canvas struct {
	Cols, Rows int
	cells      []uint8
}

func NewCanvas(cols, rows int) *Canvas {
	return &Canvas{Cols: cols, Rows: rows, cells: make([]uint8, cols*rows)}
}

func (c *Canvas) cell(x, y int) (int, uint8, bool) {
	if x < 0 || y < 0 || x >= c.Cols*2 || y >= c.Rows*4 {
		return 0, 0, false
	}
	return (y/4)*c.Cols + x/2, dotBit[y%4][x%2], true
}

// Set lights the dot at (x, y). The canvas is Cols*2 by Rows*4 dots;
// dots outside are ignored.
func (c *Canvas) Set(x, y int) {
	if i, bit, ok := c.cell(x, y); ok {
		c.cells[i] |= bit
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	i, bit, ok := c.cell(x, y)
	return ok && c.cells[i]&bit != 0
}

// Plot lights the dot nearest to (x, y) on a w by h grid.
func (c *Canvas) Plot(x, y float64, w, h int) {
	c.Set(int(x*float64(c.Cols*2)/float64(w)), int(y*float64(c.Rows*4)/float64(h)))
}

// Count returns the number of lit dots.
func (c *Canvas) Count() int {
	n := 0
	for _, v := range c.cells {
		n += bits.OnesCount8(v)
	}
	return n
}

func (c *Canvas) Clear() { clear(c.cells) }

func (c *Canvas) String() string {
	var b strings.Builder
	b.Grow(c.Rows * (c.Cols*3 + 1))
	for i, v := range c.cells {
		b.WriteRune(brailleBase + rune(v))
		if (i+1)%c.Cols == 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
