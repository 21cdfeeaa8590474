package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/physarum/internal/sim"
)

// HalfBlocks draws fr into cols by rows terminal cells. Each cell shows
// two vertically stacked pixels: the upper half block takes the top pixel
// as foreground and the bottom pixel as background.
func HalfBlocks(fr *sim.Frame, cols, rows int) string {
	if fr == nil || fr.W == 0 || fr.H == 0 || cols <= 0 || rows <= 0 {
		return ""
	}

	var b strings.Builder
	for cy := 0; cy < rows; cy++ {
		top := (2 * cy) * fr.H / (2 * rows)
		bottom := (2*cy + 1) * fr.H / (2 * rows)
		for cx := 0; cx < cols; cx++ {
			x := cx * fr.W / cols
			style := lipgloss.NewStyle().
				Foreground(pixelColor(fr.At(x, top))).
				Background(pixelColor(fr.At(x, bottom)))
			b.WriteString(style.Render("▀"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func pixelColor(p uint32) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%06x", p&0xffffff))
}

// AgentDots plots every agent of e onto c.
func AgentDots(c *Canvas, e *sim.Engine) {
	c.Clear()
	for i := 0; i < e.AgentCount(); i++ {
		a := e.Agent(i)
		c.Plot(float64(a.X), float64(a.Y), e.Width(), e.Height())
	}
}
