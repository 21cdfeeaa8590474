package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the sidebar. Pixel colours always come from the frame.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
}

var (
	ThemeMold = Theme{
		Name:      "mold",
		Primary:   lipgloss.Color("#f5d300"),
		Secondary: lipgloss.Color("#7ddc1f"),
		Accent:    lipgloss.Color("#ff8c42"),
		Muted:     lipgloss.Color("#6b6b4e"),
	}

	ThemeSpore = Theme{
		Name:      "spore",
		Primary:   lipgloss.Color("#ff00ff"),
		Secondary: lipgloss.Color("#00ffff"),
		Accent:    lipgloss.Color("#ffff00"),
		Muted:     lipgloss.Color("#666666"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#aaaaaa"),
		Accent:    lipgloss.Color("#0088ff"),
		Muted:     lipgloss.Color("#555555"),
	}

	Themes = []Theme{ThemeMold, ThemeSpore, ThemeMono}
)

// GetTheme returns the named theme, or the first one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func nextTheme(current Theme) Theme {
	for i, t := range Themes {
		if t.Name == current.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}
