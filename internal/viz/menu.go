package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/physarum/internal/config"
)

// Builder turns a chosen preset into a running engine view.
type Builder func(cfg *config.Config) (Model, error)

const (
	stateMenu = iota
	stateLive
)

// Menu lists presets and opens a live view for the chosen one.
type Menu struct {
	state   int
	cursor  int
	presets []string
	build   Builder
	live    Model
	size    *tea.WindowSizeMsg
	err     error
}

func NewMenu(build Builder) Menu {
	return Menu{presets: config.ListPresets(), build: build}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateLive {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.size = &size
		return m, nil
	}
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		live, err := m.build(config.GetPreset(m.presets[m.cursor]))
		if err != nil {
			m.err = err
			return m, nil
		}
		if m.size != nil {
			live.resize(m.size.Width, m.size.Height)
		}
		m.live, m.state, m.err = live, stateLive, nil
		return m, m.live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.state == stateLive {
		return m.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + GradientText("PHYSARUM", ThemeMold.Primary, ThemeMold.Accent) + "\n")
	b.WriteString("    " + Subtle.Render("slime mould transport network") + "\n")
	b.WriteString("    " + Subtle.Render("─────────────────────────────") + "\n\n")

	pointer := lipgloss.NewStyle().Foreground(ThemeMold.Primary).Bold(true)
	name := lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	for i, preset := range m.presets {
		cfg := config.Presets[preset]
		desc := fmt.Sprintf("%s %dx%d, %.0f%% agents", cfg.Profile, cfg.Width, cfg.Height, cfg.AgentFraction*100)
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pointer.Render("▸"), name.Render(fmt.Sprintf("%-10s", preset)), KeyHint.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", Subtle.Render(fmt.Sprintf("%-10s", preset)), Subtle.Render(desc)))
		}
	}

	if m.err != nil {
		b.WriteString("\n    " + StatusError.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + KeyHint.Render("j/k navigate  enter select  q quit") + "\n")
	return b.String()
}

// RunMenu shows the preset picker.
func RunMenu(build Builder, logger *slog.Logger) error {
	logger.Debug("starting preset menu")
	_, err := tea.NewProgram(NewMenu(build), tea.WithAltScreen()).Run()
	return err
}
