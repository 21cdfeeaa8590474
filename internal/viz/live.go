package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/physarum/internal/metrics"
	"github.com/san-kum/physarum/internal/params"
	"github.com/san-kum/physarum/internal/sim"
)

const (
	defaultCols     = 64
	defaultRows     = 32
	sidebarWidth    = 48
	historyCapacity = 600
	maxStepsPerTick = 64
	gifPath         = "physarum.gif"
)

type viewMode int

const (
	viewColour viewMode = iota
	viewAgents
)

type TickMsg time.Time

// Model is the live view of one engine.
type Model struct {
	engine       *sim.Engine
	title        string
	logger       *slog.Logger
	running      bool
	selected     int
	stepsPerTick int
	cols, rows   int
	view         viewMode
	theme        Theme
	canvas       *Canvas
	series       *metrics.Series
	recorder     *Recorder
	showHelp     bool
	status       string
	err          error
}

// NewModel wraps e in a live view titled title.
func NewModel(e *sim.Engine, title string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	return Model{
		engine:       e,
		title:        title,
		logger:       logger,
		running:      true,
		stepsPerTick: 1,
		cols:         defaultCols,
		rows:         defaultRows,
		theme:        Themes[0],
		canvas:       NewCanvas(defaultCols, defaultRows),
		series:       metrics.NewSeries(historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles keys and advances the engine on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.running {
			m.advance()
		}
		if m.recorder != nil {
			m.recorder.Capture(m.engine.RenderFrame().Image())
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.stopRecording()
		return m, tea.Quit
	case " ":
		if m.err == nil {
			m.running = !m.running
		}
	case "r":
		m.engine.Reset()
		m.series.Reset()
		m.err = nil
		m.status = "reset"
	case "tab":
		m.cycleParam(1)
	case "shift+tab":
		m.cycleParam(-1)
	case "+", "=", "up", "k":
		m.adjustParam(1)
	case "-", "_", "down", "j":
		m.adjustParam(-1)
	case "]":
		m.stepsPerTick = min(m.stepsPerTick*2, maxStepsPerTick)
	case "[":
		m.stepsPerTick = max(m.stepsPerTick/2, 1)
	case "v":
		if m.view == viewColour {
			m.view = viewAgents
		} else {
			m.view = viewColour
		}
	case "t":
		m.theme = nextTheme(m.theme)
	case "g":
		if m.recorder != nil {
			m.stopRecording()
		} else {
			m.recorder = NewRecorder(3)
			m.status = "recording"
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.cols = max(w-sidebarWidth-4, 10)
	m.rows = max(h-2, 5)
	m.canvas = NewCanvas(m.cols, m.rows)
}

// advance steps the engine and records stats. A failed step pauses the
// view and keeps the error on screen.
func (m *Model) advance() {
	for i := 0; i < m.stepsPerTick; i++ {
		if err := m.engine.Step(); err != nil {
			m.err = err
			m.running = false
			m.logger.Error("live step failed", "error", err)
			return
		}
	}
	m.series.Add(m.engine.Stats())
}

func (m *Model) cycleParam(dir int) {
	n := len(m.engine.Parameters())
	if n == 0 {
		return
	}
	m.selected = ((m.selected+dir)%n + n) % n
}

func (m *Model) adjustParam(sign int) {
	ps := m.engine.Parameters()
	if len(ps) == 0 {
		return
	}
	name := ps[m.selected].Name
	if err := m.engine.AdjustParameter(name, sign); err != nil {
		m.status = err.Error()
		return
	}
	v, _ := m.engine.ParameterSet().Get(name)
	m.status = fmt.Sprintf("%s = %.4g", name, v)
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	frames := m.recorder.Len()
	if err := m.recorder.Save(gifPath); err != nil {
		m.status = err.Error()
		m.logger.Error("save recording", "error", err)
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", frames, gifPath)
	}
	m.recorder = nil
}

// Selected returns the name of the highlighted parameter.
func (m Model) Selected() string {
	ps := m.engine.Parameters()
	if len(ps) == 0 {
		return ""
	}
	return ps[m.selected].Name
}

func (m Model) Running() bool { return m.running }

func (m Model) StepsPerTick() int { return m.stepsPerTick }

func (m Model) Err() error { return m.err }

// View renders the grid on the left and stats on the right.
func (m Model) View() string {
	var grid string
	if m.view == viewAgents {
		AgentDots(m.canvas, m.engine)
		grid = lipgloss.NewStyle().Foreground(m.theme.Secondary).Render(m.canvas.String())
	} else {
		grid = HalfBlocks(m.engine.RenderFrame(), m.cols, m.rows)
	}

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(grid), statsStyle.Render(m.sidebar()))
	if m.showHelp {
		return helpOverlay + "\n" + mainView
	}
	return mainView
}

func (m Model) sidebar() string {
	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.title), m.theme.Primary, m.theme.Accent) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("DIVERGED") + "\n")
	case m.recorder != nil:
		s.WriteString(StatusRecording.Render(fmt.Sprintf("REC %d", m.recorder.Len())) + "\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}

	if coverage, _ := m.series.Column("coverage"); len(coverage) > 1 {
		chart := asciigraph.Plot(coverage,
			asciigraph.Height(5),
			asciigraph.Width(sidebarWidth-14),
			asciigraph.Caption("coverage"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	stats := m.engine.Stats()
	line := func(label, value string) {
		s.WriteString(MetricLabel.Render(label) + MetricValue.Render(value) + "\n")
	}
	line("Step", fmt.Sprintf("%d (x%d)", stats.Step, m.stepsPerTick))
	line("Agents", fmt.Sprintf("%d", m.engine.AgentCount()))
	line("Grid", fmt.Sprintf("%dx%d %s", m.engine.Width(), m.engine.Height(), m.engine.Profile().Name))
	line("Backend", m.engine.Backend().Name())
	line("Trail mean", fmt.Sprintf("%.3f", stats.TrailMean))
	line("Occupied", fmt.Sprintf("%d", stats.OccupiedCells))
	if m.engine.Profile().Channels > 0 {
		line("Nutrient", fmt.Sprintf("%.2f", stats.NutrientTotal))
		carried, _ := m.series.Column("carried_mean")
		s.WriteString(MetricLabel.Render("Carried") + SparklineChart(carried, 20) + "\n")
	}

	s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Secondary).Bold(true).Render("PARAMETERS") + "\n")
	active := lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true)
	for i, p := range m.engine.Parameters() {
		spec, _ := params.Lookup(p.Name)
		frac := 0.0
		if spec.Max > spec.Min {
			frac = (p.Value - spec.Min) / (spec.Max - spec.Min)
		}
		text := fmt.Sprintf("%-15s %9.4g ", p.Name, p.Value)
		if i == m.selected {
			s.WriteString(active.Render("> "+text) + ProgressBar(frac, 8) + "\n")
		} else {
			s.WriteString("  " + Subtle.Render(text) + ProgressBar(frac, 8) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + KeyHint.Render(m.status) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nTab:Param +/-:Nudge ?:Help"))
	return s.String()
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space     - Pause/Resume            ║
║  R         - Reset to seeded state   ║
║  Q         - Quit                    ║
║  Tab/S-Tab - Select parameter        ║
║  +/-       - Nudge parameter         ║
║  [ ]       - Steps per frame         ║
║  V         - Colour/agent view       ║
║  T         - Cycle themes            ║
║  G         - Toggle GIF recording    ║
║  ?         - Toggle this help        ║
╚══════════════════════════════════════╝
`

// RunLive runs the live view until the user quits.
func RunLive(e *sim.Engine, title string, logger *slog.Logger) error {
	_, err := tea.NewProgram(NewModel(e, title, logger), tea.WithAltScreen()).Run()
	return err
}
