package viz

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/chaosmap/internal/analysis"
	"github.com/san-kum/chaosmap/internal/compute"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/scan"
)

const (
	sidebarWidth = 44
	histBins     = 24

	statusDrawing  = "Live Preview (Low Res)"
	statusComplete = "Live Preview (Low Res) - Complete"
	statusReady    = "Ready - press space for live preview"
)

var (
	canvasStyle      = lipgloss.NewStyle().Padding(0, 1)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(sidebarWidth)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// paramKeys is the tuning order shown in the sidebar.
var paramKeys = []string{"g", "m1", "m2", "l1", "l2", "dt", "max_time"}

// batchMsg carries the fills of one finished batch back to Update.
type batchMsg struct {
	gen      uint64
	fills    []scan.Fill
	progress scan.Progress
}

// fillBuffer collects the fills of the batch in flight. Only the
// goroutine running the batch writes to it.
type fillBuffer struct {
	fills []scan.Fill
}

func (b *fillBuffer) Fill(f scan.Fill) { b.fills = append(b.fills, f) }

func (b *fillBuffer) take() []scan.Fill {
	fills := b.fills
	b.fills = nil
	return fills
}

// Preview is the live low-resolution chaos map. Batches run in commands
// off the UI goroutine; while one is in flight Update leaves the scanner
// alone and only cancels its context.
type Preview struct {
	cfg     config.Config
	scanner *scan.Scanner
	buf     *fillBuffer
	canvas  *Canvas
	values  []float64
	bar     progress.Model
	logger  *log.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	enabled  bool
	inFlight bool
	restart  bool
	last     scan.Progress

	width, height int
	selected      int
	showHelp      bool
	err           error
}

func NewPreview(cfg config.Config, logger *log.Logger) (*Preview, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Preview{
		cfg:     cfg,
		buf:     &fillBuffer{},
		logger:  logger,
		enabled: true,
		width:   cfg.Width / cfg.Resolution,
		height:  cfg.Height / cfg.Resolution / 2,
	}
	m.resizeCanvas()
	m.applyTheme()

	s, err := scan.New(cfg.Params(), m.grid(),
		scan.WithBatchSize(cfg.BatchSize),
		scan.WithBackend(compute.AutoSelect(cfg.Workers)),
		scan.WithSink(m.buf),
		scan.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	m.scanner = s
	return m, nil
}

func (m *Preview) Init() tea.Cmd {
	return m.begin()
}

func (m *Preview) grid() scan.Grid {
	w, h := m.canvas.SurfaceSize()
	return scan.Grid{Width: w, Height: h, Resolution: m.cfg.Resolution}
}

func (m *Preview) resizeCanvas() {
	m.canvas = NewCanvas(max(m.width, 1), max(m.height, 1), m.cfg.Resolution)
}

func (m *Preview) applyTheme() {
	m.bar = progress.New(
		progress.WithGradient(string(CurrentTheme.Primary), string(CurrentTheme.Secondary)),
		progress.WithWidth(sidebarWidth-6),
	)
}

// begin starts a fresh scan from sample 0 on the current settings.
func (m *Preview) begin() tea.Cmd {
	m.restart = false
	m.err = nil

	restarted, err := m.scanner.Reconfigure(m.cfg.Params(), m.grid())
	if err != nil {
		m.err = err
		m.enabled = false
		return nil
	}
	if !restarted || m.scanner.State() != scan.Scanning {
		m.scanner.Cancel()
		m.scanner.Reset()
		if err := m.scanner.Start(); err != nil {
			m.err = err
			return nil
		}
	}
	m.canvas.Clear()
	m.values = m.values[:0]

	m.enabled = true
	m.last = m.scanner.Progress()
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.logger.Debug("preview scan", "grid", m.grid(), "params", m.cfg.Params())
	return m.next()
}

func (m *Preview) next() tea.Cmd {
	if m.inFlight || m.scanner.State() != scan.Scanning {
		return nil
	}
	m.inFlight = true

	s, buf, ctx, gen := m.scanner, m.buf, m.ctx, m.scanner.Generation()
	return func() tea.Msg {
		p := s.Step(ctx)
		return batchMsg{gen: gen, fills: buf.take(), progress: p}
	}
}

// requestRestart discards the running scan. With a batch in flight the
// restart waits for it to come back cancelled.
func (m *Preview) requestRestart() tea.Cmd {
	if !m.enabled {
		return nil
	}
	if m.inFlight {
		m.restart = true
		m.cancel()
		return nil
	}
	return m.begin()
}

func (m *Preview) stop() {
	m.enabled = false
	m.restart = false
	if m.cancel != nil {
		m.cancel()
	}
	if !m.inFlight {
		m.scanner.Cancel()
	}
	m.canvas.Clear()
	m.values = m.values[:0]
}

func (m *Preview) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case " ", "space":
			if m.enabled {
				m.stop()
				return m, nil
			}
			m.enabled = true
			return m, m.requestRestart()
		case "tab":
			m.selected = (m.selected + 1) % len(paramKeys)
		case "shift+tab":
			m.selected = (m.selected + len(paramKeys) - 1) % len(paramKeys)
		case "up", "k":
			return m, m.adjustParam(1.05)
		case "down", "j":
			return m, m.adjustParam(0.95)
		case "r":
			return m, m.resetParams()
		case "t":
			m.cycleTheme()
		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		w := max(msg.Width-sidebarWidth-4, 1)
		h := max(msg.Height-1, 1)
		if w == m.width && h == m.height {
			return m, nil
		}
		m.width, m.height = w, h
		if m.inFlight {
			m.restart = true
			m.cancel()
			return m, nil
		}
		m.resizeCanvas()
		return m, m.requestRestart()

	case batchMsg:
		m.inFlight = false
		if m.restart {
			m.resizeCanvas()
			return m, m.begin()
		}
		if msg.gen != m.scanner.Generation() {
			return m, nil
		}
		if !m.enabled {
			// stopped after the batch finished but before it was delivered
			m.scanner.Cancel()
			return m, nil
		}
		for _, f := range msg.fills {
			m.canvas.Fill(f)
			m.values = append(m.values, f.Value)
		}
		m.last = msg.progress
		return m, m.next()
	}

	return m, nil
}

func (m *Preview) adjustParam(factor float64) tea.Cmd {
	key := paramKeys[m.selected]
	params := m.cfg.GetParams()
	if err := m.cfg.SetParam(key, params[key]*factor); err != nil {
		m.err = err
		return nil
	}
	return m.requestRestart()
}

func (m *Preview) resetParams() tea.Cmd {
	p := config.DefaultParams()
	m.cfg.Physics, m.cfg.Dt, m.cfg.MaxTime = p.Physics, p.Dt, p.MaxTime
	return m.requestRestart()
}

func (m *Preview) cycleTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			break
		}
	}
	m.applyTheme()
}

// Status is the one-line scan state shown above the progress bar.
func (m *Preview) Status() string {
	switch {
	case !m.enabled:
		return statusReady
	case m.last.State == scan.Complete:
		return statusComplete
	default:
		return statusDrawing
	}
}

func (m *Preview) View() string {
	var s strings.Builder

	s.WriteString(GradientText("DOUBLE PENDULUM CHAOS MAP", CurrentTheme.Primary, CurrentTheme.Secondary) + "\n\n")
	s.WriteString(StatusLine(m.Status(), m.enabled) + "\n")
	s.WriteString(m.bar.ViewAs(m.last.Fraction()) + "\n")
	s.WriteString(labelStyle.Render("Samples") + valueStyle.Render(fmt.Sprintf("%d / %d", m.last.Done, m.last.Total)) + "\n")
	s.WriteString(labelStyle.Render("Grid") + valueStyle.Render(m.grid().String()) + "\n")

	if len(m.values) > 0 {
		sum := analysis.Summarize(m.values, m.cfg.MaxTime)
		s.WriteString(labelStyle.Render("Flipped") + valueStyle.Render(fmt.Sprintf("%.1f%%", 100*sum.FlippedFraction())) + "\n")

		hist := analysis.Histogram(m.values, histBins, m.cfg.MaxTime)
		chart := asciigraph.Plot(hist, asciigraph.Height(5), asciigraph.Width(sidebarWidth-12), asciigraph.Caption("time to flip"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString("\nPARAMETERS\n")
	params := m.cfg.GetParams()
	for i, k := range paramKeys {
		line := fmt.Sprintf("%-10s %s", k, formatParam(k, params[k]))
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Width(0).Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint("SP:Preview TAB:Param ↑↓:Tune\nR:Defaults T:Theme ?:Help Q:Quit"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + mainView
	}
	return mainView
}

// formatParam matches the precision each parameter is tuned at.
func formatParam(key string, v float64) string {
	switch key {
	case "dt":
		return fmt.Sprintf("%.3f", v)
	case "max_time":
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Start/stop live preview  ║
║  Tab      - Next parameter           ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  R        - Default parameters       ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// RunPreview runs the live preview until the user quits.
func RunPreview(cfg config.Config, logger *log.Logger) error {
	m, err := NewPreview(cfg, logger)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
