package viz

import (
	"errors"
	"math"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/physics"
	"github.com/san-kum/chaosmap/internal/scan"
)

func smallConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Width, cfg.Height, cfg.Resolution = 32, 32, 8
	cfg.MaxTime = 0.2
	cfg.BatchSize = 4
	cfg.Workers = 1
	return *cfg
}

func newPreview(t *testing.T) *Preview {
	t.Helper()
	m, err := NewPreview(smallConfig(), nil)
	if err != nil {
		t.Fatalf("new preview: %v", err)
	}
	return m
}

// drain runs commands until the preview has nothing left to do.
func drain(m *Preview, cmd tea.Cmd) {
	for cmd != nil {
		_, cmd = m.Update(cmd())
	}
}

func TestPreviewRunsToCompletion(t *testing.T) {
	m := newPreview(t)
	drain(m, m.Init())

	if got := m.Status(); got != statusComplete {
		t.Errorf("status = %q, want %q", got, statusComplete)
	}
	if len(m.values) != 16 {
		t.Errorf("expected 16 samples, got %d", len(m.values))
	}
	if m.last.Done != 16 || m.last.Total != 16 {
		t.Errorf("unexpected progress %+v", m.last)
	}
}

func TestPreviewRestartsOnParamChange(t *testing.T) {
	m := newPreview(t)
	cmd := m.Init()

	_, none := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if none != nil {
		t.Fatal("restart should wait for the batch in flight")
	}

	_, cmd = m.Update(cmd())
	if m.last.Done != 0 {
		t.Errorf("restart kept %d samples", m.last.Done)
	}
	if len(m.values) != 0 {
		t.Errorf("restart kept %d values", len(m.values))
	}
	if want := physics.DefaultGravity * 1.05; math.Abs(m.cfg.Physics.G-want) > 1e-9 {
		t.Errorf("g = %v, want %v", m.cfg.Physics.G, want)
	}
	if m.scanner.Params() != m.cfg.Params() {
		t.Error("scanner is not running the tuned parameters")
	}

	drain(m, cmd)
	if m.Status() != statusComplete {
		t.Errorf("status = %q after restart", m.Status())
	}
}

func TestPreviewToggle(t *testing.T) {
	m := newPreview(t)
	cmd := m.Init()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if m.Status() != statusReady {
		t.Errorf("status = %q, want %q", m.Status(), statusReady)
	}

	_, next := m.Update(cmd())
	if next != nil {
		t.Error("stopped preview scheduled another batch")
	}
	if m.scanner.State() != scan.Cancelled {
		t.Errorf("scanner state = %s, want cancelled", m.scanner.State())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}})
	if cmd == nil {
		t.Fatal("expected the preview to restart")
	}
	if m.scanner.Cursor().Index != 0 {
		t.Errorf("restart began at %d", m.scanner.Cursor().Index)
	}
	drain(m, cmd)
	if m.Status() != statusComplete {
		t.Errorf("status = %q", m.Status())
	}
}

func TestPreviewRestartAfterStopWithDeliveredBatch(t *testing.T) {
	m := newPreview(t)
	space := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}

	// the batch completes before the stop key is handled
	msg := m.Init()()
	m.Update(space)

	_, next := m.Update(msg)
	if next != nil {
		t.Error("stopped preview scheduled another batch")
	}
	if m.scanner.State() == scan.Scanning {
		t.Fatalf("scanner still scanning at %d after stop", m.scanner.Cursor().Index)
	}

	_, cmd := m.Update(space)
	if cmd == nil {
		t.Fatal("expected the preview to restart")
	}
	if m.scanner.Cursor().Index != 0 {
		t.Errorf("restart began at %d", m.scanner.Cursor().Index)
	}

	drain(m, cmd)
	if len(m.values) != 16 {
		t.Errorf("restarted scan produced %d samples, want 16", len(m.values))
	}
	if m.last.Done != 16 || m.Status() != statusComplete {
		t.Errorf("progress %+v, status %q", m.last, m.Status())
	}
}

func TestPreviewStartStopWhileInFlight(t *testing.T) {
	m := newPreview(t)
	space := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{' '}}

	cmd := m.Init()
	msg := cmd()
	m.Update(space)
	_, none := m.Update(space)
	if none != nil {
		t.Fatal("restart should wait for the batch in flight")
	}

	_, cmd = m.Update(msg)
	if m.scanner.Cursor().Index != 0 {
		t.Errorf("restart began at %d", m.scanner.Cursor().Index)
	}
	drain(m, cmd)
	if len(m.values) != 16 {
		t.Errorf("restarted scan produced %d samples, want 16", len(m.values))
	}
}

func TestPreviewResize(t *testing.T) {
	m := newPreview(t)
	drain(m, m.Init())

	_, cmd := m.Update(tea.WindowSizeMsg{Width: sidebarWidth + 4 + 6, Height: 4})
	drain(m, cmd)

	if m.canvas.Width != 6 || m.canvas.Height != 3 {
		t.Errorf("canvas = %dx%d, want 6x3", m.canvas.Width, m.canvas.Height)
	}
	if got := m.scanner.Grid(); got != (scan.Grid{Width: 48, Height: 48, Resolution: 8}) {
		t.Errorf("grid = %+v", got)
	}
	if len(m.values) != 36 {
		t.Errorf("expected 36 samples after resize, got %d", len(m.values))
	}
}

func TestPreviewView(t *testing.T) {
	m := newPreview(t)
	drain(m, m.Init())
	if m.View() == "" {
		t.Error("empty view")
	}
}

func TestNewPreviewInvalid(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxTime = 0
	if _, err := NewPreview(cfg, nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFormatParam(t *testing.T) {
	tests := []struct {
		key  string
		v    float64
		want string
	}{
		{"dt", 0.01, "0.010"},
		{"max_time", 15, "15.0"},
		{"g", 9.81, "9.81"},
	}
	for _, tt := range tests {
		if got := formatParam(tt.key, tt.v); got != tt.want {
			t.Errorf("formatParam(%s, %v) = %s, want %s", tt.key, tt.v, got, tt.want)
		}
	}
}
