package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	statsdto "habitwatch/internal/modules/stats/dto"
	"habitwatch/internal/platform/habits"
	"habitwatch/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// MonitorPort is the slice of the orchestrator the dashboard reads.
type MonitorPort interface {
	Snapshot() statsdto.Snapshot
}

// ─── messages ────────────────────────────────────────────────────────────────

type tickMsg time.Time

// DoneMsg ends the program once the monitor run has finished.
type DoneMsg struct {
	Err error
}

// ─── key bindings ────────────────────────────────────────────────────────────

type keyMap struct {
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding  { return []key.Binding{k.Quit} }
func (k keyMap) FullHelp() [][]key.Binding { return [][]key.Binding{{k.Quit}} }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    MonitorPort
	catalog habits.Catalog
	cancel  context.CancelFunc
	refresh time.Duration

	keys keyMap
	help help.Model

	snap     statsdto.Snapshot
	rendered string
	stopping bool
}

func New(port MonitorPort, catalog habits.Catalog, cancel context.CancelFunc, refresh time.Duration) Model {
	m := Model{
		port:    port,
		catalog: catalog,
		cancel:  cancel,
		refresh: refresh,
		keys: keyMap{
			Quit: key.NewBinding(
				key.WithKeys("q", "ctrl+c"),
				key.WithHelp("q", "stop monitoring"),
			),
		},
		help: help.New(),
	}
	m.snap = port.Snapshot()
	return m
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		// Re-render only when the snapshot actually changed.
		if snap := m.port.Snapshot(); snap != m.snap {
			m.snap = snap
			m.rendered = m.render()
		}
		return m, m.tick()
	case DoneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.stopping = true
			m.cancel()
			m.rendered = m.render()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.rendered = m.render()
	}
	return m, nil
}

func (m Model) View() string {
	if m.rendered == "" {
		return m.render()
	}
	return m.rendered
}

func (m Model) render() string {
	var b strings.Builder

	b.WriteString(theme.Banner.Render("HABIT MONITOR — REAL-TIME STATUS"))
	b.WriteString("\n\n")

	b.WriteString(theme.OK.Render("Session Duration: " + FormatDuration(m.snap.RunDuration)))
	b.WriteString("\n\n")

	if m.snap.Active {
		habit := m.catalog.Lookup(m.snap.CurrentClass)
		b.WriteString(theme.Alert.Render("HABIT DETECTED: " + habit.Display))
		b.WriteString("\n")
		b.WriteString(theme.Alert.Render("Current Session: " + FormatDuration(m.snap.CurrentElapsed)))
		b.WriteString("\n")
		if m.snap.LastConfidence > 0 {
			b.WriteString(theme.Alert.Render(fmt.Sprintf("Confidence: %.1f%%", m.snap.LastConfidence*100)))
			b.WriteString("\n")
		}
	} else {
		b.WriteString(theme.OK.Render("No Bad Habits Detected"))
		b.WriteString("\n")
		if m.snap.LastConfidence > 0 {
			b.WriteString(theme.Muted.Render(fmt.Sprintf("Last Confidence: %.1f%%", m.snap.LastConfidence*100)))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	b.WriteString(theme.Title.Render("Statistics:"))
	b.WriteString("\n")
	b.WriteString(statsBlock(m.snap))
	b.WriteString("\n")

	if m.stopping {
		b.WriteString(theme.Warn.Render("Stopping monitoring..."))
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	b.WriteString("\n")

	return theme.App.Render(b.String())
}

func statsBlock(snap statsdto.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Total Detections: %d\n", snap.TotalDetections)
	fmt.Fprintf(&b, "  Total Habit Time: %s\n", FormatDuration(snap.TotalHabitTime))
	fmt.Fprintf(&b, "  Number of Sessions: %d\n", snap.SessionCount)
	fmt.Fprintf(&b, "  Detection Rate: %.1f/min\n", snap.PerMinute)
	if snap.SessionCount > 0 {
		fmt.Fprintf(&b, "  Average Session: %s\n", FormatDuration(snap.AverageSession))
		fmt.Fprintf(&b, "  Habit Percentage: %.1f%%\n", snap.HabitPercent)
	}
	return b.String()
}

// Summary renders the shutdown block printed after monitoring stops; the
// headless mode uses it too.
func Summary(snap statsdto.Snapshot) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Session Summary:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  Total Duration: %s\n", FormatDuration(snap.RunDuration))
	b.WriteString(statsBlock(snap))
	return b.String()
}

// FormatDuration renders a duration as H:MM:SS, matching the log format.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}
