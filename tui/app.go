package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"coverTonic/artwork"
	"coverTonic/batch"
	"coverTonic/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
)

// Source is what the view resolves against, normally an *artwork.ImageCache.
type Source interface {
	batch.Resolver
	Stats() artwork.Stats
	Policy() artwork.SizePolicy
}

type row struct {
	entity utils.Entity
	done   bool
	result artwork.Result
}

type App struct {
	source      Source
	entities    []utils.Entity
	concurrency int

	rows      []row
	completed int
	running   bool
	runs      int
	summary   batch.Summary
	stats     artwork.Stats

	events <-chan tea.Msg
	cancel context.CancelFunc

	width  int
	height int
	theme  *Theme
}

func NewApp(source Source, entities []utils.Entity, concurrency int) *App {
	return &App{
		source:      source,
		entities:    entities,
		concurrency: concurrency,
		theme:       DefaultTheme(),
		width:       80,
		height:      24,
	}
}

func (a *App) Init() tea.Cmd {
	return a.startRun()
}

func (a *App) startRun() tea.Cmd {
	a.rows = make([]row, len(a.entities))
	for i, e := range a.entities {
		a.rows[i] = row{entity: e}
	}
	a.completed = 0
	a.running = true
	a.runs++

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	events := make(chan tea.Msg, len(a.entities)+1)
	a.events = events
	source, entities, concurrency := a.source, a.entities, a.concurrency
	go func() {
		defer close(events)
		summary := batch.Run(ctx, source, entities, concurrency, func(o batch.Outcome) {
			events <- RowResolvedMsg{Outcome: o}
		})
		events <- RunCompleteMsg{Summary: summary, Stats: source.Stats()}
	}()

	return waitForEvent(events)
}

func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-events
		if !ok {
			return nil
		}
		return msg
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyMsg:
		return a, a.handleKeyPress(msg.String())

	case RowResolvedMsg:
		if i := msg.Outcome.Index; i >= 0 && i < len(a.rows) && !a.rows[i].done {
			a.rows[i].done = true
			a.rows[i].result = msg.Outcome.Result
			a.completed++
		}
		return a, waitForEvent(a.events)

	case RunCompleteMsg:
		a.running = false
		a.summary = msg.Summary
		a.stats = msg.Stats
		if a.cancel != nil {
			a.cancel()
		}
		logrus.Infof("Run %d complete: total=%d missing=%d", a.runs, msg.Summary.Total, msg.Summary.Missing)
		return a, nil
	}
	return a, nil
}

func (a *App) handleKeyPress(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c", "esc":
		if a.cancel != nil {
			a.cancel()
		}
		return tea.Quit
	case "r":
		if a.running {
			return nil
		}
		return a.startRun()
	}
	return nil
}

func (a *App) View() string {
	theme := a.theme
	var lines []string

	policy := a.source.Policy()
	title := theme.TitleStyle.Render("coverTonic") +
		theme.MutedTextStyle.Render(fmt.Sprintf("  run %d · target %dpx", a.runs, policy.TargetWidth()))
	lines = append(lines, title)

	progress := RenderProgressBar(a.completed, len(a.rows), max(10, a.width-20), theme)
	lines = append(lines, fmt.Sprintf("%s %d/%d", progress, a.completed, len(a.rows)))
	lines = append(lines, "")

	visible := a.height - 8
	if visible < 1 {
		visible = 1
	}
	for i, r := range a.rows {
		if i >= visible {
			lines = append(lines, theme.MutedTextStyle.Render(fmt.Sprintf("  … %d more", len(a.rows)-visible)))
			break
		}
		lines = append(lines, a.renderRow(r))
	}

	lines = append(lines, "", a.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (a *App) renderRow(r row) string {
	theme := a.theme
	label := truncate(r.entity.Label(), max(10, a.width-24))
	key := theme.MutedTextStyle.Render(artwork.KeyFor(r.entity.Class, r.entity.ID).String())

	switch {
	case !r.done && a.running:
		return fmt.Sprintf("%s %s %s", theme.MutedTextStyle.Render(IconWorking), label, key)
	case !r.done:
		return fmt.Sprintf("%s %s %s", theme.MutedTextStyle.Render(IconPending), label, key)
	case r.result.Image == nil:
		return fmt.Sprintf("%s %s %s", theme.ErrorStyle.Render(IconCross), label, StatusBadge("none", "error", theme))
	default:
		badge := "success"
		if r.result.Tier == artwork.TierRemote {
			badge = "info"
		}
		return fmt.Sprintf("%s %s %s", theme.SuccessStyle.Render(IconCheck), label,
			StatusBadge(fmt.Sprintf("%s %dpx", r.result.Tier, r.result.Image.Width), badge, theme))
	}
}

func (a *App) renderStatusBar() string {
	theme := a.theme
	var status string
	if a.running {
		status = StatusBadge("RESOLVING", "warning", theme)
	} else {
		s := a.stats
		status = StatusBadge("DONE", "success", theme) + theme.MutedTextStyle.Render(fmt.Sprintf(
			"  memory %d · disk %d · remote %d · missing %d · shared %d",
			s.MemoryHits, s.DiskHits, s.RemoteFetches, a.summary.Missing, s.Coalesced))
	}
	help := KeyHelp("r", "re-run", theme) + "  " + KeyHelp("q", "quit", theme)
	return theme.StatusBarStyle.Render(status) + "  " + help
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s + strings.Repeat(" ", width-len(r))
	}
	return string(r[:width-1]) + "…"
}

// initLogging moves logrus output to a file so it does not corrupt the view.
func initLogging() error {
	logDir := filepath.Join(os.TempDir(), "coverTonic")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	logFile := filepath.Join(logDir, "tui.log")
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	logrus.SetOutput(f)
	logrus.WithField("ts", time.Now().Format(time.RFC3339)).Info("tui session start")
	return nil
}

func Run(source Source, entities []utils.Entity, concurrency int) error {
	if err := initLogging(); err != nil {
		return err
	}

	p := tea.NewProgram(NewApp(source, entities, concurrency), tea.WithAltScreen())
	_, err := p.Run()

	return err
}
