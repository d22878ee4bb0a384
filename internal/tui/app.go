package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/digggggmori-pixel/elog/internal/logger"
	"github.com/digggggmori-pixel/elog/internal/monitor"
	"github.com/digggggmori-pixel/elog/internal/output"
	"github.com/digggggmori-pixel/elog/pkg/types"
)

// ── Custom messages ──

type tickMsg time.Time

type queryDoneMsg struct {
	seq    int
	result *types.QueryResult
}

type exportDoneMsg string

// Options configures the live view
type Options struct {
	Querier   monitor.Querier
	Channels  []types.Channel
	Start     int // index into Channels shown first
	Limit     int
	Delay     time.Duration
	ExportDir string
}

// ── Main App Model ──

type AppModel struct {
	ctx    context.Context
	cancel context.CancelFunc

	querier   monitor.Querier
	exporter  *output.Handler
	exportDir string

	channels []types.Channel
	idx      int
	limit    int
	delay    time.Duration

	width   int
	height  int
	records RecordsModel

	result      *types.QueryResult
	loading     bool
	seq         int // results of superseded queries are dropped
	lastRefresh time.Time
	nextRefresh time.Time
	status      string

	progressBar progress.Model
	quitting    bool
}

func NewAppModel(ctx context.Context, opts Options) AppModel {
	ctx, cancel := context.WithCancel(ctx)

	delay := opts.Delay
	if delay <= 0 {
		delay = monitor.DefaultDelay
	}
	idx := opts.Start
	if idx < 0 || idx >= len(opts.Channels) {
		idx = 0
	}

	prog := progress.New(
		progress.WithGradient(string(ColorAccentDim), string(ColorAccent)),
		progress.WithoutPercentage(),
		progress.WithWidth(20),
	)

	return AppModel{
		ctx:         ctx,
		cancel:      cancel,
		querier:     opts.Querier,
		exporter:    output.NewWithWriter(output.Options{Quiet: true}, io.Discard),
		exportDir:   opts.ExportDir,
		channels:    opts.Channels,
		idx:         idx,
		limit:       opts.Limit,
		delay:       delay,
		records:     NewRecordsModel(),
		progressBar: prog,
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// channel returns the channel currently shown
func (m AppModel) channel() (types.Channel, bool) {
	if len(m.channels) == 0 {
		return types.Channel{}, false
	}
	return m.channels[m.idx], true
}

// startQuery marks the model loading and returns the command running the query
func (m *AppModel) startQuery() tea.Cmd {
	ch, ok := m.channel()
	if !ok || m.querier == nil {
		return nil
	}
	m.seq++
	m.loading = true
	return queryCmd(m.ctx, m.querier, ch, m.limit, m.seq)
}

// queryCmd runs one query off the UI goroutine
func queryCmd(ctx context.Context, q monitor.Querier, ch types.Channel, limit, seq int) tea.Cmd {
	return func() tea.Msg {
		return queryDoneMsg{seq: seq, result: q.Query(ctx, ch, limit)}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Content dimensions inside the frame
		m.records, _ = m.records.Update(tea.WindowSizeMsg{Width: m.width - 4, Height: m.height - 2})
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.cancel()
			return m, tea.Quit

		case "r":
			if !m.loading {
				cmds = append(cmds, m.startQuery())
			}

		case "tab":
			if len(m.channels) > 1 {
				m.idx = (m.idx + 1) % len(m.channels)
				m.result = nil
				m.records = NewRecordsModel()
				m.records, _ = m.records.Update(tea.WindowSizeMsg{Width: m.width - 4, Height: m.height - 2})
				m.status = ""
				cmds = append(cmds, m.startQuery())
			}

		case "e":
			if m.result != nil {
				cmds = append(cmds, m.exportJSON())
			}

		default:
			m.records, _ = m.records.Update(msg)
		}

	case tickMsg:
		if !m.loading && !time.Time(msg).Before(m.nextRefresh) {
			cmds = append(cmds, m.startQuery())
		}
		cmds = append(cmds, tickCmd())

	case queryDoneMsg:
		if msg.seq != m.seq {
			break
		}
		m.loading = false
		m.result = msg.result
		m.records.SetResult(msg.result)
		m.lastRefresh = time.Now()
		m.nextRefresh = m.lastRefresh.Add(m.delay)

	case exportDoneMsg:
		m.status = string(msg)
	}

	return m, tea.Batch(cmds...)
}

// countdown is the elapsed fraction of the wait before the next refresh
func (m AppModel) countdown(now time.Time) float64 {
	if m.loading || m.nextRefresh.IsZero() {
		return 0
	}
	left := m.nextRefresh.Sub(now)
	if left <= 0 {
		return 1
	}
	return 1 - float64(left)/float64(m.delay)
}

func (m AppModel) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	w := m.width
	h := m.height
	if w < 40 {
		w = 80
	}
	if h < 10 {
		h = 20
	}

	// Content area: inside border(2 cols) + horizontal padding(2 cols)
	cw := w - 4
	ch := h - 2

	content := m.renderContent(cw)

	// Hard-crop content to exact frame dimensions
	srcLines := strings.Split(content, "\n")
	capStyle := lipgloss.NewStyle().MaxWidth(cw)
	cropped := make([]string, ch)
	for i := 0; i < ch; i++ {
		if i < len(srcLines) {
			cropped[i] = capStyle.Render(srcLines[i])
		}
		if vis := lipgloss.Width(cropped[i]); vis < cw {
			cropped[i] += strings.Repeat(" ", cw-vis)
		}
	}

	// Footer goes on the last two content rows
	if ch >= 2 {
		cropped[ch-2] = SeparatorStyle.Render(strings.Repeat("─", cw))
		help := "q quit • r refresh • tab channel • e export • ↑/↓ select"
		if m.status != "" {
			help = m.status
		}
		line := capStyle.Render(HintStyle.Render(help))
		if vis := lipgloss.Width(line); vis < cw {
			line += strings.Repeat(" ", cw-vis)
		}
		cropped[ch-1] = line
	}

	borderFg := lipgloss.NewStyle().Foreground(ColorBorder)
	hBar := strings.Repeat("─", w-2)
	vBar := borderFg.Render("│")

	out := make([]string, 0, h)
	out = append(out, borderFg.Render("╭"+hBar+"╮"))
	for _, line := range cropped {
		out = append(out, vBar+" "+line+" "+vBar)
	}
	out = append(out, borderFg.Render("╰"+hBar+"╯"))

	return strings.Join(out, "\n")
}

// renderContent builds title, channel tabs, status line and record list
func (m AppModel) renderContent(w int) string {
	var b strings.Builder

	title := TitleStyle.Render("elog")
	if m.result != nil && m.result.Host.Hostname != "" {
		title += SubtitleStyle.Render("  " + m.result.Host.Hostname)
	}
	b.WriteString(title)
	b.WriteString("\n")

	var tabs []string
	for i, c := range m.channels {
		if i == m.idx {
			tabs = append(tabs, TabActiveStyle.Render(c.Key))
		} else {
			tabs = append(tabs, TabStyle.Render(c.Key))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	b.WriteString(m.renderStatus(w))
	b.WriteString("\n\n")

	if m.result == nil {
		if len(m.channels) == 0 {
			b.WriteString(AlertStyle.Render("No channels configured"))
		} else {
			b.WriteString(HintStyle.Render("Querying..."))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.records.View())
	return b.String()
}

func (m AppModel) renderStatus(w int) string {
	ch, ok := m.channel()
	if !ok {
		return ""
	}

	status := SubtitleStyle.Render(Truncate(ch.LogName, w/2))
	switch {
	case m.loading:
		status += HintStyle.Render("  refreshing...")
	case m.result != nil:
		if _, isErr := m.result.ErrorMessage(); isErr {
			status += AlertStyle.Render("  error")
		} else {
			status += HintStyle.Render(fmt.Sprintf("  %d records • %dms", len(m.result.RecordList()), m.result.DurationMs))
		}
	}
	if !m.lastRefresh.IsZero() {
		status += HintStyle.Render("  updated " + output.Stamp(m.lastRefresh) + " UTC  ")
		status += m.progressBar.ViewAs(m.countdown(time.Now()))
	}
	return status
}

// exportJSON saves the current result and reports the path in the footer
func (m AppModel) exportJSON() tea.Cmd {
	result := m.result
	exporter := m.exporter
	dir := m.exportDir
	return func() tea.Msg {
		path, err := exporter.SaveResults(result, dir)
		if err != nil {
			logger.Error("Export failed: %v", err)
			return exportDoneMsg(fmt.Sprintf("Error: %v", err))
		}
		logger.Info("Exported %s to %s", result.Channel, path)
		return exportDoneMsg("Saved: " + path)
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	model := NewAppModel(ctx, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
