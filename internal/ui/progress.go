package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"mend/internal/loop"
)

// maxRows bounds the file list; older rows scroll away.
const maxRows = 12

type progressModel struct {
	title      string
	events     <-chan loop.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []fileItem
	index      map[string]int
	iteration  int
	ceiling    int
	stageLabel string
	state      loop.State
	width      int
	done       bool
}

type fileItem struct {
	path    string
	status  string
	patches int
}

type eventMsg loop.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders repair progress.
// ceiling is the iteration limit and drives the progress bar.
func NewProgressModel(title string, ceiling int, events <-chan loop.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	if ceiling <= 0 {
		ceiling = 1
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		index:   make(map[string]int),
		ceiling: ceiling,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(loop.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		// выход только по ctrl+c, остальное игнорируем
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.iteration > 0 {
		header = fmt.Sprintf("%s: iteration %d/%d", header, m.iteration, m.ceiling)
	}
	if m.stageLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.stageLabel)
	}
	if m.done {
		header = fmt.Sprintf("%s: %s", m.state, header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := m.width - statusWidth - 12
	if nameWidth < 20 {
		nameWidth = 20
	}

	items := m.items
	if len(items) > maxRows {
		items = items[len(items)-maxRows:]
	}
	for _, item := range items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s  %s\n", statusStyled, name, dim.Render(fmt.Sprintf("x%d", item.patches)))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

var dim = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev loop.Event) tea.Cmd {
	switch ev.Stage {
	case loop.StageCheck:
		m.iteration = ev.Iteration
		m.stageLabel = "checking"
	case loop.StageParse:
		m.stageLabel = ev.Status
	case loop.StagePatch:
		m.stageLabel = "patching"
		idx, ok := m.index[ev.Path]
		if !ok {
			idx = len(m.items)
			m.index[ev.Path] = idx
			m.items = append(m.items, fileItem{path: ev.Path})
		}
		m.items[idx].status = ev.Status
		if ev.Status == string(loop.OutcomePatched) {
			m.items[idx].patches++
		}
	case loop.StageDone:
		m.state = ev.State
		m.stageLabel = ""
		return m.prog.SetPercent(1.0)
	}
	return m.prog.SetPercent(progressOf(m.iteration, m.ceiling))
}

// progressOf maps the current iteration onto the ceiling; a run that
// succeeds early jumps to 100% on StageDone.
func progressOf(iteration, ceiling int) float64 {
	if iteration <= 0 || ceiling <= 0 {
		return 0
	}
	pct := float64(iteration-1) / float64(ceiling)
	if pct > 1 {
		pct = 1
	}
	return pct
}

func styleStatus(status string) lipgloss.Style {
	switch loop.Outcome(status) {
	case loop.OutcomePatched:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case loop.OutcomeWriteFailed, loop.OutcomeExcluded:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case loop.OutcomeNoRule, loop.OutcomeStale, loop.OutcomeRepeat:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
