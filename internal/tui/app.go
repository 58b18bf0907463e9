// Package tui renders the chore board in the terminal.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tallgrasslabs/choresheet/internal/board"
	"github.com/tallgrasslabs/choresheet/internal/task"
)

const pollInterval = 2 * time.Second

type pollMsg struct{}

type refreshDoneMsg struct {
	err error
}

type actionDoneMsg struct {
	verb string
	name string
	err  error
}

// Model is the main TUI model
type Model struct {
	board *board.Coordinator
	actor string

	table      table.Model
	spinner    spinner.Model
	refreshing bool

	tasks  task.List
	width  int
	height int

	statusMsg string
	statusErr bool
}

// Run starts the TUI over the given board. Actions taken in the UI are
// attributed to actor in the audit log.
func Run(b *board.Coordinator, actor string) error {
	p := tea.NewProgram(newModel(b, actor), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func newModel(b *board.Coordinator, actor string) Model {
	columns := []table.Column{
		{Title: "Task", Width: 28},
		{Title: "Assigned", Width: 12},
		{Title: "State", Width: 14},
		{Title: "Schedule", Width: 16},
		{Title: "Last Completed", Width: 26},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true).
		Foreground(accentColor)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("230")).
		Background(accentColor).
		Bold(true)
	t.SetStyles(styles)

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(accentColor)),
	)

	return Model{
		board:   b,
		actor:   actor,
		table:   t,
		spinner: sp,
		tasks:   b.Snapshot(),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(pollCmd(), m.spinner.Tick)
}

func pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m Model) refreshCmd() tea.Cmd {
	b := m.board
	return func() tea.Msg {
		return refreshDoneMsg{err: b.Refresh(context.Background())}
	}
}

func (m Model) completeCmd(name string) tea.Cmd {
	b, actor := m.board, m.actor
	return func() tea.Msg {
		return actionDoneMsg{verb: "completed", name: name, err: b.CompleteTask(context.Background(), name, actor)}
	}
}

func (m Model) pressCmd(name string) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		return actionDoneMsg{verb: "pressed", name: name, err: b.RequestPending(context.Background(), name)}
	}
}

func (m Model) reopenCmd(name string) tea.Cmd {
	b := m.board
	return func() tea.Msg {
		return actionDoneMsg{verb: "reopened", name: name, err: b.ReopenPendingTask(name)}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		h := msg.Height - 10
		if h < 4 {
			h = 4
		}
		m.table.SetHeight(h)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.refreshing {
				return m, nil
			}
			m.refreshing = true
			m.statusMsg = ""
			return m, tea.Batch(m.refreshCmd(), m.spinner.Tick)
		case "c":
			if name := m.selectedName(); name != "" {
				return m, m.completeCmd(name)
			}
		case "p":
			if name := m.selectedName(); name != "" {
				return m, m.pressCmd(name)
			}
		case "u":
			if name := m.selectedName(); name != "" {
				return m, m.reopenCmd(name)
			}
		}

	case pollMsg:
		m.reload()
		return m, pollCmd()

	case refreshDoneMsg:
		m.refreshing = false
		switch {
		case errors.Is(msg.err, board.ErrRefreshInFlight):
			// Another refresh beat us to it; its result shows up on poll
		case msg.err != nil:
			m.statusMsg = fmt.Sprintf("refresh failed: %v", msg.err)
			m.statusErr = true
		default:
			m.statusMsg = "tasks refreshed"
			m.statusErr = false
		}
		m.reload()
		return m, nil

	case actionDoneMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("%s %q: %v", msg.verb, msg.name, msg.err)
			m.statusErr = true
		} else {
			m.statusMsg = fmt.Sprintf("%s %q", msg.verb, msg.name)
			m.statusErr = false
		}
		m.reload()
		return m, nil

	case spinner.TickMsg:
		if m.refreshing {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) reload() {
	m.tasks = m.board.Snapshot()

	rows := make([]table.Row, len(m.tasks))
	for i, t := range m.tasks {
		schedule := t.CronExpr
		if schedule == "" {
			schedule = "one-time"
		}
		last := t.LastCompleted
		if last == "" {
			last = "never"
		}
		state := string(t.State)
		if !t.Visible {
			state += " (hidden)"
		}
		rows[i] = table.Row{t.Name, t.AssignedTo, state, schedule, last}
	}
	m.table.SetRows(rows)
}

func (m Model) selectedName() string {
	row := m.table.SelectedRow()
	if row == nil {
		return ""
	}
	return row[0]
}

// View implements tea.Model
func (m Model) View() string {
	header := logoStyle.Render("choresheet")
	if m.refreshing {
		header += "  " + m.spinner.View() + subtitleStyle.Render("refreshing…")
	}

	body := m.table.View()
	if len(m.tasks) == 0 {
		body = emptyBoxStyle.Render("No tasks on the board.\nPress r to refresh.")
	}

	status := ""
	if m.statusMsg != "" {
		if m.statusErr {
			status = errorMsgStyle.Render(m.statusMsg)
		} else {
			status = successMsgStyle.Render(m.statusMsg)
		}
	}

	help := helpKeyStyle.Render("p") + helpDescStyle.Render(" press  ") +
		helpKeyStyle.Render("c") + helpDescStyle.Render(" complete  ") +
		helpKeyStyle.Render("u") + helpDescStyle.Render(" reopen  ") +
		helpKeyStyle.Render("r") + helpDescStyle.Render(" refresh  ") +
		helpKeyStyle.Render("q") + helpDescStyle.Render(" quit")

	return appStyle.Render(header + "\n\n" + body + "\n\n" + status + "\n" + help)
}
