package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wordvec/internal/session"
)

// SessionPort is the TUI-facing subset of the interactive session.
type SessionPort interface {
	Handle(line string) session.Response
}

// Model is the Bubble Tea model for the explorer.
type Model struct {
	session  SessionPort
	input    textinput.Model
	viewport viewport.Model
	summary  string
	status   string
	log      []string
	history  []string
	cursor   int
	ready    bool
	exited   bool
}

// New creates a new TUI model instance.
func New(s SessionPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = session.Prompt
	ti.Placeholder = "word, a - b + c, plot: a,b,c or exit"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		session:  s,
		input:    ti,
		viewport: vp,
		summary:  summary,
		status:   "Loaded. Type a word and press Enter.",
		log:      []string{session.Help},
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Exited reports whether the session ended through an exit command.
func (m Model) Exited() bool { return m.exited }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		// ctrl+c is an interrupt and ends the session like exit
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			return m.submit()
		case "up":
			if len(m.history) > 0 {
				m.cursor = (m.cursor - 1 + len(m.history)) % len(m.history)
				m.input.SetValue(m.history[m.cursor])
				m.input.CursorEnd()
				return m, nil
			}
		case "down":
			if len(m.history) > 0 {
				m.cursor = (m.cursor + 1) % len(m.history)
				m.input.SetValue(m.history[m.cursor])
				m.input.CursorEnd()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()
	if strings.TrimSpace(line) == "" {
		return m, nil
	}
	m.history = append(m.history, line)
	m.cursor = len(m.history)

	resp := m.session.Handle(line)
	entry := queryStyle.Render(session.Prompt + line)
	if resp.Text != "" {
		entry += "\n" + resp.Text
	}
	m.log = append(m.log, entry)
	if strings.HasPrefix(resp.Text, "Error:") {
		m.status = errorStyle.Render("Last command failed")
	} else {
		m.status = "OK"
	}
	if resp.Exit {
		m.exited = true
		return m, tea.Quit
	}
	m.refresh()
	return m, nil
}

func (m *Model) refresh() {
	m.viewport.SetContent(strings.Join(m.log, "\n\n"))
	m.viewport.GotoBottom()
}

// View renders the TUI layout and the command log.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Word Vector Explorer")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
