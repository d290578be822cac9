// Package tui implements the interactive chat surface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/finsight-labs/finsight/internal/core/ports/driving"
)

// Messages produced by the streaming commands.
type (
	streamStartedMsg struct{ stream *driving.StreamingAnswer }
	streamFailedMsg  struct{ err error }
	tokenMsg         struct{ token string }
	streamDoneMsg    struct{ err error }
	preflightMsg     struct{ err error }
)

var (
	titleStyle      = lipgloss.NewStyle().Bold(true)
	promptBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
)

// Model is the Bubble Tea model for the chat loop.
type Model struct {
	answerer driving.Answerer

	input    textinput.Model
	viewport viewport.Model

	transcript string
	answering  bool
	stream     *driving.StreamingAnswer
	cancel     context.CancelFunc
	status     string
	ready      bool
}

// New creates a new chat model.
func New(answerer driving.Answerer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the statements and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	return Model{
		answerer: answerer,
		input:    ti,
		viewport: viewport.New(0, 0),
		status:   "Checking services...",
	}
}

// Init starts the cursor blink and the service preflight.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.preflight())
}

func (m Model) preflight() tea.Cmd {
	return func() tea.Msg {
		return preflightMsg{err: m.answerer.Preflight(context.Background())}
	}
}

// startStream resolves sources and opens the token stream.
func (m *Model) startStream(question string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	answerer := m.answerer
	return func() tea.Msg {
		stream, err := answerer.AskStream(ctx, question, driving.AskOptions{})
		if err != nil {
			return streamFailedMsg{err: err}
		}
		return streamStartedMsg{stream: stream}
	}
}

// readToken waits for the next token or the end of the stream.
func readToken(stream *driving.StreamingAnswer) tea.Cmd {
	return func() tea.Msg {
		tok, ok := <-stream.Tokens
		if ok {
			return tokenMsg{token: tok}
		}
		return streamDoneMsg{err: <-stream.Errs}
	}
}

// Update handles key events and stream progress.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, hh := historyBoxStyle.GetFrameSize()
		_, ph := promptBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ph + 1 // title, spacer, prompt, status
		vh := msg.Height - reserved - hh
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-4)
		m.viewport.Height = vh
		m.refreshViewport()
		return m, nil

	case preflightMsg:
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Service check failed: %v", msg.err))
		} else {
			m.status = statusStyle.Render("Ready. Ask a question.")
		}
		return m, nil

	case streamStartedMsg:
		m.stream = msg.stream
		return m, readToken(m.stream)

	case streamFailedMsg:
		m.answering = false
		m.stream = nil
		m.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
		return m, nil

	case tokenMsg:
		m.transcript += msg.token
		m.refreshViewport()
		return m, readToken(m.stream)

	case streamDoneMsg:
		m.answering = false
		if msg.err != nil {
			m.status = errorStyle.Render(fmt.Sprintf("Answer interrupted: %v", msg.err))
		} else {
			m.appendSources()
			m.status = statusStyle.Render("Ready. Ask a question.")
		}
		m.transcript += "\n\n"
		m.stream = nil
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case tea.KeyEsc:
			if m.answering && m.cancel != nil {
				m.cancel()
				return m, nil
			}
		case tea.KeyEnter:
			question := strings.TrimSpace(m.input.Value())
			if question == "" || m.answering {
				return m, nil
			}
			m.answering = true
			m.input.SetValue("")
			m.transcript += questionStyle.Render("You: "+question) + "\n\n"
			m.status = statusStyle.Render("Thinking...")
			m.refreshViewport()
			return m, m.startStream(question)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	title := titleStyle.Render("finsight chat")
	history := historyBoxStyle.Render(m.viewport.View())
	prompt := promptBoxStyle.Render(m.input.View())
	return title + "\n" + history + "\n" + prompt + "\n" + m.status
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.transcript)
	m.viewport.GotoBottom()
}

// appendSources writes the provenance lines of the finished answer.
func (m *Model) appendSources() {
	if m.stream == nil || len(m.stream.Sources) == 0 {
		return
	}
	var sb strings.Builder
	sb.WriteString("\n")
	for _, s := range m.stream.Sources {
		sb.WriteString(fmt.Sprintf("  %s (page %d, score %.2f)\n", s.Chunk.DocumentName, s.Chunk.Page, s.Score))
	}
	m.transcript += sourceStyle.Render(sb.String())
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Run starts the chat loop and blocks until the user quits.
func Run(answerer driving.Answerer) error {
	p := tea.NewProgram(New(answerer), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
