// Package tui is the interactive terminal chat
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iksnae/jarvis/internal"
	"github.com/iksnae/jarvis/internal/export"
)

// Session is the conversation the chat drives
type Session interface {
	Submit(ctx context.Context, prompt string) bool
	SubmitSuggestion(ctx context.Context, index int) error
	SwitchContext(id string) error
	Snapshot() internal.ConversationState
	Pending() bool
	Contexts() []internal.BusinessContext
	SelectedContext() internal.BusinessContext
}

const (
	defaultPrompt = "Ask a question... /help for commands, Ctrl+C to exit"
	promptSymbol  = "› "
	headerHeight  = 2
	footerHeight  = 3
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errorStatusStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196"))
)

var helpText = strings.Join([]string{
	"/s N             resubmit suggestion N",
	"/csv N FILE      write table N to FILE as CSV",
	"/context ID      switch business context (clears the conversation)",
	"/contexts        list contexts",
	"/quit            exit",
	"Ctrl+N / Ctrl+P  next / previous context",
}, "\n")

type exchangeDoneMsg struct {
	err error
}

// Model is the bubbletea model of the chat
type Model struct {
	ctx      context.Context
	session  Session
	renderer *internal.Renderer

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool

	status    string
	statusErr bool
}

// New creates a chat model
func New(ctx context.Context, session Session, renderer *internal.Renderer) Model {
	ti := textinput.New()
	ti.Placeholder = defaultPrompt
	ti.Prompt = promptSymbol
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	return Model{
		ctx:      ctx,
		session:  session,
		renderer: renderer,
		input:    ti,
		spinner:  sp,
	}
}

// Run starts the chat on the alternate screen and blocks until it exits
func Run(ctx context.Context, session Session, renderer *internal.Renderer) error {
	p := tea.NewProgram(New(ctx, session, renderer), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - headerHeight - footerHeight
		if height < 1 {
			height = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.input.Width = msg.Width - len(promptSymbol) - 1
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlN, tea.KeyCtrlP:
			step := 1
			if msg.Type == tea.KeyCtrlP {
				step = -1
			}
			m.cycleContext(step)
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			cmd := m.handleLine(line)
			m.refresh()
			return m, cmd
		}

	case exchangeDoneMsg:
		switch {
		case errors.Is(msg.err, internal.ErrBusy):
			m.setStatus("busy: wait for the current answer", true)
		case msg.err != nil:
			m.setStatus(msg.err.Error(), true)
		default:
			m.setStatus("", false)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.session.Pending() {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// handleLine runs a slash command or submits a prompt
func (m *Model) handleLine(line string) tea.Cmd {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		return m.submit(func(ctx context.Context) error {
			if !m.session.Submit(ctx, line) {
				return internal.ErrBusy
			}
			return nil
		})
	}

	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return tea.Quit
	case "/help":
		m.setStatus(helpText, false)
	case "/contexts":
		m.setStatus(describeContexts(m.session.Contexts(), m.session.SelectedContext()), false)
	case "/context":
		if len(fields) < 2 {
			m.setStatus("usage: /context ID", true)
			return nil
		}
		if err := m.session.SwitchContext(fields[1]); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.setStatus("switched to "+m.session.SelectedContext().DisplayName(), false)
	case "/s":
		index, err := indexArg(fields)
		if err != nil {
			m.setStatus("usage: /s N", true)
			return nil
		}
		return m.submit(func(ctx context.Context) error { return m.session.SubmitSuggestion(ctx, index) })
	case "/csv":
		if len(fields) < 3 {
			m.setStatus("usage: /csv N FILE", true)
			return nil
		}
		index, err := indexArg(fields)
		if err != nil {
			m.setStatus("usage: /csv N FILE", true)
			return nil
		}
		if err := writeTableCSV(m.session.Snapshot().Transcript, index, fields[2]); err != nil {
			m.setStatus(err.Error(), true)
			return nil
		}
		m.setStatus(fmt.Sprintf("wrote table %d to %s", index, fields[2]), false)
	default:
		m.setStatus("unknown command "+fields[0]+" (try /help)", true)
	}
	return nil
}

func (m *Model) submit(fn func(ctx context.Context) error) tea.Cmd {
	if m.session.Pending() {
		m.setStatus("busy: wait for the current answer", true)
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return exchangeDoneMsg{err: fn(ctx)}
	}
}

func (m *Model) cycleContext(step int) {
	contexts := m.session.Contexts()
	if len(contexts) == 0 {
		m.setStatus("no contexts available", true)
		return
	}
	current := m.session.SelectedContext().ID
	next := contexts[0]
	for i, c := range contexts {
		if c.ID == current {
			next = contexts[(i+step+len(contexts))%len(contexts)]
			break
		}
	}
	if err := m.session.SwitchContext(next.ID); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus("switched to "+next.DisplayName(), false)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderer.RenderTranscript(m.session.Snapshot().Transcript))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	ctxName := m.session.SelectedContext().DisplayName()
	if ctxName == "" {
		ctxName = "no context"
	}
	header := headerStyle.Render("Jarvis · " + ctxName)

	status := m.status
	if m.session.Pending() {
		status = m.spinner.View() + " thinking..."
	}
	style := statusStyle
	if m.statusErr {
		style = errorStatusStyle
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		style.Render(status),
		m.input.View(),
	)
}

func indexArg(fields []string) (int, error) {
	if len(fields) < 2 {
		return 0, fmt.Errorf("missing index")
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil || index < 0 {
		return 0, fmt.Errorf("invalid index %q", fields[1])
	}
	return index, nil
}

func describeContexts(contexts []internal.BusinessContext, selected internal.BusinessContext) string {
	if len(contexts) == 0 {
		return "no contexts available"
	}
	lines := make([]string, 0, len(contexts))
	for _, c := range contexts {
		marker := "  "
		if c.ID == selected.ID {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("%s%s (%s)", marker, c.DisplayName(), c.ID))
	}
	return strings.Join(lines, "\n")
}

func writeTableCSV(transcript []internal.DisplayMessage, index int, path string) error {
	if index >= len(transcript) {
		return fmt.Errorf("no message at index %d", index)
	}
	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: "csv", Path: path, Err: err}
	}
	if err := export.ExportTableCSV(transcript[index], f); err != nil {
		_ = f.Close()
		return &internal.ExportError{Format: "csv", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &internal.ExportError{Format: "csv", Path: path, Err: err}
	}
	return nil
}
