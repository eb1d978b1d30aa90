package ui

import (
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// StatusIndicator shows transient progress while a turn runs.
type StatusIndicator interface {
	// Show displays text, starting the indicator if it is not running.
	Show(text string)
	// Hide clears the indicator and blocks until it has stopped drawing.
	Hide()
}

// NoopStatus is used when the spinner is disabled.
type NoopStatus struct{}

func (NoopStatus) Show(string) {}
func (NoopStatus) Hide()       {}

// SpinnerFactory creates a new spinner
type SpinnerFactory func() spinner.Model

// DefaultSpinner returns the dot spinner.
func DefaultSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot))
}

type statusTextMsg string

type hideMsg struct{}

type statusModel struct {
	spinner spinner.Model
	text    string
	style   lipgloss.Style
	hidden  bool
}

func (m statusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusTextMsg:
		m.text = string(msg)
		return m, nil
	case hideMsg:
		m.hidden = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m statusModel) View() string {
	if m.hidden {
		return ""
	}
	return m.style.Render(m.spinner.View() + " " + m.text)
}

// SpinnerStatus draws a bubbletea spinner on out. The program takes no
// input, so it never competes with the console reader for stdin.
type SpinnerStatus struct {
	out     io.Writer
	factory SpinnerFactory
	style   lipgloss.Style

	mu   sync.Mutex
	prog *tea.Program
	done chan struct{}
}

func NewSpinnerStatus(out io.Writer, factory SpinnerFactory, style lipgloss.Style) *SpinnerStatus {
	if factory == nil {
		factory = DefaultSpinner
	}
	return &SpinnerStatus{out: out, factory: factory, style: style}
}

func (s *SpinnerStatus) Show(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prog != nil {
		s.prog.Send(statusTextMsg(text))
		return
	}

	model := statusModel{spinner: s.factory(), text: text, style: s.style}
	p := tea.NewProgram(model,
		tea.WithInput(nil),
		tea.WithOutput(s.out),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()
	s.prog, s.done = p, done
}

func (s *SpinnerStatus) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prog == nil {
		return
	}
	// Send returns immediately if the program already exited.
	s.prog.Send(hideMsg{})
	<-s.done
	s.prog, s.done = nil, nil
}
