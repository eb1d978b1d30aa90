// Package ui is the line-oriented terminal front end: it reads multi-line
// messages, shows progress while a turn runs and prints dispatch results.
package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Cyclone1070/devassist/internal/dispatch"
	"github.com/Cyclone1070/devassist/internal/workflow"
)

const (
	Banner      = "Agent ready! Type 'exit' to quit."
	InputPrompt = "You (Finish input with an empty line):"
	ReplyHeader = "AI:"
)

// Console reads user messages from in and writes replies to out.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	renderer MarkdownRenderer
	styles   Styles
	status   StatusIndicator

	// idle is signalled each time the watcher has handled a DoneEvent.
	idle chan struct{}
	// stopped is closed while no watcher is running.
	stopped chan struct{}

	mu sync.Mutex
}

func NewConsole(in io.Reader, out io.Writer, renderer MarkdownRenderer, styles Styles, status StatusIndicator) *Console {
	if status == nil {
		status = NoopStatus{}
	}
	stopped := make(chan struct{})
	close(stopped)
	return &Console{
		in:       bufio.NewReader(in),
		out:      out,
		renderer: renderer,
		styles:   styles,
		status:   status,
		idle:     make(chan struct{}, 1),
		stopped:  stopped,
	}
}

// WriteBanner prints the startup banner.
func (c *Console) WriteBanner() {
	c.println(c.styles.Header.Render(Banner))
}

// ReadMessage prompts and reads lines until a blank line or end of input.
// A line of only whitespace counts as blank.
// It returns io.EOF only when input ended before any line was read.
func (c *Console) ReadMessage() (string, error) {
	c.println("\n" + c.styles.Prompt.Render(InputPrompt))

	var lines []string
	for {
		line, err := c.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if errors.Is(err, io.EOF) && len(lines) == 0 {
				return "", io.EOF
			}
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)

		if errors.Is(err, io.EOF) {
			return strings.Join(lines, "\n"), nil
		}
	}
}

// IsExitCommand reports whether input asks to leave the session.
func IsExitCommand(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit":
		return true
	}
	return false
}

// WriteResult stops the status indicator and prints r.
func (c *Console) WriteResult(r dispatch.Result) {
	c.status.Hide()

	switch r := r.(type) {
	case dispatch.Ok:
		c.println(c.styles.Header.Render(ReplyHeader) + " " + c.styles.Tool.Render("["+r.Name+"]"))
		c.println(c.markdown(r.Text))
	case dispatch.NoCall:
		c.println(c.styles.Header.Render(ReplyHeader))
		c.println(c.markdown(r.Text))
	case nil:
		c.println(c.styles.Header.Render(ReplyHeader))
	default:
		c.println(c.styles.Error.Render(r.String()))
	}
}

// WriteError prints an error that ended a turn.
func (c *Console) WriteError(err error) {
	c.status.Hide()
	c.println(c.styles.Error.Render("[Error] " + err.Error()))
}

// StartWatch runs Watch in its own goroutine. The returned channel is closed
// once events is closed and drained. It must be called from the goroutine
// that later calls Settle.
func (c *Console) StartWatch(events <-chan workflow.Event) <-chan struct{} {
	stopped := make(chan struct{})
	c.stopped = stopped
	go func() {
		defer close(stopped)
		c.Watch(events)
	}()
	return stopped
}

// Settle blocks until the watcher has handled the current turn's DoneEvent,
// so nothing it draws lands after the reply. It returns at once when no
// watcher is running.
func (c *Console) Settle(ctx context.Context) {
	select {
	case <-c.idle:
	case <-c.stopped:
	case <-ctx.Done():
	}
}

// Watch drives the status indicator from turn events until events is closed.
func (c *Console) Watch(events <-chan workflow.Event) {
	for ev := range events {
		switch ev := ev.(type) {
		case workflow.ThinkingEvent:
			c.status.Show("Thinking (" + ev.Model + ")")
		case workflow.ToolStartEvent:
			if ev.RequestDisplay != "" {
				c.status.Show(ev.RequestDisplay)
			} else {
				c.status.Show("Running " + ev.ToolName)
			}
		case workflow.ToolEndEvent:
			if ev.Failed {
				c.status.Show(ev.ToolName + " failed")
			}
		case workflow.DoneEvent:
			c.status.Hide()
			select {
			case c.idle <- struct{}{}:
			default:
			}
		}
	}
	c.status.Hide()
}

func (c *Console) markdown(text string) string {
	if c.renderer == nil {
		return text
	}
	out, err := c.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (c *Console) println(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, s)
}
