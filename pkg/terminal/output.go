// Package terminal provides styled REPL output with markdown rendering.
// No TUI framework - just print and prompt.
package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Writer provides styled terminal output with markdown rendering.
type Writer struct {
	out      io.Writer
	renderer *glamour.TermRenderer
	mu       sync.Mutex

	errorStyle  lipgloss.Style
	warnStyle   lipgloss.Style
	okStyle     lipgloss.Style
	dimStyle    lipgloss.Style
	accentStyle lipgloss.Style
}

// New creates a Writer on stdout.
func New() *Writer {
	return NewWithOutput(os.Stdout)
}

// NewWithOutput creates a Writer with a custom output destination.
func NewWithOutput(out io.Writer) *Writer {
	width := terminalWidth()
	if width > 100 {
		width = 100
	}
	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)

	// lipgloss uses the detected profile for AdaptiveColor
	_ = termenv.ColorProfile()

	return &Writer{
		out:      out,
		renderer: renderer,

		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D00000", Dark: "#FF5555"}).
			Bold(true),

		warnStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFAA00"}),

		okStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#008000", Dark: "#55FF55"}),

		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),

		accentStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("45")),
	}
}

// Print writes text to the terminal.
func (w *Writer) Print(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format, args...)
}

// Println writes text with a newline.
func (w *Writer) Println(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Markdown renders markdown to the terminal with syntax highlighting.
// Falls back to plain text when rendering is unavailable.
func (w *Writer) Markdown(md string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.renderer == nil {
		fmt.Fprintln(w.out, md)
		return nil
	}
	rendered, err := w.renderer.Render(md)
	if err != nil {
		fmt.Fprintln(w.out, md)
		return err
	}
	fmt.Fprint(w.out, rendered)
	return nil
}

// Reply prints an assistant reply, marked and markdown-rendered.
func (w *Writer) Reply(text string) {
	w.Println("%s", w.accentStyle.Render("➤"))
	_ = w.Markdown(text)
}

// Error prints an error message in red.
func (w *Writer) Error(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w.out, w.errorStyle.Render("error: "+msg))
}

// Warn prints a warning message in yellow.
func (w *Writer) Warn(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w.out, w.warnStyle.Render("warning: "+msg))
}

// Success prints a success message in green.
func (w *Writer) Success(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w.out, w.okStyle.Render("✔ "+msg))
}

// Dim prints dimmed/secondary text.
func (w *Writer) Dim(format string, args ...interface{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w.out, w.dimStyle.Render(msg))
}

// Newline prints a blank line.
func (w *Writer) Newline() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out)
}

// Divider prints a horizontal divider.
func (w *Writer) Divider() {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, w.dimStyle.Render(strings.Repeat("─", 60)))
}

// Prompt prints the prompt marker and reads one line from in. Returns
// io.EOF when input is exhausted.
func (w *Writer) Prompt(text string, in *bufio.Reader) (string, error) {
	w.mu.Lock()
	fmt.Fprintf(w.out, "\n%s %s ", w.accentStyle.Render("?"), text)
	w.mu.Unlock()

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// terminalWidth returns the terminal width, defaulting to 80.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width == 0 {
		return 80
	}
	return width
}
