// Package notify shows run notices to the user and picks the input file
// when none was given.
//
// Notices carry a level, a title and a body. The console notifier prints
// them with lipgloss styling; in interactive sessions it can also hold the
// run until the user acknowledges each notice, the way a dialog box would.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Level is the severity of a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one message for the user.
type Notice struct {
	Level Level
	Title string
	Body  string
}

// Notifier presents notices.
type Notifier interface {
	Notify(n Notice) error
}

var (
	infoSymbol    = "→"
	warningSymbol = "!"
	errorSymbol   = "✗"

	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	titleStyle   = lipgloss.NewStyle().Bold(true)
	bodyStyle    = lipgloss.NewStyle().PaddingLeft(2)
)

func styleFor(l Level) (string, lipgloss.Style) {
	switch l {
	case LevelWarning:
		return warningSymbol, warningStyle
	case LevelError:
		return errorSymbol, errorStyle
	default:
		return infoSymbol, infoStyle
	}
}

// Console writes notices to a writer. When Blocking is set each notice is
// also shown as a form that waits for confirmation.
type Console struct {
	Out      io.Writer
	Blocking bool
}

// NewConsole creates a console notifier writing to out.
func NewConsole(out io.Writer, blocking bool) *Console {
	return &Console{Out: out, Blocking: blocking}
}

// Notify prints the notice and, when blocking, waits for the user.
func (c *Console) Notify(n Notice) error {
	if c.Blocking {
		return c.confirm(n)
	}

	symbol, style := styleFor(n.Level)
	_, _ = fmt.Fprintf(c.Out, "%s %s\n", style.Render(symbol), titleStyle.Render(n.Title))
	if body := strings.TrimRight(n.Body, "\n"); body != "" {
		_, _ = fmt.Fprintln(c.Out, bodyStyle.Render(body))
	}
	return nil
}

func (c *Console) confirm(n Notice) error {
	symbol, style := styleFor(n.Level)
	form := huh.NewForm(huh.NewGroup(
		huh.NewNote().
			Title(style.Render(symbol) + " " + n.Title).
			Description(strings.TrimRight(n.Body, "\n")).
			Next(true).
			NextLabel("OK"),
	)).WithOutput(c.Out)

	if err := form.Run(); err != nil {
		return fmt.Errorf("failed to show notice: %w", err)
	}
	return nil
}

// Recorder keeps notices in memory.
type Recorder struct {
	Notices []Notice
}

func (r *Recorder) Notify(n Notice) error {
	r.Notices = append(r.Notices, n)
	return nil
}

// Titles returns the recorded titles in order.
func (r *Recorder) Titles() []string {
	titles := make([]string, len(r.Notices))
	for i, n := range r.Notices {
		titles[i] = n.Title
	}
	return titles
}

// IsInteractive reports whether stdin and stdout are both terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
