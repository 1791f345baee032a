package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
)

// Palette for terminal output.
var (
	Primary = lipgloss.Color("#8B5CF6") // purple
	Accent  = lipgloss.Color("#F97316") // orange
	Success = lipgloss.Color("#22C55E") // green
	Error   = lipgloss.Color("#F43F5E") // rose
	TextDim = lipgloss.Color("#94A3B8") // slate
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent)

	HintStyle = lipgloss.NewStyle().
			Foreground(TextDim).
			Italic(true)

	OKStyle = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	NoteStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(TextDim).
			Padding(0, 1)
)

// writer accumulates a report in one Mode.
type writer struct {
	b    strings.Builder
	mode Mode
}

func (w *writer) title(s string) {
	if w.mode == Markdown {
		fmt.Fprintf(&w.b, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.b, "%s\n\n", TitleStyle.Render(s))
}

func (w *writer) section(s string) {
	if w.mode == Markdown {
		fmt.Fprintf(&w.b, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(&w.b, "%s\n", SectionStyle.Render(s))
}

func (w *writer) hint(s string) {
	if w.mode == Markdown {
		fmt.Fprintf(&w.b, "_%s_\n\n", s)
		return
	}
	fmt.Fprintf(&w.b, "%s\n\n", HintStyle.Render(s))
}

func (w *writer) line(format string, args ...any) {
	fmt.Fprintf(&w.b, format+"\n", args...)
}

func (w *writer) table(t *Table) {
	w.b.WriteString(t.String())
	w.b.WriteString("\n\n")
}

func (w *writer) String() string {
	return strings.TrimRight(w.b.String(), "\n") + "\n"
}

// OK renders a success status line for the terminal.
func OK(s string) string { return OKStyle.Render(s) }

// Fail renders a failure status line for the terminal.
func Fail(s string) string { return ErrorStyle.Render(s) }

// Hint renders secondary text for the terminal.
func Hint(s string) string { return HintStyle.Render(s) }
