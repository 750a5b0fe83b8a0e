package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Printer renders suggestion lists for a terminal.
type Printer struct {
	w          io.Writer
	showTiming bool
	word       lipgloss.Style
	faint      lipgloss.Style
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, showTiming bool) *Printer {
	return &Printer{
		w:          w,
		showTiming: showTiming,
		word:       lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
		faint:      lipgloss.NewStyle().Faint(true),
	}
}

// Print writes one numbered line per suggestion, followed by the timing line when enabled.
func (p *Printer) Print(query string, suggestions []string, took time.Duration) {
	if len(suggestions) == 0 {
		fmt.Fprintf(p.w, "no suggestions for '%s'\n", query)
	} else {
		fmt.Fprintf(p.w, "%d suggestions for '%s':\n", len(suggestions), query)
		for i, s := range suggestions {
			fmt.Fprintf(p.w, "%2d. %s\n", i+1, p.word.Render(s))
		}
	}
	if p.showTiming {
		fmt.Fprintln(p.w, p.faint.Render(fmt.Sprintf("took %v", took.Round(time.Microsecond))))
	}
}

// Prompt writes the input prompt.
func (p *Printer) Prompt() {
	fmt.Fprint(p.w, "> ")
}
