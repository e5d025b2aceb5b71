package tui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/stepwise/pkg/script"
)

// Renderer prints board snapshots to a terminal.
type Renderer struct {
	out      io.Writer
	term     *termenv.Output
	markdown func(string) (string, error)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a Renderer writing to out. Markdown is rendered with
// glamour only when raw is false and out is a terminal; otherwise content is
// printed as is and status lines carry no colour.
func NewRenderer(out io.Writer, raw bool) *Renderer {
	r := &Renderer{out: out, term: newOutput(out)}
	if raw || !IsTerminal(out) {
		return r
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err == nil {
		r.markdown = md.Render
	}
	return r
}

// Screen prints the current screen, its notes and a status line.
func (r *Renderer) Screen(s script.Snapshot) {
	content := s.Screen
	if r.markdown != nil && content != "" {
		if out, err := r.markdown(content); err == nil {
			content = out
		}
	}
	if content != "" {
		fmt.Fprintln(r.out, strings.TrimRight(content, "\n"))
	}
	for _, n := range s.Notes {
		fmt.Fprintln(r.out, r.style("  > "+n, "#a78bfa"))
	}
	fmt.Fprintln(r.out, r.style(Status(s), "#818cf8"))
}

// Notice prints a dimmed informational line.
func (r *Renderer) Notice(msg string) {
	fmt.Fprintln(r.out, r.term.String(msg).Faint())
}

func (r *Renderer) style(s, color string) string {
	return r.term.String(s).Foreground(r.term.Profile.Color(color)).String()
}

// newOutput detects the colour profile of a terminal and strips styling
// from anything else.
func newOutput(out io.Writer) *termenv.Output {
	if IsTerminal(out) {
		return termenv.NewOutput(out)
	}
	return termenv.NewOutput(out, termenv.WithProfile(termenv.Ascii))
}

// Status formats the step id and values, sorted by key.
func Status(s script.Snapshot) string {
	keys := make([]string, 0, len(s.Values))
	for k := range s.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]", s.Step)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%g", k, s.Values[k])
	}
	if s.Exit != "" {
		fmt.Fprintf(&sb, " (exit %s)", s.Exit)
	}
	return sb.String()
}
