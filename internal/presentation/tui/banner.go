package tui

import (
	"fmt"
	"io"
)

// PrintBanner writes the stepwise banner and the flow name.
func PrintBanner(out io.Writer, flow string) {
	o := newOutput(out)
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct{ text, color string }{
		{"     _                       _          ", "#818cf8"},
		{" ___| |_ ___ _ ____      __ (_)___  ___ ", "#a78bfa"},
		{"/ __| __/ _ \\ '_ \\ \\ /\\ / / | / __|/ _ \\", "#c084fc"},
		{"\\__ \\ ||  __/ |_) \\ V  V /  | \\__ \\  __/", "#e879f9"},
		{"|___/\\__\\___| .__/ \\_/\\_/   |_|___/\\___|", "#f472b6"},
		{"            |_|                          ", "#fb7185"},
	}

	fmt.Fprintln(out)
	for _, l := range lines {
		fmt.Fprintln(out, o.String(l.text).Foreground(o.Profile.Color(l.color)))
	}
	if flow != "" {
		fmt.Fprintln(out, o.String("  "+flow).Bold())
	}
	fmt.Fprintln(out)
}
