package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  _   _     _      _        _   ", "#34d399"},
	{" | |_| |__ (_) ___| | _____| |_ ", "#10b981"},
	{" | __| '_ \\| |/ __| |/ / _ \\ __|", "#059669"},
	{" | |_| | | | | (__|   <  __/ |_ ", "#0d9488"},
	{"  \\__|_| |_|_|\\___|_|\\_\\___|\\__|", "#0f766e"},
}

// PrintBanner writes the ASCII banner to w, colored when the terminal
// supports it.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}
