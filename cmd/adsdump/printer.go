package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	addrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
)

type printer struct {
	w      io.Writer
	json   bool
	styled bool
}

// newPrinter styles output only when it goes to a terminal.
func newPrinter(w io.Writer, asJSON bool) *printer {
	styled := false
	if f, ok := w.(*os.File); ok {
		styled = term.IsTerminal(int(f.Fd()))
	}
	return &printer{w: w, json: asJSON, styled: styled}
}

func (p *printer) paint(s lipgloss.Style, text string) string {
	if !p.styled || text == "" {
		return text
	}
	return s.Render(text)
}

func (p *printer) line(depth int, parts ...string) {
	var kept []string
	for _, s := range parts {
		if s != "" {
			kept = append(kept, s)
		}
	}
	fmt.Fprintf(p.w, "%s%s\n", strings.Repeat("  ", depth), strings.Join(kept, " "))
}

func (p *printer) emit(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
