package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// printer writes command output, styled only when stdout is a terminal.
type printer struct {
	cmd   *cobra.Command
	color bool

	title  lipgloss.Style
	accent lipgloss.Style
	muted  lipgloss.Style
	warn   lipgloss.Style
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{
		cmd:    cmd,
		color:  isTerminal(cmd.OutOrStdout()),
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		accent: lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *printer) paint(style lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return style.Render(s)
}

// Title prints a heading line.
func (p *printer) Title(format string, args ...any) {
	p.cmd.Println(p.paint(p.title, fmt.Sprintf(format, args...)))
}

// Field prints an indented "name: value" line.
func (p *printer) Field(name, value string) {
	if value == "" {
		return
	}
	p.cmd.Printf("  %s %s\n", p.paint(p.muted, name+":"), value)
}

// Item prints an indented list entry.
func (p *printer) Item(value string, detail string) {
	if detail == "" {
		p.cmd.Printf("    - %s\n", p.paint(p.accent, value))
		return
	}
	p.cmd.Printf("    - %s %s\n", p.paint(p.accent, value), p.paint(p.muted, "("+detail+")"))
}

// Warn prints a highlighted notice.
func (p *printer) Warn(format string, args ...any) {
	p.cmd.Println(p.paint(p.warn, fmt.Sprintf(format, args...)))
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
