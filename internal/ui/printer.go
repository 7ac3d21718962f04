package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Printer provides methods for printing UI components to a writer.
// Commands write all their styled output through it.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(),
	}
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// SetWidth overrides the detected terminal width.
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Printf writes formatted content
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Detail) {
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintResult prints a result box at the printer's width
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.PrintResult(NewSuccessResult(title, details...))
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.PrintResult(NewFailureResult(title, err, troubleshooting))
}

// PrintTable prints rows under a header line, columns padded to the widest
// cell.
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	p.Print(RenderTable(headers, rows))
}

// PrintDiff prints a line diff of two texts. It reports whether they differ.
func (p *Printer) PrintDiff(oldText, newText string) bool {
	lines := DiffLines(oldText, newText)
	if !HasChanges(lines) {
		return false
	}
	p.Print(RenderDiff(lines, DefaultDiffContext))
	return true
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Detail, width int) string {
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	titleLine := HeaderTitleStyle.Render(strings.ToUpper(title))
	commandLine := HeaderCommandStyle.Render(command)
	content := lipgloss.JoinVertical(lipgloss.Left, titleLine, commandLine)

	if len(params) > 0 {
		paramLines := make([]string, 0, len(params))
		for _, d := range params {
			paramLines = append(paramLines,
				HeaderParamKeyStyle.Render(d.Key+":")+" "+HeaderParamValueStyle.Render(d.Value))
		}
		divider := RenderHorizontalDivider(width-6, "─") // border and padding
		content = lipgloss.JoinVertical(lipgloss.Left, content, divider, strings.Join(paramLines, "\n"))
	}

	return HeaderBorderStyle(width).Render(content)
}

// RenderTable renders a plain aligned table. Widths are measured in
// terminal cells so wide runes line up.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style lipgloss.Style) {
		b.WriteString("  ")
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i < len(widths)-1 {
				cell = runewidth.FillRight(cell, widths[i])
				b.WriteString(style.Render(cell))
				b.WriteString("  ")
			} else {
				b.WriteString(style.Render(cell))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, TableHeaderStyle)
	for _, row := range rows {
		writeRow(row, TableCellStyle)
	}
	return b.String()
}
