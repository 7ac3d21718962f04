package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrNoInput is returned when a prompt reaches end of input without an answer.
var ErrNoInput = errors.New("no input")

var promptStyle = lipgloss.NewStyle().
	Foreground(WarningColor).
	Bold(true)

// Confirm asks a yes/no question and reads the answer from in. Anything but
// "y" or "yes" is a no.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	_, _ = fmt.Fprint(out, promptStyle.Render(question+" [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	}
	_, _ = fmt.Fprintln(out, lipgloss.NewStyle().Foreground(MutedColor).Render("  Cancelled."))
	return false
}

// ReadToken prompts for a Home Assistant access token. On a terminal the
// input is not echoed; otherwise one line is read from in.
func ReadToken(in *os.File, out io.Writer) (string, error) {
	_, _ = fmt.Fprint(out, promptStyle.Render("Long-lived access token: "))

	if IsTerminal(in) {
		b, err := term.ReadPassword(int(in.Fd()))
		_, _ = fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return "", ErrNoInput
	}
	return line, nil
}
