package tui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// urlOpenedMsg reports the outcome of opening a URL.
type urlOpenedMsg struct {
	url string
	err error
}

// OpenerFunc opens a URL outside the terminal.
type OpenerFunc func(target string) error

// OpenBrowser starts the platform URL handler without waiting for it.
func OpenBrowser(target string) error {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil || u.Scheme == "" {
		return fmt.Errorf("not an absolute URL: %q", target)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", u.String())
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", u.String())
	default:
		cmd = exec.Command("xdg-open", u.String())
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func openURLCmd(open OpenerFunc, target string) tea.Cmd {
	return func() tea.Msg {
		return urlOpenedMsg{url: target, err: open(target)}
	}
}
