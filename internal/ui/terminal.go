package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ShouldUseColor decides whether command output gets ANSI colors. The
// override order is NO_COLOR, then CLICOLOR_FORCE, then CLICOLOR, and
// finally whether stdout is a terminal.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" { // https://no-color.org
		return false
	}
	if force := strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")); force != "" && force != "0" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
