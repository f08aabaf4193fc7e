package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/beaconhq/beacon/internal/ui"
)

// stdoutIsTerminal is a variable so tests can force plain output.
var stdoutIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// printMarkdown writes markdown to stdout, rendered for the terminal when
// stdout is a TTY and colors are enabled, raw otherwise (pipes, --no-color).
func printMarkdown(content string) {
	if noColor || !stdoutIsTerminal() {
		fmt.Print(ensureTrailingNewline(content))
		return
	}

	dc := ui.NewDisplayContext()
	rendered, err := ui.RenderMarkdown(content, dc.TermWidth)
	if err != nil {
		fmt.Print(ensureTrailingNewline(content))
		return
	}
	fmt.Print(ensureTrailingNewline(rendered))
}

func ensureTrailingNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
