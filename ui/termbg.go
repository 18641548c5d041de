package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// SetTerminalBackground sets the terminal's default background (OSC 11) to
// the map's base color, so cells the map leaves unstyled blend with the
// styled ones. The returned func restores the terminal default (OSC 111).
// Colors that are not #rrggbb leave the terminal untouched.
func SetTerminalBackground(c lipgloss.Color) func() {
	return setTermBg(os.Stdout, c)
}

func setTermBg(w io.Writer, c lipgloss.Color) func() {
	parsed, err := colorful.Hex(string(c))
	if err != nil {
		return func() {}
	}
	fmt.Fprintf(w, "\033]11;%s\033\\", parsed.Hex())
	return func() {
		fmt.Fprint(w, "\033]111\033\\")
	}
}
