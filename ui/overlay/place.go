package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var shadowStyle = lipgloss.NewStyle().Foreground(colorOverlay)

// PlaceOverlay draws fg on top of bg with fg's top-left corner at column x,
// row y. With center set, x and y are ignored and fg is centered. With
// shadow set, a one-cell shade is drawn along fg's right and bottom edges.
func PlaceOverlay(x, y int, fg, bg string, shadow bool, center bool) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")
	fgWidth := widest(fgLines)

	if center {
		x = (widest(bgLines) - fgWidth) / 2
		y = (len(bgLines) - len(fgLines)) / 2
	}
	x = max(x, 0)
	y = max(y, 0)

	if shadow {
		shade := shadowStyle.Render("░")
		for i := range fgLines {
			if i > 0 {
				fgLines[i] = padRight(fgLines[i], fgWidth) + shade
			} else {
				fgLines[i] = padRight(fgLines[i], fgWidth) + " "
			}
		}
		fgLines = append(fgLines, " "+shadowStyle.Render(strings.Repeat("░", fgWidth)))
	}

	for i, line := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = splice(bgLines[row], line, x)
	}
	return strings.Join(bgLines, "\n")
}

// splice replaces the cells of bg starting at column x with fg.
func splice(bg, fg string, x int) string {
	if w := ansi.StringWidth(bg); w < x {
		bg += strings.Repeat(" ", x-w)
	}
	left := ansi.Truncate(bg, x, "")
	right := ansi.TruncateLeft(bg, x+ansi.StringWidth(fg), "")
	return left + ansi.ResetStyle + fg + ansi.ResetStyle + right
}

func padRight(s string, width int) string {
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func widest(lines []string) int {
	w := 0
	for _, l := range lines {
		w = max(w, ansi.StringWidth(l))
	}
	return w
}
