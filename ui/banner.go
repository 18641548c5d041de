package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// The NETMAP banner, 6 rows tall.
var bannerRaw = `███╗   ██╗███████╗████████╗███╗   ███╗ █████╗ ██████╗
████╗  ██║██╔════╝╚══██╔══╝████╗ ████║██╔══██╗██╔══██╗
██╔██╗ ██║█████╗     ██║   ██╔████╔██║███████║██████╔╝
██║╚██╗██║██╔══╝     ██║   ██║╚██╔╝██║██╔══██║██╔═══╝
██║ ╚████║███████╗   ██║   ██║ ╚═╝ ██║██║  ██║██║
╚═╝  ╚═══╝╚══════╝   ╚═╝   ╚═╝     ╚═╝╚═╝  ╚═╝╚═╝`

var bannerRendered = GradientText(bannerRaw, GradientStart, GradientEnd)

// BannerLines returns the gradient banner as individual lines. Always 6.
func BannerLines() []string {
	return strings.Split(bannerRendered, "\n")
}

// GradientText colors s column by column, blending from one hex color to the
// other. Every line uses the same column ramp so vertical strokes line up.
func GradientText(s, from, to string) string {
	start, err1 := colorful.Hex(from)
	end, err2 := colorful.Hex(to)
	if err1 != nil || err2 != nil {
		return s
	}
	lines := strings.Split(s, "\n")
	width := 0
	for _, line := range lines {
		width = max(width, len([]rune(line)))
	}
	ramp := make([]lipgloss.Style, width)
	for i := range ramp {
		t := 0.0
		if width > 1 {
			t = float64(i) / float64(width-1)
		}
		ramp[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(start.BlendLuv(end, t).Clamped().Hex()))
	}

	var b strings.Builder
	for li, line := range lines {
		if li > 0 {
			b.WriteByte('\n')
		}
		for i, r := range []rune(line) {
			if r == ' ' {
				b.WriteRune(r)
				continue
			}
			b.WriteString(ramp[i].Render(string(r)))
		}
	}
	return b.String()
}
