package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
)

func TestBannerLines_ReturnsCorrectRowCount(t *testing.T) {
	lines := BannerLines()
	assert.Equal(t, 6, len(lines), "banner should have 6 rows")
}

func TestGradientText_KeepsText(t *testing.T) {
	out := GradientText("ab\n c", GradientStart, GradientEnd)
	assert.Equal(t, "ab\n c", ansi.Strip(out))
}

func TestGradientText_BadColorIsPlain(t *testing.T) {
	assert.Equal(t, "netmap", GradientText("netmap", "nope", GradientEnd))
}

func TestBanner_StripsToRaw(t *testing.T) {
	assert.Equal(t, bannerRaw, ansi.Strip(strings.Join(BannerLines(), "\n")))
}
