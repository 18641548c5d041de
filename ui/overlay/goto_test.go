package overlay

import (
	"testing"

	"github.com/aerogrid/netmap/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeInto(g *GotoOverlay, s string) {
	for _, r := range s {
		g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestGotoOverlay_SubmitPrefilledCenter(t *testing.T) {
	center := model.LatLng{Lat: 39.9, Lng: 116.4}
	g := NewGotoOverlay(center, 60)

	closed := g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, closed)
	assert.True(t, g.IsSubmitted())
	pos, _, hasZoom := g.Target()
	assert.Equal(t, center, pos)
	assert.False(t, hasZoom)
}

func TestGotoOverlay_SubmitWithZoom(t *testing.T) {
	g := NewGotoOverlay(model.LatLng{Lat: 1, Lng: 2}, 60)
	g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyTab})
	typeInto(g, "15")

	require.True(t, g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter}))
	pos, zoom, hasZoom := g.Target()
	assert.Equal(t, model.LatLng{Lat: 1, Lng: 2}, pos)
	assert.True(t, hasZoom)
	assert.Equal(t, 15.0, zoom)
}

func TestGotoOverlay_InvalidZoomStaysOpen(t *testing.T) {
	g := NewGotoOverlay(model.LatLng{}, 60)
	g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyDown})
	typeInto(g, "far")

	closed := g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, closed)
	assert.False(t, g.IsSubmitted())
	assert.Contains(t, ansi.Strip(g.Render()), "not a number")
}

func TestGotoOverlay_EscCancels(t *testing.T) {
	g := NewGotoOverlay(model.LatLng{}, 60)
	assert.True(t, g.HandleKeyPress(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, g.IsSubmitted())
}

func TestGotoOverlay_Render(t *testing.T) {
	g := NewGotoOverlay(model.LatLng{}, 60)
	out := ansi.Strip(g.Render())
	assert.Contains(t, out, "go to")
	assert.Contains(t, out, "position (lat,lng)")
}
