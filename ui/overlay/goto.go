package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aerogrid/netmap/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// GotoOverlay asks for a position and an optional zoom to fly the map to.
type GotoOverlay struct {
	form    *huh.Form
	posVal  string
	zoomVal string
	width   int
	errMsg  string

	submitted bool
	target    model.LatLng
	zoom      float64
	hasZoom   bool
}

// NewGotoOverlay creates the form, prefilled with the current map center.
func NewGotoOverlay(center model.LatLng, width int) *GotoOverlay {
	g := &GotoOverlay{width: width, posVal: center.String()}

	formWidth := max(width-6, 34)
	g.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("position").
				Title("position (lat,lng)").
				Value(&g.posVal),
			huh.NewInput().
				Key("zoom").
				Title("zoom (optional)").
				Value(&g.zoomVal),
		),
	).
		WithTheme(ThemeRosePine()).
		WithWidth(formWidth).
		WithShowHelp(false).
		WithShowErrors(false)

	_ = g.form.Init()
	return g
}

func (g *GotoOverlay) updateForm(msg tea.Msg) {
	updated, _ := g.form.Update(msg)
	if form, ok := updated.(*huh.Form); ok {
		g.form = form
	}
}

// HandleKeyPress processes a key and returns true when the overlay should close.
func (g *GotoOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEsc:
		return true

	case tea.KeyEnter:
		if err := g.parse(); err != nil {
			g.errMsg = err.Error()
			return false
		}
		g.submitted = true
		return true

	case tea.KeyTab, tea.KeyDown:
		g.updateForm(huh.NextField())
		return false

	case tea.KeyShiftTab, tea.KeyUp:
		g.updateForm(huh.PrevField())
		return false

	default:
		g.errMsg = ""
		g.updateForm(msg)
		return false
	}
}

func (g *GotoOverlay) parse() error {
	pos, err := model.ParseLatLng(g.posVal)
	if err != nil {
		return err
	}
	g.target = pos
	g.hasZoom = false
	if z := strings.TrimSpace(g.zoomVal); z != "" {
		zoom, err := strconv.ParseFloat(z, 64)
		if err != nil {
			return fmt.Errorf("zoom %q: not a number", z)
		}
		g.zoom, g.hasZoom = zoom, true
	}
	return nil
}

// Render returns the styled overlay string.
func (g *GotoOverlay) Render() string {
	w := max(g.width, 40)

	titleStyle := lipgloss.NewStyle().
		Foreground(colorIris).
		Bold(true).
		MarginBottom(1)

	hintStyle := lipgloss.NewStyle().
		Foreground(colorMuted).
		MarginTop(1)

	content := titleStyle.Render("go to") + "\n"
	content += g.form.View() + "\n"
	if g.errMsg != "" {
		content += lipgloss.NewStyle().Foreground(colorLove).Render(g.errMsg) + "\n"
	}
	content += hintStyle.Render("tab/↑↓ navigate · enter fly · esc cancel")

	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2).
		Width(w)

	return style.Render(content)
}

// Target returns the parsed position and, when one was given, the zoom.
func (g *GotoOverlay) Target() (pos model.LatLng, zoom float64, hasZoom bool) {
	return g.target, g.zoom, g.hasZoom
}

// IsSubmitted returns true when the form was submitted with a valid position.
func (g *GotoOverlay) IsSubmitted() bool {
	return g.submitted
}
