package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// StatusBarData holds the contextual information displayed in the status bar.
type StatusBarData struct {
	Scenario  string
	NodeCount int
	LinkCount int
	Zoom      float64
	HasZoom   bool
	// Selected is the selected node's name; empty = no selection.
	Selected      string
	SelectedColor string
	SelectedIcon  string
	Filter        string // active search filter, empty = none
	Watching      bool
}

// StatusBar is the top status bar component.
type StatusBar struct {
	width int
	data  StatusBarData
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetSize sets the terminal width for the status bar.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetData updates the status bar content.
func (s *StatusBar) SetData(data StatusBarData) {
	s.data = data
}

var statusBarStyle = lipgloss.NewStyle().
	Background(ColorSurface).
	Foreground(ColorText).
	Padding(0, 1)

var statusBarAppNameStyle = lipgloss.NewStyle().
	Foreground(ColorIris).
	Background(ColorSurface).
	Bold(true)

var statusBarSepStyle = lipgloss.NewStyle().
	Foreground(ColorOverlay).
	Background(ColorSurface)

var statusBarScenarioStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSurface)

var statusBarCountStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle).
	Background(ColorSurface)

var statusBarZoomStyle = lipgloss.NewStyle().
	Foreground(ColorFoam).
	Background(ColorSurface)

var statusBarMutedStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Background(ColorSurface)

const statusBarSep = " │ "

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (s *StatusBar) String() string {
	if s.width < 10 {
		return ""
	}

	parts := make([]string, 0, 6)
	parts = append(parts, statusBarAppNameStyle.Render("netmap"))

	if s.data.Scenario != "" {
		name := s.data.Scenario
		if s.data.Watching {
			name += " ⟳"
		}
		parts = append(parts, statusBarScenarioStyle.Render(name))
	}

	parts = append(parts, statusBarCountStyle.Render(plural(s.data.NodeCount, "node")+", "+plural(s.data.LinkCount, "link")))

	if s.data.HasZoom {
		parts = append(parts, statusBarZoomStyle.Render(fmt.Sprintf("zoom %.1f", s.data.Zoom)))
	}

	if s.data.Selected != "" {
		icon := s.data.SelectedIcon
		if icon != "" {
			icon = lipgloss.NewStyle().Foreground(lipgloss.Color(s.data.SelectedColor)).Background(ColorSurface).Render(icon) +
				statusBarScenarioStyle.Render(" ")
		}
		parts = append(parts, icon+statusBarScenarioStyle.Render(s.data.Selected))
	} else {
		parts = append(parts, statusBarMutedStyle.Render("no node selected"))
	}

	if s.data.Filter != "" {
		parts = append(parts, statusBarMutedStyle.Render("/"+s.data.Filter))
	}

	sep := statusBarSepStyle.Render(statusBarSep)
	content := truncate.StringWithTail(strings.Join(parts, sep), uint(max(s.width-2, 1)), "…")

	return statusBarStyle.Width(s.width).Render(content)
}
