package app

import (
	"fmt"
	"strings"

	"github.com/aerogrid/netmap/keys"
	"github.com/aerogrid/netmap/log"
	"github.com/aerogrid/netmap/ui"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []keys.KeyName
	// desc overrides the binding's short help text.
	desc map[keys.KeyName]string
}

var helpSections = []helpSection{
	{
		title: "node list",
		keys:  []keys.KeyName{keys.KeyUp, keys.KeyDown, keys.KeyEnter, keys.KeySpaceExpand, keys.KeyArrowLeft, keys.KeyArrowRight, keys.KeySearch, keys.KeyCycleGroup, keys.KeyToggleSidebar},
		desc: map[keys.KeyName]string{
			keys.KeyEnter:         "select the node, or expand/collapse the group",
			keys.KeySpaceExpand:   "expand/collapse the group under the cursor",
			keys.KeyArrowLeft:     "collapse the group, or jump to its header",
			keys.KeyArrowRight:    "expand the group",
			keys.KeySearch:        "filter by name, id, type or layer",
			keys.KeyCycleGroup:    "group by layer / type",
			keys.KeyToggleSidebar: "collapse the list to a rail",
		},
	},
	{
		title: "map",
		keys:  []keys.KeyName{keys.KeyZoomIn, keys.KeyZoomOut, keys.KeyArrowLeft, keys.KeyGoto, keys.KeyEnter},
		desc: map[keys.KeyName]string{
			keys.KeyArrowLeft: "pan (arrows or h/j/k/l while the map has focus)",
			keys.KeyGoto:      "fly to typed coordinates",
			keys.KeyEnter:     "fly back to the selected node",
		},
	},
	{
		title: "general",
		keys:  []keys.KeyName{keys.KeyTab, keys.KeyYank, keys.KeyClearSelection, keys.KeyEvents, keys.KeyReload, keys.KeyHelp, keys.KeyQuit},
		desc: map[keys.KeyName]string{
			keys.KeyTab:            "move focus between list and map",
			keys.KeyYank:           "copy the selected node's lat,lng",
			keys.KeyClearSelection: "clear the selection, then the filter",
			keys.KeyEvents:         "show or hide the event log",
			keys.KeyReload:         "reload the scenario file",
		},
	},
}

// helpMarkdown lists every key binding as markdown.
func helpMarkdown() string {
	var b strings.Builder
	b.WriteString("Selecting a node flies the map to it and opens its popup. ")
	b.WriteString("Click rows, group headers or markers with the mouse; the wheel zooms the map.\n")
	for _, section := range helpSections {
		fmt.Fprintf(&b, "\n## %s\n\n", section.title)
		for _, k := range section.keys {
			help := keys.GlobalkeyBindings[k].Help()
			desc := help.Desc
			if d, ok := section.desc[k]; ok {
				desc = d
			}
			fmt.Fprintf(&b, "- `%s` %s\n", help.Key, desc)
		}
	}
	b.WriteString("\npress any key to close\n")
	return b.String()
}

var helpBoxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ui.ColorIris).
	Padding(0, 1)

// helpView renders the help screen, caching it per width.
func (m *home) helpView() string {
	width := max(int(float32(m.termWidth)*0.6), 60)
	if m.helpCache != "" && m.helpWidth == width {
		return m.helpCache
	}
	m.helpCache = renderHelp(width)
	m.helpWidth = width
	return m.helpCache
}

func renderHelp(width int) string {
	body := helpMarkdown()
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width-4),
	)
	if err == nil {
		if rendered, rerr := renderer.Render(body); rerr == nil {
			body = rendered
		} else {
			err = rerr
		}
	}
	if err != nil {
		log.WarningLog.Printf("help render: %v", err)
	}
	banner := strings.Join(ui.BannerLines(), "\n")
	return helpBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, banner, strings.TrimRight(body, "\n")))
}
