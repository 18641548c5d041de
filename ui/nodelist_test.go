package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/schedule"
	"github.com/aerogrid/netmap/ui/anim"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var listNodes = []model.Node{
	{ID: "1", Name: "Backbone A", Type: model.TypeGroundStation, Layer: model.LayerBackbone},
	{ID: "2", Name: "UAV-1", Type: model.TypeUAV, Layer: model.LayerAir},
	{ID: "3", Name: "UAV-2", Type: model.TypeUAV, Layer: model.LayerAir},
	{ID: "4", Name: "LEO-1", Type: model.TypeSatellite, Layer: model.LayerSpace},
}

func newTestList(opts NodeListOptions) (*NodeListPanel, *schedule.Manual) {
	sched := schedule.NewManual(16 * time.Millisecond)
	opts.Anim = anim.Config{Duration: 320 * time.Millisecond, RelaxedBound: anim.RelaxedBound, Frame: 16 * time.Millisecond}
	n := NewNodeListPanel(sched, opts)
	n.SetSize(40, 30)
	n.SetNodes(listNodes, model.DefaultTypeMeta())
	return n, sched
}

func rowIDs(rows []listRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.id()
	}
	return out
}

// ---------- grouping ----------

func TestNodeList_GroupsByLayer(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	assert.Equal(t, []string{
		"g:backbone", "n:backbone/1",
		"g:air", "n:air/2", "n:air/3",
		"g:space", "n:space/4",
	}, rowIDs(n.rows()))
}

func TestNodeList_CycleGroupMode(t *testing.T) {
	var modes []grouping.Mode
	n, _ := newTestList(NodeListOptions{OnModeChange: func(m grouping.Mode) { modes = append(modes, m) }})

	n.CycleGroupMode()
	assert.Equal(t, grouping.ModeType, n.Mode())
	require.Len(t, n.Groups(), 3)
	assert.Equal(t, model.TypeGroundStation, n.Groups()[0].Key)

	n.CycleGroupMode()
	assert.Equal(t, grouping.ModeLayer, n.Mode())
	assert.Equal(t, []grouping.Mode{grouping.ModeType, grouping.ModeLayer}, modes)
}

func TestNodeList_UnknownModeFallsBack(t *testing.T) {
	n, _ := newTestList(NodeListOptions{Mode: "bogus"})
	assert.Equal(t, grouping.ModeLayer, n.Mode())
}

// ---------- group collapse ----------

func TestNodeList_ToggleGroupAnimatesClosed(t *testing.T) {
	var toggles []string
	n, sched := newTestList(NodeListOptions{OnGroupToggle: func(m grouping.Mode, key string, c bool) {
		if c {
			toggles = append(toggles, string(m)+"/"+key)
		}
	}})

	assert.True(t, n.ToggleGroup(model.LayerAir))
	assert.Len(t, n.rows(), 7, "rows stay while the close is still animating")

	sched.Advance(time.Second)
	assert.Equal(t, []string{
		"g:backbone", "n:backbone/1",
		"g:air",
		"g:space", "n:space/4",
	}, rowIDs(n.rows()))
	assert.Equal(t, []string{"layer/air"}, toggles)
}

func TestNodeList_CollapseSurvivesModeSwitch(t *testing.T) {
	n, sched := newTestList(NodeListOptions{})
	n.ToggleGroup(model.LayerAir)
	sched.Advance(time.Second)

	n.CycleGroupMode()
	assert.False(t, n.IsGroupCollapsed(model.TypeUAV), "type mode has its own flags")
	n.CycleGroupMode()
	assert.True(t, n.IsGroupCollapsed(model.LayerAir))

	rows := n.rows()
	assert.NotContains(t, rowIDs(rows), "n:air/2", "a remounted collapsed group starts closed")
}

func TestNodeList_VanishedGroupAnimatorsStop(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	require.Len(t, n.animators, 3)

	n.SetNodes(listNodes[:1], nil)
	assert.Len(t, n.animators, 1)

	n.Close()
	assert.Empty(t, n.animators)
}

// ---------- cursor and activation ----------

func TestNodeList_ActivateNodeSelects(t *testing.T) {
	var picked []model.NodeID
	n, _ := newTestList(NodeListOptions{OnSelect: func(id model.NodeID) { picked = append(picked, id) }})

	n.Down()
	n.Activate()
	assert.Equal(t, []model.NodeID{"1"}, picked)
}

func TestNodeList_ActivateHeaderToggles(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	n.Activate()
	assert.True(t, n.IsGroupCollapsed(model.LayerBackbone))
	assert.Equal(t, "expand", n.SelectedSpaceAction())
}

func TestNodeList_CursorFallsBackToHeader(t *testing.T) {
	n, sched := newTestList(NodeListOptions{})
	n.SetSelected("3", true)
	assert.Equal(t, "n:air/3", n.cursor)

	n.Left()
	assert.Equal(t, "g:air", n.cursor)
	n.Down()
	n.Down()
	n.ToggleGroup(model.LayerAir)
	sched.Advance(time.Second)

	rows := n.rows()
	assert.Equal(t, 2, n.locate(rows))
	assert.Equal(t, "g:air", n.cursor)
}

func TestNodeList_RightExpands(t *testing.T) {
	n, sched := newTestList(NodeListOptions{})
	n.ToggleGroup(model.LayerBackbone)
	sched.Advance(time.Second)

	n.Right()
	assert.False(t, n.IsGroupCollapsed(model.LayerBackbone))
	sched.Advance(time.Second)
	n.Right()
	assert.Equal(t, "n:backbone/1", n.cursor)
}

// ---------- sidebar collapse ----------

func TestNodeList_ControlledToggleOnlyNotifies(t *testing.T) {
	external := false
	var requested []bool
	n, _ := newTestList(NodeListOptions{
		Controlled: &external,
		OnToggle:   func(c bool) { requested = append(requested, c) },
	})

	n.ToggleSidebar()
	assert.False(t, n.Collapsed(), "the caller owns the value")
	assert.Equal(t, []bool{true}, requested)

	n.SetCollapsed(true)
	assert.True(t, n.Collapsed())
	assert.Equal(t, RailWidth, n.Width(32))
}

func TestNodeList_UncontrolledToggleFlips(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	assert.False(t, n.IsControlled())

	n.SetCollapsed(true)
	assert.False(t, n.Collapsed(), "SetCollapsed is ignored when uncontrolled")

	n.ToggleSidebar()
	assert.True(t, n.Collapsed())
	n.ToggleSidebar()
	assert.False(t, n.Collapsed())
}

func TestNodeList_DefaultCollapsed(t *testing.T) {
	n, _ := newTestList(NodeListOptions{DefaultCollapsed: true})
	assert.False(t, n.IsControlled())
	assert.True(t, n.Collapsed())
	assert.Equal(t, RailWidth, n.Width(32))

	n.ToggleSidebar()
	assert.False(t, n.Collapsed())

	external := false
	c, _ := newTestList(NodeListOptions{Controlled: &external, DefaultCollapsed: true})
	assert.False(t, c.Collapsed(), "the controlled value wins over the default")
}

func TestNodeList_RailTitle(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	assert.Equal(t, "no node selected", n.RailTitle())

	n.SetSelected("2", true)
	assert.Equal(t, "UAV-1 - uav", n.RailTitle())

	n.SetSelected("99", true)
	assert.Equal(t, "no node selected", n.RailTitle())
}

// ---------- search ----------

func TestNodeList_SearchFilters(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	n.SetSearchQuery("uav")
	assert.Equal(t, []string{"g:air", "n:air/2", "n:air/3"}, rowIDs(n.rows()))

	n.SetSearchQuery("LEO")
	assert.Equal(t, []string{"g:space", "n:space/4"}, rowIDs(n.rows()))

	n.CancelSearch()
	assert.Len(t, n.rows(), 7)
	assert.Equal(t, "", n.GetSearchQuery())
}

func TestNodeList_SelectionResolvesAgainstFullCollection(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	n.SetSelected("1", true)
	n.SetSearchQuery("uav")

	node, ok := n.SelectedNode()
	assert.True(t, ok, "a filtered-out node is still selected")
	assert.Equal(t, "Backbone A", node.Name)
}

// ---------- rendering ----------

func TestNodeList_String(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	out := ansi.Strip(n.String())
	assert.Contains(t, out, "nodes")
	assert.Contains(t, out, "ad-hoc (air)")
	assert.Contains(t, out, "UAV-2")
	assert.Contains(t, out, "by layer")
}

func TestNodeList_RailString(t *testing.T) {
	n, _ := newTestList(NodeListOptions{})
	n.SetSelected("2", true)
	n.ToggleSidebar()

	out := ansi.Strip(n.String())
	assert.Contains(t, out, "☰")
	assert.Contains(t, out, "✈")
	assert.NotContains(t, out, "UAV-1")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(line), RailWidth)
	}
}
