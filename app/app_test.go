package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aerogrid/netmap/config"
	"github.com/aerogrid/netmap/config/eventlog"
	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/scenario"
	"github.com/aerogrid/netmap/schedule"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testHome struct {
	*home
	sched  *schedule.Manual
	logger *eventlog.SQLiteLogger
	copied []string
}

func newTestHome(t *testing.T, opts Options) *testHome {
	t.Helper()
	logger, err := eventlog.NewSQLiteLogger(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })

	if opts.Scenario == nil {
		opts.Scenario = scenario.Default(scenario.WithTime(fixedTime))
	}
	opts.Events = logger
	sched := schedule.NewManual(16 * time.Millisecond)
	h := &testHome{home: newHome(context.Background(), opts, sched), sched: sched, logger: logger}
	h.clipboard = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	t.Cleanup(h.close)
	h.Update(tea.WindowSizeMsg{Width: 140, Height: 44})
	return h
}

func (h *testHome) press(keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		h.Update(msg)
	}
}

func (h *testHome) kinds(t *testing.T) []eventlog.EventKind {
	t.Helper()
	events, err := h.events.Recent(100)
	require.NoError(t, err)
	kinds := make([]eventlog.EventKind, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		kinds = append(kinds, events[i].Kind)
	}
	return kinds
}

func TestNewHome_Defaults(t *testing.T) {
	h := newTestHome(t, Options{})
	assert.Equal(t, grouping.Mode("layer"), h.list.Mode())
	assert.Equal(t, focusSidebar, h.focus)
	assert.Equal(t, 7, h.registry.Len(), "every node has a mounted marker")
	assert.Equal(t, []eventlog.EventKind{eventlog.EventScenarioLoaded}, h.kinds(t))
}

func TestNewHome_ModePrecedence(t *testing.T) {
	h := newTestHome(t, Options{State: &config.State{GroupMode: "type"}})
	assert.Equal(t, grouping.Mode("type"), h.list.Mode())

	h = newTestHome(t, Options{State: &config.State{GroupMode: "type"}, GroupMode: "layer"})
	assert.Equal(t, grouping.Mode("layer"), h.list.Mode())
}

func TestSelectFromList_FocusesMap(t *testing.T) {
	h := newTestHome(t, Options{})
	// backbone header, then node 1
	h.press("down", "enter")

	id, ok := h.selection.Selected()
	require.True(t, ok)
	assert.Equal(t, model.NodeID("1"), id)
	assert.True(t, h.mapPane.Flying())

	h.sched.Advance(2 * time.Second)
	assert.Equal(t, 15.0, h.mapPane.Zoom(), "focus raises zoom to the minimum")
	popup, open := h.mapPane.Popup()
	assert.True(t, open)
	assert.Equal(t, model.NodeID("1"), popup)
	assert.Equal(t, []eventlog.EventKind{
		eventlog.EventScenarioLoaded,
		eventlog.EventNodeSelected,
		eventlog.EventMapFocus,
		eventlog.EventPopupOpened,
	}, h.kinds(t))
	assert.Contains(t, ansi.Strip(h.View()), "Backbone A")
}

func TestClearSelection(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("down", "enter")
	h.sched.Advance(2 * time.Second)

	h.press("esc")
	_, ok := h.selection.Selected()
	assert.False(t, ok)
	_, open := h.mapPane.Popup()
	assert.False(t, open)
}

func TestTabMovesFocusAndArrowsPan(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("tab")
	assert.Equal(t, focusMap, h.focus)
	assert.True(t, h.mapPane.IsFocused())

	before := h.mapPane.Center()
	h.press("l")
	assert.Greater(t, h.mapPane.Center().Lng, before.Lng)
	h.press("+")
	assert.Equal(t, 14.0, h.mapPane.Zoom())

	h.press("tab")
	assert.Equal(t, focusSidebar, h.focus)
}

func TestSidebarToggleIsControlled(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("s")
	assert.True(t, h.sidebarCollapsed)
	assert.True(t, h.list.Collapsed())
	assert.Equal(t, focusMap, h.focus, "a collapsed list cannot hold focus")

	h.press("tab")
	assert.Equal(t, focusMap, h.focus)

	h.press("s")
	assert.False(t, h.list.Collapsed())
	assert.Contains(t, h.kinds(t), eventlog.EventSidebarToggled)
}

func TestCollapsedFlagOverridesConfig(t *testing.T) {
	collapsed := true
	h := newTestHome(t, Options{Collapsed: &collapsed})
	assert.True(t, h.list.Collapsed())
	assert.Equal(t, focusMap, h.focus)
}

func TestCycleGroupingPersistsState(t *testing.T) {
	h := newTestHome(t, Options{})
	var saved []string
	h.saveState = func(s *config.State) error {
		saved = append(saved, s.GroupMode)
		return nil
	}
	h.press("g")
	assert.Equal(t, grouping.Mode("type"), h.list.Mode())
	assert.Equal(t, []string{"type"}, saved)
	assert.Contains(t, h.kinds(t), eventlog.EventGroupingChanged)
}

func TestSearchFiltersList(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("/")
	assert.Equal(t, stateSearch, h.state)
	h.press("r", "e", "l", "a", "y")
	h.press("enter")

	assert.Equal(t, stateDefault, h.state)
	assert.Equal(t, "relay", h.list.GetSearchQuery())
	var members []model.NodeID
	for _, g := range h.list.Groups() {
		for _, n := range g.Nodes {
			members = append(members, n.ID)
		}
	}
	assert.Equal(t, []model.NodeID{"2", "5"}, members)

	// esc with no selection drops the filter
	h.press("esc")
	assert.Empty(t, h.list.GetSearchQuery())
}

func TestYankCopiesPosition(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("y")
	assert.Empty(t, h.copied, "nothing to copy without a selection")

	h.press("down", "enter", "y")
	assert.Equal(t, []string{model.LatLng{Lat: 39.9, Lng: 116.4}.String()}, h.copied)
}

func TestYankReportsClipboardError(t *testing.T) {
	h := newTestHome(t, Options{})
	h.clipboard = func(string) error { return errors.New("no clipboard") }
	h.press("down", "enter", "y")
	h.sched.Advance(time.Second)
	assert.Contains(t, ansi.Strip(h.View()), "copy failed")
}

func TestReloadDropsSelectedNode(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("down", "enter")
	h.sched.Advance(2 * time.Second)

	next := scenario.Default(scenario.WithTime(fixedTime))
	next.Nodes = next.Nodes[1:]
	h.Update(scenario.ReloadedMsg{Scenario: next})

	_, ok := h.registry.Lookup("1")
	assert.False(t, ok, "the removed node's marker unmounts")
	_, open := h.mapPane.Popup()
	assert.False(t, open)
	kinds := h.kinds(t)
	require.GreaterOrEqual(t, len(kinds), 2)
	assert.Equal(t, []eventlog.EventKind{eventlog.EventFocusSkipped, eventlog.EventScenarioLoaded}, kinds[len(kinds)-2:],
		"the selection re-runs before the reload is logged")
}

func TestReloadErrorKeepsScenario(t *testing.T) {
	h := newTestHome(t, Options{})
	h.Update(scenario.ReloadedMsg{Err: errors.New("bad yaml")})
	assert.Len(t, h.scenario.Nodes, 7)
	kinds := h.kinds(t)
	assert.Equal(t, eventlog.EventScenarioError, kinds[len(kinds)-1])
}

func TestManualReloadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`name: mesh
nodes:
  - {id: a, name: Alpha, position: [1, 2], type: uav, layer: air}
`), 0o644))
	s, err := scenario.Load(path)
	require.NoError(t, err)

	st := &config.State{}
	h := newTestHome(t, Options{Scenario: s, State: st})
	assert.Equal(t, []string{path}, st.RecentScenarios)

	require.NoError(t, os.WriteFile(path, []byte(`name: mesh
nodes:
  - {id: a, name: Alpha, position: [1, 2], type: uav, layer: air}
  - {id: b, name: Bravo, position: [1, 3], type: uav, layer: air}
`), 0o644))
	h.press("r")
	// the reload command runs outside Update; feed its result back in
	msg := h.reload()()
	h.Update(msg)
	assert.Len(t, h.scenario.Nodes, 2)
}

func TestBuiltInScenarioHasNothingToReload(t *testing.T) {
	h := newTestHome(t, Options{})
	assert.Nil(t, h.reload())
}

func TestHelpOverlay(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("?")
	assert.Equal(t, stateHelp, h.state)
	out := ansi.Strip(h.View())
	assert.Contains(t, out, "zoom in")
	assert.Contains(t, out, "node list")

	h.press("x")
	assert.Equal(t, stateDefault, h.state)
}

func TestGotoFliesMap(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("G")
	require.Equal(t, stateGoto, h.state)
	h.press("tab", "9", "enter")

	assert.Equal(t, stateDefault, h.state)
	h.sched.Advance(2 * time.Second)
	assert.Equal(t, 9.0, h.mapPane.Zoom())
}

func TestEventPaneShowsSessionEvents(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("e")
	require.True(t, h.eventPane.Visible())
	h.press("down", "enter")
	out := ansi.Strip(h.View())
	assert.Contains(t, out, "selected Backbone A")
	assert.Contains(t, out, "loaded Beijing testbed")
}

func TestStatusBarReflectsSelection(t *testing.T) {
	h := newTestHome(t, Options{})
	data := h.statusData()
	assert.Equal(t, "Beijing testbed", data.Scenario)
	assert.Equal(t, 7, data.NodeCount)
	assert.Empty(t, data.Selected)

	h.press("down", "enter")
	data = h.statusData()
	assert.Equal(t, "Backbone A", data.Selected)
}

func TestMenuKeydownClears(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("+")
	require.NotNil(t, h.keyupTimer)
	h.sched.Advance(keyupDelay)
	assert.Nil(t, h.keyupTimer)
}

func TestQuitStopsTimers(t *testing.T) {
	h := newTestHome(t, Options{})
	h.press("down", "enter")
	_, cmd := h.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	// selection popup timer and flight frames are cancelled; the keyup timer too
	assert.Equal(t, 0, h.sched.Pending())
}

func TestHelpMarkdownListsEveryBinding(t *testing.T) {
	md := helpMarkdown()
	for _, want := range []string{"`G` fly to typed coordinates", "`y` copy", "`?` help", "`q` quit"} {
		assert.Contains(t, md, want)
	}
}

func TestViewFitsTerminal(t *testing.T) {
	h := newTestHome(t, Options{})
	out := h.View()
	assert.GreaterOrEqual(t, len(strings.Split(out, "\n")), 44)
	assert.Contains(t, ansi.Strip(out), "netmap")
}
