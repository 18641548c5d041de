package ui

import (
	"math"
	"testing"
	"time"

	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/schedule"
	"github.com/aerogrid/netmap/surface"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var beijing = model.LatLng{Lat: 39.9, Lng: 116.4}

var mapNodes = []model.Node{
	{ID: "1", Name: "Backbone A", Position: beijing, Type: model.TypeGroundStation, Layer: model.LayerBackbone},
	{ID: "2", Name: "UAV-1", Position: model.LatLng{Lat: 39.91, Lng: 116.42}, Type: model.TypeUAV, Layer: model.LayerAir},
}

func newTestMap() (*MapPane, *surface.Registry, *schedule.Manual) {
	sched := schedule.NewManual(16 * time.Millisecond)
	reg := surface.NewRegistry()
	p := NewMapPane(sched, 16*time.Millisecond, reg)
	p.SetSize(82, 32)
	p.SetView(beijing, 13)
	p.SetScene(mapNodes, []model.Link{{From: mapNodes[0].Position, To: mapNodes[1].Position}}, model.DefaultTypeMeta())
	return p, reg, sched
}

// ---------- surface capability ----------

func TestMapPane_CurrentZoomNeedsLayout(t *testing.T) {
	p := NewMapPane(schedule.NewManual(16*time.Millisecond), 0, surface.NewRegistry())
	_, ok := p.CurrentZoom()
	assert.False(t, ok)

	p.SetSize(40, 20)
	p.SetView(beijing, 12)
	z, ok := p.CurrentZoom()
	assert.True(t, ok)
	assert.Equal(t, 12.0, z)
}

func TestMapPane_FlyToAnimates(t *testing.T) {
	p, _, sched := newTestMap()
	target := model.LatLng{Lat: 40.0, Lng: 116.6}
	p.FlyTo(target, 15, surface.FlyOptions{Duration: 800 * time.Millisecond, Easing: surface.EaseOut})
	assert.True(t, p.Flying())
	assert.Equal(t, beijing, p.Center(), "nothing moves before the first frame")

	sched.Advance(400 * time.Millisecond)
	mid := p.Zoom()
	assert.Greater(t, mid, 14.0, "ease-out is past halfway at the midpoint")
	assert.Less(t, mid, 15.0)

	sched.Advance(400 * time.Millisecond)
	assert.False(t, p.Flying())
	assert.Equal(t, target, p.Center())
	assert.Equal(t, 15.0, p.Zoom())
	assert.Equal(t, 0, sched.Pending())
}

func TestMapPane_NewFlightCancelsRunning(t *testing.T) {
	p, _, sched := newTestMap()
	first := model.LatLng{Lat: 10, Lng: 10}
	second := model.LatLng{Lat: 40.0, Lng: 116.5}

	p.FlyTo(first, 15, surface.FlyOptions{Duration: time.Second})
	sched.Advance(100 * time.Millisecond)
	p.FlyTo(second, 14, surface.FlyOptions{Duration: 200 * time.Millisecond})
	sched.Advance(5 * time.Second)

	assert.Equal(t, second, p.Center())
	assert.Equal(t, 14.0, p.Zoom())
}

func TestMapPane_ZeroDurationJumps(t *testing.T) {
	p, _, sched := newTestMap()
	p.FlyTo(model.LatLng{Lat: 1, Lng: 2}, 30, surface.FlyOptions{})
	assert.False(t, p.Flying())
	assert.Equal(t, model.LatLng{Lat: 1, Lng: 2}, p.Center())
	assert.Equal(t, MapMaxZoom, p.Zoom(), "zoom is clamped")
	assert.Equal(t, 0, sched.Pending())
}

func TestMapPane_ZoomAndPan(t *testing.T) {
	p, _, _ := newTestMap()
	p.ZoomBy(1)
	assert.Equal(t, 14.0, p.Zoom())
	p.ZoomBy(-100)
	assert.Equal(t, MapMinZoom, p.Zoom())

	p.SetView(beijing, 13)
	p.Pan(10, 0)
	assert.Greater(t, p.Center().Lng, beijing.Lng)
	assert.InDelta(t, beijing.Lat, p.Center().Lat, 1e-9)
	p.Pan(0, 5)
	assert.Less(t, p.Center().Lat, beijing.Lat, "panning down moves south")
}

// ---------- markers ----------

func TestMapPane_MarkersMountAndUnmount(t *testing.T) {
	p, reg, _ := newTestMap()
	assert.Equal(t, 2, reg.Len())

	h, ok := reg.Lookup("2")
	require.True(t, ok)
	m, _ := p.Marker("2")
	assert.Same(t, m, h)

	p.SetScene(mapNodes[:1], nil, nil)
	_, ok = reg.Lookup("2")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())

	p.SetScene(mapNodes, nil, nil)
	again, ok := reg.Lookup("2")
	require.True(t, ok)
	assert.NotSame(t, h, again, "a remounted node gets a fresh marker")

	p.Close()
	assert.Equal(t, 0, reg.Len())
}

func TestMapPane_SurvivingMarkerKeepsState(t *testing.T) {
	p, reg, _ := newTestMap()
	h, _ := reg.Lookup("1")
	h.SetZIndexOffset(1000)
	h.OpenPopup()

	p.SetScene(append([]model.Node(nil), mapNodes...), nil, nil)
	again, _ := reg.Lookup("1")
	assert.Same(t, h, again)
	id, open := p.Popup()
	assert.True(t, open)
	assert.Equal(t, model.NodeID("1"), id)
}

func TestMapPane_OnePopupAtATime(t *testing.T) {
	p, reg, _ := newTestMap()
	a, _ := reg.Lookup("1")
	b, _ := reg.Lookup("2")

	a.OpenPopup()
	b.OpenPopup()
	id, open := p.Popup()
	assert.True(t, open)
	assert.Equal(t, model.NodeID("2"), id)

	p.SetScene(mapNodes[:1], nil, nil)
	_, open = p.Popup()
	assert.False(t, open, "removing the node closes its popup")

	b.OpenPopup()
	_, open = p.Popup()
	assert.False(t, open, "an unmounted marker cannot open a popup")
}

func TestMapPane_ZOrder(t *testing.T) {
	p, reg, _ := newTestMap()
	stacked := []model.Node{
		{ID: "a", Name: "A", Position: beijing, Type: model.TypeUAV},
		{ID: "b", Name: "B", Position: beijing, Type: model.TypeSatellite},
	}
	p.SetScene(stacked, nil, nil)

	col, row, ok := p.MarkerCell("a")
	require.True(t, ok)
	top, _ := p.MarkerAt(col, row)
	assert.Equal(t, model.NodeID("b"), top, "later nodes draw on top at equal offset")

	h, _ := reg.Lookup("a")
	h.SetZIndexOffset(1000)
	top, _ = p.MarkerAt(col, row)
	assert.Equal(t, model.NodeID("a"), top)
}

// ---------- rendering ----------

func TestMapPane_StringShowsMarkersAndPopup(t *testing.T) {
	p, reg, _ := newTestMap()
	out := ansi.Strip(p.String())
	assert.Contains(t, out, "▲")
	assert.Contains(t, out, "✈")
	assert.Contains(t, out, "z13.0")
	assert.NotContains(t, out, "Backbone A")

	h, _ := reg.Lookup("1")
	h.OpenPopup()
	out = ansi.Strip(p.String())
	assert.Contains(t, out, "Backbone A")
	assert.Contains(t, out, "ground station")
	assert.Contains(t, out, "backbone")
	assert.Contains(t, out, beijing.String())
}

func TestMapPane_FarLinksAreClipped(t *testing.T) {
	p, _, _ := newTestMap()
	p.SetView(beijing, MapMaxZoom)
	p.SetScene(mapNodes, []model.Link{{From: model.LatLng{Lat: -60, Lng: -170}, To: model.LatLng{Lat: 60, Lng: 170}}}, nil)
	assert.NotPanics(t, func() { _ = p.String() })
}

func TestClipSegment(t *testing.T) {
	ax, ay, bx, by, ok := clipSegment(-10, 5, 20, 5, 0, 0, 9, 9)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 5, 9, 5}, []float64{ax, ay, bx, by})

	_, _, _, _, ok = clipSegment(-10, -10, -1, -1, 0, 0, 9, 9)
	assert.False(t, ok)
}

func TestBresenham(t *testing.T) {
	var pts [][2]int
	bresenham(0, 0, 3, 1, func(x, y int) { pts = append(pts, [2]int{x, y}) })
	assert.Equal(t, [][2]int{{0, 0}, {1, 0}, {2, 1}, {3, 1}}, pts)
}

func TestProjectionRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pos := model.LatLng{
			Lat: rapid.Float64Range(-85, 85).Draw(t, "lat"),
			Lng: rapid.Float64Range(-179.9, 179.9).Draw(t, "lng"),
		}
		zoom := rapid.Float64Range(MapMinZoom, MapMaxZoom).Draw(t, "zoom")
		x, y := project(pos, zoom)
		back := unproject(x, y, zoom)
		if math.Abs(back.Lat-pos.Lat) > 1e-6 || math.Abs(back.Lng-pos.Lng) > 1e-6 {
			t.Fatalf("round trip %v -> %v", pos, back)
		}
	})
}

func TestGraticuleStepShrinksWithZoom(t *testing.T) {
	assert.Greater(t, graticuleStep(3), graticuleStep(13))
	assert.GreaterOrEqual(t, graticuleStep(13)/(360/worldSize(13)*mapCellPxW), 16.0)
}
