package ui

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/schedule"
	"github.com/aerogrid/netmap/surface"
	"github.com/aerogrid/netmap/ui/overlay"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Web Mercator in character cells: a cell covers 8×16 world pixels and the
// world is 256·2^zoom pixels wide.
const (
	mapTileSize = 256.0
	mapCellPxW  = 8.0
	mapCellPxH  = 16.0

	MapMinZoom = 1.0
	MapMaxZoom = 22.0

	maxMercatorLat = 85.05112878
)

// Marker is the on-map marker of one node. It is the surface.MarkerHandle
// the pane registers while the node is part of the scene.
type Marker struct {
	pane    *MapPane
	node    model.Node
	order   int
	zOffset int
}

// OpenPopup opens this marker's popup, closing any other.
func (m *Marker) OpenPopup() {
	if m.pane.markers[m.node.ID] != m {
		return
	}
	m.pane.popup, m.pane.hasPopup = m.node.ID, true
}

func (m *Marker) SetZIndexOffset(offset int) { m.zOffset = offset }
func (m *Marker) ZIndexOffset() int          { return m.zOffset }
func (m *Marker) Node() model.Node           { return m.node }

type flight struct {
	fromCenter, toCenter model.LatLng
	fromZoom, toZoom     float64
	duration             time.Duration
	elapsed              time.Duration
	easing               surface.Easing
	timer                schedule.Timer
}

// MapPane is the terminal map: a graticule, link lines and node markers on
// a Web Mercator projection. It implements surface.MapSurface.
type MapPane struct {
	sched    schedule.Scheduler
	frame    time.Duration
	registry *surface.Registry

	center model.LatLng
	zoom   float64

	nodes    []model.Node
	links    []model.Link
	typeMeta model.TypeMetaTable
	markers  map[model.NodeID]*Marker

	popup    model.NodeID
	hasPopup bool

	flight *flight

	width, height int
	focused       bool
}

var _ surface.MapSurface = (*MapPane)(nil)

func NewMapPane(sched schedule.Scheduler, frame time.Duration, registry *surface.Registry) *MapPane {
	if frame <= 0 {
		frame = schedule.DefaultFrame
	}
	return &MapPane{
		sched:    sched,
		frame:    frame,
		registry: registry,
		zoom:     MapMinZoom,
		typeMeta: model.DefaultTypeMeta(),
		markers:  make(map[model.NodeID]*Marker),
	}
}

// SetView moves the viewport without animation.
func (p *MapPane) SetView(center model.LatLng, zoom float64) {
	p.stopFlight()
	p.center = center
	p.zoom = clampZoom(zoom)
}

func (p *MapPane) Center() model.LatLng { return p.center }
func (p *MapPane) Zoom() float64        { return p.zoom }

// CurrentZoom reports the zoom once the pane has been laid out.
func (p *MapPane) CurrentZoom() (float64, bool) {
	return p.zoom, p.width > 0 && p.height > 0
}

// FlyTo animates center and zoom over opts.Duration on scheduler frames. A
// running flight is cancelled first.
func (p *MapPane) FlyTo(pos model.LatLng, zoom float64, opts surface.FlyOptions) {
	p.stopFlight()
	zoom = clampZoom(zoom)
	if opts.Duration <= 0 {
		p.center, p.zoom = pos, zoom
		return
	}
	f := &flight{
		fromCenter: p.center,
		toCenter:   pos,
		fromZoom:   p.zoom,
		toZoom:     zoom,
		duration:   opts.Duration,
		easing:     opts.Easing,
	}
	p.flight = f
	f.timer = p.sched.NextFrame(func() { p.stepFlight(f) })
}

func (p *MapPane) stepFlight(f *flight) {
	if p.flight != f {
		return
	}
	f.elapsed += p.frame
	t := float64(f.elapsed) / float64(f.duration)
	if t >= 1 {
		p.center, p.zoom = f.toCenter, f.toZoom
		p.flight = nil
		return
	}
	e := f.easing.Apply(t)
	p.center = model.LatLng{
		Lat: lerp(f.fromCenter.Lat, f.toCenter.Lat, e),
		Lng: lerp(f.fromCenter.Lng, f.toCenter.Lng, e),
	}
	p.zoom = lerp(f.fromZoom, f.toZoom, e)
	f.timer = p.sched.NextFrame(func() { p.stepFlight(f) })
}

func (p *MapPane) stopFlight() {
	if p.flight == nil {
		return
	}
	if p.flight.timer != nil {
		p.flight.timer.Stop()
	}
	p.flight = nil
}

// Flying reports whether a FlyTo animation is running.
func (p *MapPane) Flying() bool { return p.flight != nil }

// ZoomBy changes the zoom by delta, cancelling any flight.
func (p *MapPane) ZoomBy(delta float64) {
	p.stopFlight()
	p.zoom = clampZoom(math.Round(p.zoom) + delta)
}

// Pan shifts the center by dx columns and dy rows.
func (p *MapPane) Pan(dx, dy int) {
	p.stopFlight()
	x, y := project(p.center, p.zoom)
	x += float64(dx) * mapCellPxW
	y += float64(dy) * mapCellPxH
	y = math.Max(0, math.Min(worldSize(p.zoom), y))
	p.center = unproject(x, y, p.zoom)
}

// SetScene replaces the nodes and links. Markers of departed nodes are
// unregistered before markers of new nodes are registered; surviving nodes
// keep their marker, z-offset and popup.
func (p *MapPane) SetScene(nodes []model.Node, links []model.Link, typeMeta model.TypeMetaTable) {
	p.nodes = nodes
	p.links = links
	if typeMeta != nil {
		p.typeMeta = typeMeta
	}

	present := make(map[model.NodeID]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	for id, m := range p.markers {
		if present[id] {
			continue
		}
		p.registry.Unregister(id, m)
		delete(p.markers, id)
		if p.hasPopup && p.popup == id {
			p.ClosePopup()
		}
	}
	for i, n := range nodes {
		if m, ok := p.markers[n.ID]; ok {
			m.node, m.order = n, i
			continue
		}
		m := &Marker{pane: p, node: n, order: i}
		p.markers[n.ID] = m
		p.registry.Register(n.ID, m)
	}
}

// Close cancels the flight and unmounts every marker.
func (p *MapPane) Close() {
	p.stopFlight()
	for id, m := range p.markers {
		p.registry.Unregister(id, m)
		delete(p.markers, id)
	}
	p.ClosePopup()
}

func (p *MapPane) Marker(id model.NodeID) (*Marker, bool) {
	m, ok := p.markers[id]
	return m, ok
}

func (p *MapPane) Popup() (model.NodeID, bool) { return p.popup, p.hasPopup }

func (p *MapPane) ClosePopup() {
	p.popup, p.hasPopup = "", false
}

func (p *MapPane) SetSize(width, height int) { p.width, p.height = width, height }
func (p *MapPane) SetFocused(focused bool)   { p.focused = focused }
func (p *MapPane) IsFocused() bool           { return p.focused }

// -- projection --

func worldSize(zoom float64) float64 {
	return mapTileSize * math.Exp2(zoom)
}

func project(pos model.LatLng, zoom float64) (x, y float64) {
	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, pos.Lat))
	s := math.Sin(lat * math.Pi / 180)
	w := worldSize(zoom)
	x = (pos.Lng + 180) / 360 * w
	y = (0.5 - math.Log((1+s)/(1-s))/(4*math.Pi)) * w
	return x, y
}

func unproject(x, y, zoom float64) model.LatLng {
	w := worldSize(zoom)
	n := math.Pi - 2*math.Pi*y/w
	return model.LatLng{
		Lat: 180 / math.Pi * math.Atan(math.Sinh(n)),
		Lng: wrapLng(x/w*360 - 180),
	}
}

func wrapLng(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func clampZoom(z float64) float64 {
	return math.Max(MapMinZoom, math.Min(MapMaxZoom, z))
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func (p *MapPane) innerSize() (int, int) {
	return max(p.width-2, 1), max(p.height-2, 1)
}

// toCell maps pos to fractional inner-cell coordinates.
func (p *MapPane) toCell(pos model.LatLng) (float64, float64) {
	iw, ih := p.innerSize()
	cx, cy := project(p.center, p.zoom)
	x, y := project(pos, p.zoom)
	return (x-cx)/mapCellPxW + float64(iw)/2, (y-cy)/mapCellPxH + float64(ih)/2
}

// MarkerCell returns the inner cell a node's marker is drawn in.
func (p *MapPane) MarkerCell(id model.NodeID) (col, row int, ok bool) {
	m, found := p.markers[id]
	if !found {
		return 0, 0, false
	}
	x, y := p.toCell(m.node.Position)
	col, row = int(math.Floor(x)), int(math.Floor(y))
	iw, ih := p.innerSize()
	return col, row, col >= 0 && col < iw && row >= 0 && row < ih
}

// drawOrder returns the markers bottom to top.
func (p *MapPane) drawOrder() []*Marker {
	out := make([]*Marker, 0, len(p.markers))
	for _, m := range p.markers {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].zOffset != out[j].zOffset {
			return out[i].zOffset < out[j].zOffset
		}
		return out[i].order < out[j].order
	})
	return out
}

// MarkerAt returns the topmost marker drawn at the inner cell.
func (p *MapPane) MarkerAt(col, row int) (model.NodeID, bool) {
	order := p.drawOrder()
	for i := len(order) - 1; i >= 0; i-- {
		c, r, ok := p.MarkerCell(order[i].node.ID)
		if ok && c == col && r == row {
			return order[i].node.ID, true
		}
	}
	return "", false
}

// HandleClick resolves a click on the pane to the marker under it.
func (p *MapPane) HandleClick(msg tea.MouseMsg) (model.NodeID, bool) {
	x, y := zone.Get(ZoneMapPane).Pos(msg)
	if x < 0 || y < 0 {
		return "", false
	}
	return p.MarkerAt(x-1, y-1)
}

// -- rendering --

type mapCell struct {
	ch    string
	color lipgloss.Color
	bold  bool
}

type canvas struct {
	w, h  int
	cells [][]mapCell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]mapCell, h)}
	for r := range c.cells {
		row := make([]mapCell, w)
		for i := range row {
			row[i] = mapCell{ch: " "}
		}
		c.cells[r] = row
	}
	return c
}

func (c *canvas) set(col, row int, cell mapCell) {
	if col < 0 || row < 0 || col >= c.w || row >= c.h {
		return
	}
	c.cells[row][col] = cell
}

func (c *canvas) text(col, row int, s string, color lipgloss.Color) {
	for _, r := range s {
		c.set(col, row, mapCell{ch: string(r), color: color})
		col++
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for r, row := range c.cells {
		var b strings.Builder
		i := 0
		for i < len(row) {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].color == row[i].color && row[j].bold == row[i].bold {
				run.WriteString(row[j].ch)
				j++
			}
			if row[i].color == "" {
				b.WriteString(run.String())
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(row[i].color).Bold(row[i].bold).Render(run.String()))
			}
			i = j
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

var graticuleSteps = []float64{45, 30, 15, 10, 5, 2, 1, 0.5, 0.2, 0.1, 0.05, 0.02, 0.01, 0.005, 0.002, 0.001, 0.0005, 0.0002, 0.0001}

// graticuleStep picks the finest step whose lines stay at least 16 columns apart.
func graticuleStep(zoom float64) float64 {
	degPerCol := 360 / worldSize(zoom) * mapCellPxW
	step := graticuleSteps[0]
	for _, s := range graticuleSteps {
		if s/degPerCol < 16 {
			break
		}
		step = s
	}
	return step
}

func (p *MapPane) drawGraticule(c *canvas) {
	step := graticuleStep(p.zoom)
	w := worldSize(p.zoom)
	cx, cy := project(p.center, p.zoom)
	lngAt := func(col int) float64 {
		return (cx+(float64(col)-float64(c.w)/2)*mapCellPxW)/w*360 - 180
	}
	latAt := func(row int) float64 {
		return unproject(cx, cy+(float64(row)-float64(c.h)/2)*mapCellPxH, p.zoom).Lat
	}

	vertical := make([]bool, c.w)
	for col := 0; col < c.w; col++ {
		vertical[col] = math.Floor(lngAt(col)/step) != math.Floor(lngAt(col+1)/step)
	}
	for row := 0; row < c.h; row++ {
		horizontal := math.Floor(latAt(row)/step) != math.Floor(latAt(row+1)/step)
		for col := 0; col < c.w; col++ {
			switch {
			case horizontal && vertical[col]:
				c.set(col, row, mapCell{ch: "┼", color: ColorOverlay})
			case horizontal:
				c.set(col, row, mapCell{ch: "┈", color: ColorOverlay})
			case vertical[col]:
				c.set(col, row, mapCell{ch: "┊", color: ColorOverlay})
			}
		}
	}
}

func (p *MapPane) drawLinks(c *canvas) {
	for _, l := range p.links {
		x0, y0 := p.toCell(l.From)
		x1, y1 := p.toCell(l.To)
		ax, ay, bx, by, ok := clipSegment(x0, y0, x1, y1, 0, 0, float64(c.w-1), float64(c.h-1))
		if !ok {
			continue
		}
		bresenham(int(math.Floor(ax)), int(math.Floor(ay)), int(math.Floor(bx)), int(math.Floor(by)), func(col, row int) {
			c.set(col, row, mapCell{ch: "·", color: ColorPine})
		})
	}
}

func (p *MapPane) drawMarkers(c *canvas) {
	for _, m := range p.drawOrder() {
		col, row, ok := p.MarkerCell(m.node.ID)
		if !ok {
			continue
		}
		meta := p.typeMeta.Resolve(m.node.Type)
		c.set(col, row, mapCell{
			ch:    meta.Icon,
			color: lipgloss.Color(meta.Color),
			bold:  m.zOffset > 0 || (p.hasPopup && p.popup == m.node.ID),
		})
	}
}

var (
	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorIris).
			Padding(0, 1)
	popupNameStyle  = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	popupLabelStyle = lipgloss.NewStyle().Foreground(ColorSubtle)
)

func layerLabel(key string) string {
	if meta, ok := grouping.LayerMeta[key]; ok {
		return meta.Label
	}
	if key == "" {
		return "unknown layer"
	}
	return key
}

func (p *MapPane) renderPopup(node model.Node) string {
	meta := p.typeMeta.Resolve(node.Type)
	body := lipgloss.JoinVertical(lipgloss.Left,
		popupNameStyle.Render(node.Name),
		popupLabelStyle.Render("type  ")+lipgloss.NewStyle().Foreground(lipgloss.Color(meta.Color)).Render(meta.Label),
		popupLabelStyle.Render("layer ")+layerLabel(node.Layer),
		popupLabelStyle.Render("at    ")+node.Position.String(),
	)
	return popupStyle.Render(body)
}

func (p *MapPane) String() string {
	iw, ih := p.innerSize()
	c := newCanvas(iw, ih)
	p.drawGraticule(c)
	p.drawLinks(c)
	p.drawMarkers(c)
	c.text(0, 0, fmt.Sprintf("z%.1f", p.zoom), ColorMuted)

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorOverlay)
	if p.focused {
		border = border.BorderForeground(ColorIris)
	}
	out := border.Render(c.String())

	if p.hasPopup {
		if m, ok := p.markers[p.popup]; ok {
			if col, row, visible := p.MarkerCell(p.popup); visible {
				box := p.renderPopup(m.node)
				bw, bh := lipgloss.Width(box), lipgloss.Height(box)
				x := col + 1 - bw/2
				y := row + 1 - bh
				if y < 0 {
					y = row + 2
				}
				x = max(0, min(x, p.width-bw))
				out = overlay.PlaceOverlay(x, y, box, out, false, false)
			}
		}
	}
	return zone.Mark(ZoneMapPane, out)
}

// -- line drawing --

const (
	outInside = 0
	outLeft   = 1
	outRight  = 2
	outBottom = 4
	outTop    = 8
)

func outcode(x, y, xmin, ymin, xmax, ymax float64) int {
	code := outInside
	switch {
	case x < xmin:
		code |= outLeft
	case x > xmax:
		code |= outRight
	}
	switch {
	case y < ymin:
		code |= outTop
	case y > ymax:
		code |= outBottom
	}
	return code
}

// clipSegment clips a segment to the rectangle (Cohen-Sutherland).
func clipSegment(x0, y0, x1, y1, xmin, ymin, xmax, ymax float64) (float64, float64, float64, float64, bool) {
	c0 := outcode(x0, y0, xmin, ymin, xmax, ymax)
	c1 := outcode(x1, y1, xmin, ymin, xmax, ymax)
	for {
		switch {
		case c0|c1 == 0:
			return x0, y0, x1, y1, true
		case c0&c1 != 0:
			return 0, 0, 0, 0, false
		}
		out := c0
		if out == 0 {
			out = c1
		}
		var x, y float64
		switch {
		case out&outBottom != 0:
			x = x0 + (x1-x0)*(ymax-y0)/(y1-y0)
			y = ymax
		case out&outTop != 0:
			x = x0 + (x1-x0)*(ymin-y0)/(y1-y0)
			y = ymin
		case out&outRight != 0:
			y = y0 + (y1-y0)*(xmax-x0)/(x1-x0)
			x = xmax
		default:
			y = y0 + (y1-y0)*(xmin-x0)/(x1-x0)
			x = xmin
		}
		if out == c0 {
			x0, y0 = x, y
			c0 = outcode(x0, y0, xmin, ymin, xmax, ymax)
		} else {
			x1, y1 = x, y
			c1 = outcode(x1, y1, xmin, ymin, xmax, ymax)
		}
	}
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
