package ui

import (
	"strconv"
	"strings"

	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/schedule"
	"github.com/aerogrid/netmap/ui/anim"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"
)

// RailWidth is the width of the collapsed sidebar.
const RailWidth = 5

// NodeListOptions configures a NodeListPanel.
type NodeListOptions struct {
	// Controlled hands the sidebar's collapsed flag to the caller. Toggling
	// then only calls OnToggle; the caller pushes the new value back with
	// SetCollapsed. Whether the panel is controlled is fixed at construction.
	Controlled *bool
	// DefaultCollapsed is the starting value of an uncontrolled panel.
	DefaultCollapsed bool
	OnToggle         func(collapsed bool)
	OnSelect   func(id model.NodeID)

	OnGroupToggle func(mode grouping.Mode, key string, collapsed bool)
	OnModeChange  func(mode grouping.Mode)

	Mode grouping.Mode
	Anim anim.Config
}

type listRowKind int

const (
	listRowHeader listRowKind = iota
	listRowNode
)

type listRow struct {
	Kind      listRowKind
	GroupKey  string
	Label     string
	Color     string
	Count     int
	Collapsed bool
	Faded     bool
	Node      model.Node
}

func (r listRow) id() string {
	if r.Kind == listRowHeader {
		return "g:" + r.GroupKey
	}
	return "n:" + r.GroupKey + "/" + string(r.Node.ID)
}

type animKey struct {
	mode grouping.Mode
	key  string
}

// NodeListPanel is the grouped, collapsible node list in the sidebar.
type NodeListPanel struct {
	opts  NodeListOptions
	sched schedule.Scheduler

	controlled bool
	collapsed  bool

	mode      grouping.Mode
	store     *grouping.CollapseStore
	animators map[animKey]*anim.Collapse

	nodes    []model.Node
	filtered []model.Node
	typeMeta model.TypeMetaTable
	groups   []grouping.Group

	cursor       string
	scrollOffset int

	selected    model.NodeID
	hasSelected bool

	search       textinput.Model
	searchActive bool
	query        string

	width, height int
	focused       bool
}

func NewNodeListPanel(sched schedule.Scheduler, opts NodeListOptions) *NodeListPanel {
	if _, ok := grouping.ParseMode(string(opts.Mode)); !ok {
		opts.Mode = grouping.Modes[0].Mode
	}
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter nodes"
	ti.CharLimit = 64

	n := &NodeListPanel{
		opts:      opts,
		sched:     sched,
		mode:      opts.Mode,
		store:     grouping.NewCollapseStore(),
		animators: make(map[animKey]*anim.Collapse),
		typeMeta:  model.DefaultTypeMeta(),
		search:    ti,
		focused:   true,
	}
	if opts.Controlled != nil {
		n.controlled = true
		n.collapsed = *opts.Controlled
	} else {
		n.collapsed = opts.DefaultCollapsed
	}
	return n
}

// SetNodes replaces the node collection and reclassifies.
func (n *NodeListPanel) SetNodes(nodes []model.Node, typeMeta model.TypeMetaTable) {
	n.nodes = nodes
	if typeMeta != nil {
		n.typeMeta = typeMeta
	}
	n.refilter()
	n.reclassify()
}

func (n *NodeListPanel) Nodes() []model.Node         { return n.nodes }
func (n *NodeListPanel) Groups() []grouping.Group     { return n.groups }
func (n *NodeListPanel) TypeMeta() model.TypeMetaTable { return n.typeMeta }

func (n *NodeListPanel) refilter() {
	q := strings.ToLower(strings.TrimSpace(n.query))
	if q == "" {
		n.filtered = n.nodes
		return
	}
	filtered := make([]model.Node, 0, len(n.nodes))
	for _, node := range n.nodes {
		if node.Matches(q) {
			filtered = append(filtered, node)
		}
	}
	n.filtered = filtered
}

func (n *NodeListPanel) reclassify() {
	n.groups = grouping.Classify(n.filtered, n.mode, n.typeMeta)
	n.syncAnimators()
	n.clampScroll()
}

// syncAnimators feeds every visible group's open flag and child count to its
// animator and stops the animators of groups that are no longer shown.
func (n *NodeListPanel) syncAnimators() {
	live := make(map[animKey]bool, len(n.groups))
	for _, g := range n.groups {
		k := animKey{mode: n.mode, key: g.Key}
		live[k] = true
		a, ok := n.animators[k]
		if !ok {
			a = anim.NewCollapse(n.sched, n.opts.Anim)
			n.animators[k] = a
		}
		count := len(g.Nodes)
		a.Sync(!n.store.IsCollapsed(n.mode, g.Key), count, func() int { return count })
	}
	for k, a := range n.animators {
		if !live[k] {
			a.Stop()
			delete(n.animators, k)
		}
	}
}

// Close stops every group animation.
func (n *NodeListPanel) Close() {
	for k, a := range n.animators {
		a.Stop()
		delete(n.animators, k)
	}
}

// -- grouping mode --

func (n *NodeListPanel) Mode() grouping.Mode { return n.mode }

// SetMode switches the grouping mode without notifying OnModeChange.
func (n *NodeListPanel) SetMode(mode grouping.Mode) {
	if mode == n.mode {
		return
	}
	n.mode = mode
	n.reclassify()
}

// CycleGroupMode moves to the next grouping mode.
func (n *NodeListPanel) CycleGroupMode() {
	n.SetMode(grouping.Next(n.mode))
	if n.opts.OnModeChange != nil {
		n.opts.OnModeChange(n.mode)
	}
}

// -- sidebar collapse --

func (n *NodeListPanel) IsControlled() bool { return n.controlled }
func (n *NodeListPanel) Collapsed() bool    { return n.collapsed }

// SetCollapsed pushes the caller-owned value into a controlled panel. It has
// no effect on an uncontrolled one.
func (n *NodeListPanel) SetCollapsed(collapsed bool) {
	if n.controlled {
		n.collapsed = collapsed
	}
}

// ToggleSidebar requests the opposite collapsed value.
func (n *NodeListPanel) ToggleSidebar() {
	next := !n.collapsed
	if !n.controlled {
		n.collapsed = next
	}
	if n.opts.OnToggle != nil {
		n.opts.OnToggle(next)
	}
}

// Width is the number of columns the panel occupies at its current state.
func (n *NodeListPanel) Width(expanded int) int {
	if n.collapsed {
		return RailWidth
	}
	return expanded
}

// -- groups --

// ToggleGroup flips the collapse flag of key under the current mode.
func (n *NodeListPanel) ToggleGroup(key string) bool {
	collapsed := n.store.Toggle(n.mode, key)
	n.syncAnimators()
	n.clampScroll()
	if n.opts.OnGroupToggle != nil {
		n.opts.OnGroupToggle(n.mode, key, collapsed)
	}
	return collapsed
}

func (n *NodeListPanel) IsGroupCollapsed(key string) bool {
	return n.store.IsCollapsed(n.mode, key)
}

// -- rows and cursor --

func (n *NodeListPanel) rows() []listRow {
	rows := make([]listRow, 0, len(n.filtered)+len(n.groups))
	for _, g := range n.groups {
		collapsed := n.store.IsCollapsed(n.mode, g.Key)
		rows = append(rows, listRow{
			Kind:      listRowHeader,
			GroupKey:  g.Key,
			Label:     g.Label,
			Color:     g.Color,
			Count:     len(g.Nodes),
			Collapsed: collapsed,
		})
		shown := len(g.Nodes)
		faded := false
		if a, ok := n.animators[animKey{mode: n.mode, key: g.Key}]; ok {
			shown = a.Height()
			faded = a.Opacity() == 0
		}
		for _, node := range g.Nodes[:min(shown, len(g.Nodes))] {
			meta := n.typeMeta.Resolve(node.Type)
			rows = append(rows, listRow{
				Kind:     listRowNode,
				GroupKey: g.Key,
				Label:    node.Name,
				Color:    meta.Color,
				Faded:    faded,
				Node:     node,
			})
		}
	}
	return rows
}

// locate returns the cursor's index in rows. A cursor on a node whose group
// has folded away falls back to the group header, anything else to the top.
func (n *NodeListPanel) locate(rows []listRow) int {
	if len(rows) == 0 {
		return -1
	}
	for i, r := range rows {
		if r.id() == n.cursor {
			return i
		}
	}
	if strings.HasPrefix(n.cursor, "n:") {
		key, _, _ := strings.Cut(strings.TrimPrefix(n.cursor, "n:"), "/")
		for i, r := range rows {
			if r.Kind == listRowHeader && r.GroupKey == key {
				n.cursor = r.id()
				return i
			}
		}
	}
	n.cursor = rows[0].id()
	return 0
}

func (n *NodeListPanel) moveTo(rows []listRow, idx int) {
	if idx < 0 || idx >= len(rows) {
		return
	}
	n.cursor = rows[idx].id()
	n.clampScroll()
}

func (n *NodeListPanel) Up() {
	rows := n.rows()
	if idx := n.locate(rows); idx > 0 {
		n.moveTo(rows, idx-1)
	}
}

func (n *NodeListPanel) Down() {
	rows := n.rows()
	if idx := n.locate(rows); idx >= 0 && idx+1 < len(rows) {
		n.moveTo(rows, idx+1)
	}
}

// Left collapses an expanded header, or jumps from a node to its header.
func (n *NodeListPanel) Left() {
	rows := n.rows()
	idx := n.locate(rows)
	if idx < 0 {
		return
	}
	row := rows[idx]
	switch row.Kind {
	case listRowHeader:
		if !row.Collapsed {
			n.ToggleGroup(row.GroupKey)
		}
	case listRowNode:
		for i := idx - 1; i >= 0; i-- {
			if rows[i].Kind == listRowHeader {
				n.moveTo(rows, i)
				return
			}
		}
	}
}

// Right expands a collapsed header, or steps into an expanded one.
func (n *NodeListPanel) Right() {
	rows := n.rows()
	idx := n.locate(rows)
	if idx < 0 || rows[idx].Kind != listRowHeader {
		return
	}
	if rows[idx].Collapsed {
		n.ToggleGroup(rows[idx].GroupKey)
		return
	}
	n.Down()
}

// Activate toggles the header under the cursor or selects the node under it.
func (n *NodeListPanel) Activate() {
	rows := n.rows()
	idx := n.locate(rows)
	if idx < 0 {
		return
	}
	n.activateRow(rows[idx])
}

// ToggleSelectedExpand toggles the group under the cursor; on a node row it
// toggles the node's group.
func (n *NodeListPanel) ToggleSelectedExpand() bool {
	rows := n.rows()
	idx := n.locate(rows)
	if idx < 0 {
		return false
	}
	n.ToggleGroup(rows[idx].GroupKey)
	return true
}

func (n *NodeListPanel) activateRow(row listRow) {
	n.cursor = row.id()
	switch row.Kind {
	case listRowHeader:
		n.ToggleGroup(row.GroupKey)
	case listRowNode:
		if n.opts.OnSelect != nil {
			n.opts.OnSelect(row.Node.ID)
		}
	}
	n.clampScroll()
}

// SelectedSpaceAction is the label of the space key for the row under the cursor.
func (n *NodeListPanel) SelectedSpaceAction() string {
	rows := n.rows()
	idx := n.locate(rows)
	if idx < 0 {
		return "toggle"
	}
	if n.store.IsCollapsed(n.mode, rows[idx].GroupKey) {
		return "expand"
	}
	return "collapse"
}

// SetSelected mirrors the selection into the list and moves the cursor onto
// the selected node's row when it is visible.
func (n *NodeListPanel) SetSelected(id model.NodeID, ok bool) {
	n.selected, n.hasSelected = id, ok
	if !ok {
		return
	}
	rows := n.rows()
	for i, r := range rows {
		if r.Kind == listRowNode && r.Node.ID == id {
			n.moveTo(rows, i)
			return
		}
	}
}

// SelectedNode resolves the mirrored selection against the full collection.
func (n *NodeListPanel) SelectedNode() (model.Node, bool) {
	if !n.hasSelected {
		return model.Node{}, false
	}
	return model.FindNode(n.nodes, n.selected)
}

// RailTitle describes the selected node for the collapsed rail.
func (n *NodeListPanel) RailTitle() string {
	node, ok := n.SelectedNode()
	if !ok {
		return "no node selected"
	}
	return node.Name + " - " + n.typeMeta.Resolve(node.Type).Label
}

// -- search --

func (n *NodeListPanel) ActivateSearch() tea.Cmd {
	n.searchActive = true
	n.search.SetValue(n.query)
	n.search.CursorEnd()
	return n.search.Focus()
}

// CommitSearch leaves the input but keeps the filter applied.
func (n *NodeListPanel) CommitSearch() {
	n.searchActive = false
	n.search.Blur()
}

// CancelSearch leaves the input and drops the filter.
func (n *NodeListPanel) CancelSearch() {
	n.searchActive = false
	n.search.Blur()
	n.SetSearchQuery("")
}

func (n *NodeListPanel) IsSearchActive() bool   { return n.searchActive }
func (n *NodeListPanel) GetSearchQuery() string { return n.query }

func (n *NodeListPanel) SetSearchQuery(q string) {
	if q == n.query {
		return
	}
	n.query = q
	n.search.SetValue(q)
	n.refilter()
	n.reclassify()
}

// UpdateSearch forwards msg to the search input and refilters on change.
func (n *NodeListPanel) UpdateSearch(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	n.search, cmd = n.search.Update(msg)
	if v := n.search.Value(); v != n.query {
		n.query = v
		n.refilter()
		n.reclassify()
	}
	return cmd
}

// -- mouse --

// HandleClick dispatches a left click inside the panel. It reports whether
// the click hit anything.
func (n *NodeListPanel) HandleClick(msg tea.MouseMsg) bool {
	if zone.Get(ZoneSidebarToggle).InBounds(msg) {
		n.ToggleSidebar()
		return true
	}
	if zone.Get(ZoneGroupMode).InBounds(msg) {
		n.CycleGroupMode()
		return true
	}
	if n.collapsed {
		return false
	}
	for _, row := range n.visibleRows(n.rows()) {
		if zone.Get(rowZoneID(row)).InBounds(msg) {
			n.activateRow(row)
			return true
		}
	}
	return false
}

// ScrollUp and ScrollDown move the viewport without moving the cursor.
func (n *NodeListPanel) ScrollUp() {
	if n.scrollOffset > 0 {
		n.scrollOffset--
	}
}

func (n *NodeListPanel) ScrollDown() {
	if n.scrollOffset+n.availRows() < len(n.rows()) {
		n.scrollOffset++
	}
}

func rowZoneID(row listRow) string {
	if row.Kind == listRowHeader {
		return GroupHeaderZoneID(row.GroupKey)
	}
	return NodeRowZoneID(row.Node.ID)
}

// -- layout --

func (n *NodeListPanel) SetSize(width, height int) {
	n.width, n.height = width, height
	n.search.Width = max(width-12, 4)
	n.clampScroll()
}
func (n *NodeListPanel) SetFocused(focused bool) { n.focused = focused }
func (n *NodeListPanel) IsFocused() bool         { return n.focused }

func (n *NodeListPanel) availRows() int {
	avail := n.height - 8
	if avail < 1 {
		return 1
	}
	return avail
}

func (n *NodeListPanel) clampScroll() {
	rows := n.rows()
	if len(rows) == 0 {
		n.scrollOffset = 0
		return
	}
	idx := n.locate(rows)
	avail := n.availRows()
	if idx < n.scrollOffset {
		n.scrollOffset = idx
	}
	if idx >= n.scrollOffset+avail {
		n.scrollOffset = idx - avail + 1
	}
	if n.scrollOffset > len(rows)-1 {
		n.scrollOffset = len(rows) - 1
	}
	if n.scrollOffset < 0 {
		n.scrollOffset = 0
	}
}

func (n *NodeListPanel) visibleRows(rows []listRow) []listRow {
	start := min(n.scrollOffset, len(rows))
	end := min(start+n.availRows(), len(rows))
	return rows[start:end]
}

var (
	listTitleStyle    = lipgloss.NewStyle().Foreground(ColorIris).Bold(true)
	listButtonStyle   = lipgloss.NewStyle().Foreground(ColorSubtle)
	listCountStyle    = lipgloss.NewStyle().Foreground(ColorMuted)
	listCursorStyle   = lipgloss.NewStyle().Background(ColorOverlay)
	listSelectedStyle = lipgloss.NewStyle().Foreground(ColorIris).Bold(true)
	listNodeStyle     = lipgloss.NewStyle().Foreground(ColorText)
	listFadedStyle    = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
)

func (n *NodeListPanel) renderRow(row listRow, cursor bool, innerWidth int) string {
	prefix := "  "
	if cursor {
		prefix = "▸ "
	}
	var line string
	switch row.Kind {
	case listRowHeader:
		ch := "▾"
		if row.Collapsed {
			ch = "▸"
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color)).Render("■")
		label := runewidth.Truncate(row.Label, max(innerWidth-12, 4), "…")
		line = prefix + ch + " " + swatch + " " + label + " " + listCountStyle.Render("("+strconv.Itoa(row.Count)+")")
	case listRowNode:
		icon := lipgloss.NewStyle().Foreground(lipgloss.Color(row.Color)).Render(n.typeMeta.Resolve(row.Node.Type).Icon)
		name := runewidth.Truncate(row.Label, max(innerWidth-8, 4), "…")
		style := listNodeStyle
		switch {
		case row.Faded:
			style = listFadedStyle
		case n.hasSelected && row.Node.ID == n.selected:
			style = listSelectedStyle
		}
		line = prefix + "  " + icon + " " + style.Render(name)
	}
	if cursor && n.focused {
		line = listCursorStyle.Width(innerWidth).Render(line)
	}
	return zone.Mark(rowZoneID(row), line)
}

func (n *NodeListPanel) renderRail() string {
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorOverlay)
	if n.focused {
		border = border.BorderForeground(ColorIris)
	}
	glyph := listCountStyle.Render("·")
	if node, ok := n.SelectedNode(); ok {
		meta := n.typeMeta.Resolve(node.Type)
		glyph = lipgloss.NewStyle().Foreground(lipgloss.Color(meta.Color)).Render(meta.Icon)
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		zone.Mark(ZoneSidebarToggle, listButtonStyle.Render("☰")),
		"",
		glyph,
		"",
		zone.Mark(ZoneGroupMode, listButtonStyle.Render(grouping.Option(n.mode).Icon)),
	)
	height := max(n.height-2, 4)
	return border.Width(RailWidth - 2).Height(height).Align(lipgloss.Center).Render(content)
}

func (n *NodeListPanel) String() string {
	if n.collapsed {
		return n.renderRail()
	}
	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorOverlay).Padding(0, 1)
	if n.focused {
		border = border.Border(lipgloss.DoubleBorder()).BorderForeground(ColorIris)
	}
	innerWidth := n.width - 4
	if innerWidth < 8 {
		innerWidth = 8
	}
	height := n.height - 2
	if height < 4 {
		height = 4
	}

	opt := grouping.Option(n.mode)
	title := listTitleStyle.Render("nodes")
	buttons := zone.Mark(ZoneGroupMode, listButtonStyle.Render(opt.Icon+" "+opt.Label)) + " " +
		zone.Mark(ZoneSidebarToggle, listButtonStyle.Render("«"))
	gap := max(innerWidth-lipgloss.Width(title)-lipgloss.Width(buttons), 1)
	header := title + strings.Repeat(" ", gap) + buttons

	search := listCountStyle.Render("search")
	switch {
	case n.searchActive:
		search = n.search.View()
	case n.query != "":
		search = "/ " + n.query
	}
	searchBox := zone.Mark(ZoneSearch, lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorOverlay).Padding(0, 1).Width(innerWidth-4).Render(search))

	rows := n.rows()
	cursorIdx := n.locate(rows)
	lines := make([]string, 0, n.availRows())
	for i, row := range n.visibleRows(rows) {
		lines = append(lines, n.renderRow(row, n.scrollOffset+i == cursorIdx, innerWidth))
	}
	body := strings.Join(lines, "\n")
	if len(rows) == 0 {
		body = listCountStyle.Render("no nodes")
	}

	content := header + "\n" + searchBox + "\n\n" + body
	return zone.Mark(ZoneSidebar, lipgloss.Place(n.width, n.height, lipgloss.Left, lipgloss.Top, border.Width(innerWidth).Height(height).Render(content)))
}
