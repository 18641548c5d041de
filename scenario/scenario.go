// Package scenario loads the node, link and type tables that netmap shows.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aerogrid/netmap/log"
	"github.com/aerogrid/netmap/model"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultScenario []byte

// DefaultZoom is used when a scenario does not set one.
const DefaultZoom = 13

var (
	ErrNoNodes         = errors.New("scenario has no nodes")
	ErrDuplicateID     = errors.New("duplicate node id")
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidID       = errors.New("invalid node id")
)

// Scenario is a loaded, validated scenario.
type Scenario struct {
	Name string
	// Path is empty for the built-in scenario.
	Path     string
	Center   model.LatLng
	Zoom     float64
	Nodes    []model.Node
	Links    []model.Link
	TypeMeta model.TypeMetaTable
	// Warnings lists recoverable problems, e.g. links to unknown nodes.
	Warnings []string
}

// Option tunes loading.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithTime fixes the instant satellites are propagated to.
func WithTime(t time.Time) Option {
	return func(o *options) { o.now = func() time.Time { return t } }
}

type fileSpec struct {
	Name   string              `yaml:"name"`
	Center []float64           `yaml:"center"`
	Zoom   float64             `yaml:"zoom"`
	Epoch  *time.Time          `yaml:"epoch"`
	Types  map[string]typeSpec `yaml:"types"`
	Nodes  []nodeSpec          `yaml:"nodes"`
	Links  []linkSpec          `yaml:"links"`
}

type typeSpec struct {
	Label string `yaml:"label"`
	Color string `yaml:"color"`
	Icon  string `yaml:"icon"`
}

type nodeSpec struct {
	ID       nodeID    `yaml:"id"`
	Name     string    `yaml:"name"`
	Position []float64 `yaml:"position"`
	Type     string    `yaml:"type"`
	Layer    string    `yaml:"layer"`
	TLE      []string  `yaml:"tle"`
}

type linkSpec struct {
	From    []float64 `yaml:"from"`
	To      []float64 `yaml:"to"`
	Between []nodeID  `yaml:"between"`
}

// nodeID accepts integer and string scalars.
type nodeID string

func (id *nodeID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w at line %d: want a scalar", ErrInvalidID, value.Line)
	}
	switch value.ShortTag() {
	case "!!int", "!!str":
	default:
		return fmt.Errorf("%w at line %d: %q is neither an integer nor a string", ErrInvalidID, value.Line, value.Value)
	}
	if strings.TrimSpace(value.Value) == "" {
		return fmt.Errorf("%w at line %d: empty", ErrInvalidID, value.Line)
	}
	*id = nodeID(value.Value)
	return nil
}

// Default returns the built-in scenario.
func Default(opts ...Option) *Scenario {
	s, err := Parse(defaultScenario, opts...)
	if err != nil {
		panic(fmt.Sprintf("built-in scenario is invalid: %v", err))
	}
	return s
}

// Load reads and parses the scenario file at path.
func Load(path string, opts ...Option) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	s.Path = path
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

// Parse decodes a scenario document.
func Parse(data []byte, opts ...Option) (*Scenario, error) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(spec.Nodes) == 0 {
		return nil, ErrNoNodes
	}

	at := o.now()
	if spec.Epoch != nil {
		at = *spec.Epoch
	}

	s := &Scenario{
		Name:     spec.Name,
		Zoom:     spec.Zoom,
		TypeMeta: model.DefaultTypeMeta(),
	}
	if s.Zoom <= 0 {
		s.Zoom = DefaultZoom
	}
	for key, t := range spec.Types {
		s.TypeMeta[key] = model.NodeTypeMeta{Label: t.Label, Color: t.Color, Icon: t.Icon}
	}

	byID := make(map[model.NodeID]model.Node, len(spec.Nodes))
	for i, ns := range spec.Nodes {
		if ns.ID == "" {
			return nil, fmt.Errorf("%w: node %d has no id", ErrInvalidID, i+1)
		}
		id := model.NodeID(ns.ID)
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}

		var pos model.LatLng
		var err error
		switch {
		case len(ns.TLE) > 0:
			pos, err = propagateTLE(ns.TLE, at)
		default:
			pos, err = toLatLng(ns.Position)
		}
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", id, err)
		}

		n := model.Node{ID: id, Name: ns.Name, Position: pos, Type: ns.Type, Layer: ns.Layer}
		if n.Name == "" {
			n.Name = string(id)
		}
		byID[id] = n
		s.Nodes = append(s.Nodes, n)
	}

	for i, ls := range spec.Links {
		link, err := resolveLink(ls, byID)
		if err != nil {
			msg := fmt.Sprintf("link %d dropped: %v", i+1, err)
			log.WarningLog.Printf("%s", msg)
			s.Warnings = append(s.Warnings, msg)
			continue
		}
		s.Links = append(s.Links, link)
	}

	if c, err := toLatLng(spec.Center); err == nil {
		s.Center = c
	} else {
		s.Center = centroid(s.Nodes)
	}
	return s, nil
}

func resolveLink(ls linkSpec, byID map[model.NodeID]model.Node) (model.Link, error) {
	if len(ls.Between) > 0 {
		if len(ls.Between) != 2 {
			return model.Link{}, fmt.Errorf("between needs exactly two ids, got %d", len(ls.Between))
		}
		from, ok := byID[model.NodeID(ls.Between[0])]
		if !ok {
			return model.Link{}, fmt.Errorf("unknown node %s", ls.Between[0])
		}
		to, ok := byID[model.NodeID(ls.Between[1])]
		if !ok {
			return model.Link{}, fmt.Errorf("unknown node %s", ls.Between[1])
		}
		return model.Link{From: from.Position, To: to.Position}, nil
	}
	from, err := toLatLng(ls.From)
	if err != nil {
		return model.Link{}, fmt.Errorf("from: %w", err)
	}
	to, err := toLatLng(ls.To)
	if err != nil {
		return model.Link{}, fmt.Errorf("to: %w", err)
	}
	return model.Link{From: from, To: to}, nil
}

func toLatLng(pair []float64) (model.LatLng, error) {
	if len(pair) != 2 {
		return model.LatLng{}, fmt.Errorf("%w: want [lat, lng], got %d values", ErrInvalidPosition, len(pair))
	}
	p := model.LatLng{Lat: pair[0], Lng: pair[1]}
	if !p.Valid() {
		return model.LatLng{}, fmt.Errorf("%w: %v out of range", ErrInvalidPosition, pair)
	}
	return p, nil
}

func centroid(nodes []model.Node) model.LatLng {
	var c model.LatLng
	if len(nodes) == 0 {
		return c
	}
	for _, n := range nodes {
		c.Lat += n.Position.Lat
		c.Lng += n.Position.Lng
	}
	c.Lat /= float64(len(nodes))
	c.Lng /= float64(len(nodes))
	return c
}
