package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aerogrid/netmap/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issTLE = `["1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927", "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"]`

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "Beijing testbed", s.Name)
	assert.Equal(t, model.LatLng{Lat: 39.9, Lng: 116.4}, s.Center)
	assert.Equal(t, 13.0, s.Zoom)
	assert.Len(t, s.Nodes, 7)
	assert.Len(t, s.Links, 7)
	assert.Empty(t, s.Warnings)
	assert.Empty(t, s.Path)
}

func TestParse_IDsAcceptIntAndString(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - {id: 1, position: [39.9, 116.4]}
  - {id: sat-1, position: [40, 116]}
  - {id: "3", position: [41, 116]}
`))
	require.NoError(t, err)
	require.Len(t, s.Nodes, 3)
	assert.Equal(t, model.NodeID("1"), s.Nodes[0].ID)
	assert.Equal(t, model.NodeID("sat-1"), s.Nodes[1].ID)
	assert.Equal(t, model.NodeID("3"), s.Nodes[2].ID)
	assert.Equal(t, "1", s.Nodes[0].Name, "missing name falls back to the id")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no nodes", "name: empty\n", ErrNoNodes},
		{"duplicate id", "nodes:\n  - {id: 1, position: [0, 0]}\n  - {id: \"1\", position: [1, 1]}\n", ErrDuplicateID},
		{"float id", "nodes:\n  - {id: 1.5, position: [0, 0]}\n", ErrInvalidID},
		{"missing id", "nodes:\n  - {name: x, position: [0, 0]}\n", ErrInvalidID},
		{"bad position", "nodes:\n  - {id: 1, position: [95, 0]}\n", ErrInvalidPosition},
		{"short position", "nodes:\n  - {id: 1, position: [1]}\n", ErrInvalidPosition},
		{"bad tle", "nodes:\n  - {id: 1, tle: [\"1 abc\", \"2 def\"]}\n", ErrInvalidTLE},
		{"letter in tle eccentricity", "nodes:\n  - {id: 1, tle: " + strings.Replace(issTLE, "0006703", "x006703", 1) + "}\n", ErrInvalidTLE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("nodes: [\n"))
		assert.Error(t, err)
	})
}

func TestParse_LinksResolveByID(t *testing.T) {
	s, err := Parse([]byte(`
nodes:
  - {id: 1, position: [39.9, 116.4]}
  - {id: 2, position: [39.91, 116.42]}
links:
  - {between: [1, 2]}
  - {between: [1, 99]}
  - {from: [39.9, 116.4], to: [39.92, 116.43]}
  - {from: [39.9, 116.4]}
`))
	require.NoError(t, err)
	require.Len(t, s.Links, 2)
	assert.Equal(t, model.Link{From: model.LatLng{Lat: 39.9, Lng: 116.4}, To: model.LatLng{Lat: 39.91, Lng: 116.42}}, s.Links[0])
	assert.Len(t, s.Warnings, 2)
	assert.Contains(t, s.Warnings[0], "unknown node 99")
}

func TestParse_TypesOverrideDefaults(t *testing.T) {
	s, err := Parse([]byte(`
types:
  uav: {label: UAV, color: "#000000", icon: "*"}
  balloon: {label: Balloon}
nodes:
  - {id: 1, position: [0, 0], type: uav}
`))
	require.NoError(t, err)
	assert.Equal(t, "UAV", s.TypeMeta.Resolve("uav").Label)
	assert.Equal(t, "Balloon", s.TypeMeta.Resolve("balloon").Label)
	assert.Equal(t, model.NeutralColor, s.TypeMeta.Resolve("balloon").Color)
	assert.Equal(t, "satellite", s.TypeMeta.Resolve("satellite").Label)
}

func TestParse_CenterDefaultsToCentroid(t *testing.T) {
	s, err := Parse([]byte("nodes:\n  - {id: 1, position: [10, 20]}\n  - {id: 2, position: [20, 40]}\n"))
	require.NoError(t, err)
	assert.InDelta(t, 15, s.Center.Lat, 1e-9)
	assert.InDelta(t, 30, s.Center.Lng, 1e-9)
	assert.Equal(t, float64(DefaultZoom), s.Zoom)
}

func TestParse_SatelliteFromTLE(t *testing.T) {
	at := time.Date(2008, 9, 20, 12, 0, 0, 0, time.UTC)
	s, err := Parse([]byte("nodes:\n  - {id: iss, type: satellite, layer: space, tle: "+issTLE+"}\n"), WithTime(at))
	require.NoError(t, err)
	require.Len(t, s.Nodes, 1)

	pos := s.Nodes[0].Position
	assert.True(t, pos.Valid())
	assert.LessOrEqual(t, pos.Lat, 52.0, "ground track never exceeds the inclination")
	assert.GreaterOrEqual(t, pos.Lat, -52.0)

	again, err := Parse([]byte("nodes:\n  - {id: iss, tle: "+issTLE+"}\n"), WithTime(at))
	require.NoError(t, err)
	assert.Equal(t, pos, again.Nodes[0].Position, "propagation is deterministic for a fixed time")
}

func TestCheckTLE(t *testing.T) {
	l1 := "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	l2 := "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"

	_, _, err := checkTLE([]string{l1, l2})
	assert.NoError(t, err)

	_, _, err = checkTLE([]string{l1[:68] + "0", l2})
	assert.ErrorIs(t, err, ErrInvalidTLE)

	_, _, err = checkTLE([]string{l2, l1})
	assert.ErrorIs(t, err, ErrInvalidTLE)

	_, _, err = checkTLE([]string{l1})
	assert.ErrorIs(t, err, ErrInvalidTLE)
}

func TestCheckTLE_NonNumericColumns(t *testing.T) {
	l1 := "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	l2 := "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"

	// Each swap replaces a 0 with a letter, so the checksum still matches.
	tests := []struct {
		name   string
		l1, l2 string
		field  string
	}{
		{"eccentricity", l1, strings.Replace(l2, "0006703", "x006703", 1), "eccentricity"},
		{"mean anomaly", l1, strings.Replace(l2, "325.0288", "325.x288", 1), "mean anomaly"},
		{"epoch year", strings.Replace(l1, "08264", "x8264", 1), l2, "epoch year"},
		{"second derivative", strings.Replace(l1, "00000-0", "0x000-0", 1), l2, "second derivative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tleChecksum(tt.l1), int(tt.l1[68]-'0'))
			require.Equal(t, tleChecksum(tt.l2), int(tt.l2[68]-'0'))

			_, _, err := checkTLE([]string{tt.l1, tt.l2})
			require.ErrorIs(t, err, ErrInvalidTLE)
			assert.Contains(t, err.Error(), tt.field)

			_, err = propagateTLE([]string{tt.l1, tt.l2}, time.Now())
			assert.ErrorIs(t, err, ErrInvalidTLE)
		})
	}
}

func TestNormalizeLng(t *testing.T) {
	assert.InDelta(t, -170, normalizeLng(190), 1e-9)
	assert.InDelta(t, 170, normalizeLng(-190), 1e-9)
	assert.InDelta(t, 0, normalizeLng(360), 1e-9)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field-test.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - {id: 1, position: [0, 0]}\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "field-test", s.Name)
	assert.Equal(t, path, s.Path)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - {id: 1, position: [0, 0]}\n"), 0o644))

	w, err := Watch(path)
	require.NoError(t, err)
	defer w.Close()

	cmd := w.Next()
	got := make(chan any, 1)
	go func() { got <- cmd() }()

	require.NoError(t, os.WriteFile(path, []byte("nodes:\n  - {id: 1, position: [0, 0]}\n  - {id: 2, position: [1, 1]}\n"), 0o644))

	select {
	case msg := <-got:
		reloaded, ok := msg.(ReloadedMsg)
		require.True(t, ok)
		require.NoError(t, reloaded.Err)
		assert.Len(t, reloaded.Scenario.Nodes, 2)
	case <-time.After(3 * time.Second):
		t.Fatal("no reload")
	}
}
