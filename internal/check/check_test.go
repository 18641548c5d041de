package check

import (
	"testing"
	"time"

	"github.com/aerogrid/netmap/grouping"
	"github.com/aerogrid/netmap/model"
	"github.com/aerogrid/netmap/scenario"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var at = scenario.WithTime(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))

func TestAudit_DefaultScenarioIsHealthy(t *testing.T) {
	r := Audit(scenario.Default(at))
	ok, total := r.Summary()
	assert.Equal(t, 7, ok)
	assert.Equal(t, 7, total)
	assert.Empty(t, r.Problems())
	assert.Empty(t, r.Warnings)
}

func TestAudit_FlagsDegradedNodes(t *testing.T) {
	doc := []byte(`
name: rough
nodes:
  - {id: a, position: [10, 10], type: uav, layer: air}
  - {id: b, position: [10.1, 10.1], type: drone, layer: air}
  - {id: c, position: [10.2, 10.2], type: uav}
  - {id: d, position: [10.3, 10.3], type: uav, layer: sea}
  - {id: e, position: [10.4, 10.4], type: uav, layer: air}
links:
  - {between: [a, b]}
  - {between: [c, d]}
  - {between: [a, zz]}
`)
	s, err := scenario.Parse(doc, at)
	require.NoError(t, err)

	r := Audit(s)
	require.Len(t, r.Nodes, 5)
	assert.Equal(t, StatusOK, r.Nodes[0].Status)
	assert.Equal(t, StatusUnknownType, r.Nodes[1].Status)
	assert.Equal(t, "drone", r.Nodes[1].Detail)
	assert.Equal(t, StatusNoLayer, r.Nodes[2].Status)
	assert.Equal(t, StatusUnknownLayer, r.Nodes[3].Status)
	assert.Equal(t, StatusIsolated, r.Nodes[4].Status)
	require.Len(t, r.Warnings, 1)

	ok, total := r.Summary()
	assert.Equal(t, 2, ok, "the healthy and the isolated node")
	assert.Equal(t, 6, total)

	problems := r.Problems()
	require.Len(t, problems, 4)
	assert.Equal(t, model.NodeID("b"), problems[0].ID)
	assert.Equal(t, model.NodeID("e"), problems[3].ID)
}

func TestAudit_GroupCounts(t *testing.T) {
	r := Audit(scenario.Default(at))
	var layer []GroupCount
	for _, g := range r.Groups {
		if g.Mode == grouping.ModeLayer {
			layer = append(layer, g)
		}
	}
	require.Len(t, layer, 4)
	assert.Equal(t, "backbone", layer[0].Key)
	assert.Equal(t, 2, layer[0].Count)
	assert.Equal(t, "space", layer[3].Key)
	assert.Equal(t, 1, layer[3].Count)
}

func TestNodeStatus_Blocking(t *testing.T) {
	assert.False(t, StatusOK.Blocking())
	assert.False(t, StatusIsolated.Blocking())
	assert.True(t, StatusUnknownType.Blocking())
	assert.Equal(t, "unknown layer", StatusUnknownLayer.String())
}
