package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCollapseStore_DefaultsToExpanded(t *testing.T) {
	s := NewCollapseStore()
	assert.False(t, s.IsCollapsed(ModeLayer, "air"))
	assert.False(t, s.IsCollapsed(ModeType, "uav"))
}

func TestCollapseStore_ToggleOnlyTouchesOneEntry(t *testing.T) {
	s := NewCollapseStore()

	assert.True(t, s.Toggle(ModeLayer, "air"))
	assert.True(t, s.IsCollapsed(ModeLayer, "air"))
	assert.False(t, s.IsCollapsed(ModeLayer, "space"))
	assert.False(t, s.IsCollapsed(ModeType, "air"), "same key under another mode is independent")

	assert.False(t, s.Toggle(ModeLayer, "air"))
	assert.False(t, s.IsCollapsed(ModeLayer, "air"))
}

func TestCollapseStore_ZeroValueUsable(t *testing.T) {
	var s CollapseStore
	assert.False(t, s.IsCollapsed(ModeType, "uav"))
	assert.True(t, s.Toggle(ModeType, "uav"))
	assert.Equal(t, map[string]bool{"uav": true}, s.Collapsed(ModeType))
	assert.Empty(t, s.Collapsed(ModeLayer))
}

func TestCollapseStore_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := NewCollapseStore()
		keys := []string{"backbone", "air", "uav", "satellite", "other"}
		modes := []Mode{ModeLayer, ModeType}

		// random history first so the properties hold from any state
		steps := rapid.IntRange(0, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			s.Toggle(rapid.SampledFrom(modes).Draw(t, "m"), rapid.SampledFrom(keys).Draw(t, "k"))
		}

		mode := rapid.SampledFrom(modes).Draw(t, "mode")
		key := rapid.SampledFrom(keys).Draw(t, "key")
		other := ModeType
		if mode == ModeType {
			other = ModeLayer
		}

		before := s.IsCollapsed(mode, key)
		otherBefore := s.Collapsed(other)

		s.Toggle(mode, key)
		if s.IsCollapsed(mode, key) == before {
			t.Fatalf("toggle did not flip %s/%s", mode, key)
		}
		s.Toggle(mode, key)
		if s.IsCollapsed(mode, key) != before {
			t.Fatalf("double toggle is not an involution for %s/%s", mode, key)
		}
		if len(otherBefore) != len(s.Collapsed(other)) {
			t.Fatalf("toggling under %s changed %s", mode, other)
		}
		for k := range otherBefore {
			if !s.IsCollapsed(other, k) {
				t.Fatalf("toggling under %s changed %s/%s", mode, other, k)
			}
		}
	})
}
