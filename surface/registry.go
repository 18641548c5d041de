package surface

import "github.com/aerogrid/netmap/model"

// Registry maps node ids to live marker handles. Markers register on mount
// and unregister on unmount; readers must tolerate a missing entry.
type Registry struct {
	handles map[model.NodeID]MarkerHandle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[model.NodeID]MarkerHandle)}
}

// Register stores h under id, replacing any earlier handle.
func (r *Registry) Register(id model.NodeID, h MarkerHandle) {
	if r.handles == nil {
		r.handles = make(map[model.NodeID]MarkerHandle)
	}
	r.handles[id] = h
}

// Unregister removes id only if it still maps to h, so a late unmount of a
// replaced marker cannot evict its successor.
func (r *Registry) Unregister(id model.NodeID, h MarkerHandle) {
	if cur, ok := r.handles[id]; ok && cur == h {
		delete(r.handles, id)
	}
}

// Lookup returns the handle registered under id.
func (r *Registry) Lookup(id model.NodeID) (MarkerHandle, bool) {
	h, ok := r.handles[id]
	return h, ok
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	return len(r.handles)
}
