package grouping

// CollapseStore holds per-mode, per-group collapse flags. Entries default to
// expanded. Flags of one mode are never read or written by operations on
// another, and they survive mode switches and keys that temporarily vanish.
type CollapseStore struct {
	state map[Mode]map[string]bool
}

// NewCollapseStore returns an empty store.
func NewCollapseStore() *CollapseStore {
	return &CollapseStore{state: make(map[Mode]map[string]bool)}
}

// Toggle flips the flag of key under mode and returns the new value.
func (s *CollapseStore) Toggle(mode Mode, key string) bool {
	if s.state == nil {
		s.state = make(map[Mode]map[string]bool)
	}
	modeState, ok := s.state[mode]
	if !ok {
		modeState = make(map[string]bool)
		s.state[mode] = modeState
	}
	modeState[key] = !modeState[key]
	return modeState[key]
}

// IsCollapsed reports whether key is collapsed under mode.
func (s *CollapseStore) IsCollapsed(mode Mode, key string) bool {
	return s.state[mode][key]
}

// Collapsed returns a copy of the collapsed keys under mode.
func (s *CollapseStore) Collapsed(mode Mode) map[string]bool {
	out := make(map[string]bool)
	for k, v := range s.state[mode] {
		if v {
			out[k] = true
		}
	}
	return out
}
