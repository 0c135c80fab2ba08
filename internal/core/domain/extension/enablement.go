package extension

import (
	"maps"
	"sort"
	"sync"
)

// State is the three-valued result of looking an identifier up in an
// EnablementMap.
type State int

const (
	// StateUnset means no override was ever recorded for the identifier
	StateUnset State = iota
	// StateEnabled means the identifier was explicitly enabled
	StateEnabled
	// StateDisabled means the identifier was explicitly disabled
	StateDisabled
)

// Enabled resolves the state to a boolean. Only an explicit disable turns an
// extension off.
func (s State) Enabled() bool {
	return s != StateDisabled
}

// String implements the Stringer interface
func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateDisabled:
		return "disabled"
	default:
		return "unset"
	}
}

// EnablementMap holds the user's enable/disable overrides keyed by
// identifier. It is a map of overrides, not a complete record: identifiers
// missing from it are enabled.
type EnablementMap map[string]bool

// NewEnablementMap returns an empty override map
func NewEnablementMap() EnablementMap {
	return EnablementMap{}
}

// Lookup returns the recorded state of an identifier
func (m EnablementMap) Lookup(id string) State {
	v, ok := m[id]
	switch {
	case !ok:
		return StateUnset
	case v:
		return StateEnabled
	default:
		return StateDisabled
	}
}

// IsEnabled reports the effective state of an identifier
func (m EnablementMap) IsEnabled(id string) bool {
	return m.Lookup(id).Enabled()
}

// Set records an explicit override
func (m EnablementMap) Set(id string, enabled bool) {
	m[id] = enabled
}

// Unset removes the override for id so that it falls back to the default
func (m EnablementMap) Unset(id string) {
	delete(m, id)
}

// Clone returns an independent copy of the map
func (m EnablementMap) Clone() EnablementMap {
	out := make(EnablementMap, len(m))
	maps.Copy(out, m)
	return out
}

// Equal reports whether both maps hold exactly the same overrides
func (m EnablementMap) Equal(other EnablementMap) bool {
	return maps.Equal(m, other)
}

// Keys returns the overridden identifiers sorted alphabetically
func (m EnablementMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilterEnabled returns the descriptors whose effective state is enabled,
// preserving their order.
func (m EnablementMap) FilterEnabled(descriptors []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if m.IsEnabled(d.Identifier()) {
			out = append(out, d)
		}
	}
	return out
}

// WorkingCopy is the mutable enablement state of one settings session. It is
// written by toggle handlers and read at commit time.
type WorkingCopy struct {
	mu sync.RWMutex
	m  EnablementMap
}

// NewWorkingCopy starts a session from a copy of the given overrides
func NewWorkingCopy(initial EnablementMap) *WorkingCopy {
	if initial == nil {
		initial = NewEnablementMap()
	}
	return &WorkingCopy{m: initial.Clone()}
}

// Set records an override in the working copy
func (w *WorkingCopy) Set(id string, enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.m.Set(id, enabled)
}

// IsEnabled reports the effective state of id in the working copy
func (w *WorkingCopy) IsEnabled(id string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.m.IsEnabled(id)
}

// Snapshot returns a copy of the working overrides
func (w *WorkingCopy) Snapshot() EnablementMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.m.Clone()
}
