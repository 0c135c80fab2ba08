package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kilometers.ai/loader/internal/core/domain/extension"
	"kilometers.ai/loader/internal/core/ports"
)

// DefaultKey is the slot holding the enablement overrides
const DefaultKey = "LoaderStates"

// errNotObject marks a slot whose JSON is valid but not an object
var errNotObject = errors.New("stored value is not a JSON object")

// EnablementStore persists the enablement overrides in one KVStore slot
type EnablementStore struct {
	kv     *KVStore
	key    string
	logger ports.Logger
}

// NewEnablementStore creates a store on kv; an empty key selects DefaultKey
func NewEnablementStore(kv *KVStore, key string, logger ports.Logger) *EnablementStore {
	if key == "" {
		key = DefaultKey
	}
	return &EnablementStore{kv: kv, key: key, logger: logger}
}

// Key returns the slot key in use
func (s *EnablementStore) Key() string {
	return s.key
}

// Load returns the persisted overrides. Absent or unreadable data yields an
// empty map so every extension falls back to enabled.
func (s *EnablementStore) Load(ctx context.Context) extension.EnablementMap {
	m, err := s.read()
	if err != nil {
		s.logger.Warn("ignoring stored enablement state", "error", err)
		return extension.NewEnablementMap()
	}
	return m
}

func (s *EnablementStore) read() (extension.EnablementMap, error) {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		return nil, &extension.PersistenceReadError{Key: s.key, Err: err}
	}
	if !ok {
		return extension.NewEnablementMap(), nil
	}

	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &extension.PersistenceReadError{Key: s.key, Err: err}
	}
	obj, isObject := decoded.(map[string]any)
	if !isObject {
		return nil, &extension.PersistenceReadError{Key: s.key, Err: errNotObject}
	}

	m := extension.NewEnablementMap()
	for id, v := range obj {
		if b, isBool := v.(bool); isBool {
			m.Set(id, b)
		}
	}
	return m, nil
}

// Save serialises m and replaces the slot
func (s *EnablementStore) Save(ctx context.Context, m extension.EnablementMap) error {
	if m == nil {
		m = extension.NewEnablementMap()
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode enablement state: %w", err)
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		return fmt.Errorf("failed to save enablement state: %w", err)
	}
	s.logger.Debug("saved enablement state", "key", s.key, "overrides", len(m))
	return nil
}

// Clear drops every override
func (s *EnablementStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(s.key); err != nil {
		return fmt.Errorf("failed to clear enablement state: %w", err)
	}
	return nil
}

var _ ports.EnablementStore = (*EnablementStore)(nil)
