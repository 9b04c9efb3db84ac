// Package memstore is an in-memory core.Store used by tests and throwaway
// environments. Values are stored as encoded JSON so load/save round-trips
// behave like the durable backends.
package memstore

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
)

type Store struct {
	mu   sync.RWMutex
	data map[string][]byte

	// FailSaves makes every Save return an error, for rollback tests.
	FailSaves bool
}

func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

func (s *Store) Load(key string, dest interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}

func (s *Store) Save(key string, value interface{}) error {
	if s.FailSaves {
		return errors.New("save failed")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// SetRaw seeds a key with raw bytes, bypassing JSON encoding. Used to test
// fail-closed handling of malformed data.
func (s *Store) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
}
