package recognition

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Personalization is the read path the ranker consults: the command the
// user last picked for a symbol, if any. Writes happen outside the
// recognition pipeline.
type Personalization interface {
	LastChoice(symbolID int) (string, bool)
}

// PrefsStore is a JSON-file-backed personalization store. Safe for
// concurrent readers and the single external writer.
type PrefsStore struct {
	mu      sync.RWMutex
	path    string
	choices map[int]string
}

// OpenPrefsStore loads the store from path, starting empty when the file
// does not exist yet.
func OpenPrefsStore(path string) (*PrefsStore, error) {
	s := &PrefsStore{path: path, choices: map[int]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read prefs: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode prefs: %w", err)
	}
	for key, cmd := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("prefs key %q: %w", key, err)
		}
		s.choices[id] = cmd
	}
	return s, nil
}

// LastChoice returns the recorded command for a symbol id.
func (s *PrefsStore) LastChoice(symbolID int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cmd, ok := s.choices[symbolID]
	return cmd, ok
}

// Record stores the user's selection for a symbol and persists the store.
// Invoked by the selection handler, never by the pipeline itself.
func (s *PrefsStore) Record(symbolID int, command string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.choices[symbolID] = command
	return s.save()
}

func (s *PrefsStore) save() error {
	if s.path == "" {
		return nil
	}
	raw := make(map[string]string, len(s.choices))
	for id, cmd := range s.choices {
		raw[strconv.Itoa(id)] = cmd
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp prefs: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename prefs: %w", err)
	}
	return nil
}
