// Package promptstore loads and persists the JSON prompt templates used by
// Selection and Extraction (SPEC_FULL.md §6: on-disk prompt storage keyed by
// prompt type). Missing keys fall back to built-in defaults; writes are
// atomic via write-temp-then-rename.
package promptstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
)

// Known prompt keys.
const (
	KeyPageSelection = "page_selection"
	KeyExtraction    = "extraction"
	KeyAnalysis      = "analysis"
)

var defaults = map[string]string{
	KeyPageSelection: defaultPageSelectionPrompt,
	KeyExtraction:    defaultExtractionPrompt,
	KeyAnalysis:      defaultAnalysisPrompt,
}

// Store is a JSON-file-backed map of prompt key to template text, safe for
// concurrent reads and writes.
type Store struct {
	mu     sync.RWMutex
	path   string
	values map[string]string
}

// Load reads path if it exists, seeding any key absent from the file (or
// the file itself absent) with the built-in default.
func Load(path string) (*Store, error) {
	s := &Store{
		path:   path,
		values: make(map[string]string, len(defaults)),
	}
	for k, v := range defaults {
		s.values[k] = v
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, eris.Wrap(err, "promptstore: read file")
	}

	var onDisk map[string]string
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return nil, eris.Wrap(err, "promptstore: unmarshal")
	}
	for k, v := range onDisk {
		s.values[k] = v
	}
	return s, nil
}

// Get returns the prompt template for key, falling back to the built-in
// default when the key is entirely unknown.
func (s *Store) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return defaults[key]
}

// Set updates the in-memory value for key. Callers must call Save to
// persist it.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Save atomically writes the current prompt set to disk: write to a
// sibling temp file, then rename over the destination.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.values, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return eris.Wrap(err, "promptstore: marshal")
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".promptstore-*.tmp")
	if err != nil {
		return eris.Wrap(err, "promptstore: create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck
		return eris.Wrap(err, "promptstore: write temp file")
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "promptstore: close temp file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return eris.Wrap(err, "promptstore: rename temp file")
	}
	return nil
}
