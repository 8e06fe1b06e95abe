// Package catalog resolves hardware and model ids to their records. A Store
// starts from the built-in catalog and can merge JSON files on top, so
// deployments can pin corrected datasheet numbers or private checkpoints
// without rebuilding.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/llmcalc/llmcalc/calc"
)

// Store holds the hardware and model records a calculation can reference,
// keyed by id. Not safe for concurrent mutation; build it up front and share
// it read-only, which is how the CLI and the server both use it.
type Store struct {
	hardware map[string]calc.Hardware
	models   map[string]calc.Model
}

// NewStore returns a Store preloaded with the built-in records.
func NewStore() *Store {
	s := &Store{
		hardware: make(map[string]calc.Hardware, len(builtinHardware)),
		models:   make(map[string]calc.Model, len(builtinModels)),
	}
	for _, h := range builtinHardware {
		s.hardware[h.ID] = h
	}
	for _, m := range builtinModels {
		s.models[m.ID] = m
	}
	return s
}

// LoadHardwareFile merges a JSON hardware catalog over the store. The file
// is a map keyed by id; file records win over built-ins with the same id.
func (s *Store) LoadHardwareFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read hardware catalog %q: %w", path, err)
	}
	var records map[string]calc.Hardware
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse hardware catalog %q: %w", path, err)
	}
	for id, h := range records {
		h.ID = id
		if err := h.Validate(); err != nil {
			return fmt.Errorf("hardware catalog %q: %w", path, err)
		}
		s.hardware[id] = h
	}
	return nil
}

// LoadModelFile merges a JSON model catalog over the store, same shape and
// precedence as LoadHardwareFile.
func (s *Store) LoadModelFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read model catalog %q: %w", path, err)
	}
	var records map[string]calc.Model
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse model catalog %q: %w", path, err)
	}
	for id, m := range records {
		m.ID = id
		if err := m.Validate(); err != nil {
			return fmt.Errorf("model catalog %q: %w", path, err)
		}
		s.models[id] = m
	}
	return nil
}

// AddModel validates and inserts one record, replacing any existing id.
func (s *Store) AddModel(m calc.Model) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.models[m.ID] = m
	return nil
}

// AddHardware validates and inserts one record, replacing any existing id.
func (s *Store) AddHardware(h calc.Hardware) error {
	if err := h.Validate(); err != nil {
		return err
	}
	s.hardware[h.ID] = h
	return nil
}

// Hardware returns the record for id. Unknown ids get an error listing the
// available ids sorted.
func (s *Store) Hardware(id string) (calc.Hardware, error) {
	h, ok := s.hardware[id]
	if !ok {
		return calc.Hardware{}, fmt.Errorf("hardware %q not found in catalog (available: %v)", id, s.HardwareIDs())
	}
	return h, nil
}

// Model returns the record for id, with the same unknown-id treatment as
// Hardware.
func (s *Store) Model(id string) (calc.Model, error) {
	m, ok := s.models[id]
	if !ok {
		return calc.Model{}, fmt.Errorf("model %q not found in catalog (available: %v)", id, s.ModelIDs())
	}
	return m, nil
}

// HardwareIDs returns the known hardware ids sorted.
func (s *Store) HardwareIDs() []string {
	ids := make([]string, 0, len(s.hardware))
	for id := range s.hardware {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ModelIDs returns the known model ids sorted.
func (s *Store) ModelIDs() []string {
	ids := make([]string, 0, len(s.models))
	for id := range s.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ListHardware returns all records ordered by id.
func (s *Store) ListHardware() []calc.Hardware {
	out := make([]calc.Hardware, 0, len(s.hardware))
	for _, id := range s.HardwareIDs() {
		out = append(out, s.hardware[id])
	}
	return out
}

// ListModels returns all records ordered by id.
func (s *Store) ListModels() []calc.Model {
	out := make([]calc.Model, 0, len(s.models))
	for _, id := range s.ModelIDs() {
		out = append(out, s.models[id])
	}
	return out
}
