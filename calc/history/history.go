// Package history keeps a per-user record of past calculations in a single
// JSON file, so results can be listed and exported after the fact.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/llmcalc/llmcalc/calc"
)

// Kind tags which calculation produced an entry.
type Kind string

const (
	KindUtilization Kind = "utilization"
	KindConcurrency Kind = "concurrency"
)

// Entry is one recorded calculation. Only the headline numbers are kept;
// rerun the calculation to recover a full result.
type Entry struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	HardwareID string `json:"hardware_id"`
	ModelID    string `json:"model_id"`

	MFUPercent       float64 `json:"mfu_percent,omitempty"`
	BandwidthPercent float64 `json:"bandwidth_percent,omitempty"`
	Bottleneck       string  `json:"bottleneck,omitempty"`

	MaxConcurrency      int `json:"max_concurrency,omitempty"`
	MaxConcurrencyPaged int `json:"max_concurrency_paged,omitempty"`
}

// FromUtilization extracts the history entry for a utilization result.
func FromUtilization(res *calc.CalculationResult) Entry {
	return Entry{
		Kind:             KindUtilization,
		ID:               res.ID,
		Timestamp:        res.Timestamp,
		HardwareID:       res.HardwareID,
		ModelID:          res.ModelID,
		MFUPercent:       res.MFUPercent,
		BandwidthPercent: res.BandwidthPercent,
		Bottleneck:       string(res.Bottleneck),
	}
}

// FromConcurrency extracts the history entry for a concurrency result.
func FromConcurrency(res *calc.ConcurrencyResult) Entry {
	return Entry{
		Kind:                KindConcurrency,
		ID:                  res.ID,
		Timestamp:           res.Timestamp,
		HardwareID:          res.HardwareID,
		ModelID:             res.ModelID,
		MaxConcurrency:      res.MaxConcurrency,
		MaxConcurrencyPaged: res.MaxConcurrencyPaged,
	}
}

// DefaultPath returns the per-user history location, ~/.llmcalc/history.json.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".llmcalc", "history.json")
}

// Store reads and appends one history file. Every mutation persists
// immediately.
type Store struct {
	path    string
	entries []Entry
}

// Open loads the history at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return s, nil
}

// Len returns the number of recorded entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Entries returns the recorded entries, newest first.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Append records e and persists.
func (s *Store) Append(e Entry) error {
	s.entries = append(s.entries, e)
	return s.save()
}

// Clear drops all entries and persists the empty file.
func (s *Store) Clear() error {
	s.entries = nil
	return s.save()
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}

	entries := s.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write history %s: %w", s.path, err)
	}
	return nil
}
