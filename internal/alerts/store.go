// Package alerts provides the process-wide alert collection. All asset
// pipelines insert into one Store; a single mutex around insertion gives
// the append-with-dedup operation single-writer semantics.
package alerts

import (
	"sync"

	"trading-monitor/internal/model"
)

// Key is the deduplication identity of an alert.
type Key struct {
	Kind      model.AlertKind
	Asset     string
	Timestamp int64
}

// KindCounts holds per-kind occurrence counters, indexed by AlertKind.
// The array form makes the kind set exhaustive at compile time; there is
// no missing-key case.
type KindCounts [model.AlertKindCount]uint64

// Store accumulates alerts across all instruments in arrival order.
// Duplicate (kind, asset, timestamp) insertions are rejected silently.
type Store struct {
	mu     sync.Mutex
	events []model.AlertEvent
	seen   map[Key]struct{}
	counts map[string]*KindCounts // per asset
}

// NewStore creates an empty alert store.
func NewStore() *Store {
	return &Store{
		seen:   make(map[Key]struct{}),
		counts: make(map[string]*KindCounts),
	}
}

// Insert appends the alert unless an alert with the same (kind, asset,
// timestamp) already exists. Returns true when the alert was accepted; the
// per-(asset, kind) counter increments only on acceptance.
func (s *Store) Insert(a model.AlertEvent) bool {
	key := Key{Kind: a.Kind, Asset: a.Asset, Timestamp: a.Timestamp}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.events = append(s.events, a)

	kc := s.counts[a.Asset]
	if kc == nil {
		kc = &KindCounts{}
		s.counts[a.Asset] = kc
	}
	kc[a.Kind]++
	return true
}

// Dismiss removes the alert with the given id. Counters are untouched:
// dismissal hides the event, it does not undo the occurrence.
func (s *Store) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.events {
		if a.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return true
		}
	}
	return false
}

// Events returns a copy of all stored alerts in arrival order.
func (s *Store) Events() []model.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AlertEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Len returns the number of stored alerts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Counts returns the per-kind counters for an asset. Unknown assets yield
// all zeros.
func (s *Store) Counts(asset string) KindCounts {
	s.mu.Lock()
	defer s.mu.Unlock()
	if kc := s.counts[asset]; kc != nil {
		return *kc
	}
	return KindCounts{}
}

// Count returns the counter for one (asset, kind) pair.
func (s *Store) Count(asset string, kind model.AlertKind) uint64 {
	return s.Counts(asset)[kind]
}

// Reset clears all alerts, dedup state and counters in one operation.
// Used by the timeframe switch, which must not leave partial state behind.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.seen = make(map[Key]struct{})
	s.counts = make(map[string]*KindCounts)
}
