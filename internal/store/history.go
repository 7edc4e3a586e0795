package store

import "sync"

// HistoryStore holds the account's confirmed event list plus a speculative
// overlay of in-flight and failed entries. The externally visible list is the
// confirmed list with any overlay entries not yet present in it prepended —
// a merge by event ID in which confirmed entries win on conflict.
type HistoryStore struct {
	mu        sync.Mutex
	confirmed []Event
	overlay   []Event // speculative entries, newest first
	loading   bool
	err       string
	listeners []func()
}

// NewHistoryStore creates an empty history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// OnChange registers a listener invoked after every store mutation.
func (s *HistoryStore) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Events returns the merged event list, newest first.
func (s *HistoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmedIDs := make(map[string]bool, len(s.confirmed))
	for _, ev := range s.confirmed {
		confirmedIDs[ev.ID] = true
	}

	out := make([]Event, 0, len(s.overlay)+len(s.confirmed))
	for _, ev := range s.overlay {
		if !confirmedIDs[ev.ID] {
			out = append(out, ev)
		}
	}
	return append(out, s.confirmed...)
}

// Loading reports whether a confirmed-list refetch is in flight.
func (s *HistoryStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last fetch error message, or "".
func (s *HistoryStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// AppendOptimistic inserts a speculative entry at the head of the merged
// view. An existing overlay entry with the same ID is replaced in place, so
// IDs stay unique within the store.
func (s *HistoryStore) AppendOptimistic(ev Event) {
	s.mu.Lock()
	replaced := false
	for i := range s.overlay {
		if s.overlay[i].ID == ev.ID {
			s.overlay[i] = ev
			replaced = true
			break
		}
	}
	if !replaced {
		s.overlay = append([]Event{ev}, s.overlay...)
	}
	s.mu.Unlock()
	s.fire()
}

// ResolveOptimistic mutates a speculative entry's status in place, keeping
// its ID. Failed entries stay in the list permanently for auditability.
// Returns false when no overlay entry has that ID.
func (s *HistoryStore) ResolveOptimistic(id string, status Status) bool {
	s.mu.Lock()
	found := false
	for i := range s.overlay {
		if s.overlay[i].ID == id {
			s.overlay[i].Status = status
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.fire()
	}
	return found
}

// SetConfirmed replaces the confirmed list wholesale with freshly ingested
// events and evicts overlay entries the confirmed list now covers. Entries
// that were never confirmed (Failed, or Pending for a transaction the
// ingestion window missed) remain in the overlay.
func (s *HistoryStore) SetConfirmed(events []Event) {
	s.mu.Lock()
	s.confirmed = events
	s.loading = false
	s.err = ""

	ids := make(map[string]bool, len(events))
	for _, ev := range events {
		ids[ev.ID] = true
	}
	kept := s.overlay[:0]
	for _, ev := range s.overlay {
		if !ids[ev.ID] {
			kept = append(kept, ev)
		}
	}
	s.overlay = kept
	s.mu.Unlock()
	s.fire()
}

// SetLoading marks a refetch as started.
func (s *HistoryStore) SetLoading() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
	s.fire()
}

// SetError records a fetch failure. The previous confirmed list is
// preserved: stale-but-available over blank.
func (s *HistoryStore) SetError(msg string) {
	s.mu.Lock()
	s.loading = false
	s.err = msg
	s.mu.Unlock()
	s.fire()
}

// Reset clears all state, for wallet disconnect.
func (s *HistoryStore) Reset() {
	s.mu.Lock()
	s.confirmed = nil
	s.overlay = nil
	s.loading = false
	s.err = ""
	s.mu.Unlock()
	s.fire()
}

// Summary counts merged events by type, for the history footer.
func (s *HistoryStore) Summary() map[EventType]int {
	out := make(map[EventType]int)
	for _, ev := range s.Events() {
		out[ev.Type]++
	}
	return out
}

func (s *HistoryStore) fire() {
	s.mu.Lock()
	listeners := make([]func(), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
