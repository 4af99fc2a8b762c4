package bytescan

import (
	"sync"
	"sync/atomic"
)

// ScanMode selects whether a UID collects every match or stops at the first.
type ScanMode uint8

const (
	// ScanAll records every match.
	ScanAll ScanMode = iota
	// ScanFirst records one match and stops every description sharing the UID.
	ScanFirst
)

func (m ScanMode) String() string {
	switch m {
	case ScanAll:
		return "all"
	case ScanFirst:
		return "first"
	default:
		return "unknown"
	}
}

// ResultStore is the growable sequence backing a SharedResult.
type ResultStore interface {
	// Append adds v and reports whether it was kept.
	Append(v Address) bool
	Len() int
	At(i int) Address
	// Snapshot returns a copy of the stored values in insertion order.
	Snapshot() []Address
	Reset()
}

// NewResultStore returns an unbounded store for capacity <= 0, otherwise a
// store that keeps at most capacity values and drops the rest.
func NewResultStore(capacity int) ResultStore {
	if capacity <= 0 {
		return &growableStore{}
	}
	return &boundedStore{items: make([]Address, 0, capacity), limit: capacity}
}

type growableStore struct {
	items []Address
}

func (s *growableStore) Append(v Address) bool {
	s.items = append(s.items, v)
	return true
}

func (s *growableStore) Len() int            { return len(s.items) }
func (s *growableStore) At(i int) Address    { return s.items[i] }
func (s *growableStore) Snapshot() []Address { return append([]Address(nil), s.items...) }
func (s *growableStore) Reset()              { s.items = s.items[:0] }

type boundedStore struct {
	items   []Address
	limit   int
	dropped int
}

func (s *boundedStore) Append(v Address) bool {
	if len(s.items) >= s.limit {
		s.dropped++
		return false
	}
	s.items = append(s.items, v)
	return true
}

func (s *boundedStore) Len() int            { return len(s.items) }
func (s *boundedStore) At(i int) Address    { return s.items[i] }
func (s *boundedStore) Snapshot() []Address { return append([]Address(nil), s.items...) }

func (s *boundedStore) Reset() {
	s.items = s.items[:0]
	s.dropped = 0
}

// Dropped returns how many values were refused since the last Reset.
func (s *boundedStore) Dropped() int { return s.dropped }

// SharedResult is the result bucket of one UID. Every description built for
// the UID appends into it; in ScanFirst mode the first successful append
// finishes it and later appends are refused. A nil *SharedResult reads as
// an empty result.
type SharedResult struct {
	mode     ScanMode
	mu       sync.Mutex
	store    ResultStore
	finished atomic.Bool
	foundBy  string
	hasFound bool
}

func newSharedResult(mode ScanMode, store ResultStore) *SharedResult {
	if store == nil {
		store = NewResultStore(0)
	}
	return &SharedResult{mode: mode, store: store}
}

// Mode returns the scan mode the UID was registered with.
func (r *SharedResult) Mode() ScanMode {
	if r == nil {
		return ScanAll
	}
	return r.mode
}

// TryAppend appends v unless the result is already finished. finished
// reports the state after the call; the append that finishes a ScanFirst
// result returns (true, true). The pattern of from is recorded as the
// finder of the UID on the first accepted append; from may be nil.
func (r *SharedResult) TryAppend(v Address, from *Description) (appended, finished bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finished.Load() {
		return false, true
	}
	if !r.store.Append(v) {
		return false, false
	}
	if !r.hasFound && from != nil {
		r.foundBy = from.Source()
		r.hasFound = true
	}
	if r.mode == ScanFirst {
		r.finished.Store(true)
		return true, true
	}
	return true, false
}

// FoundBy returns the pattern of the description whose match was recorded
// first. ok is false until a description has appended.
func (r *SharedResult) FoundBy() (pattern string, ok bool) {
	if r == nil {
		return "", false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.foundBy, r.hasFound
}

// FoundByPattern reports whether pattern is the one FoundBy returns.
func (r *SharedResult) FoundByPattern(pattern string) bool {
	got, ok := r.FoundBy()
	return ok && got == pattern
}

// Finished reports whether a ScanFirst result already holds its match.
func (r *SharedResult) Finished() bool {
	return r != nil && r.finished.Load()
}

// First returns the first recorded value, or 0.
func (r *SharedResult) First() Address {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store.Len() == 0 {
		return 0
	}
	return r.store.At(0)
}

// All returns a copy of the recorded values in the order they were appended.
func (r *SharedResult) All() []Address {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Snapshot()
}

// Len returns the number of recorded values.
func (r *SharedResult) Len() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Len()
}

// Found reports whether at least one value was recorded.
func (r *SharedResult) Found() bool {
	return r.Len() > 0
}

// Dropped returns how many values a bounded store refused.
func (r *SharedResult) Dropped() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.store.(*boundedStore); ok {
		return b.Dropped()
	}
	return 0
}

// Reset clears the recorded values and the finished flag so the UID can be
// scanned again from scratch.
func (r *SharedResult) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store.Reset()
	r.finished.Store(false)
	r.foundBy, r.hasFound = "", false
}
