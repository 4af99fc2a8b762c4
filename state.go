package bytescan

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ScanStats summarises the last Scan of a State.
type ScanStats struct {
	UIDs         int
	Found        int
	Descriptions int
	Rounds       int
	Steps        int
	Duration     time.Duration
}

// State owns the UID result buckets and the descriptions waiting for the
// next Scan. Build every description before calling Scan; the result map
// is not meant to grow while a scan runs.
type State struct {
	mem  Memory
	opts options

	mu      sync.Mutex
	shared  map[string]*SharedResult
	uids    []string
	pending []*Description
	stats   ScanStats
}

// NewState returns a State whose builders default to scanning mem.
func NewState(mem Memory, opts ...Option) *State {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &State{
		mem:    mem,
		opts:   o,
		shared: make(map[string]*SharedResult),
	}
}

// Memory returns the default scan memory.
func (s *State) Memory() Memory {
	return s.mem
}

// Logger returns the state's logger.
func (s *State) Logger() *Logger {
	return s.opts.logger
}

// PatternBuilder returns a builder preset with the state's memory.
func (s *State) PatternBuilder() *Builder {
	return &Builder{state: s, mem: s.mem}
}

func (s *State) sharedFor(uid string, mode ScanMode) *SharedResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.shared[uid]; ok {
		return r
	}
	r := newSharedResult(mode, NewResultStore(s.opts.resultCapacity))
	s.shared[uid] = r
	s.uids = append(s.uids, uid)
	return r
}

// AddPattern queues a description for the next Scan. Nil is ignored so the
// result of a failed Build can be passed straight through.
func (s *State) AddPattern(d *Description) *State {
	if d == nil {
		return s
	}
	s.mu.Lock()
	s.pending = append(s.pending, d)
	s.mu.Unlock()
	return s
}

// Add builds b and queues the description. Build errors are logged and
// returned; nothing is queued for them.
func (s *State) Add(b *Builder) error {
	d, err := b.Build()
	uid, pattern := b.uid, b.text
	switch {
	case d != nil:
		uid, pattern = d.UID(), d.Source()
	case b.hasRaw:
		pattern = fmt.Sprintf("% X", b.raw)
	}
	s.opts.logger.LogBuild(context.Background(), uid, pattern, err)
	if err != nil {
		return err
	}
	s.AddPattern(d)
	return nil
}

// Result returns the result bucket of uid, or nil if the UID was never
// registered. A nil result reads as empty.
func (s *State) Result(uid string) *SharedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shared[uid]
}

// UIDs returns the registered UIDs in registration order.
func (s *State) UIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uids...)
}

// Pending returns the descriptions queued for the next Scan.
func (s *State) Pending() []*Description {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Description(nil), s.pending...)
}

// Reset clears every UID's results and finished flag, keeping the UIDs
// registered. Use it between independent scan passes; without it results
// accumulate and finished UIDs stay answered.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.shared {
		r.Reset()
	}
}

// Stats returns the counters of the last Scan.
func (s *State) Stats() ScanStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// AllFound reports whether every registered UID has at least one result.
func (s *State) AllFound() bool {
	_, all := s.countFound()
	return all
}

func (s *State) countFound() (found int, all bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all = true
	for _, r := range s.shared {
		if r.Found() {
			found++
		} else {
			all = false
		}
	}
	return found, all
}
