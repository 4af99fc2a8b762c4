package bytescan

import (
	"context"
	"fmt"
	"sync"
)

// FindFirst returns the lowest address in mem matching pattern, or 0 if
// there is none.
func FindFirst(ctx context.Context, mem Memory, pattern string, opts ...Option) (Address, error) {
	s := NewState(mem, opts...)
	if err := s.Add(s.PatternBuilder().SetPattern(pattern).StopOnFirstMatch()); err != nil {
		return 0, err
	}
	if _, err := Scan(ctx, s); err != nil {
		return 0, err
	}
	return s.Result(pattern).First(), nil
}

// FindAll returns every address in mem matching pattern, in ascending order.
func FindAll(ctx context.Context, mem Memory, pattern string, opts ...Option) ([]Address, error) {
	s := NewState(mem, opts...)
	if err := s.Add(s.PatternBuilder().SetPattern(pattern)); err != nil {
		return nil, err
	}
	if _, err := Scan(ctx, s); err != nil {
		return nil, err
	}
	return s.Result(pattern).All(), nil
}

// FindEach calls handler for every match of pattern in mem in ascending
// address order. Returning false from the handler stops the search.
func FindEach(ctx context.Context, mem Memory, pattern string, handler MatchHandler, opts ...Option) error {
	s := NewState(mem, opts...)
	d, err := s.PatternBuilder().SetPattern(pattern).Build()
	if err != nil {
		return err
	}

	n := d.Pattern().Len()
	seen := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more := d.Step()

		all := d.Shared().All()
		for _, addr := range all[seen:] {
			data, _ := mem.Bytes(addr, addr+Address(n))
			if handler != nil && !handler(Match{Address: addr, Data: data}) {
				return nil
			}
		}
		seen = len(all)

		if !more {
			return nil
		}
	}
}

// PatternSpec is one candidate pattern of a batch. Specs sharing a UID are
// alternatives for the same value.
type PatternSpec struct {
	UID        string
	Pattern    string
	Transforms []Transform
}

// BatchResults caches per-UID answers across FindBatchFirst calls.
type BatchResults struct {
	mu     sync.RWMutex
	values map[string]Address
}

// NewBatchResults returns an empty cache.
func NewBatchResults() *BatchResults {
	return &BatchResults{values: make(map[string]Address)}
}

// First returns the cached value of uid, or 0.
func (c *BatchResults) First(uid string) Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[uid]
}

// Has reports whether uid has a cached value.
func (c *BatchResults) Has(uid string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[uid]
	return ok
}

// All returns a copy of the cache.
func (c *BatchResults) All() map[string]Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Address, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

func (c *BatchResults) setIfAbsent(uid string, v Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[uid]; !ok {
		c.values[uid] = v
	}
}

// FindBatchFirst resolves every UID of specs to its first match, skipping
// UIDs the cache already answers. New answers are added to the cache;
// existing ones are never overwritten. It reports whether every UID of
// specs has an answer afterwards.
func FindBatchFirst(ctx context.Context, mem Memory, specs []PatternSpec, cache *BatchResults, opts ...Option) (bool, error) {
	if cache == nil {
		cache = NewBatchResults()
	}
	if err := validateSpecs(specs); err != nil {
		return false, err
	}

	s := NewState(mem, opts...)
	for _, spec := range specs {
		if cache.Has(spec.UID) {
			continue
		}
		if err := s.Add(specBuilder(s, spec).StopOnFirstMatch()); err != nil {
			return false, err
		}
	}
	if _, err := Scan(ctx, s); err != nil {
		return false, err
	}

	for _, uid := range s.UIDs() {
		if r := s.Result(uid); r.Found() {
			cache.setIfAbsent(uid, r.First())
		}
	}

	for _, spec := range specs {
		if !cache.Has(spec.UID) {
			return false, nil
		}
	}
	return true, nil
}

// FindBatch collects every match of every spec, grouped by UID. It reports
// whether every UID has at least one value.
func FindBatch(ctx context.Context, mem Memory, specs []PatternSpec, opts ...Option) (map[string][]Address, bool, error) {
	if err := validateSpecs(specs); err != nil {
		return nil, false, err
	}

	s := NewState(mem, opts...)
	for _, spec := range specs {
		if err := s.Add(specBuilder(s, spec)); err != nil {
			return nil, false, err
		}
	}
	all, err := Scan(ctx, s)
	if err != nil {
		return nil, false, err
	}

	out := make(map[string][]Address, len(specs))
	for _, uid := range s.UIDs() {
		out[uid] = s.Result(uid).All()
	}
	return out, all, nil
}

func specBuilder(s *State, spec PatternSpec) *Builder {
	b := s.PatternBuilder().SetUID(spec.UID).SetPattern(spec.Pattern)
	for _, t := range spec.Transforms {
		b.AddTransform(t)
	}
	return b
}

func validateSpecs(specs []PatternSpec) error {
	for _, spec := range specs {
		if spec.UID == "" {
			return fmt.Errorf("pattern %q: empty uid", spec.Pattern)
		}
		if _, err := ParsePattern(spec.Pattern); err != nil {
			return fmt.Errorf("uid %s: %w", spec.UID, err)
		}
	}
	return nil
}
