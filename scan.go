package bytescan

import (
	"context"
	"time"

	"github.com/zhuweiyou/bytescan/internal/workpool"
)

// Scan runs every queued description of s to completion and reports
// whether each registered UID ended up with at least one result.
//
// Work proceeds in rounds. In every round each description whose UID is
// still active and which has slices left performs one Step on the worker
// pool, and the round ends when all of them return. A UID becomes inactive
// once its result is finished or all of its descriptions are exhausted.
// The context is checked between rounds; on cancellation the results found
// so far are kept and ctx.Err() is returned.
//
// The queue is empty after Scan returns.
func Scan(ctx context.Context, s *State) (bool, error) {
	begin := time.Now()

	s.mu.Lock()
	descs := s.pending
	s.pending = nil
	s.mu.Unlock()

	byUID := make(map[string][]int)
	for i, d := range descs {
		byUID[d.uid] = append(byUID[d.uid], i)
	}
	active := make(map[string]bool, len(byUID))
	for uid := range byUID {
		active[uid] = true
	}

	pool := s.opts.pool
	if pool == nil {
		pool = workpool.New(s.opts.workers)
		defer pool.Close()
	}

	var (
		exhausted = make([]bool, len(descs))
		stats     = ScanStats{Descriptions: len(descs)}
		err       error
	)

	for len(active) > 0 {
		if err = ctx.Err(); err != nil {
			break
		}

		stats.Rounds++
		steps := 0
		for i, d := range descs {
			if exhausted[i] || !active[d.uid] {
				continue
			}
			steps++
			pool.Submit(func() {
				if !d.Step() {
					exhausted[i] = true
				}
			})
		}
		pool.Wait()
		stats.Steps += steps

		for uid := range active {
			if descs[byUID[uid][0]].shared.Finished() || allExhausted(exhausted, byUID[uid]) {
				delete(active, uid)
			}
		}
		s.opts.logger.LogRound(ctx, stats.Rounds, steps, len(active))
	}

	found, all := s.countFound()
	stats.UIDs = len(s.UIDs())
	stats.Found = found
	stats.Duration = time.Since(begin)

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()

	s.opts.logger.LogScan(ctx, stats, all, err)
	if err != nil {
		return false, err
	}
	return all, nil
}

func allExhausted(exhausted []bool, idx []int) bool {
	for _, i := range idx {
		if !exhausted[i] {
			return false
		}
	}
	return true
}
