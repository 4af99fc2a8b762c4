package bytescan

import (
	"runtime"

	"github.com/zhuweiyou/bytescan/internal/workpool"
)

type options struct {
	workers        int
	sliceSize      uint64
	prefilter      bool
	resultCapacity int
	logger         *Logger
	pool           *workpool.Pool
}

func defaultOptions() options {
	return options{
		workers:   runtime.NumCPU(),
		sliceSize: DefaultSliceSize,
		prefilter: true,
		logger:    NoopLogger(),
	}
}

// Option configures a State.
type Option func(*options)

// WithWorkers sets the number of scan workers. Zero runs every step on the
// goroutine calling Scan.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = max(n, 0)
	}
}

// WithSliceSize sets how many bytes one scan step covers. Smaller slices
// interleave many patterns more fairly at the cost of more rounds.
// Zero restores DefaultSliceSize.
func WithSliceSize(n uint64) Option {
	return func(o *options) {
		if n == 0 {
			n = DefaultSliceSize
		}
		o.sliceSize = n
	}
}

// WithPrefilter enables or disables literal-anchor candidate skipping.
// Results are the same either way.
func WithPrefilter(enabled bool) Option {
	return func(o *options) {
		o.prefilter = enabled
	}
}

// WithResultCapacity bounds how many values each UID keeps. Values past the
// bound are dropped and counted. Zero means unbounded.
func WithResultCapacity(n int) Option {
	return func(o *options) {
		o.resultCapacity = max(n, 0)
	}
}

// WithLogger sets the logger. Nil restores the no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithPool makes Scan use a long-lived pool instead of creating and closing
// one per call. The caller owns the pool and closes it. Scans sharing a
// pool must not run at the same time, since each waits for the pool to drain.
func WithPool(p *Pool) Option {
	return func(o *options) {
		if p == nil {
			o.pool = nil
			return
		}
		o.pool = p.p
	}
}

// Pool is a reusable set of scan workers.
type Pool struct {
	p *workpool.Pool
}

// NewPool starts a pool with n workers. Zero workers run tasks inline.
func NewPool(n int) *Pool {
	return &Pool{p: workpool.New(n)}
}

// Close joins every worker.
func (p *Pool) Close() {
	p.p.Close()
}
