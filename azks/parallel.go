package azks

import (
	"runtime"

	"golang.org/x/sync/semaphore"
)

// ParallelismConfig bounds the fork-join work of a batch insertion.
// Workers is the number of extra goroutines that may run subtrees
// concurrently; partitions with fewer than Threshold elements are always
// processed inline.
type ParallelismConfig struct {
	Workers   int `toml:"workers"`
	Threshold int `toml:"threshold"`
}

// Disabled processes every insertion on the calling goroutine.
func Disabled() ParallelismConfig {
	return ParallelismConfig{}
}

// Parallel uses up to workers extra goroutines for partitions of at
// least threshold elements.
func Parallel(workers, threshold int) ParallelismConfig {
	return ParallelismConfig{Workers: workers, Threshold: threshold}
}

// DefaultParallelism uses one worker per CPU.
func DefaultParallelism() ParallelismConfig {
	return Parallel(runtime.GOMAXPROCS(0), 64)
}

// Enabled reports whether any work may run off the calling goroutine.
func (c ParallelismConfig) Enabled() bool {
	return c.Workers > 0
}

type workerPool struct {
	sem       *semaphore.Weighted
	threshold int
}

func newWorkerPool(c ParallelismConfig) *workerPool {
	if !c.Enabled() {
		return nil
	}
	return &workerPool{
		sem:       semaphore.NewWeighted(int64(c.Workers)),
		threshold: c.Threshold,
	}
}

// fork runs left and right, concurrently if a worker is free and the
// partition holds at least threshold elements. It never blocks waiting
// for a worker, so nested forks cannot deadlock.
func (p *workerPool) fork(n int, left, right func() error) error {
	if p == nil || n == 0 || n < p.threshold || !p.sem.TryAcquire(1) {
		if err := left(); err != nil {
			return err
		}
		return right()
	}
	errc := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		errc <- left()
	}()
	rerr := right()
	if lerr := <-errc; lerr != nil {
		return lerr
	}
	return rerr
}
