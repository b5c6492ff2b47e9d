// Package parallel splits row-wise matrix work across goroutines.
//
// Each row range is handed to exactly one goroutine and Rows returns only
// after every range is done, so callers see the result of the plain loop.
package parallel

import (
	"runtime"
	"sync"
)

// Config bounds how row work is split.
type Config struct {
	Workers int // Goroutines per call; below 2 runs inline.
	MinRows int // Smallest range handed to one goroutine.
}

// DefaultConfig uses one worker per CPU and ranges of at least 256 rows.
func DefaultConfig() Config {
	return Config{Workers: runtime.NumCPU(), MinRows: 256}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{}
}

// split returns the range length for n rows, or 0 when the work is too
// small to be worth spreading.
func (c Config) split(n int) int {
	if c.Workers < 2 || n < 2*max(c.MinRows, 1) {
		return 0
	}
	return max((n+c.Workers-1)/c.Workers, c.MinRows)
}

// Rows calls f over consecutive half-open ranges [lo, hi) covering [0, n).
func Rows(n int, cfg Config, f func(lo, hi int)) {
	size := cfg.split(n)
	if size == 0 {
		if n > 0 {
			f(0, n)
		}
		return
	}

	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += size {
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			f(lo, hi)
		}(lo, min(lo+size, n))
	}
	wg.Wait()
}
