package scanner

import (
	"context"
	"sync"
	"sync/atomic"

	"porthound/models"
)

// DefaultConcurrency bounds the worker pool when the caller does not set
// one. Unbounded fan-out exhausts local ephemeral ports and trips
// target-side rate limiting.
const DefaultConcurrency = 100

// Scheduler fans probe units out to a fixed-size worker pool and
// collects results in input order. Each scan owns its own scheduler;
// no state survives between runs.
type Scheduler struct {
	Concurrency int
	WantBanner  bool
	Probe       ProbeFunc
}

// NewScheduler creates a scheduler around the given probe function.
func NewScheduler(concurrency int, wantBanner bool, probe ProbeFunc) *Scheduler {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scheduler{Concurrency: concurrency, WantBanner: wantBanner, Probe: probe}
}

// Run probes every unit under the concurrency bound and returns one
// result per unit, in input order regardless of completion order. The
// returned slice always has len(units) entries: on cancellation the
// dispatch loop stops promptly, in-flight probes finish or time out
// naturally, and units never dispatched keep the not_scanned marker. A
// single probe outcome never aborts its siblings.
func (s *Scheduler) Run(ctx context.Context, units []models.ProbeUnit) []models.ProbeResult {
	results := make([]models.ProbeResult, len(units))
	for i, u := range units {
		results[i] = models.ProbeResult{Host: u.Host, Port: u.Port, State: models.StateNotScanned}
	}
	if len(units) == 0 {
		return results
	}

	workers := s.Concurrency
	if workers <= 0 {
		workers = DefaultConcurrency
	}
	if workers > len(units) {
		workers = len(units)
	}

	// Workers claim units through an atomic cursor; result writes are
	// disjoint by index, so the buffer needs no locking.
	var cursor int64 = -1
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				idx := int(atomic.AddInt64(&cursor, 1))
				if idx >= len(units) {
					return
				}
				u := units[idx]
				results[idx] = s.Probe(u.Host, u.Port, s.WantBanner)
			}
		}()
	}
	wg.Wait()

	return results
}
