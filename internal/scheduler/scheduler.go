// Package scheduler runs the expander over a set of targets using one of
// three strategies: collect everything behind a barrier, stream results as
// they finish, or walk targets one at a time.
package scheduler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/marketloop/pathfinder/internal/expander"
	"github.com/marketloop/pathfinder/internal/lexicon"
	"github.com/marketloop/pathfinder/internal/network"
	"github.com/marketloop/pathfinder/internal/stopper"
)

// ProcessedCounter is a monotonic, concurrency-safe progress signal — the
// Go analogue of an atomic relaxed-ordering counter (spec.md §5).
type ProcessedCounter struct {
	n atomic.Int64
}

// Inc increments the counter by one and returns the new value.
func (c *ProcessedCounter) Inc() int64 { return c.n.Add(1) }

// Load returns the current count.
func (c *ProcessedCounter) Load() int64 { return c.n.Load() }

// TargetResult pairs a target with the walks found for it.
type TargetResult struct {
	Target lexicon.ExchangeCurrency
	Paths  [][]lexicon.Operation
}

// ParallelCollect expands every target concurrently, bounded to workers
// goroutines in flight, and returns once all targets have been searched
// (spec.md §4.5 "parallel_collect"). A nil counter is allowed.
func ParallelCollect(net *network.Network, settings stopper.Settings, targets []lexicon.ExchangeCurrency, workers int, counter *ProcessedCounter) (map[lexicon.ExchangeCurrency][][]lexicon.Operation, error) {
	results := make(map[lexicon.ExchangeCurrency][][]lexicon.Operation, len(targets))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(context.Background())
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, target := range targets {
		target := target
		g.Go(func() error {
			paths := expander.Expand(net, settings, target)
			mu.Lock()
			results[target] = paths
			mu.Unlock()
			if counter != nil {
				counter.Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// streamBufferSize bounds the result channel so a slow consumer suspends
// the producer goroutines instead of letting them race ahead unbounded
// (spec.md §5 "suspends the producer when the result channel is full").
const streamBufferSize = 16

// ParallelStream expands every target concurrently, bounded to workers
// goroutines in flight, and emits each target's result on the returned
// channel as soon as it finishes rather than waiting for the whole set
// (spec.md §4.5 "parallel_stream"). The channel is closed once every
// target has been processed.
func ParallelStream(net *network.Network, settings stopper.Settings, targets []lexicon.ExchangeCurrency, workers int, counter *ProcessedCounter) <-chan TargetResult {
	out := make(chan TargetResult, streamBufferSize)
	go func() {
		defer close(out)
		g, _ := errgroup.WithContext(context.Background())
		if workers > 0 {
			g.SetLimit(workers)
		}
		for _, target := range targets {
			target := target
			g.Go(func() error {
				paths := expander.Expand(net, settings, target)
				out <- TargetResult{Target: target, Paths: paths}
				if counter != nil {
					counter.Inc()
				}
				return nil
			})
		}
		g.Wait()
	}()
	return out
}

// Sequential expands every target one at a time on the calling goroutine
// (spec.md §4.5 "sequential"). Useful for small target sets or settings
// aggressive enough that parallelism isn't worth the coordination cost.
func Sequential(net *network.Network, settings stopper.Settings, targets []lexicon.ExchangeCurrency, counter *ProcessedCounter) map[lexicon.ExchangeCurrency][][]lexicon.Operation {
	results := make(map[lexicon.ExchangeCurrency][][]lexicon.Operation, len(targets))
	for _, target := range targets {
		results[target] = expander.Expand(net, settings, target)
		if counter != nil {
			counter.Inc()
		}
	}
	return results
}

// Chunks splits targets into ordered, size-bounded groups for crash-
// resumable runs: each chunk can be searched and persisted independently,
// and a resumed run skips chunks the resume store already marked complete
// (spec.md §4.5, supplemental). Targets are sorted first so chunk
// boundaries are stable across runs over the same target set.
func Chunks(targets []lexicon.ExchangeCurrency, size int) [][]lexicon.ExchangeCurrency {
	if size <= 0 {
		size = len(targets)
	}
	sorted := make([]lexicon.ExchangeCurrency, len(targets))
	copy(sorted, targets)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	var chunks [][]lexicon.ExchangeCurrency
	for i := 0; i < len(sorted); i += size {
		end := i + size
		if end > len(sorted) {
			end = len(sorted)
		}
		chunks = append(chunks, sorted[i:end])
	}
	return chunks
}
