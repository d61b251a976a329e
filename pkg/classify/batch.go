package classify

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceJIC/pkg/bitstream"
)

// Result is the outcome for one pin of a batch.
type Result struct {
	Pin            string
	Classification *Classification // nil when Err is set
	Err            error
}

// Progress reports the state of a batch.
type Progress struct {
	Pin    string // Pin just finished
	Done   int    // Pins finished so far
	Failed int    // Pins that failed so far
	Total  int    // Pins in the batch
}

// BatchOptions controls ClassifyBatch.
type BatchOptions struct {
	Workers  int             // Parallel workers (default: GOMAXPROCS)
	Progress chan<- Progress // Optional, must be drained by the caller
}

// ClassifyBatch classifies pins of img in parallel. The returned results are
// in pin order, one per pin, each carrying either a classification or that
// pin's error.
//
// The returned error aggregates every per-pin error. If ctx is cancelled the
// remaining pins are abandoned, their results carry the context error, and
// ctx.Err() is returned. A cancellation that arrives after every pin has
// finished is not reported.
func (c *Classifier) ClassifyBatch(ctx context.Context, img *bitstream.Image, pins []string, opts BatchOptions) ([]Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(pins))
	for i, pin := range pins {
		results[i].Pin = pin
	}

	var (
		mu     sync.Mutex
		done   int
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, pin := range pins {
		i, pin := i, pin
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return nil
			}

			cl, err := c.Classify(img, pin)
			results[i].Classification = cl
			results[i].Err = err
			if err != nil {
				level.Warn(c.logger).Log("msg", "failed to classify pin", "pin", pin, "err", err)
			}

			mu.Lock()
			done++
			if err != nil {
				failed++
			}
			p := Progress{Pin: pin, Done: done, Failed: failed, Total: len(pins)}
			mu.Unlock()

			if opts.Progress != nil {
				select {
				case opts.Progress <- p:
				case <-gctx.Done():
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	abandoned := false
	for i := range results {
		if results[i].Classification == nil && results[i].Err == nil {
			results[i].Err = ctx.Err()
			abandoned = true
		}
	}
	if abandoned {
		return results, ctx.Err()
	}

	var merr *multierror.Error
	for _, r := range results {
		if r.Err != nil {
			merr = multierror.Append(merr, fmt.Errorf("pin %s: %w", r.Pin, r.Err))
		}
	}
	return results, merr.ErrorOrNil()
}
