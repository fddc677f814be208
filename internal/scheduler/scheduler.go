// Package scheduler fans candidate servers out to a bounded pool of probe
// workers and aggregates the classified outcomes into a deterministic
// summary. Outcomes arrive in whatever order probes complete; the final
// result list is sorted by line text so two runs over the same input always
// produce identical output.
package scheduler

import (
	"context"
	"fmt"
	"sort"

	"github.com/gammazero/workerpool"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/lc/dnssift/internal/prober"
	"github.com/lc/dnssift/internal/serverlist"
)

// Result pairs a candidate with its probe outcome. Exactly one Result is
// produced per candidate.
type Result struct {
	Candidate serverlist.Candidate
	Outcome   prober.Outcome
}

// Progress receives one callback per completed probe. Callbacks come from a
// single aggregation goroutine, never concurrently, and in completion order
// rather than input order. Implementations must not block for long: they
// stall the fan-in, not the probes.
type Progress interface {
	ProbeDone(done, total int, res Result)
}

// NopProgress discards progress notifications.
type NopProgress struct{}

// ProbeDone implements Progress.
func (NopProgress) ProbeDone(int, int, Result) {}

// Summary is the aggregated result of a run.
type Summary struct {
	// Lines holds the original input line of every responsive candidate,
	// sorted lexicographically. Duplicate input lines stay duplicated.
	Lines []string

	Tested      int
	Responsive  int
	Timeouts    int
	Unreachable int
	Malformed   int
	Other       int
}

// Scheduler probes a set of candidates with bounded concurrency.
type Scheduler struct {
	prober   prober.Prober
	workers  int
	progress Progress
}

// Opt is a function option for configuring the Scheduler.
type Opt func(s *Scheduler)

// New creates a Scheduler running at most workers probes in flight at once.
func New(p prober.Prober, workers int, opts ...Opt) *Scheduler {
	s := &Scheduler{
		prober:   p,
		workers:  workers,
		progress: NopProgress{},
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

// WithProgress returns an option to set the progress sink.
func WithProgress(p Progress) Opt {
	return func(s *Scheduler) {
		s.progress = p
	}
}

// Run probes every candidate exactly once and blocks until all outcomes are
// in. There is no mid-probe cancellation: shutdown waits for in-flight
// probes, which are individually bounded by the prober's timeout. The
// returned summary satisfies Tested == Responsive + sum(failure counts).
func (s *Scheduler) Run(ctx context.Context, candidates []serverlist.Candidate) Summary {
	total := len(candidates)
	results := make(chan Result, s.workers)

	var (
		sum  Summary
		done atomic.Int64
	)

	// Single consumer: all aggregation state is touched only here, so the
	// fan-in needs no locking beyond the channel handoff.
	var grp errgroup.Group
	grp.Go(func() error {
		for res := range results {
			s.record(&sum, res)
			s.progress.ProbeDone(int(done.Inc()), total, res)
		}
		return nil
	})

	pool := workerpool.New(s.workers)
	for _, c := range candidates {
		c := c
		pool.Submit(func() {
			results <- Result{Candidate: c, Outcome: s.probe(ctx, c)}
		})
	}
	pool.StopWait()
	close(results)
	_ = grp.Wait() // the drain goroutine never errors

	sort.Strings(sum.Lines)
	return sum
}

func (s *Scheduler) record(sum *Summary, res Result) {
	sum.Tested++
	out := res.Outcome
	if out.Responsive {
		sum.Responsive++
		sum.Lines = append(sum.Lines, res.Candidate.Line)
		return
	}
	switch out.Reason {
	case prober.ReasonTimeout:
		sum.Timeouts++
	case prober.ReasonUnreachable:
		sum.Unreachable++
	case prober.ReasonMalformed:
		sum.Malformed++
	default:
		sum.Other++
	}
}

// probe runs one probe, converting a panic in the Prober into an
// unclassified failure so a single bad probe cannot take down the run or
// its sibling workers.
func (s *Scheduler) probe(ctx context.Context, c serverlist.Candidate) (out prober.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = prober.Outcome{
				Reason: prober.ReasonOther,
				Err:    fmt.Errorf("probe of %s panicked: %v", c.Addr, r),
			}
		}
	}()
	return s.prober.Probe(ctx, c.Addr)
}
