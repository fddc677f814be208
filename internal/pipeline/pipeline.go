// Package pipeline wires the full dnssift run together: read and parse the
// input list, probe every candidate through the scheduler, and atomically
// write the responsive lines to the output file. Per-line and per-candidate
// failures are downgraded to warnings or classifications; only file-system
// failures at open or write time surface as errors.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lc/dnssift/internal/config"
	"github.com/lc/dnssift/internal/filesys"
	"github.com/lc/dnssift/internal/log"
	"github.com/lc/dnssift/internal/prober"
	"github.com/lc/dnssift/internal/scheduler"
	"github.com/lc/dnssift/internal/serverlist"
)

// Stats describes what the parser made of the input.
type Stats struct {
	Parsed  int // candidates handed to the scheduler
	Skipped int // data lines that did not yield an address
}

// Pipeline is a configured, reusable run of the filter.
type Pipeline struct {
	cfg      *config.Config
	fs       filesys.FileOps
	prober   prober.Prober
	progress scheduler.Progress
}

// Opt is a function option for configuring the Pipeline.
type Opt func(p *Pipeline)

// New creates a Pipeline from the given configuration. By default it probes
// over the real DNS transport and touches the real filesystem; tests
// substitute both via options.
func New(cfg *config.Config, opts ...Opt) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		fs:       filesys.OS(),
		progress: scheduler.NopProgress{},
	}

	for _, o := range opts {
		o(p)
	}
	if p.prober == nil {
		p.prober = prober.New(cfg.Probe.Domain, cfg.Probe.Timeout)
	}

	return p
}

// WithFS returns an option to substitute the filesystem implementation.
func WithFS(fs filesys.FileOps) Opt {
	return func(p *Pipeline) {
		p.fs = fs
	}
}

// WithProber returns an option to substitute the probe transport.
func WithProber(pr prober.Prober) Opt {
	return func(p *Pipeline) {
		p.prober = pr
	}
}

// WithProgress returns an option to set the progress sink.
func WithProgress(pr scheduler.Progress) Opt {
	return func(p *Pipeline) {
		p.progress = pr
	}
}

// Run filters the server list at input into output. It returns the probe
// summary and parse stats; the error is non-nil only for the two fatal
// conditions, an unreadable input file or an unwritable output file.
//
// With zero parsed candidates the run ends cleanly without touching the
// output file: there is nothing to test and nothing to report.
func (p *Pipeline) Run(ctx context.Context, input, output string) (scheduler.Summary, Stats, error) {
	lg := log.Logger.With("run_id", uuid.NewString())

	f, err := p.fs.Open(input)
	if err != nil {
		return scheduler.Summary{}, Stats{}, fmt.Errorf("opening input file %q: %w", input, err)
	}
	candidates, skipped, err := serverlist.Parse(f)
	if cerr := f.Close(); cerr != nil {
		lg.Warnf("closing input file: %v", cerr)
	}
	if err != nil {
		return scheduler.Summary{}, Stats{}, fmt.Errorf("reading input file %q: %w", input, err)
	}

	for _, sk := range skipped {
		lg.Warnf("could not parse address from line %d: %q - skipping", sk.LineNo, sk.Line)
	}
	stats := Stats{Parsed: len(candidates), Skipped: len(skipped)}

	if len(candidates) == 0 {
		lg.Infow("no usable servers found in input", "skipped", stats.Skipped)
		return scheduler.Summary{}, stats, nil
	}

	lg.Infow("starting probes",
		"servers", len(candidates),
		"domain", p.cfg.Probe.Domain,
		"timeout", p.cfg.Probe.Timeout,
		"workers", p.cfg.Probe.Workers,
	)

	sched := scheduler.New(p.prober, p.cfg.Probe.Workers, scheduler.WithProgress(p.progress))
	sum := sched.Run(ctx, candidates)

	if err := serverlist.WriteFile(p.fs, output, sum.Lines); err != nil {
		return sum, stats, err
	}

	lg.Infow("run complete",
		"tested", sum.Tested,
		"responsive", sum.Responsive,
		"timeouts", sum.Timeouts,
		"unreachable", sum.Unreachable,
		"skipped_lines", stats.Skipped,
	)
	return sum, stats, nil
}
