package main

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uilive"

	"github.com/lc/dnssift/internal/prober"
	"github.com/lc/dnssift/internal/scheduler"
)

// display renders a live, single-line progress indicator while probes are
// running. It implements scheduler.Progress; callbacks arrive from the
// scheduler's single aggregation goroutine, so no locking is needed here.
type display struct {
	w *uilive.Writer
}

func newDisplay(out io.Writer) *display {
	w := uilive.New()
	w.Out = out
	w.Start()
	return &display{w: w}
}

// ProbeDone implements scheduler.Progress.
func (d *display) ProbeDone(done, total int, res scheduler.Result) {
	fmt.Fprintf(d.w, "Probing: %d/%d tested (%s for %s)\n",
		done, total, verdict(res.Outcome), res.Candidate.Addr)
}

// Stop flushes the last progress line and releases the writer's ticker.
func (d *display) Stop() {
	d.w.Stop()
}

// verdict renders a colored outcome label for the progress line.
func verdict(out prober.Outcome) string {
	if out.Responsive {
		return color.GreenString("responsive, %v", out.RTT.Round(time.Millisecond))
	}
	switch out.Reason {
	case prober.ReasonTimeout:
		return color.RedString("timeout")
	case prober.ReasonUnreachable:
		return color.RedString("unreachable")
	case prober.ReasonMalformed:
		return color.YellowString("malformed")
	default:
		return color.YellowString("error")
	}
}
