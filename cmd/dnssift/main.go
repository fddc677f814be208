// Command `dnssift` filters a list of DNS servers down to the responsive ones.
//
// Given an input file with one server per line (an IPv4 or IPv6 literal
// followed by a hostname or comment), dnssift probes every server with a
// single A-record query and writes the lines of the servers that answered
// in time to the output file, sorted lexicographically.
//
// Usage:
//
//	dnssift <input-file> <output-file> [flags]
//
// Examples:
//
//	dnssift servers.txt alive.txt                 - Probe with defaults (google.com, 1s, 10 workers)
//	dnssift servers.txt alive.txt -d example.org  - Query example.org instead
//	dnssift servers.txt alive.txt -t 500ms -w 50  - Tighter timeout, more workers
//
// Timeouts use Go duration syntax ("500ms", "1s", "2s"). Defaults can also be
// set in ~/.dnssift/config.yaml; flags override the file.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/lc/dnssift/internal/buildinfo"
	"github.com/lc/dnssift/internal/config"
	"github.com/lc/dnssift/internal/pipeline"
	"github.com/lc/dnssift/internal/scheduler"
)

func main() {
	var (
		flagDomain  string
		flagTimeout time.Duration
		flagWorkers int
	)

	root := &cobra.Command{
		Use:   "dnssift <input-file> <output-file>",
		Short: "Filter a DNS server list down to the responsive entries",
		Long: `dnssift probes every server in a list with a single A-record query and
keeps only the ones that answer within the timeout. A server that answers
NOERROR with an empty answer section still counts as responsive; it is
live, it just has nothing for the test name.

The input is one server per line: an IP literal followed by whitespace and
an arbitrary hostname or comment, which is preserved verbatim in the
output. Blank lines and '#' comments are ignored.`,
		Example:       "dnssift servers.txt alive.txt -d example.org -t 500ms -w 50",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New().Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if cmd.Flags().Changed("domain") {
				cfg.Probe.Domain = flagDomain
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Probe.Timeout = flagTimeout
			}
			if cmd.Flags().Changed("workers") {
				cfg.Probe.Workers = flagWorkers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args[0], args[1])
		},
	}
	root.Flags().StringVarP(&flagDomain, "domain", "d", config.DefaultQueryDomain,
		"domain to query against each server")
	root.Flags().DurationVarP(&flagTimeout, "timeout", "t", config.DefaultTimeout,
		"combined time budget per probe")
	root.Flags().IntVarP(&flagWorkers, "workers", "w", config.DefaultWorkers,
		"number of probes in flight at once")

	// ---- version command ----
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("version: %s\n", buildinfo.Version)
			fmt.Printf("commit: %s\n", buildinfo.Commit)
		},
	}
	root.AddCommand(versionCmd)

	if err := root.Execute(); err != nil {
		color.New(color.FgHiRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, input, output string) error {
	disp := newDisplay(os.Stdout)

	pl := pipeline.New(cfg, pipeline.WithProgress(disp))
	sum, stats, err := pl.Run(ctx, input, output)
	disp.Stop()
	if err != nil {
		return err
	}

	if stats.Parsed == 0 {
		color.Yellow("No valid servers found in the input file.")
		return nil
	}

	printSummary(sum, stats)

	color.New(color.FgGreen, color.Bold).Printf("✓ %d responsive server(s) ", sum.Responsive)
	color.New(color.FgGreen).Printf("saved to ")
	color.New(color.FgHiGreen, color.Bold).Printf("%s\n", output)
	return nil
}

// printSummary renders the outcome counts as a table.
func printSummary(sum scheduler.Summary, stats pipeline.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Outcome", "Count"})
	table.SetHeaderColor(
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
		tablewriter.Colors{tablewriter.Bold, tablewriter.FgHiCyanColor},
	)
	table.SetBorder(false)

	rows := []struct {
		label string
		count int
	}{
		{"Tested", sum.Tested},
		{"Responsive", sum.Responsive},
		{"Timeout", sum.Timeouts},
		{"Unreachable", sum.Unreachable},
		{"Malformed", sum.Malformed},
		{"Other errors", sum.Other},
		{"Skipped lines", stats.Skipped},
	}
	for _, r := range rows {
		table.Append([]string{r.label, strconv.Itoa(r.count)})
	}

	color.New(color.Bold).Println("PROBE RESULTS:")
	table.Render()
}
