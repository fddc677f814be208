// Package prober sends a single classified DNS probe to a server address.
//
// A probe is one A-record query for a configured test domain, addressed
// exclusively to the server under test on port 53. The outcome is a closed
// tagged classification rather than an open-ended error:
//
//   - an answer with at least one record, or a NOERROR response with an
//     empty answer section, means the server is Responsive;
//   - a query that exceeds the combined time budget is a Timeout;
//   - a transport failure (connection refused, no route, network
//     unreachable) is Unreachable;
//   - a FORMERR response or an unparseable reply is Malformed;
//   - everything else, including NXDOMAIN and SERVFAIL, is Other.
//
// Treating an empty NOERROR answer as responsive is a deliberate
// liveness-vs-correctness tradeoff: the filter asks "is this server worth
// keeping in a resolver list", not "does it resolve this particular name".
//
// # Usage
//
//	p := prober.New("google.com", time.Second)
//	out := p.Probe(ctx, "8.8.8.8")
//	if out.Responsive {
//		fmt.Printf("alive in %v\n", out.RTT)
//	} else {
//		fmt.Printf("dead: %s (%v)\n", out.Reason, out.Err)
//	}
//
// The Client is safe for concurrent use; the scheduler runs many probes
// against one Client instance.
//
// # Implementation notes
//
//   - Uses github.com/miekg/dns for the exchange, via the Exchanger
//     interface so tests can substitute a fake.
//   - The per-probe timeout is applied twice on purpose: as the dns.Client
//     dial/read timeout and as a context deadline, so the combined attempt
//     and lifetime never exceed one budget.
//   - No retries. Candidate lists are long and a server that needs retries
//     is not a server worth keeping.
package prober
