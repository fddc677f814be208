package prober

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"
)

// ErrEmptyResponse is returned inside an Outcome when the exchange succeeded
// but the response message was nil.
var ErrEmptyResponse = fmt.Errorf("empty response message")

// Reason classifies why a probe concluded a server is not responsive.
// The taxonomy is closed: every failure maps to exactly one of these,
// with ReasonOther as the named catch-all. A responsive outcome carries
// ReasonNone.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTimeout
	ReasonUnreachable
	ReasonMalformed
	ReasonOther
)

// String returns a short human-readable label for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTimeout:
		return "timeout"
	case ReasonUnreachable:
		return "unreachable"
	case ReasonMalformed:
		return "malformed"
	case ReasonOther:
		return "error"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Outcome is the classified result of a single probe. Exactly one Outcome is
// produced per candidate; a probe never returns a Go error to its caller.
type Outcome struct {
	Responsive bool
	Reason     Reason        // ReasonNone when Responsive
	RTT        time.Duration // time the exchange took, including failures
	Err        error         // underlying error for logging; nil when Responsive
}

// Prober is the capability boundary to the DNS transport: one query against
// one server address, returning a classified outcome. The scheduler depends
// only on this interface, so tests substitute fakes freely.
type Prober interface {
	Probe(ctx context.Context, addr string) Outcome
}

// Exchanger defines the interface for DNS message exchange.
type Exchanger interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, a string) (r *dns.Msg, rtt time.Duration, err error)
}

var _ Prober = (*Client)(nil)

// Client probes DNS servers by sending a single A-record query for a fixed
// domain directly to the address under test. The system resolver
// configuration is never consulted.
type Client struct {
	Client  Exchanger
	Domain  string
	Timeout time.Duration
}

// Opt is a function option for configuring the Client.
type Opt func(c *Client)

// New creates a new Client that queries domain with the given combined
// time budget per probe. The budget covers the whole exchange: connection
// attempt and query lifetime together.
func New(domain string, timeout time.Duration, opts ...Opt) *Client {
	c := &Client{
		Client: &dns.Client{
			Timeout: timeout,
		},
		Domain:  domain,
		Timeout: timeout,
	}

	for _, o := range opts {
		o(c)
	}

	return c
}

// WithExchanger returns an option to substitute the DNS exchange
// implementation, mainly for tests.
func WithExchanger(e Exchanger) Opt {
	return func(c *Client) {
		c.Client = e
	}
}

// Probe sends one A-record query for the configured domain to addr on port
// 53 and classifies the result. No retries: a failed probe is final.
func (c *Client) Probe(ctx context.Context, addr string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	req := &dns.Msg{}
	req.SetQuestion(dns.Fqdn(c.Domain), dns.TypeA)

	start := time.Now()
	resp, _, err := c.Client.ExchangeContext(ctx, req, net.JoinHostPort(addr, "53"))
	elapsed := time.Since(start)

	return classify(resp, elapsed, err)
}

// classify maps an exchange result onto the outcome taxonomy.
//
// A NOERROR response with an empty answer section still counts as
// responsive: the server is live and cooperative, it merely has nothing for
// the test name. This conflates "server alive" with "server resolves the
// test domain" on purpose; NXDOMAIN and the remaining rcodes do NOT get the
// same benefit and land in ReasonOther, matching the historical behavior of
// this filter.
func classify(resp *dns.Msg, elapsed time.Duration, err error) Outcome {
	if err != nil {
		return Outcome{Reason: reasonForError(err), RTT: elapsed, Err: err}
	}
	if resp == nil {
		return Outcome{Reason: ReasonMalformed, RTT: elapsed, Err: ErrEmptyResponse}
	}
	if len(resp.Answer) > 0 {
		return Outcome{Responsive: true, RTT: elapsed}
	}

	switch resp.Rcode {
	case dns.RcodeSuccess:
		return Outcome{Responsive: true, RTT: elapsed}
	case dns.RcodeFormatError:
		return Outcome{
			Reason: ReasonMalformed,
			RTT:    elapsed,
			Err:    fmt.Errorf("server rejected query: %s", dns.RcodeToString[resp.Rcode]),
		}
	default:
		return Outcome{
			Reason: ReasonOther,
			RTT:    elapsed,
			Err:    fmt.Errorf("server returned %s", dns.RcodeToString[resp.Rcode]),
		}
	}
}

// reasonForError buckets transport-level failures. Order matters: timeouts
// are checked before *net.OpError because an OpError can itself be a
// timeout.
func reasonForError(err error) Reason {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return ReasonTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var operr *net.OpError
	if errors.As(err, &operr) {
		// Connection refused, no route to host, network unreachable.
		return ReasonUnreachable
	}
	return ReasonOther
}
