package prober

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockExchanger struct {
	mock.Mock
}

func (m *mockExchanger) ExchangeContext(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, time.Duration, error) {
	args := m.Called(ctx, msg, addr)
	if resp := args.Get(0); resp != nil {
		return resp.(*dns.Msg), args.Get(1).(time.Duration), args.Error(2)
	}
	return nil, args.Get(1).(time.Duration), args.Error(2)
}

// timeoutErr satisfies net.Error with Timeout() == true, standing in for an
// i/o timeout from the transport.
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

type ProberTestSuite struct {
	suite.Suite
	client    *Client
	exchanger *mockExchanger
}

func (s *ProberTestSuite) SetupTest() {
	s.exchanger = new(mockExchanger)
	s.client = New("google.com", time.Second, WithExchanger(s.exchanger))
}

func answerMsg(n int) *dns.Msg {
	msg := new(dns.Msg)
	msg.Rcode = dns.RcodeSuccess
	for i := 0; i < n; i++ {
		msg.Answer = append(msg.Answer, &dns.A{
			Hdr: dns.RR_Header{
				Name:   dns.Fqdn("google.com"),
				Rrtype: dns.TypeA,
				Class:  dns.ClassINET,
				Ttl:    300,
			},
			A: net.IPv4(142, 250, 80, 46),
		})
	}
	return msg
}

func rcodeMsg(rcode int) *dns.Msg {
	msg := new(dns.Msg)
	msg.Rcode = rcode
	return msg
}

func (s *ProberTestSuite) TestProbeClassification() {
	testCases := []struct {
		name       string
		resp       *dns.Msg
		err        error
		responsive bool
		reason     Reason
	}{
		{
			name:       "answer with records is responsive",
			resp:       answerMsg(2),
			responsive: true,
		},
		{
			name:       "noerror with empty answer is responsive",
			resp:       rcodeMsg(dns.RcodeSuccess),
			responsive: true,
		},
		{
			name:   "nxdomain is not a liveness pass",
			resp:   rcodeMsg(dns.RcodeNameError),
			reason: ReasonOther,
		},
		{
			name:   "servfail maps to other",
			resp:   rcodeMsg(dns.RcodeServerFailure),
			reason: ReasonOther,
		},
		{
			name:   "refused maps to other",
			resp:   rcodeMsg(dns.RcodeRefused),
			reason: ReasonOther,
		},
		{
			name:   "formerr maps to malformed",
			resp:   rcodeMsg(dns.RcodeFormatError),
			reason: ReasonMalformed,
		},
		{
			name:   "nil response maps to malformed",
			err:    nil,
			reason: ReasonMalformed,
		},
		{
			name:   "net timeout maps to timeout",
			err:    timeoutErr{},
			reason: ReasonTimeout,
		},
		{
			name:   "context deadline maps to timeout",
			err:    context.DeadlineExceeded,
			reason: ReasonTimeout,
		},
		{
			name:   "op error timeout still maps to timeout",
			err:    &net.OpError{Op: "read", Net: "udp", Err: timeoutErr{}},
			reason: ReasonTimeout,
		},
		{
			name:   "connection refused maps to unreachable",
			err:    &net.OpError{Op: "dial", Net: "udp", Err: syscall.ECONNREFUSED},
			reason: ReasonUnreachable,
		},
		{
			name:   "no route maps to unreachable",
			err:    &net.OpError{Op: "dial", Net: "udp", Err: syscall.EHOSTUNREACH},
			reason: ReasonUnreachable,
		},
		{
			name:   "anything else maps to other",
			err:    errors.New("dns: id mismatch"),
			reason: ReasonOther,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			s.exchanger.On("ExchangeContext", mock.Anything, mock.Anything, mock.Anything).
				Return(tc.resp, time.Duration(0), tc.err).Once()

			out := s.client.Probe(context.Background(), "8.8.8.8")

			s.Equal(tc.responsive, out.Responsive)
			s.Equal(tc.reason, out.Reason)
			if tc.responsive {
				s.Equal(ReasonNone, out.Reason)
				s.NoError(out.Err)
			} else {
				s.Error(out.Err)
			}
			s.exchanger.AssertExpectations(s.T())
		})
	}
}

func (s *ProberTestSuite) TestProbeTargetsOnlyTheCandidate() {
	testCases := []struct {
		addr string
		want string
	}{
		{addr: "8.8.8.8", want: "8.8.8.8:53"},
		{addr: "2001:4860:4860::8888", want: "[2001:4860:4860::8888]:53"},
	}

	for _, tc := range testCases {
		s.Run(tc.addr, func() {
			s.SetupTest()
			s.exchanger.On("ExchangeContext", mock.Anything, mock.Anything, tc.want).
				Return(answerMsg(1), time.Duration(0), nil).Once()

			out := s.client.Probe(context.Background(), tc.addr)

			s.True(out.Responsive)
			s.exchanger.AssertExpectations(s.T())
		})
	}
}

func (s *ProberTestSuite) TestProbeSendsARecordQueryForDomain() {
	matchQuery := mock.MatchedBy(func(msg *dns.Msg) bool {
		return len(msg.Question) == 1 &&
			msg.Question[0].Qtype == dns.TypeA &&
			msg.Question[0].Name == dns.Fqdn("google.com")
	})
	s.exchanger.On("ExchangeContext", mock.Anything, matchQuery, mock.Anything).
		Return(answerMsg(1), time.Duration(0), nil).Once()

	out := s.client.Probe(context.Background(), "1.1.1.1")

	s.True(out.Responsive)
	s.exchanger.AssertExpectations(s.T())
}

func (s *ProberTestSuite) TestProbeAppliesDeadline() {
	s.exchanger.On("ExchangeContext", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			deadline, ok := ctx.Deadline()
			s.True(ok, "probe context must carry a deadline")
			s.LessOrEqual(time.Until(deadline), time.Second)
		}).
		Return(answerMsg(1), time.Duration(0), nil).Once()

	s.client.Probe(context.Background(), "1.1.1.1")
	s.exchanger.AssertExpectations(s.T())
}

func TestReasonString(t *testing.T) {
	for reason, want := range map[Reason]string{
		ReasonNone:        "none",
		ReasonTimeout:     "timeout",
		ReasonUnreachable: "unreachable",
		ReasonMalformed:   "malformed",
		ReasonOther:       "error",
	} {
		if got := reason.String(); got != want {
			t.Errorf("Reason(%d).String() = %q, want %q", int(reason), got, want)
		}
	}
}

func TestProberSuite(t *testing.T) {
	suite.Run(t, new(ProberTestSuite))
}
