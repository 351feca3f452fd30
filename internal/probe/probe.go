package probe

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/dtroode/signalements-server/internal/metrics"
	"github.com/dtroode/signalements-server/internal/model"
)

var _ model.ConnectivityProbe = (*TCPProbe)(nil)

// TCPProbe reports the remote side as reachable when a TCP connection to a
// well-known host can be opened within the timeout. It holds no mutable
// state and is safe for concurrent use.
type TCPProbe struct {
	addr    string
	timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewTCPProbe creates a probe dialing host:port.
func NewTCPProbe(host string, port int, timeout time.Duration) *TCPProbe {
	return &TCPProbe{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		timeout: timeout,
		dial:    (&net.Dialer{Timeout: timeout}).DialContext,
	}
}

// IsOnline dials once; any error, including the timeout, means offline.
func (p *TCPProbe) IsOnline(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dial(ctx, "tcp", p.addr)
	if err != nil {
		metrics.SetOnline(false)
		return false
	}
	_ = conn.Close()

	metrics.SetOnline(true)
	return true
}

// Address returns the probed host:port.
func (p *TCPProbe) Address() string {
	return p.addr
}
