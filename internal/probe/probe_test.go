package probe

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPProbe_Online(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	p := NewTCPProbe("127.0.0.1", port, time.Second)

	assert.True(t, p.IsOnline(context.Background()))
}

func TestTCPProbe_ClosedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	p := NewTCPProbe("127.0.0.1", port, time.Second)

	assert.False(t, p.IsOnline(context.Background()))
}

func TestTCPProbe_HangingDialBoundedByTimeout(t *testing.T) {
	timeout := 100 * time.Millisecond
	p := NewTCPProbe("remote.invalid", 443, timeout)

	var dialed string
	p.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		dialed = addr
		<-ctx.Done()
		return nil, ctx.Err()
	}

	start := time.Now()
	online := p.IsOnline(context.Background())
	elapsed := time.Since(start)

	assert.False(t, online)
	assert.Equal(t, "remote.invalid:443", dialed)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+time.Second)
}

func TestTCPProbe_CallerContextCancelled(t *testing.T) {
	p := NewTCPProbe("remote.invalid", 443, time.Minute)
	p.dial = func(ctx context.Context, _, _ string) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, p.IsOnline(ctx))
}

func TestTCPProbe_UnroutableWithinTimeout(t *testing.T) {
	const addr = "10.255.255.1:443"
	timeout := 300 * time.Millisecond

	// Some networks intercept outbound connects; the address is only
	// unreachable where nothing answers for it.
	if conn, err := net.DialTimeout("tcp", addr, timeout); err == nil {
		conn.Close()
		t.Skip("host network accepts connections to", addr)
	}

	p := NewTCPProbe("10.255.255.1", 443, timeout)

	start := time.Now()
	online := p.IsOnline(context.Background())
	elapsed := time.Since(start)

	assert.False(t, online)
	assert.Less(t, elapsed, timeout+time.Second)
}

func TestTCPProbe_Concurrent(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	p := NewTCPProbe("127.0.0.1", ln.Addr().(*net.TCPAddr).Port, time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, p.IsOnline(context.Background()))
		}()
	}
	wg.Wait()
}

func TestTCPProbe_Address(t *testing.T) {
	p := NewTCPProbe("www.google.com", 443, time.Second)
	assert.Equal(t, "www.google.com:443", p.Address())
}
