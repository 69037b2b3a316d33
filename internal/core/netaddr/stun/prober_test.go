package stun

import (
	"context"
	"net"
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pion/stun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netaddr/internal/core/metrics"
	"github.com/dep2p/go-netaddr/internal/core/netaddr/stun/stuntest"
	"github.com/dep2p/go-netaddr/pkg/types"
)

var (
	loopback = netip.MustParseAddr("127.0.0.1")
	external = types.NewSocketEndpoint(netip.MustParseAddr("203.0.113.5"), 40000)
)

// anyLocal 127.0.0.1 上的随机端口
func anyLocal() types.SocketEndpoint {
	return types.NewSocketEndpoint(loopback, 0)
}

type observation struct {
	outcome metrics.Outcome
	elapsed time.Duration
}

// recordingReporter 记录探测结果
type recordingReporter struct {
	mu    sync.Mutex
	probe []observation
}

func (r *recordingReporter) ObserveSelection(metrics.SelectionSource) {}

func (r *recordingReporter) ObserveProbe(o metrics.Outcome, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probe = append(r.probe, observation{o, d})
}

func (r *recordingReporter) outcomes() []metrics.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]metrics.Outcome, 0, len(r.probe))
	for _, o := range r.probe {
		out = append(out, o.outcome)
	}
	return out
}

// ============================================================================
//                              构造
// ============================================================================

func TestNewProber_Defaults(t *testing.T) {
	p := NewProber("stun.example.org:3478")

	assert.Equal(t, "stun.example.org:3478", p.Server())
	assert.Equal(t, DefaultTimeout, p.Timeout())
}

func TestNewProber_Options(t *testing.T) {
	p := NewProber("127.0.0.1:3478", WithTimeout(250*time.Millisecond), WithReporter(nil), WithClock(nil), WithResolver(nil))
	assert.Equal(t, 250*time.Millisecond, p.Timeout())
	assert.NotNil(t, p.reporter)
	assert.NotNil(t, p.clock)
	assert.Same(t, net.DefaultResolver, p.resolver)

	p = NewProber("127.0.0.1:3478", WithTimeout(0), WithTimeout(-time.Second))
	assert.Equal(t, DefaultTimeout, p.Timeout())
}

// ============================================================================
//                              成功路径
// ============================================================================

func TestProbeExternalEndpoint_Found(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Fixed(external))
	rep := &recordingReporter{}
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second), WithReporter(rep))

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "203.0.113.5:40000", ep.String())
	assert.True(t, ep.Equal(external))
	assert.Equal(t, 1, srv.Requests())
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeFound}, rep.outcomes())
}

func TestProbeExternalEndpoint_UnspecifiedLocal(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Fixed(external))
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second))
	unspecified := types.NewSocketEndpoint(netip.IPv4Unspecified(), 0)

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), unspecified)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, external, ep)
}

func TestProbeExternalEndpoint_MappedAddressFallback(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.FixedMapped(external))
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second))

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, external, ep)
}

func TestProbeExternalEndpoint_ReleasesSocket(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Reflect())
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second))

	// 先拿到一个空闲端口
	conn, err := Bind(context.Background(), anyLocal())
	require.NoError(t, err)
	local, ok := types.EndpointFromUDPAddr(conn.LocalAddr().(*net.UDPAddr))
	require.True(t, ok)
	require.NoError(t, conn.Close())

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), local)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, local, ep)

	// 返回后端口已释放，可以再次绑定
	again, err := Bind(context.Background(), local)
	require.NoError(t, err)
	_ = again.Close()
}

func TestProbeConn_KeepsConnOpen(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Reflect())
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second))

	conn, err := Bind(context.Background(), anyLocal())
	require.NoError(t, err)
	defer conn.Close()

	local, _ := types.EndpointFromUDPAddr(conn.LocalAddr().(*net.UDPAddr))

	ep, ok := p.ProbeConn(context.Background(), conn)
	require.True(t, ok)
	assert.Equal(t, local, ep, "反射服务器返回的应是绑定端点本身")

	// 同一个套接字可以继续使用
	ep, ok = p.ProbeConn(context.Background(), conn)
	require.True(t, ok)
	assert.Equal(t, local, ep)
	assert.Equal(t, 2, srv.Requests())
}

func TestProbeConn_ClearsDeadline(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Fixed(external))
	p := NewProber(srv.Addr(), WithTimeout(100*time.Millisecond))

	conn, err := Bind(context.Background(), anyLocal())
	require.NoError(t, err)
	defer conn.Close()

	_, ok := p.ProbeConn(context.Background(), conn)
	require.True(t, ok)

	// 超过原截止时间后写入仍然成功
	time.Sleep(150 * time.Millisecond)
	_, err = conn.WriteTo([]byte("ping"), conn.LocalAddr())
	assert.NoError(t, err)
}

func TestProbeExternalEndpoint_IgnoresStaleTransaction(t *testing.T) {
	stale := types.NewSocketEndpoint(netip.MustParseAddr("198.51.100.1"), 1)
	srv := stuntest.NewServer(t, stuntest.WrongTransaction(stale, stuntest.Fixed(external)))
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second))

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, external, ep)
}

func TestProbeExternalEndpoint_IgnoresStrayDatagram(t *testing.T) {
	stray, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer stray.Close()

	fixed := stuntest.Fixed(external)
	srv := stuntest.NewServer(t, func(req *stun.Message, from *net.UDPAddr) [][]byte {
		// 第三方抢先发来的数据报
		_, _ = stray.WriteToUDP([]byte("hello from nowhere"), from)
		return fixed(req, from)
	})
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second))

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, external, ep)
}

// ============================================================================
//                              绑定失败
// ============================================================================

func TestProbeExternalEndpoint_PortInUse(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Fixed(external))
	rep := &recordingReporter{}
	p := NewProber(srv.Addr(), WithTimeout(time.Second), WithReporter(rep))

	occupied, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer occupied.Close()
	local, _ := types.EndpointFromUDPAddr(occupied.LocalAddr().(*net.UDPAddr))

	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), local)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindFailed)
	assert.True(t, IsBindError(err))
	assert.False(t, ok)
	assert.False(t, ep.IsValid())
	assert.Equal(t, 0, srv.Requests(), "绑定失败时不应发送请求")
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeBindError}, rep.outcomes())

	var bindErr *BindError
	require.ErrorAs(t, err, &bindErr)
	assert.Equal(t, local, bindErr.Endpoint)
	assert.NotNil(t, bindErr.Unwrap())
}

func TestBind_Exclusive(t *testing.T) {
	first, err := Bind(context.Background(), anyLocal())
	require.NoError(t, err)
	defer first.Close()
	local, _ := types.EndpointFromUDPAddr(first.LocalAddr().(*net.UDPAddr))

	_, err = Bind(context.Background(), local)

	assert.ErrorIs(t, err, ErrBindFailed)
}

func TestProber_BindReportsBindError(t *testing.T) {
	rep := &recordingReporter{}
	p := NewProber("127.0.0.1:3478", WithReporter(rep))

	first, err := p.Bind(context.Background(), anyLocal())
	require.NoError(t, err)
	defer first.Close()
	local, _ := types.EndpointFromUDPAddr(first.LocalAddr().(*net.UDPAddr))
	assert.NotZero(t, local.Port())

	conn, err := p.Bind(context.Background(), local)

	assert.Nil(t, conn)
	assert.ErrorIs(t, err, ErrBindFailed)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeBindError}, rep.outcomes())
}

func TestProbeExternalEndpoint_InvalidLocal(t *testing.T) {
	p := NewProber("127.0.0.1:3478")

	_, ok, err := p.ProbeExternalEndpoint(context.Background(), types.SocketEndpoint{})

	assert.ErrorIs(t, err, ErrBindFailed)
	assert.False(t, ok)
}

// ============================================================================
//                              未获知
// ============================================================================

func TestProbeExternalEndpoint_SilentServerTimesOut(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Silent())
	rep := &recordingReporter{}
	timeout := 300 * time.Millisecond
	p := NewProber(srv.Addr(), WithTimeout(timeout), WithReporter(rep))

	start := time.Now()
	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, ep.IsValid())
	assert.GreaterOrEqual(t, elapsed, timeout-50*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
	assert.Equal(t, 1, srv.Requests())
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeTimeout}, rep.outcomes())
}

func TestProbeExternalEndpoint_UnusableResponses(t *testing.T) {
	cases := []struct {
		name    string
		handler stuntest.Handler
	}{
		{"error response", stuntest.ErrorResponse(stun.CodeServerError)},
		{"no address", stuntest.NoAddress()},
		{"not stun", stuntest.Garbage()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := stuntest.NewServer(t, tc.handler)
			rep := &recordingReporter{}
			p := NewProber(srv.Addr(), WithTimeout(2*time.Second), WithReporter(rep))

			ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())

			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, types.SocketEndpoint{}, ep)
			assert.Equal(t, []metrics.Outcome{metrics.OutcomeFailed}, rep.outcomes())
		})
	}
}

func TestProbeExternalEndpoint_BadServerAddress(t *testing.T) {
	for _, server := range []string{"", "no-port", "127.0.0.1:notaport", "127.0.0.1:70000"} {
		p := NewProber(server, WithTimeout(time.Second))

		_, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())

		assert.NoError(t, err, server)
		assert.False(t, ok, server)
	}
}

func TestProbeExternalEndpoint_SlowDNSBoundedByTimeout(t *testing.T) {
	// 不回复任何查询的 DNS 服务器
	dns, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer dns.Close()

	resolver := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", dns.LocalAddr().String())
		},
	}
	rep := &recordingReporter{}
	p := NewProber("stun.unreachable.test:3478",
		WithTimeout(300*time.Millisecond), WithResolver(resolver), WithReporter(rep))

	start := time.Now()
	ep, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, ep.IsValid())
	assert.Less(t, elapsed, 2*time.Second, "主机名解析也受 Timeout 约束")
	require.Len(t, rep.outcomes(), 1)
	assert.NotEqual(t, metrics.OutcomeFound, rep.outcomes()[0])
}

func TestProbeExternalEndpoint_ContextCancel(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Silent())
	p := NewProber(srv.Addr(), WithTimeout(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	start := time.Now()
	_, ok, err := p.ProbeExternalEndpoint(ctx, anyLocal())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProbeExternalEndpoint_ContextDeadlineCapsTimeout(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Silent())
	rep := &recordingReporter{}
	p := NewProber(srv.Addr(), WithTimeout(10*time.Second), WithReporter(rep))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, ok, err := p.ProbeExternalEndpoint(ctx, anyLocal())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, []metrics.Outcome{metrics.OutcomeTimeout}, rep.outcomes())
}

// ============================================================================
//                              计时
// ============================================================================

func TestProbeConn_ElapsedFromClock(t *testing.T) {
	srv := stuntest.NewServer(t, stuntest.Fixed(external))
	rep := &recordingReporter{}
	mock := clock.NewMock()
	p := NewProber(srv.Addr(), WithTimeout(2*time.Second), WithReporter(rep), WithClock(mock))

	_, ok, err := p.ProbeExternalEndpoint(context.Background(), anyLocal())
	require.NoError(t, err)
	require.True(t, ok)

	require.Len(t, rep.probe, 1)
	assert.Equal(t, time.Duration(0), rep.probe[0].elapsed, "模拟时钟未推进")
}

func TestIsTimeout(t *testing.T) {
	assert.True(t, isTimeout(context.DeadlineExceeded))
	assert.True(t, isTimeout(&net.OpError{Op: "read", Err: timeoutErr{}}))
	assert.False(t, isTimeout(context.Canceled))
	assert.False(t, isTimeout(errNotSTUN))
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }
