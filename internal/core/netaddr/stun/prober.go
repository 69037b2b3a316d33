package stun

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pion/stun"

	"github.com/dep2p/go-netaddr/internal/core/metrics"
	"github.com/dep2p/go-netaddr/internal/util/logger"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
	"github.com/dep2p/go-netaddr/pkg/types"
)

var log = logger.Logger("netaddr.stun")

// DefaultTimeout 等待一次 UDP 往返的默认时间
const DefaultTimeout = 3 * time.Second

// maxMessageSize 接收缓冲区大小，足够容纳一个以太网 MTU 的数据报
const maxMessageSize = 1500

// 查询失败原因，仅用于日志和指标
var (
	errNoMappedAddress  = errors.New("no mapped address in response")
	errNotSTUN          = errors.New("response is not a STUN message")
	errUnexpectedType   = errors.New("unexpected STUN message type")
	errUnsupportedLocal = errors.New("local address is not a UDP address")
)

// ============================================================================
//                              Prober 结构
// ============================================================================

// Prober 外部地址探测器
//
// 无共享可变状态，可以并发使用；并发探测同一端口时只有一个能绑定成功。
type Prober struct {
	server   string
	timeout  time.Duration
	reporter metrics.Reporter
	clock    clock.Clock
	resolver *net.Resolver
}

var _ netaddrif.ExternalProber = (*Prober)(nil)

// Option Prober 选项
type Option func(*Prober)

// WithTimeout 设置等待响应的时间，非正值忽略
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithReporter 设置指标上报
func WithReporter(r metrics.Reporter) Option {
	return func(p *Prober) {
		if r != nil {
			p.reporter = r
		}
	}
}

// WithClock 设置计时用的时钟（用于测试）
//
// 只影响耗时统计，套接字超时始终使用系统时间。
func WithClock(c clock.Clock) Option {
	return func(p *Prober) {
		if c != nil {
			p.clock = c
		}
	}
}

// WithResolver 设置解析会合服务器主机名的 DNS 解析器
func WithResolver(r *net.Resolver) Option {
	return func(p *Prober) {
		if r != nil {
			p.resolver = r
		}
	}
}

// NewProber 创建探测器
//
// server 为会合服务器地址 host:port，在构造时注入。
func NewProber(server string, opts ...Option) *Prober {
	p := &Prober{
		server:   server,
		timeout:  DefaultTimeout,
		reporter: metrics.NopReporter{},
		clock:    clock.New(),
		resolver: net.DefaultResolver,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Server 返回会合服务器地址
func (p *Prober) Server() string { return p.server }

// Timeout 返回等待响应的时间
func (p *Prober) Timeout() time.Duration { return p.timeout }

// ============================================================================
//                              公共方法
// ============================================================================

// ProbeExternalEndpoint 绑定 local 并查询会合服务器
//
// 只有绑定失败会返回错误（匹配 ErrBindFailed）。查询失败返回 ok == false。
// 返回前关闭套接字。
func (p *Prober) ProbeExternalEndpoint(ctx context.Context, local types.SocketEndpoint) (types.SocketEndpoint, bool, error) {
	conn, err := p.Bind(ctx, local)
	if err != nil {
		return types.SocketEndpoint{}, false, err
	}
	defer func() { _ = conn.Close() }()

	ext, ok := p.ProbeConn(ctx, conn)
	return ext, ok, nil
}

// Bind 独占绑定 local，失败时记录 bind_error 指标
//
// local 端口为 0 时由操作系统分配，实际端口从 conn.LocalAddr() 读取。
func (p *Prober) Bind(ctx context.Context, local types.SocketEndpoint) (net.PacketConn, error) {
	conn, err := Bind(ctx, local)
	if err != nil {
		log.Debug("绑定本地端点失败", "local", local, "err", err)
		p.reporter.ObserveProbe(metrics.OutcomeBindError, 0)
		return nil, err
	}
	return conn, nil
}

// ProbeConn 在已绑定的 conn 上查询会合服务器
//
// 不关闭 conn。返回时清除查询期间设置的读写截止时间。
func (p *Prober) ProbeConn(ctx context.Context, conn net.PacketConn) (types.SocketEndpoint, bool) {
	log.Info("阻塞：连接 STUN 服务器以获取公网端点", "server", p.server, "local", conn.LocalAddr())

	start := p.clock.Now()
	ext, err := p.query(ctx, conn)
	elapsed := p.clock.Since(start)

	if err != nil {
		outcome := metrics.OutcomeFailed
		if isTimeout(err) {
			outcome = metrics.OutcomeTimeout
		}
		log.Debug("STUN 查询失败", "server", p.server, "outcome", outcome, "elapsed", elapsed, "err", err)
		p.reporter.ObserveProbe(outcome, elapsed)
		return types.SocketEndpoint{}, false
	}

	log.Info("STUN 返回公网地址", "server", p.server, "addr", ext, "elapsed", elapsed)
	p.reporter.ObserveProbe(metrics.OutcomeFound, elapsed)
	return ext, true
}

// ============================================================================
//                              STUN 查询
// ============================================================================

// query 发送一次 Binding 请求并等待匹配的响应
//
// 来自其它地址或事务 ID 不匹配的数据报被忽略，继续等待直到截止时间。
func (p *Prober) query(ctx context.Context, conn net.PacketConn) (types.SocketEndpoint, error) {
	local, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return types.SocketEndpoint{}, errUnsupportedLocal
	}

	// 截止时间覆盖整个查询，包括会合服务器主机名的解析
	deadline := time.Now().Add(p.timeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()
	deadline, _ = ctx.Deadline()

	server, err := p.resolveServer(ctx, local)
	if err != nil {
		return types.SocketEndpoint{}, err
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return types.SocketEndpoint{}, fmt.Errorf("set deadline: %w", err)
	}

	// ctx 结束时立即唤醒阻塞的读取，conn 归调用方所有，不能关闭
	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()
	defer func() {
		close(stop)
		<-exited
		_ = conn.SetDeadline(time.Time{})
	}()

	req, err := stun.Build(stun.TransactionID, stun.BindingRequest)
	if err != nil {
		return types.SocketEndpoint{}, fmt.Errorf("build request: %w", err)
	}
	if _, err := conn.WriteTo(req.Raw, net.UDPAddrFromAddrPort(server)); err != nil {
		return types.SocketEndpoint{}, fmt.Errorf("send request: %w", err)
	}

	buf := make([]byte, maxMessageSize)
	for {
		n, from, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return types.SocketEndpoint{}, ctx.Err()
			}
			return types.SocketEndpoint{}, fmt.Errorf("read response: %w", err)
		}

		if !fromServer(from, server) {
			log.Debug("忽略非会合服务器的数据报", "from", from, "server", server)
			continue
		}

		res, err := decodeResponse(buf[:n])
		if err != nil {
			return types.SocketEndpoint{}, err
		}
		if res.TransactionID != req.TransactionID {
			log.Debug("忽略事务 ID 不匹配的响应", "from", from)
			continue
		}
		return mappedEndpoint(res)
	}
}

// resolveServer 按本地套接字的地址族解析会合服务器地址
func (p *Prober) resolveServer(ctx context.Context, local *net.UDPAddr) (netip.AddrPort, error) {
	host, portStr, err := net.SplitHostPort(p.server)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("parse server address %q: %w", p.server, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("parse server port %q: %w", portStr, err)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		return netip.AddrPortFrom(ip.Unmap(), uint16(port)), nil
	}

	network := "ip"
	if local.IP.To4() != nil {
		network = "ip4"
	}
	ips, err := p.resolver.LookupNetIP(ctx, network, host)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("resolve server %q: %w", host, err)
	}
	if len(ips) == 0 {
		return netip.AddrPort{}, fmt.Errorf("resolve server %q: no addresses", host)
	}
	return netip.AddrPortFrom(ips[0].Unmap(), uint16(port)), nil
}

// decodeResponse 解码 STUN 消息
func decodeResponse(b []byte) (*stun.Message, error) {
	if !stun.IsMessage(b) {
		return nil, errNotSTUN
	}
	res := &stun.Message{Raw: append([]byte(nil), b...)}
	if err := res.Decode(); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return res, nil
}

// mappedEndpoint 从 Binding 成功响应中取出映射地址
func mappedEndpoint(res *stun.Message) (types.SocketEndpoint, error) {
	if res.Type != stun.BindingSuccess {
		var code stun.ErrorCodeAttribute
		if err := code.GetFrom(res); err == nil {
			return types.SocketEndpoint{}, fmt.Errorf("%w: %s (%s)", errUnexpectedType, res.Type, code)
		}
		return types.SocketEndpoint{}, fmt.Errorf("%w: %s", errUnexpectedType, res.Type)
	}

	var xorAddr stun.XORMappedAddress
	if err := xorAddr.GetFrom(res); err == nil {
		if ep, ok := types.EndpointFromIP(xorAddr.IP, xorAddr.Port); ok {
			return ep, nil
		}
	}

	// 旧版 STUN 服务器只返回 MAPPED-ADDRESS
	var mapped stun.MappedAddress
	if err := mapped.GetFrom(res); err == nil {
		if ep, ok := types.EndpointFromIP(mapped.IP, mapped.Port); ok {
			return ep, nil
		}
	}
	return types.SocketEndpoint{}, errNoMappedAddress
}

// fromServer 数据报是否来自会合服务器
func fromServer(from net.Addr, server netip.AddrPort) bool {
	udp, ok := from.(*net.UDPAddr)
	if !ok {
		return false
	}
	ap := udp.AddrPort()
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()) == server
}

// isTimeout 是否为截止时间到达
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
