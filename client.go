package netaddr

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-netaddr/config"
	"github.com/dep2p/go-netaddr/internal/core/netaddr/iface"
	"github.com/dep2p/go-netaddr/internal/core/netaddr/local"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
)

// startTimeout Fx 应用启停的超时
const startTimeout = 5 * time.Second

// Client 地址解析客户端
//
// 每次调用都重新枚举接口、重新探测，不缓存结果。可以并发使用。
type Client struct {
	app    *fx.App
	config *config.Config
	closed atomic.Bool

	selector netaddrif.LocalSelector
	prober   netaddrif.ExternalProber
	resolver netaddrif.Resolver
}

// New 创建 Client
func New(opts ...Option) (*Client, error) {
	o := newOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}

	c := &Client{config: o.config}
	app, err := buildFxApp(o, c)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	c.app = app

	log.Debug("Client 已创建",
		"port", o.config.Port,
		"server", o.config.Rendezvous.Server,
		"stun", !o.config.Rendezvous.Disable)
	return c, nil
}

// Config 返回生效配置的副本
func (c *Client) Config() config.Config {
	return *c.config
}

// SelectLocalEndpoint 选择本地绑定端点，从不失败
func (c *Client) SelectLocalEndpoint(port uint16) SocketEndpoint {
	return c.selector.SelectLocalEndpoint(port)
}

// ProbeExternalEndpoint 绑定 local 并向会合服务器查询外部端点
//
// 只返回绑定错误；未获知外部端点时 ok == false。
// 即使配置关闭了会合服务器，直接调用本方法仍会探测。
func (c *Client) ProbeExternalEndpoint(ctx context.Context, local SocketEndpoint) (SocketEndpoint, bool, error) {
	if c.closed.Load() {
		return SocketEndpoint{}, false, ErrClosed
	}
	return c.prober.ProbeExternalEndpoint(ctx, local)
}

// Resolve 使用配置的端口解析地址
func (c *Client) Resolve(ctx context.Context) (Resolution, error) {
	return c.ResolvePort(ctx, c.config.Port)
}

// ResolvePort 为 port 选择本地端点并探测外部端点
func (c *Client) ResolvePort(ctx context.Context, port uint16) (Resolution, error) {
	if c.closed.Load() {
		return Resolution{}, ErrClosed
	}
	return c.resolver.Resolve(ctx, port)
}

// Close 关闭 Client，可重复调用
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	return c.app.Stop(ctx)
}

// ════════════════════════════════════════════════════════════════════════════
//                              便捷函数
// ════════════════════════════════════════════════════════════════════════════

// SelectLocalEndpoint 使用系统网络接口选择本地绑定端点
//
// 返回第一个运行中、非回环接口的第一个 IPv4 地址，没有时返回 127.0.0.1:port。
func SelectLocalEndpoint(port uint16) SocketEndpoint {
	return local.NewSelector(iface.System(), nil).SelectLocalEndpoint(port)
}

// ProbeExternalEndpoint 绑定 local 并向会合服务器查询一次外部端点
func ProbeExternalEndpoint(ctx context.Context, local SocketEndpoint, opts ...Option) (SocketEndpoint, bool, error) {
	c, err := New(opts...)
	if err != nil {
		return SocketEndpoint{}, false, err
	}
	defer func() { _ = c.Close() }()
	return c.ProbeExternalEndpoint(ctx, local)
}

// Resolve 选择本地端点并探测外部端点
func Resolve(ctx context.Context, opts ...Option) (Resolution, error) {
	c, err := New(opts...)
	if err != nil {
		return Resolution{}, err
	}
	defer func() { _ = c.Close() }()
	return c.Resolve(ctx)
}
