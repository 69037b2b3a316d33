package netaddr

import (
	"context"
	"net"
	"net/netip"

	"github.com/jackpal/gateway"

	"github.com/dep2p/go-netaddr/internal/util/logger"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
	"github.com/dep2p/go-netaddr/pkg/types"
)

var log = logger.Logger("netaddr")

// Resolver 本地选择 + 外部探测
type Resolver struct {
	selector netaddrif.LocalSelector
	prober   netaddrif.ExternalProber
	gateway  func() (net.IP, error)
}

var _ netaddrif.Resolver = (*Resolver)(nil)

// ResolverOption Resolver 选项
type ResolverOption func(*Resolver)

// WithGatewayDiscovery 替换默认网关发现函数，nil 表示不查询网关
func WithGatewayDiscovery(fn func() (net.IP, error)) ResolverOption {
	return func(r *Resolver) {
		r.gateway = fn
	}
}

// NewResolver 创建 Resolver
//
// prober 为 nil 时只做本地选择。
func NewResolver(selector netaddrif.LocalSelector, prober netaddrif.ExternalProber, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		selector: selector,
		prober:   prober,
		gateway:  gateway.DiscoverGateway,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve 为 port 解析本地与外部端点
//
// 外部端点未获知不是错误，HasExternal 为 false；只有绑定失败返回错误，
// 此时 Local 仍然有效。探测时 Local 是实际绑定的端点（port 为 0 时
// 带有操作系统分配的端口），返回前关闭套接字。
func (r *Resolver) Resolve(ctx context.Context, port uint16) (netaddrif.Resolution, error) {
	res := netaddrif.Resolution{
		Local: r.selector.SelectLocalEndpoint(port),
	}
	res.Gateway = r.discoverGateway()

	if r.prober == nil {
		log.Debug("外部探测已关闭，使用本地端点", "local", res.Local)
		return res, nil
	}

	conn, err := r.prober.Bind(ctx, res.Local)
	if err != nil {
		return res, err
	}
	defer func() { _ = conn.Close() }()

	// 端口为 0 时以实际绑定的端点为准，外部端口与之一一对应
	if udp, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		if bound, ok := types.EndpointFromUDPAddr(udp); ok {
			res.Local = bound
		}
	}

	res.External, res.HasExternal = r.prober.ProbeConn(ctx, conn)

	log.Debug("地址解析完成",
		"local", res.Local,
		"external", res.External,
		"hasExternal", res.HasExternal,
		"gateway", res.Gateway)
	return res, nil
}

// discoverGateway 查询默认网关，失败返回零值
func (r *Resolver) discoverGateway() netip.Addr {
	if r.gateway == nil {
		return netip.Addr{}
	}
	ip, err := r.gateway()
	if err != nil {
		log.Debug("默认网关发现失败", "err", err)
		return netip.Addr{}
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}
	}
	return addr.Unmap()
}
