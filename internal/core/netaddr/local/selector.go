// Package local 实现本地地址选择
//
// 检查本机网络接口，选出第一个"可用"接口（已启用、运行中、非回环）
// 上的第一个 IPv4 地址，与期望端口组合为本地绑定端点。
// 找不到时回退到 127.0.0.1。
//
// 多个可用接口之间不做排序，完全按操作系统枚举顺序取第一个。
// 已部署节点通告的地址依赖这一行为，不要"改进"它。
package local

import (
	"net/netip"

	"github.com/dep2p/go-netaddr/internal/core/metrics"
	"github.com/dep2p/go-netaddr/internal/util/logger"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
	"github.com/dep2p/go-netaddr/pkg/types"
)

var log = logger.Logger("netaddr.local")

// Loopback 回退地址
var Loopback = netip.AddrFrom4([4]byte{127, 0, 0, 1})

// Selector 本地地址选择器
type Selector struct {
	source   netaddrif.InterfaceSource
	reporter metrics.Reporter
}

var _ netaddrif.LocalSelector = (*Selector)(nil)

// NewSelector 创建选择器
//
// reporter 可以为 nil。
func NewSelector(source netaddrif.InterfaceSource, reporter metrics.Reporter) *Selector {
	if reporter == nil {
		reporter = metrics.NopReporter{}
	}
	return &Selector{source: source, reporter: reporter}
}

// SelectLocalEndpoint 将 port 与选中的 IPv4 地址组合
//
// 每次调用都重新枚举接口。从不失败。
func (s *Selector) SelectLocalEndpoint(port uint16) types.SocketEndpoint {
	if ip, ok := s.findAssignedIPv4(); ok {
		s.reporter.ObserveSelection(metrics.SourceInterface)
		return types.NewSocketEndpoint(ip, port)
	}

	log.Debug("没有可用的网络接口，回退到回环地址", "port", port)
	s.reporter.ObserveSelection(metrics.SourceLoopback)
	return types.NewSocketEndpoint(Loopback, port)
}

// findAssignedIPv4 返回第一个可用接口上的第一个 IPv4 地址
func (s *Selector) findAssignedIPv4() (netip.Addr, bool) {
	ifaces, err := s.source.Interfaces()
	switch {
	case err != nil:
		// 枚举失败按空集合处理，只在日志中区分
		log.Debug("枚举网络接口失败", "err", err)
		return netip.Addr{}, false
	case len(ifaces) == 0:
		log.Debug("未枚举到任何网络接口")
		return netip.Addr{}, false
	}

	for _, nic := range ifaces {
		if !nic.Usable() {
			continue
		}
		if ip, ok := nic.FirstIPv4(); ok {
			log.Debug("选定本地地址", "iface", nic.Name, "ip", ip)
			return ip, true
		}
	}
	return netip.Addr{}, false
}
