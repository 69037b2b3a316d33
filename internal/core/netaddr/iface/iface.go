// Package iface 提供网络接口枚举的平台适配
//
// 同一契约"枚举接口及其 up/running/loopback 标志和按地址族标记的地址"，
// 每个平台一个实现：
//   - iface_unix.go：Linux（非 Android）、macOS、BSD，running 取自 IFF_RUNNING
//   - iface_android.go：Android，经 wlynxg/anet 绕开 netlink 权限限制
//   - iface_windows.go：Windows，running 由"适配器存在网关"近似
//   - iface_other.go：其它平台，running 等同于 up
package iface

import (
	"net"
	"net/netip"

	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
	"github.com/dep2p/go-netaddr/pkg/types"
)

// System 返回当前平台的接口枚举实现
func System() netaddrif.InterfaceSource {
	return systemSource{}
}

// Static 固定的接口列表，用于测试或需要固定接口的调用方
type Static struct {
	Ifaces []types.NetworkInterface
	Err    error
}

var _ netaddrif.InterfaceSource = Static{}

// Interfaces 返回 Ifaces 的副本和 Err
func (s Static) Interfaces() ([]types.NetworkInterface, error) {
	if s.Ifaces == nil {
		return nil, s.Err
	}
	out := make([]types.NetworkInterface, len(s.Ifaces))
	copy(out, s.Ifaces)
	return out, s.Err
}

// fromNet 将标准库接口描述转换为 types.NetworkInterface
//
// hasRunning 为 false 的平台不报告 IFF_RUNNING，此时 Running 等同于 Up。
func fromNet(ifi net.Interface, addrs []net.Addr, hasRunning bool) types.NetworkInterface {
	up := ifi.Flags&net.FlagUp != 0
	running := up
	if hasRunning {
		running = ifi.Flags&net.FlagRunning != 0
	}

	nic := types.NetworkInterface{
		Name:     ifi.Name,
		Index:    ifi.Index,
		Up:       up,
		Running:  running,
		Loopback: ifi.Flags&net.FlagLoopback != 0,
		Addrs:    make([]types.InterfaceAddress, 0, len(addrs)),
	}
	for _, a := range addrs {
		if ip, ok := addrIP(a); ok {
			nic.Addrs = append(nic.Addrs, types.NewInterfaceAddress(ip))
		}
	}
	return nic
}

// addrIP 从 net.Addr 中取出 IP
func addrIP(a net.Addr) (netip.Addr, bool) {
	var ip net.IP
	switch v := a.(type) {
	case *net.IPNet:
		ip = v.IP
	case *net.IPAddr:
		ip = v.IP
	default:
		return netip.Addr{}, false
	}
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

// collect 枚举 ifaces 并读取各自地址
//
// 单个接口读取地址失败时保留该接口、地址为空。
func collect(ifaces []net.Interface, addrsOf func(*net.Interface) ([]net.Addr, error), hasRunning bool) []types.NetworkInterface {
	out := make([]types.NetworkInterface, 0, len(ifaces))
	for i := range ifaces {
		addrs, err := addrsOf(&ifaces[i])
		if err != nil {
			log.Debug("读取接口地址失败", "iface", ifaces[i].Name, "err", err)
			addrs = nil
		}
		out = append(out, fromNet(ifaces[i], addrs, hasRunning))
	}
	return out
}
