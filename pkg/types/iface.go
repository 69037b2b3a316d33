package types

import "net/netip"

// AddressFamily 地址族
type AddressFamily int

const (
	// FamilyUnknown 未知地址族
	FamilyUnknown AddressFamily = iota
	// FamilyIPv4 IPv4
	FamilyIPv4
	// FamilyIPv6 IPv6
	FamilyIPv6
)

// String 返回地址族名称
func (f AddressFamily) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// FamilyOf 返回地址所属的地址族，IPv4 映射的 IPv6 地址视为 IPv4
func FamilyOf(addr netip.Addr) AddressFamily {
	switch {
	case !addr.IsValid():
		return FamilyUnknown
	case addr.Unmap().Is4():
		return FamilyIPv4
	default:
		return FamilyIPv6
	}
}

// InterfaceAddress 网络接口上的一个地址
type InterfaceAddress struct {
	Family AddressFamily
	Addr   netip.Addr
}

// NewInterfaceAddress 根据地址推断地址族
func NewInterfaceAddress(addr netip.Addr) InterfaceAddress {
	return InterfaceAddress{Family: FamilyOf(addr), Addr: addr.Unmap()}
}

// NetworkInterface 网络接口描述
//
// 由操作系统提供，只读。每次选择地址时重新查询，不做缓存。
type NetworkInterface struct {
	// Name 接口名称，如 eth0、en0
	Name string

	// Index 接口索引
	Index int

	// Up 管理状态为启用
	Up bool

	// Running 运行状态，表示接口具备实际连通能力。
	// 在 Windows 上由"存在网关"近似。
	Running bool

	// Loopback 是否为回环接口
	Loopback bool

	// Addrs 按操作系统返回顺序排列的地址
	Addrs []InterfaceAddress
}

// Usable 接口是否可作为对外通信的候选：已启用、运行中且非回环
func (n NetworkInterface) Usable() bool {
	return n.Up && n.Running && !n.Loopback
}

// FirstIPv4 返回接口上第一个 IPv4 地址
func (n NetworkInterface) FirstIPv4() (netip.Addr, bool) {
	for _, a := range n.Addrs {
		if a.Family == FamilyIPv4 && a.Addr.IsValid() {
			return a.Addr.Unmap(), true
		}
	}
	return netip.Addr{}, false
}
