package types

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
)

// ErrInvalidEndpoint 无法解析的端点字符串
var ErrInvalidEndpoint = errors.New("types: invalid socket endpoint")

// SocketEndpoint 套接字端点（IP + 端口）
//
// 两种角色：
//   - 本地绑定端点：在任何网络 I/O 之前选定
//   - 外部端点：从 STUN 响应中获知的 NAT 映射地址
//
// 零值表示"无端点"，IsValid 返回 false。
type SocketEndpoint struct {
	ap netip.AddrPort
}

// NewSocketEndpoint 创建端点，IPv4 映射的 IPv6 地址会被还原为 IPv4
func NewSocketEndpoint(ip netip.Addr, port uint16) SocketEndpoint {
	return SocketEndpoint{ap: netip.AddrPortFrom(ip.Unmap(), port)}
}

// EndpointFromIP 从 net.IP 创建端点，ip 无效时返回 false
func EndpointFromIP(ip net.IP, port int) (SocketEndpoint, bool) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok || port < 0 || port > 0xffff {
		return SocketEndpoint{}, false
	}
	return NewSocketEndpoint(addr, uint16(port)), true
}

// EndpointFromUDPAddr 从 *net.UDPAddr 创建端点
func EndpointFromUDPAddr(addr *net.UDPAddr) (SocketEndpoint, bool) {
	if addr == nil {
		return SocketEndpoint{}, false
	}
	return EndpointFromIP(addr.IP, addr.Port)
}

// ParseSocketEndpoint 解析 "ip:port" 或 "[ipv6]:port"
func ParseSocketEndpoint(s string) (SocketEndpoint, error) {
	ap, err := netip.ParseAddrPort(s)
	if err != nil {
		return SocketEndpoint{}, fmt.Errorf("%w: %q: %v", ErrInvalidEndpoint, s, err)
	}
	return NewSocketEndpoint(ap.Addr(), ap.Port()), nil
}

// Addr 返回 IP 地址
func (e SocketEndpoint) Addr() netip.Addr { return e.ap.Addr() }

// Port 返回端口
func (e SocketEndpoint) Port() uint16 { return e.ap.Port() }

// AddrPort 返回底层 netip.AddrPort
func (e SocketEndpoint) AddrPort() netip.AddrPort { return e.ap }

// IsValid 端点是否已设置
func (e SocketEndpoint) IsValid() bool { return e.ap.IsValid() }

// Is4 是否为 IPv4 端点
func (e SocketEndpoint) Is4() bool { return e.ap.Addr().Is4() }

// Network 返回 "udp4" 或 "udp6"，用于 net.ListenUDP / net.ResolveUDPAddr
func (e SocketEndpoint) Network() string {
	if e.Is4() {
		return "udp4"
	}
	return "udp6"
}

// UDPAddr 转换为 *net.UDPAddr
func (e SocketEndpoint) UDPAddr() *net.UDPAddr {
	return net.UDPAddrFromAddrPort(e.ap)
}

// String 返回 "ip:port"，零值返回 "invalid AddrPort"
func (e SocketEndpoint) String() string {
	return e.ap.String()
}

// Multiaddr 返回 multiaddr 格式，如 /ip4/1.2.3.4/udp/4001
func (e SocketEndpoint) Multiaddr() string {
	if !e.IsValid() {
		return ""
	}
	proto := "ip6"
	if e.Is4() {
		proto = "ip4"
	}
	return fmt.Sprintf("/%s/%s/udp/%d", proto, e.ap.Addr().String(), e.ap.Port())
}

// Equal 比较两个端点
func (e SocketEndpoint) Equal(other SocketEndpoint) bool {
	return e.ap == other.ap
}

// IsLoopback 是否为回环地址
func (e SocketEndpoint) IsLoopback() bool {
	return e.ap.Addr().IsLoopback()
}

// IsPrivate 是否为私有地址（RFC 1918 / RFC 4193）
func (e SocketEndpoint) IsPrivate() bool {
	return e.ap.Addr().IsPrivate()
}

// IsPublic 是否为公网地址
//
// 未指定地址（0.0.0.0 / ::）、链路本地地址不算公网地址。
func (e SocketEndpoint) IsPublic() bool {
	addr := e.ap.Addr()
	return addr.IsValid() &&
		addr.IsGlobalUnicast() &&
		!addr.IsPrivate() &&
		!addr.IsLoopback()
}

// MarshalText 实现 encoding.TextMarshaler
func (e SocketEndpoint) MarshalText() ([]byte, error) {
	if !e.IsValid() {
		return []byte{}, nil
	}
	return e.ap.MarshalText()
}

// UnmarshalText 实现 encoding.TextUnmarshaler，空字符串得到零值
func (e *SocketEndpoint) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*e = SocketEndpoint{}
		return nil
	}
	ep, err := ParseSocketEndpoint(string(text))
	if err != nil {
		return err
	}
	*e = ep
	return nil
}
