// Package netaddr 定义节点地址解析相关接口
//
// 地址解析分两步：
//   - LocalSelector：检查本机网络接口，选出本地绑定地址
//   - ExternalProber：向固定的 STUN 会合服务器发送一次 Binding 请求，
//     获知 NAT 之后的公网地址和端口
//
// Resolver 将两步组合，节点启动时调用一次（需要时可重新探测）。
package netaddr

import (
	"context"
	"net"
	"net/netip"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// ============================================================================
//                              InterfaceSource 接口
// ============================================================================

// InterfaceSource 网络接口枚举
//
// 每个目标平台一个实现。返回顺序即操作系统枚举顺序，调用方依赖该顺序。
type InterfaceSource interface {
	// Interfaces 返回所有网络接口及其地址
	Interfaces() ([]types.NetworkInterface, error)
}

// ============================================================================
//                              LocalSelector 接口
// ============================================================================

// LocalSelector 本地地址选择器
type LocalSelector interface {
	// SelectLocalEndpoint 将 port 与选中的 IPv4 地址组合
	//
	// 从不失败：没有可用接口时回退到 127.0.0.1。
	SelectLocalEndpoint(port uint16) types.SocketEndpoint
}

// ============================================================================
//                              ExternalProber 接口
// ============================================================================

// ExternalProber 外部地址探测器
type ExternalProber interface {
	// ProbeExternalEndpoint 绑定 local 并查询会合服务器
	//
	// 返回值：
	//   - (ep, true, nil)：获知外部端点
	//   - (zero, false, nil)：查询失败（超时、不可达、响应异常），原因只记录日志
	//   - (zero, false, err)：绑定失败，err 匹配 ErrBindFailed
	ProbeExternalEndpoint(ctx context.Context, local types.SocketEndpoint) (types.SocketEndpoint, bool, error)

	// Bind 独占绑定 local，失败返回匹配 ErrBindFailed 的错误
	Bind(ctx context.Context, local types.SocketEndpoint) (net.PacketConn, error)

	// ProbeConn 在调用方持有的已绑定套接字上查询，不关闭 conn
	ProbeConn(ctx context.Context, conn net.PacketConn) (types.SocketEndpoint, bool)
}

// ============================================================================
//                              Resolver 接口
// ============================================================================

// Resolution 一次地址解析的结果
type Resolution struct {
	// Local 本地绑定端点
	Local types.SocketEndpoint `json:"local"`

	// External 外部端点，仅当 HasExternal 为 true 时有效
	External types.SocketEndpoint `json:"external"`

	// HasExternal 是否获知外部端点
	HasExternal bool `json:"has_external"`

	// Gateway 默认网关（仅用于诊断，可能无效）
	Gateway netip.Addr `json:"gateway"`
}

// Advertised 返回应当对外通告的端点：外部端点优先，否则本地端点
func (r Resolution) Advertised() types.SocketEndpoint {
	if r.HasExternal {
		return r.External
	}
	return r.Local
}

// Resolver 组合本地选择与外部探测
type Resolver interface {
	// Resolve 为 port 解析本地与外部端点，只返回绑定错误
	Resolve(ctx context.Context, port uint16) (Resolution, error)
}
