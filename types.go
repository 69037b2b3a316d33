package netaddr

import (
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
	"github.com/dep2p/go-netaddr/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// SocketEndpoint IP + 端口
type SocketEndpoint = types.SocketEndpoint

// NetworkInterface 网络接口快照
type NetworkInterface = types.NetworkInterface

// Resolution 一次地址解析的结果
type Resolution = netaddrif.Resolution

// InterfaceSource 网络接口枚举来源
type InterfaceSource = netaddrif.InterfaceSource
