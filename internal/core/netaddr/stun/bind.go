package stun

import (
	"context"
	"errors"
	"net"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// Bind 独占绑定 local 上的 UDP 套接字
//
// 不设置地址复用：同一端口已被其它套接字占用时返回 *BindError。
// 零值或无效的 local 同样视为绑定失败。
func Bind(ctx context.Context, local types.SocketEndpoint) (*net.UDPConn, error) {
	if !local.IsValid() {
		return nil, &BindError{Endpoint: local, Cause: errors.New("invalid local endpoint")}
	}

	lc := net.ListenConfig{Control: exclusiveBind}
	pc, err := lc.ListenPacket(ctx, local.Network(), local.String())
	if err != nil {
		return nil, &BindError{Endpoint: local, Cause: err}
	}
	return pc.(*net.UDPConn), nil
}
