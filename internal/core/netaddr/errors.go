package netaddr

import "github.com/dep2p/go-netaddr/internal/core/netaddr/stun"

// ErrBindFailed 本地端点绑定失败，Resolve 唯一会返回的错误
var ErrBindFailed = stun.ErrBindFailed

// IsBindError 判断 err 是否为绑定失败
func IsBindError(err error) bool {
	return stun.IsBindError(err)
}
