package stun

import (
	"errors"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// ErrBindFailed 本地端点绑定失败
//
// 与"未获知外部端点"不同，这是结构性错误，通常是端口已被占用。
var ErrBindFailed = errors.New("stun: bind local endpoint failed")

// BindError 绑定错误
type BindError struct {
	Endpoint types.SocketEndpoint
	Cause    error
}

func (e *BindError) Error() string {
	if e.Cause != nil {
		return "stun: bind " + e.Endpoint.String() + ": " + e.Cause.Error()
	}
	return "stun: bind " + e.Endpoint.String()
}

// Unwrap 解包错误
func (e *BindError) Unwrap() error {
	return e.Cause
}

// Is 使 errors.Is(err, ErrBindFailed) 成立
func (e *BindError) Is(target error) bool {
	return target == ErrBindFailed
}

// IsBindError 判断 err 是否为绑定失败
func IsBindError(err error) bool {
	return errors.Is(err, ErrBindFailed)
}
