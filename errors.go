package netaddr

import (
	"errors"

	"github.com/dep2p/go-netaddr/config"
	"github.com/dep2p/go-netaddr/internal/core/netaddr"
)

// 公共错误定义
var (
	// ErrBindFailed 本地端点绑定失败（端口已被占用等）
	ErrBindFailed = netaddr.ErrBindFailed

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("netaddr: invalid config")

	// ErrClosed Client 已关闭
	ErrClosed = errors.New("netaddr: client closed")
)

// IsBindError 判断 err 是否为绑定失败
func IsBindError(err error) bool {
	return netaddr.IsBindError(err)
}

// IsConfigError 判断 err 是否为配置错误
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, config.ErrInvalidServer) ||
		errors.Is(err, config.ErrInvalidTimeout) ||
		errors.Is(err, config.ErrInvalidMetricsAddr)
}
