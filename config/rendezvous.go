package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"go.uber.org/multierr"
)

// DefaultRendezvousServer 默认 STUN 会合服务器（测试网基础设施）
const DefaultRendezvousServer = "159.223.0.83:3478"

// DefaultRendezvousTimeout 单次 UDP 往返的默认等待时间
const DefaultRendezvousTimeout = 3 * time.Second

// 配置错误
var (
	ErrNilConfig      = errors.New("config: config is nil")
	ErrInvalidServer  = errors.New("config: invalid rendezvous server address")
	ErrInvalidTimeout = errors.New("config: rendezvous timeout must be positive")
)

// RendezvousConfig STUN 会合服务器配置
//
// 服务器地址在构造时注入，测试可替换为本地模拟服务器。
// 只发送一次请求，不重试，不切换备用服务器。
type RendezvousConfig struct {
	// Disable 跳过外部地址探测，只使用本地地址
	Disable bool `json:"disable,omitempty"`

	// Server 会合服务器地址 host:port
	Server string `json:"server"`

	// Timeout 等待响应的时间
	Timeout Duration `json:"timeout"`
}

// DefaultRendezvousConfig 返回默认会合服务器配置
func DefaultRendezvousConfig() RendezvousConfig {
	return RendezvousConfig{
		Server:  DefaultRendezvousServer,
		Timeout: Duration(DefaultRendezvousTimeout),
	}
}

// Validate 校验会合服务器配置，Disable 时不检查
func (c RendezvousConfig) Validate() error {
	if c.Disable {
		return nil
	}

	var err error
	host, port, splitErr := net.SplitHostPort(c.Server)
	switch {
	case splitErr != nil:
		err = multierr.Append(err, fmt.Errorf("%w: %q: %v", ErrInvalidServer, c.Server, splitErr))
	case host == "":
		err = multierr.Append(err, fmt.Errorf("%w: %q: empty host", ErrInvalidServer, c.Server))
	default:
		if n, convErr := strconv.ParseUint(port, 10, 16); convErr != nil || n == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %q: bad port", ErrInvalidServer, c.Server))
		}
	}

	if c.Timeout.Duration() <= 0 {
		err = multierr.Append(err, ErrInvalidTimeout)
	}
	return err
}
