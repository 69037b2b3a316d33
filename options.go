package netaddr

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-netaddr/config"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config     *config.Config
	source     netaddrif.InterfaceSource
	registerer prometheus.Registerer
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

func (o *options) apply(opts ...Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

// WithConfig 使用完整配置作为基础，后续选项在其上覆盖
//
// cfg 会被复制，调用方之后的修改不影响 Client。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, config.ErrNilConfig)
		}
		c := *cfg
		o.config = &c
		return nil
	}
}

// WithPort 设置 Resolve 使用的本地端口（0 = 由操作系统分配）
//
// 示例:
//
//	netaddr.Resolve(ctx, netaddr.WithPort(9009))
func WithPort(port uint16) Option {
	return func(o *options) error {
		o.config.Port = port
		return nil
	}
}

// WithRendezvousServer 设置 STUN 会合服务器地址 host:port
func WithRendezvousServer(addr string) Option {
	return func(o *options) error {
		if addr == "" {
			return fmt.Errorf("%w: empty rendezvous server", ErrInvalidConfig)
		}
		o.config.Rendezvous.Server = addr
		return nil
	}
}

// WithTimeout 设置等待会合服务器响应的时间
func WithTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("%w: timeout %s", ErrInvalidConfig, d)
		}
		o.config.Rendezvous.Timeout = config.Duration(d)
		return nil
	}
}

// WithoutRendezvous 跳过外部地址探测，Resolve 只返回本地端点
func WithoutRendezvous() Option {
	return func(o *options) error {
		o.config.Rendezvous.Disable = true
		return nil
	}
}

// WithInterfaceSource 替换网络接口枚举来源
func WithInterfaceSource(src InterfaceSource) Option {
	return func(o *options) error {
		o.source = src
		return nil
	}
}

// WithRegisterer 指定 Prometheus 注册器，缺省为 prometheus.DefaultRegisterer
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithMetrics 开关指标记录
func WithMetrics(enable bool) Option {
	return func(o *options) error {
		o.config.Metrics.Enable = enable
		return nil
	}
}
