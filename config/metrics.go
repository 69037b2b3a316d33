package config

import (
	"errors"
	"fmt"
	"net"
)

// ErrInvalidMetricsAddr 指标监听地址无效
var ErrInvalidMetricsAddr = errors.New("config: invalid metrics listen address")

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enable 是否记录指标
	Enable bool `json:"enable"`

	// ListenAddr 指标 HTTP 端点监听地址（仅 CLI 使用，空表示不暴露）
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{Enable: true}
}

// Validate 校验指标配置
func (c MetricsConfig) Validate() error {
	if c.ListenAddr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidMetricsAddr, c.ListenAddr, err)
	}
	return nil
}
