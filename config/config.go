// Package config 提供 go-netaddr 的配置管理
//
// 主 Config 嵌入各子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载并通过环境变量覆盖。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Port = 9009
//	cfg.Rendezvous.Server = "stun.example.org:3478"
//
//	// 从 JSON 文件加载
//	cfg, err := config.LoadFile("netaddr.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"
)

// Config 地址解析的完整配置
type Config struct {
	// Port 期望的本地端口（0 = 由操作系统分配）
	Port uint16 `json:"port"`

	// Rendezvous STUN 会合服务器配置
	Rendezvous RendezvousConfig `json:"rendezvous"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Rendezvous: DefaultRendezvousConfig(),
		Metrics:    DefaultMetricsConfig(),
	}
}

// FromJSON 从 JSON 解析配置，未出现的字段保留默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置并校验
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Validate 校验配置，返回所有问题的聚合错误
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	return multierr.Combine(
		c.Rendezvous.Validate(),
		c.Metrics.Validate(),
	)
}
