package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 环境变量
const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "NETADDR_"

	// EnvPort 本地端口
	EnvPort = "PORT"

	// EnvSTUNServer 会合服务器地址
	EnvSTUNServer = "STUN_SERVER"

	// EnvSTUNTimeout 会合服务器超时，如 "2s"
	EnvSTUNTimeout = "STUN_TIMEOUT"

	// EnvDisableSTUN 跳过外部地址探测
	EnvDisableSTUN = "DISABLE_STUN"
)

// ApplyEnv 用环境变量覆盖配置
//
// 优先级高于配置文件，低于命令行参数。无法解析的值返回错误。
func ApplyEnv(cfg *Config) error {
	return applyEnv(cfg, os.LookupEnv)
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + EnvPort); ok && v != "" {
		port, err := strconv.ParseUint(strings.TrimSpace(v), 10, 16)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvPort, err)
		}
		cfg.Port = uint16(port)
	}

	if v, ok := lookup(EnvPrefix + EnvSTUNServer); ok && v != "" {
		cfg.Rendezvous.Server = strings.TrimSpace(v)
	}

	if v, ok := lookup(EnvPrefix + EnvSTUNTimeout); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, EnvSTUNTimeout, err)
		}
		cfg.Rendezvous.Timeout = Duration(d)
	}

	if v, ok := lookup(EnvPrefix + EnvDisableSTUN); ok {
		cfg.Rendezvous.Disable = parseBool(v)
	}

	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
