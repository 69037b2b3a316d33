package main

import (
	"flag"
	"fmt"

	"github.com/dep2p/go-netaddr/config"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// buildConfig 依次应用配置文件、环境变量和显式设置的命令行参数
func buildConfig(fs *flag.FlagSet, f *cliFlags) (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configFile != "" {
		loaded, err := config.LoadFile(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if isFlagSet(fs, "port") {
		if f.port < 0 || f.port > 65535 {
			return nil, fmt.Errorf("无效的端口号: %d", f.port)
		}
		cfg.Port = uint16(f.port)
	}
	if isFlagSet(fs, "server") {
		cfg.Rendezvous.Server = f.server
	}
	if isFlagSet(fs, "timeout") {
		cfg.Rendezvous.Timeout = config.Duration(f.timeout)
	}
	if isFlagSet(fs, "no-stun") {
		cfg.Rendezvous.Disable = f.noSTUN
	}
	if isFlagSet(fs, "metrics") {
		cfg.Metrics.Enable = true
		cfg.Metrics.ListenAddr = f.metricsAddr
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}
