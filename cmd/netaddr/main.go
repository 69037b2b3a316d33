// Package main 提供 netaddr 命令行入口
//
// 解析并打印本节点应当对外通告的端点：
//
//	netaddr -port 9009
//	netaddr -server stun.example.org:3478 -timeout 2s -json
//	netaddr -no-stun
//	netaddr -metrics 127.0.0.1:9100   # 解析后继续暴露 /metrics，Ctrl+C 退出
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-netaddr"
	"github.com/dep2p/go-netaddr/internal/util/logger"
)

var log = logger.Logger("netaddr.cmd")

// cliFlags 命令行参数
//
// 优先级（从高到低）：命令行参数 > 环境变量（NETADDR_*）> 配置文件 > 默认值
type cliFlags struct {
	port        int
	configFile  string
	server      string
	timeout     time.Duration
	noSTUN      bool
	jsonOutput  bool
	metricsAddr string
	logLevel    string
}

func bindFlags(fs *flag.FlagSet) *cliFlags {
	f := &cliFlags{}
	fs.IntVar(&f.port, "port", 0, "本地端口（0 = 由系统分配）")
	fs.StringVar(&f.configFile, "config", "", "JSON 配置文件路径")
	fs.StringVar(&f.server, "server", "", "STUN 会合服务器地址 host:port")
	fs.DurationVar(&f.timeout, "timeout", 0, "等待会合服务器响应的时间")
	fs.BoolVar(&f.noSTUN, "no-stun", false, "跳过外部地址探测")
	fs.BoolVar(&f.jsonOutput, "json", false, "以 JSON 输出结果")
	fs.StringVar(&f.metricsAddr, "metrics", "", "Prometheus 指标监听地址，设置后解析完成继续运行")
	fs.StringVar(&f.logLevel, "log-level", "", "全部子系统的日志级别 debug/info/warn/error，覆盖 NETADDR_LOG_LEVEL")
	return f
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("netaddr", flag.ContinueOnError)
	f := bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f.logLevel != "" {
		level, err := logger.ParseLevel(f.logLevel)
		if err != nil {
			return fmt.Errorf("配置错误: %w", err)
		}
		logger.SetGlobalLevel(level)
	}

	cfg, err := buildConfig(fs, f)
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	reg := prometheus.NewRegistry()
	var srv *http.Server
	if cfg.Metrics.ListenAddr != "" {
		srv = serveMetrics(cfg.Metrics.ListenAddr, reg)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	res, err := netaddr.Resolve(ctx, netaddr.WithConfig(cfg), netaddr.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("解析失败: %w", err)
	}

	if err := printResolution(out, res, f.jsonOutput); err != nil {
		return err
	}

	if srv != nil {
		log.Info("指标端点运行中，按 Ctrl+C 退出", "addr", cfg.Metrics.ListenAddr)
		<-ctx.Done()
	}
	return nil
}

// serveMetrics 在后台暴露 /metrics
func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("指标端点退出", "addr", addr, "err", err)
		}
	}()
	return srv
}
