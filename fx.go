package netaddr

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-netaddr/internal/core/netaddr"
	"github.com/dep2p/go-netaddr/internal/util/logger"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
)

var log = logger.Logger("netaddr.client")

// buildFxApp 构建 Fx 应用
//
// 配置先行校验，随后装配 netaddr 模块（含 metrics），
// 用户提供的接口来源和注册器作为可选依赖注入。
func buildFxApp(o *options, c *Client) (*fx.App, error) {
	if err := o.config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	modules := []fx.Option{
		fx.Supply(o.config),
		netaddr.Module(),
	}

	if o.source != nil {
		src := o.source
		modules = append(modules, fx.Provide(func() netaddrif.InterfaceSource { return src }))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	modules = append(modules,
		fx.Populate(&c.selector, &c.prober, &c.resolver),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}
