package netaddr

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-netaddr/config"
	"github.com/dep2p/go-netaddr/internal/core/metrics"
	"github.com/dep2p/go-netaddr/internal/core/netaddr/iface"
	"github.com/dep2p/go-netaddr/internal/core/netaddr/local"
	"github.com/dep2p/go-netaddr/internal/core/netaddr/stun"
	netaddrif "github.com/dep2p/go-netaddr/pkg/interfaces/netaddr"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选，缺省使用 config.NewConfig()）
	Config *config.Config `optional:"true"`

	// Source 接口枚举来源（可选，缺省使用系统接口）
	Source netaddrif.InterfaceSource `optional:"true"`

	// Reporter 指标上报
	Reporter metrics.Reporter
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	Selector netaddrif.LocalSelector
	Prober   netaddrif.ExternalProber
	Resolver netaddrif.Resolver
}

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := input.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if err := cfg.Validate(); err != nil {
		return ModuleOutput{}, err
	}

	source := input.Source
	if source == nil {
		source = iface.System()
	}

	selector := local.NewSelector(source, input.Reporter)
	prober := stun.NewProber(cfg.Rendezvous.Server,
		stun.WithTimeout(cfg.Rendezvous.Timeout.Duration()),
		stun.WithReporter(input.Reporter),
	)

	var resolverProber netaddrif.ExternalProber = prober
	if cfg.Rendezvous.Disable {
		resolverProber = nil
	}

	log.Debug("netaddr 模块装配完成",
		"server", cfg.Rendezvous.Server,
		"timeout", cfg.Rendezvous.Timeout,
		"stun", !cfg.Rendezvous.Disable)

	return ModuleOutput{
		Selector: selector,
		Prober:   prober,
		Resolver: NewResolver(selector, resolverProber),
	}, nil
}

// Module 返回 fx 模块配置
//
// 包含 metrics 模块；调用方可提供 *config.Config、InterfaceSource、
// prometheus.Registerer 覆盖默认值。
func Module() fx.Option {
	return fx.Module("netaddr",
		metrics.Module,
		fx.Provide(ProvideServices),
	)
}
