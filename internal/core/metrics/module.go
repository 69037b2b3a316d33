package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-netaddr/config"
	"github.com/dep2p/go-netaddr/internal/util/logger"
)

var log = logger.Logger("netaddr.metrics")

// Params Reporter 依赖参数
type Params struct {
	fx.In

	Config     *config.Config        `optional:"true"`
	Registerer prometheus.Registerer `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(NewReporterFromParams),
)

// NewReporterFromParams 根据配置创建 Reporter
//
// 未提供 Registerer 时注册到 prometheus.DefaultRegisterer；
// 配置关闭指标时返回 NopReporter。
func NewReporterFromParams(p Params) Reporter {
	if p.Config != nil && !p.Config.Metrics.Enable {
		return NopReporter{}
	}
	reg := p.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return NewCollector(reg)
}
