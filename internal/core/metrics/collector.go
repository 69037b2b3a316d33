package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "netaddr"

// Collector 基于 Prometheus 的 Reporter 实现
type Collector struct {
	selections    *prometheus.CounterVec
	probes        *prometheus.CounterVec
	probeDuration prometheus.Histogram
}

var _ Reporter = (*Collector)(nil)

// NewCollector 创建 Collector 并注册到 reg
//
// reg 为 nil 时不注册。同一 reg 上重复注册时复用已注册的指标，
// 因此同一进程内可以多次构造。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "local_selections_total",
			Help:      "Local endpoint selections by address source.",
		}, []string{"source"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "External endpoint probes by outcome.",
		}, []string{"outcome"}),
		probeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_duration_seconds",
			Help:      "Duration of external endpoint probes.",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}

	if reg != nil {
		c.selections = register(reg, c.selections)
		c.probes = register(reg, c.probes)
		c.probeDuration = register(reg, c.probeDuration)
	}
	return c
}

// register 注册指标，已注册时返回已有的实例
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		log.Warn("注册指标失败", "err", err)
	}
	return c
}

// ObserveSelection 记录一次本地地址选择
func (c *Collector) ObserveSelection(source SelectionSource) {
	c.selections.WithLabelValues(string(source)).Inc()
}

// ObserveProbe 记录一次外部地址探测
func (c *Collector) ObserveProbe(outcome Outcome, elapsed time.Duration) {
	c.probes.WithLabelValues(string(outcome)).Inc()
	if outcome != OutcomeBindError {
		c.probeDuration.Observe(elapsed.Seconds())
	}
}
