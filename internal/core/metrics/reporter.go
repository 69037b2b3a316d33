package metrics

import "time"

// SelectionSource 本地地址来源
type SelectionSource string

const (
	// SourceInterface 选中了某个网络接口的地址
	SourceInterface SelectionSource = "interface"
	// SourceLoopback 没有可用接口，回退到回环地址
	SourceLoopback SelectionSource = "loopback"
)

// Outcome 外部地址探测结果
type Outcome string

const (
	// OutcomeFound 获知外部端点
	OutcomeFound Outcome = "found"
	// OutcomeTimeout 等待响应超时
	OutcomeTimeout Outcome = "timeout"
	// OutcomeFailed 不可达、响应异常等其它失败
	OutcomeFailed Outcome = "failed"
	// OutcomeBindError 本地绑定失败
	OutcomeBindError Outcome = "bind_error"
)

// Reporter 地址解析指标上报接口
type Reporter interface {
	// ObserveSelection 记录一次本地地址选择
	ObserveSelection(source SelectionSource)

	// ObserveProbe 记录一次外部地址探测
	ObserveProbe(outcome Outcome, elapsed time.Duration)
}

// NopReporter 不记录任何指标
type NopReporter struct{}

// ObserveSelection 空操作
func (NopReporter) ObserveSelection(SelectionSource) {}

// ObserveProbe 空操作
func (NopReporter) ObserveProbe(Outcome, time.Duration) {}

var _ Reporter = NopReporter{}
