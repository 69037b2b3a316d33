// Package metrics 记录地址解析的 Prometheus 指标
//
// 指标：
//   - netaddr_local_selections_total{source}：本地地址选择次数，
//     source 为 interface（选中真实接口）或 loopback（回退）
//   - netaddr_probes_total{outcome}：外部地址探测次数，
//     outcome 见 Outcome 常量
//   - netaddr_probe_duration_seconds：探测耗时
//
// 指标仅用于诊断，调用方拿到的结果不区分失败原因。
//
//	reg := prometheus.NewRegistry()
//	c := metrics.NewCollector(reg)
//	c.ObserveProbe(metrics.OutcomeFound, 30*time.Millisecond)
package metrics
