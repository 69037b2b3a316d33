// Package netaddr 实现节点套接字地址解析
//
// 组合两个步骤：
//   - local：根据网络接口选择本地绑定端点
//   - stun：向会合服务器发送一次 STUN Binding 请求，获知 NAT 之后的外部端点
//
// Resolver 把两步串起来，Module 把它们装配进 Fx。
//
// 使用示例：
//
//	r := netaddr.NewResolver(
//	    local.NewSelector(iface.System(), nil),
//	    stun.NewProber(config.DefaultRendezvousServer),
//	)
//	res, err := r.Resolve(ctx, 9009)
//	if err != nil {
//	    // 只可能是端口绑定失败
//	}
//	advertise(res.Advertised())
package netaddr
