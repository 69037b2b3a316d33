// Package netaddr 为 P2P 节点解析应当对外通告的套接字地址
//
// 节点需要在无需人工配置的情况下给出一个可达的端点。本包分两步完成：
//
//   - 本地地址选择：检查主机网络接口，选出第一个处于运行状态、非回环的
//     IPv4 地址；没有时回退到 127.0.0.1
//   - 外部地址探测：从选出的本地端点向受信任的会合服务器发送一次 STUN
//     Binding 请求，得到 NAT 之后的公网地址与端口，同时在 NAT 上打开
//     一个可复用的映射
//
// # 快速开始
//
//	import "github.com/dep2p/go-netaddr"
//
//	res, err := netaddr.Resolve(ctx, netaddr.WithPort(9009))
//	if err != nil {
//	    // 端口已被占用
//	    log.Fatal(err)
//	}
//	fmt.Println("advertise", res.Advertised())
//
// 多次解析时复用 Client：
//
//	c, err := netaddr.New(
//	    netaddr.WithRendezvousServer("stun.example.org:3478"),
//	    netaddr.WithTimeout(2*time.Second),
//	)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	local := c.SelectLocalEndpoint(9009)
//	ext, ok, err := c.ProbeExternalEndpoint(ctx, local)
//
// # 错误
//
// 只有本地端口绑定失败会返回错误（errors.Is(err, ErrBindFailed)）。
// 超时、服务器不可达、响应异常都视为"未获知外部地址"，返回 ok == false，
// 调用方应回退到本地端点。
//
// # 文件组织
//
//   - client.go: Client 与包级便捷函数
//   - options.go: 配置选项
//   - fx.go: Fx 应用装配
//   - types.go: 类型别名
//   - errors.go: 错误定义
package netaddr
