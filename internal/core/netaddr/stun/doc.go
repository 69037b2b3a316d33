// Package stun 通过 STUN Binding 请求获知节点的外部端点
//
// 探测流程：
//  1. 独占绑定本地端点（Bind）。绑定失败是配置错误，返回 *BindError。
//  2. 经该套接字向会合服务器发送一次 Binding 请求。
//  3. 等待一次响应，超时默认 3 秒，不重试，不切换服务器。
//  4. 成功时取 XOR-MAPPED-ADDRESS（兼容旧服务器的 MAPPED-ADDRESS）。
//     超时、不可达、响应异常统一返回"未知"，原因只记录日志。
//
// 这次发送会在 NAT 上打开一个映射，之后同一本地端口上的流量可以复用它。
// 套接字是否继续使用由调用方决定：ProbeExternalEndpoint 返回前关闭套接字，
// 需要保留时先 Bind，再调用 ProbeConn。
//
// # 使用示例
//
//	p := stun.NewProber("159.223.0.83:3478")
//	ext, ok, err := p.ProbeExternalEndpoint(ctx, local)
//	if err != nil {
//	    return err // 端口被占用等
//	}
//	if ok {
//	    fmt.Println("External address:", ext)
//	}
package stun
