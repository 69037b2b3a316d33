// Package types 定义 go-netaddr 的公共数据结构
//
// 这是最底层的包，不依赖任何其他内部包。所有类型都是纯值类型，
// 构造后不可变，在各模块间按值传递。
//
// # 文件组织
//
//   - endpoint.go - SocketEndpoint：IP + 端口
//   - iface.go    - NetworkInterface, InterfaceAddress, AddressFamily
package types
