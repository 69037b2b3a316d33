//go:build android

package iface

import (
	"net"

	"github.com/wlynxg/anet"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// systemSource Android 平台的接口枚举
//
// Android 11+ 禁止非特权应用 bind netlink 路由套接字，
// net.Interfaces 会返回 permission denied，改用 anet。
type systemSource struct{}

// Interfaces 按内核返回顺序枚举接口
func (systemSource) Interfaces() ([]types.NetworkInterface, error) {
	ifaces, err := anet.Interfaces()
	if err != nil {
		return nil, err
	}
	return collect(ifaces, anet.InterfaceAddrsByInterface, true), nil
}
