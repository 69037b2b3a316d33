//go:build (linux && !android) || darwin || freebsd || openbsd || netbsd || dragonfly

package iface

import (
	"net"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// systemSource Unix 平台的接口枚举，直接使用 net.Interfaces
type systemSource struct{}

// Interfaces 按内核返回顺序枚举接口
func (systemSource) Interfaces() ([]types.NetworkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	return collect(ifaces, (*net.Interface).Addrs, true), nil
}
