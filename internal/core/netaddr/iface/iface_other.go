//go:build !linux && !darwin && !freebsd && !openbsd && !netbsd && !dragonfly && !windows

package iface

import (
	"net"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// systemSource 其它平台的接口枚举，不报告 running 状态
type systemSource struct{}

// Interfaces 枚举接口，Running 等同于 Up
func (systemSource) Interfaces() ([]types.NetworkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	return collect(ifaces, (*net.Interface).Addrs, false), nil
}
