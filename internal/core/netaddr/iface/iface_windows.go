//go:build windows

package iface

import (
	"errors"
	"net/netip"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/dep2p/go-netaddr/pkg/types"
)

// systemSource Windows 平台的接口枚举
//
// 通过 GetAdaptersAddresses 读取适配器。Windows 不提供 IFF_RUNNING，
// 以"适配器配置了网关"作为具备实际连通能力的近似。
type systemSource struct{}

const adapterFlags = windows.GAA_FLAG_INCLUDE_GATEWAYS |
	windows.GAA_FLAG_SKIP_ANYCAST |
	windows.GAA_FLAG_SKIP_MULTICAST |
	windows.GAA_FLAG_SKIP_DNS_SERVER

// Interfaces 按 GetAdaptersAddresses 返回顺序枚举适配器
func (systemSource) Interfaces() ([]types.NetworkInterface, error) {
	adapters, err := adapterAddresses()
	if err != nil {
		return nil, err
	}

	out := make([]types.NetworkInterface, 0, len(adapters))
	for _, aa := range adapters {
		out = append(out, fromAdapter(aa))
	}
	return out, nil
}

func fromAdapter(aa *windows.IpAdapterAddresses) types.NetworkInterface {
	nic := types.NetworkInterface{
		Name:     windows.UTF16PtrToString(aa.FriendlyName),
		Index:    int(aa.IfIndex),
		Up:       aa.OperStatus == windows.IfOperStatusUp,
		Running:  aa.FirstGatewayAddress != nil,
		Loopback: aa.IfType == windows.IF_TYPE_SOFTWARE_LOOPBACK,
	}
	for ua := aa.FirstUnicastAddress; ua != nil; ua = ua.Next {
		if addr, ok := netip.AddrFromSlice(ua.Address.IP()); ok {
			nic.Addrs = append(nic.Addrs, types.NewInterfaceAddress(addr))
		}
	}
	return nic
}

// adapterAddresses 调用 GetAdaptersAddresses，缓冲区不足时按返回的长度重试
func adapterAddresses() ([]*windows.IpAdapterAddresses, error) {
	var b []byte
	l := uint32(15000) // MSDN 建议的初始大小
	for {
		b = make([]byte, l)
		err := windows.GetAdaptersAddresses(windows.AF_UNSPEC, adapterFlags, 0,
			(*windows.IpAdapterAddresses)(unsafe.Pointer(&b[0])), &l)
		if err == nil {
			if l == 0 {
				return nil, nil
			}
			break
		}
		if !errors.Is(err, windows.ERROR_BUFFER_OVERFLOW) || l <= uint32(len(b)) {
			return nil, os.NewSyscallError("getadaptersaddresses", err)
		}
	}

	var out []*windows.IpAdapterAddresses
	for aa := (*windows.IpAdapterAddresses)(unsafe.Pointer(&b[0])); aa != nil; aa = aa.Next {
		out = append(out, aa)
	}
	return out, nil
}
