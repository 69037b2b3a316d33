package iface

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netaddr/pkg/types"
)

func ipNet(s string) *net.IPNet {
	ip, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	n.IP = ip
	return n
}

func TestFromNet(t *testing.T) {
	ifi := net.Interface{
		Index: 2,
		Name:  "eth0",
		Flags: net.FlagUp | net.FlagRunning | net.FlagBroadcast,
	}
	addrs := []net.Addr{
		ipNet("fe80::1/64"),
		ipNet("192.168.1.20/24"),
		&net.IPAddr{IP: net.ParseIP("10.0.0.5")},
		&net.UnixAddr{Name: "/tmp/x", Net: "unix"},
	}

	nic := fromNet(ifi, addrs, true)

	assert.Equal(t, "eth0", nic.Name)
	assert.Equal(t, 2, nic.Index)
	assert.True(t, nic.Up)
	assert.True(t, nic.Running)
	assert.False(t, nic.Loopback)
	require.Len(t, nic.Addrs, 3)
	assert.Equal(t, types.FamilyIPv6, nic.Addrs[0].Family)
	assert.Equal(t, types.FamilyIPv4, nic.Addrs[1].Family)
	assert.Equal(t, "192.168.1.20", nic.Addrs[1].Addr.String())
	// net.ParseIP 返回 16 字节形式，需还原为 IPv4
	assert.Equal(t, types.FamilyIPv4, nic.Addrs[2].Family)
	assert.Equal(t, "10.0.0.5", nic.Addrs[2].Addr.String())
}

func TestFromNet_RunningFlag(t *testing.T) {
	ifi := net.Interface{Name: "wlan0", Flags: net.FlagUp}

	assert.False(t, fromNet(ifi, nil, true).Running, "平台报告 running 时以 FlagRunning 为准")
	assert.True(t, fromNet(ifi, nil, false).Running, "平台不报告 running 时等同于 up")

	lo := fromNet(net.Interface{Name: "lo", Flags: net.FlagUp | net.FlagLoopback | net.FlagRunning}, nil, true)
	assert.True(t, lo.Loopback)
	assert.False(t, lo.Usable())
}

func TestCollect_AddrErrorKeepsInterface(t *testing.T) {
	ifaces := []net.Interface{
		{Index: 1, Name: "broken", Flags: net.FlagUp | net.FlagRunning},
		{Index: 2, Name: "eth0", Flags: net.FlagUp | net.FlagRunning},
	}
	addrsOf := func(ifi *net.Interface) ([]net.Addr, error) {
		if ifi.Name == "broken" {
			return nil, errors.New("boom")
		}
		return []net.Addr{ipNet("192.168.0.2/24")}, nil
	}

	out := collect(ifaces, addrsOf, true)

	require.Len(t, out, 2)
	assert.Equal(t, "broken", out[0].Name)
	assert.Empty(t, out[0].Addrs)
	assert.Equal(t, "eth0", out[1].Name)
	assert.Len(t, out[1].Addrs, 1)
}

func TestStatic(t *testing.T) {
	want := []types.NetworkInterface{{Name: "eth0"}, {Name: "eth1"}}
	s := Static{Ifaces: want}

	got, err := s.Interfaces()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got[0].Name = "changed"
	assert.Equal(t, "eth0", s.Ifaces[0].Name, "返回副本")

	errSrc := Static{Err: errors.New("enumeration failed")}
	got, err = errSrc.Interfaces()
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestSystem(t *testing.T) {
	ifaces, err := System().Interfaces()
	require.NoError(t, err)

	for _, nic := range ifaces {
		for _, a := range nic.Addrs {
			assert.True(t, a.Addr.IsValid(), "iface %s", nic.Name)
			assert.Equal(t, types.FamilyOf(a.Addr), a.Family)
		}
	}
	t.Logf("枚举到 %d 个接口", len(ifaces))
}
