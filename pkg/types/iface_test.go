package types

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, FamilyIPv4, FamilyOf(netip.MustParseAddr("10.0.0.1")))
	assert.Equal(t, FamilyIPv4, FamilyOf(netip.MustParseAddr("::ffff:10.0.0.1")))
	assert.Equal(t, FamilyIPv6, FamilyOf(netip.MustParseAddr("fe80::1")))
	assert.Equal(t, FamilyUnknown, FamilyOf(netip.Addr{}))

	assert.Equal(t, "ipv4", FamilyIPv4.String())
	assert.Equal(t, "ipv6", FamilyIPv6.String())
	assert.Equal(t, "unknown", FamilyUnknown.String())
}

func TestNetworkInterface_Usable(t *testing.T) {
	assert.True(t, NetworkInterface{Up: true, Running: true}.Usable())
	assert.False(t, NetworkInterface{Up: true}.Usable())
	assert.False(t, NetworkInterface{Running: true}.Usable())
	assert.False(t, NetworkInterface{Up: true, Running: true, Loopback: true}.Usable())
}

func TestNetworkInterface_FirstIPv4(t *testing.T) {
	nic := NetworkInterface{
		Addrs: []InterfaceAddress{
			NewInterfaceAddress(netip.MustParseAddr("fe80::1")),
			NewInterfaceAddress(netip.MustParseAddr("192.168.1.20")),
			NewInterfaceAddress(netip.MustParseAddr("192.168.1.21")),
		},
	}

	ip, ok := nic.FirstIPv4()
	assert.True(t, ok)
	assert.Equal(t, "192.168.1.20", ip.String())

	_, ok = NetworkInterface{Addrs: []InterfaceAddress{NewInterfaceAddress(netip.MustParseAddr("::1"))}}.FirstIPv4()
	assert.False(t, ok)
}
