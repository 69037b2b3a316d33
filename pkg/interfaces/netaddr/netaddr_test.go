package netaddr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netaddr/pkg/types"
)

func TestResolution_Advertised(t *testing.T) {
	local, err := types.ParseSocketEndpoint("192.168.1.10:9000")
	require.NoError(t, err)
	external, err := types.ParseSocketEndpoint("203.0.113.5:40000")
	require.NoError(t, err)

	r := Resolution{Local: local}
	assert.Equal(t, local, r.Advertised())

	r.External = external
	assert.Equal(t, local, r.Advertised(), "External 在 HasExternal 为 false 时不生效")

	r.HasExternal = true
	assert.Equal(t, external, r.Advertised())
}
