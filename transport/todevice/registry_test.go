package todevice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sas-verify/sasstate"
)

func TestRegistryPutGetDelete(t *testing.T) {
	reg := NewRegistry()

	identity := sasstate.IdentityContext{
		Account: sasstate.Account{UserID: "@alice:example.org", DeviceID: "JLAFKJWSCS"},
		Peer:    sasstate.Device{UserID: "@bob:example.org", DeviceID: "BOBDEVCIE"},
	}
	flow, _, err := sasstate.NewFlow(sasstate.NewToDeviceFlowID("registry-tx"), identity, sasstate.DefaultCatalog(), false, sasstate.Options{})
	require.NoError(t, err)

	reg.Put(flow)
	assert.Equal(t, 1, reg.Count())

	got, ok := reg.Get(flow.ID().String())
	require.True(t, ok)
	assert.Equal(t, flow.ID(), got.ID())

	reg.Delete(flow.ID().String())
	assert.Equal(t, 0, reg.Count())
	_, ok = reg.Get(flow.ID().String())
	assert.False(t, ok)
}

func TestFlowKeyRejectsEmptyTransactionID(t *testing.T) {
	_, err := flowKey("")
	assert.Error(t, err)
}

func TestFlowKeyMatchesToDeviceFlowIDString(t *testing.T) {
	key, err := flowKey("abc123")
	require.NoError(t, err)
	assert.Equal(t, sasstate.NewToDeviceFlowID("abc123").String(), key)
}
