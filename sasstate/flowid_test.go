package sasstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToDeviceFlowIDStringIsTheTransactionID(t *testing.T) {
	id := NewToDeviceFlowID("abc123")
	assert.True(t, id.IsToDevice())
	assert.Equal(t, "abc123", id.TransactionID())
	assert.Equal(t, "abc123", id.String())
	assert.Empty(t, id.RoomID())
	assert.Empty(t, id.RelatedEventID())
}

func TestInRoomFlowIDStringCombinesRoomAndEvent(t *testing.T) {
	id := NewInRoomFlowID("!room:example.org", "$event1")
	assert.False(t, id.IsToDevice())
	assert.Equal(t, "!room:example.org/$event1", id.String())
	assert.Empty(t, id.TransactionID())
}

func TestFlowIDEqual(t *testing.T) {
	a := NewToDeviceFlowID("tx1")
	b := NewToDeviceFlowID("tx1")
	c := NewToDeviceFlowID("tx2")
	d := NewInRoomFlowID("!room:example.org", "$event1")

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
}
