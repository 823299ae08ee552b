package sasstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmojiAndDecimalAgreeBetweenBothSides(t *testing.T) {
	aDH, err := NewEphemeral()
	require.NoError(t, err)
	bDH, err := NewEphemeral()
	require.NoError(t, err)

	aEstablished, err := aDH.DiffieHellman(bDH.PublicKey())
	require.NoError(t, err)
	bEstablished, err := bDH.DiffieHellman(aDH.PublicKey())
	require.NoError(t, err)

	alice := sasParty{UserID: aliceUserID, DeviceID: aliceDeviceID, PublicKey: "alice-pub"}
	bob := sasParty{UserID: bobUserID, DeviceID: bobDeviceID, PublicKey: "bob-pub"}

	aliceEmoji, err := EmojiEntries(aEstablished, alice, bob, "tx1", true)
	require.NoError(t, err)
	bobEmoji, err := EmojiEntries(bEstablished, bob, alice, "tx1", false)
	require.NoError(t, err)
	assert.Equal(t, aliceEmoji, bobEmoji)

	aD1, aD2, aD3, err := Decimal(aEstablished, alice, bob, "tx1", true)
	require.NoError(t, err)
	bD1, bD2, bD3, err := Decimal(bEstablished, bob, alice, "tx1", false)
	require.NoError(t, err)
	assert.Equal(t, [3]uint16{aD1, aD2, aD3}, [3]uint16{bD1, bD2, bD3})
}

func TestDecimalValuesAreInSpecRange(t *testing.T) {
	aDH, err := NewEphemeral()
	require.NoError(t, err)
	bDH, err := NewEphemeral()
	require.NoError(t, err)
	established, err := aDH.DiffieHellman(bDH.PublicKey())
	require.NoError(t, err)

	alice := sasParty{UserID: aliceUserID, DeviceID: aliceDeviceID, PublicKey: "alice-pub"}
	bob := sasParty{UserID: bobUserID, DeviceID: bobDeviceID, PublicKey: "bob-pub"}

	d1, d2, d3, err := Decimal(established, alice, bob, "tx1", true)
	require.NoError(t, err)
	for _, d := range []uint16{d1, d2, d3} {
		assert.GreaterOrEqual(t, d, uint16(1000))
		assert.LessOrEqual(t, d, uint16(9191))
	}
}

func TestEmojiIndexProducesSevenValidIndices(t *testing.T) {
	aDH, err := NewEphemeral()
	require.NoError(t, err)
	bDH, err := NewEphemeral()
	require.NoError(t, err)
	established, err := aDH.DiffieHellman(bDH.PublicKey())
	require.NoError(t, err)

	alice := sasParty{UserID: aliceUserID, DeviceID: aliceDeviceID, PublicKey: "alice-pub"}
	bob := sasParty{UserID: bobUserID, DeviceID: bobDeviceID, PublicKey: "bob-pub"}

	idx, err := EmojiIndex(established, alice, bob, "tx1", true)
	require.NoError(t, err)
	for _, v := range idx {
		assert.Less(t, v, uint8(64))
	}
}
