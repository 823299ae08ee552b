package sasstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func establishedPair(t *testing.T) (a, b *Established) {
	t.Helper()
	aDH, err := NewEphemeral()
	require.NoError(t, err)
	bDH, err := NewEphemeral()
	require.NoError(t, err)

	a, err = aDH.DiffieHellman(bDH.PublicKey())
	require.NoError(t, err)
	b, err = bDH.DiffieHellman(aDH.PublicKey())
	require.NoError(t, err)
	return a, b
}

func TestGenerateAndValidateMACRoundTrips(t *testing.T) {
	sender, recipient := establishedPair(t)
	parties := MacParties{
		SenderUserID: aliceUserID, SenderDeviceID: aliceDeviceID,
		RecipientUserID: bobUserID, RecipientDeviceID: bobDeviceID,
		FlowID: "roundtrip-transaction",
	}
	keys := map[string]string{"ed25519:" + aliceDeviceID: "c2FtcGxlLWtleS1tYXRlcmlhbA"}

	macs, keysMAC, err := GenerateMAC(sender, parties, keys)
	require.NoError(t, err)

	verified, err := ValidateMAC(recipient, parties, macs, keysMAC, keys)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ed25519:" + aliceDeviceID}, verified)
}

func TestValidateMACRejectsTamperedKeysMAC(t *testing.T) {
	sender, recipient := establishedPair(t)
	parties := MacParties{
		SenderUserID: aliceUserID, SenderDeviceID: aliceDeviceID,
		RecipientUserID: bobUserID, RecipientDeviceID: bobDeviceID,
		FlowID: "tamper-transaction",
	}
	keys := map[string]string{"ed25519:" + aliceDeviceID: "c2FtcGxlLWtleS1tYXRlcmlhbA"}

	macs, _, err := GenerateMAC(sender, parties, keys)
	require.NoError(t, err)

	_, err = ValidateMAC(recipient, parties, macs, "not-the-real-keys-mac", keys)
	require.ErrorIs(t, err, ErrKeyMismatch)
}

func TestValidateMACSkipsUnknownKeyIDs(t *testing.T) {
	sender, recipient := establishedPair(t)
	parties := MacParties{
		SenderUserID: aliceUserID, SenderDeviceID: aliceDeviceID,
		RecipientUserID: bobUserID, RecipientDeviceID: bobDeviceID,
		FlowID: "unknown-key-transaction",
	}
	keys := map[string]string{"ed25519:" + aliceDeviceID: "c2FtcGxlLWtleS1tYXRlcmlhbA"}

	macs, keysMAC, err := GenerateMAC(sender, parties, keys)
	require.NoError(t, err)

	verified, err := ValidateMAC(recipient, parties, macs, keysMAC, map[string]string{})
	require.NoError(t, err)
	assert.Empty(t, verified)
}
