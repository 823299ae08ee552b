package sasstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffieHellmanProducesMatchingSharedSecretMAC(t *testing.T) {
	a, err := NewEphemeral()
	require.NoError(t, err)
	b, err := NewEphemeral()
	require.NoError(t, err)

	established1, err := a.DiffieHellman(b.PublicKey())
	require.NoError(t, err)
	established2, err := b.DiffieHellman(a.PublicKey())
	require.NoError(t, err)

	mac1, err := established1.MAC([]byte("payload"), []byte("info"))
	require.NoError(t, err)
	mac2, err := established2.MAC([]byte("payload"), []byte("info"))
	require.NoError(t, err)
	assert.Equal(t, mac1, mac2, "both sides derive the same key material from the shared secret")
}

func TestDiffieHellmanRejectsReuseOfConsumedKey(t *testing.T) {
	a, err := NewEphemeral()
	require.NoError(t, err)
	b, err := NewEphemeral()
	require.NoError(t, err)

	_, err = a.DiffieHellman(b.PublicKey())
	require.NoError(t, err)

	_, err = a.DiffieHellman(b.PublicKey())
	assert.Error(t, err, "a consumed ephemeral key must not be reusable")
}

func TestSASBytesAreDeterministicForSameInfo(t *testing.T) {
	a, err := NewEphemeral()
	require.NoError(t, err)
	b, err := NewEphemeral()
	require.NoError(t, err)
	established, err := a.DiffieHellman(b.PublicKey())
	require.NoError(t, err)

	first, err := established.SASBytes([]byte("info"), 6)
	require.NoError(t, err)
	second, err := established.SASBytes([]byte("info"), 6)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	different, err := established.SASBytes([]byte("other-info"), 6)
	require.NoError(t, err)
	assert.NotEqual(t, first, different)
}
