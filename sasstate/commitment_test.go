package sasstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalJSONSortsObjectKeys(t *testing.T) {
	type payload struct {
		B string `json:"b"`
		A string `json:"a"`
	}
	out, err := CanonicalJSON(payload{B: "2", A: "1"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"1","b":"2"}`, string(out))
}

func TestCanonicalJSONIsStableAcrossFieldOrder(t *testing.T) {
	type orderA struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	type orderB struct {
		Y int `json:"y"`
		X int `json:"x"`
	}
	out1, err := CanonicalJSON(orderA{X: 1, Y: 2})
	require.NoError(t, err)
	out2, err := CanonicalJSON(orderB{Y: 2, X: 1})
	require.NoError(t, err)
	assert.Equal(t, string(out1), string(out2))
}

func TestCalculateCommitmentChangesWithEitherInput(t *testing.T) {
	var key1, key2 [32]byte
	key1[0] = 1
	key2[0] = 2

	c1 := CalculateCommitment(key1, []byte(`{"a":"1"}`))
	c2 := CalculateCommitment(key2, []byte(`{"a":"1"}`))
	c3 := CalculateCommitment(key1, []byte(`{"a":"2"}`))

	assert.NotEqual(t, c1, c2, "commitment must depend on the public key")
	assert.NotEqual(t, c1, c3, "commitment must depend on the canonical start content")

	c1Again := CalculateCommitment(key1, []byte(`{"a":"1"}`))
	assert.Equal(t, c1, c1Again, "commitment must be deterministic")
}
