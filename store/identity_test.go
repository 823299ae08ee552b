package store_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sas-verify/store"
	"github.com/sage-x-project/sas-verify/store/memory"
)

func seedDevice(t *testing.T, devices store.DeviceStore, userID, deviceID string) (ed25519.PublicKey, *store.DeviceRecord) {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	rec := &store.DeviceRecord{
		UserID:     userID,
		DeviceID:   deviceID,
		Ed25519Key: pub,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, devices.Create(context.Background(), rec))
	return pub, rec
}

func TestDeviceIdentityLookupResolvesDevice(t *testing.T) {
	st := memory.NewStore()
	pub, _ := seedDevice(t, st.DeviceStore(), "@alice:example.org", "JLAFKJWSCS")

	lookup := store.NewDeviceIdentityLookup(st.DeviceStore())
	device, err := lookup.LookupDevice(context.Background(), "@alice:example.org", "JLAFKJWSCS")
	require.NoError(t, err)
	assert.Equal(t, "@alice:example.org", device.UserID)
	assert.Equal(t, "JLAFKJWSCS", device.DeviceID)
	assert.Equal(t, pub, device.Ed25519Key)
}

func TestDeviceIdentityLookupRejectsRevokedDevice(t *testing.T) {
	st := memory.NewStore()
	_, _ = seedDevice(t, st.DeviceStore(), "@alice:example.org", "JLAFKJWSCS")
	require.NoError(t, st.DeviceStore().Revoke(context.Background(), "@alice:example.org", "JLAFKJWSCS"))

	lookup := store.NewDeviceIdentityLookup(st.DeviceStore())
	_, err := lookup.LookupDevice(context.Background(), "@alice:example.org", "JLAFKJWSCS")
	assert.Error(t, err)
}

func TestDeviceIdentityLookupKnownKeysIncludesCrossSigning(t *testing.T) {
	st := memory.NewStore()
	_, _ = seedDevice(t, st.DeviceStore(), "@alice:example.org", "JLAFKJWSCS")

	masterPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, st.DeviceStore().Create(context.Background(), &store.DeviceRecord{
		UserID:            "@alice:example.org",
		DeviceID:          "SECONDDEVICE",
		Ed25519Key:        masterPub,
		CrossSigningKeyID: "masterkey1",
		CrossSigningKey:   masterPub,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}))

	lookup := store.NewDeviceIdentityLookup(st.DeviceStore())
	keys, err := lookup.KnownKeys(context.Background(), "@alice:example.org", "JLAFKJWSCS")
	require.NoError(t, err)

	assert.Contains(t, keys, "ed25519:JLAFKJWSCS")
	assert.Contains(t, keys, "ed25519:masterkey1")
	assert.Equal(t, base64.RawStdEncoding.EncodeToString(masterPub), keys["ed25519:masterkey1"])
}

func TestDeviceIdentityLookupCrossSigningReturnsNilWhenAbsent(t *testing.T) {
	st := memory.NewStore()
	_, _ = seedDevice(t, st.DeviceStore(), "@bob:example.org", "BOBDEVCIE")

	lookup := store.NewDeviceIdentityLookup(st.DeviceStore())
	identity, err := lookup.LookupCrossSigning(context.Background(), "@bob:example.org")
	require.NoError(t, err)
	assert.Nil(t, identity)
}
