package todevice_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/sas-verify/sasstate"
	"github.com/sage-x-project/sas-verify/store"
	"github.com/sage-x-project/sas-verify/store/memory"
	"github.com/sage-x-project/sas-verify/transport/todevice"
)

// testHarness wires two Routers (alice and bob) against each other's Handle
// method directly, standing in for the WebSocket hop a real deployment
// would use between them.
type testHarness struct {
	aliceRouter *todevice.Router
	bobRouter   *todevice.Router
}

func seedDeviceRecord(t *testing.T, devices store.DeviceStore, userID, deviceID string) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	require.NoError(t, devices.Create(context.Background(), &store.DeviceRecord{
		UserID:     userID,
		DeviceID:   deviceID,
		Ed25519Key: pub,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}))
	return pub
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	aliceStore := memory.NewStore()
	bobStore := memory.NewStore()

	seedDeviceRecord(t, aliceStore.DeviceStore(), "@bob:example.org", "BOBDEVCIE")
	seedDeviceRecord(t, bobStore.DeviceStore(), "@alice:example.org", "JLAFKJWSCS")

	h := &testHarness{}

	h.aliceRouter = todevice.NewRouter(todevice.RouterConfig{
		Account:  sasstate.Account{UserID: "@alice:example.org", DeviceID: "JLAFKJWSCS"},
		Identity: store.NewDeviceIdentityLookup(aliceStore.DeviceStore()),
		Flows:    aliceStore.FlowStore(),
		Dedupe:   aliceStore.DedupeStore(),
		Clients: func(peerUserID, peerDeviceID string) (*todevice.Client, error) {
			return nil, nil // overridden per test via h.deliver
		},
	})
	h.bobRouter = todevice.NewRouter(todevice.RouterConfig{
		Account:  sasstate.Account{UserID: "@bob:example.org", DeviceID: "BOBDEVCIE"},
		Identity: store.NewDeviceIdentityLookup(bobStore.DeviceStore()),
		Flows:    bobStore.FlowStore(),
		Dedupe:   bobStore.DedupeStore(),
		Clients: func(peerUserID, peerDeviceID string) (*todevice.Client, error) {
			return nil, nil
		},
	})

	return h
}

// TestRouterAppliesStartEventAndCheckpointsFlow exercises the router's
// inbound-start path in isolation: decoding the envelope, resolving the
// peer's identity through store.IdentityLookup, creating the sasstate.Flow,
// and checkpointing it into store.FlowStore.
func TestRouterAppliesStartEventAndCheckpointsFlow(t *testing.T) {
	h := newHarness(t)

	aliceIdentity := sasstate.IdentityContext{
		Account: sasstate.Account{UserID: "@alice:example.org", DeviceID: "JLAFKJWSCS"},
		Peer:    sasstate.Device{UserID: "@bob:example.org", DeviceID: "BOBDEVCIE"},
	}
	_, start, err := sasstate.NewFlow(sasstate.NewToDeviceFlowID("router-tx-1"), aliceIdentity, sasstate.DefaultCatalog(), false, sasstate.Options{})
	require.NoError(t, err)

	env, err := todevice.NewEnvelope(todevice.EventStart, "@alice:example.org", start)
	require.NoError(t, err)

	err = h.bobRouter.Handle(context.Background(), env)
	require.NoError(t, err)
}

func TestRouterRejectsReplayedEvent(t *testing.T) {
	h := newHarness(t)

	aliceIdentity := sasstate.IdentityContext{
		Account: sasstate.Account{UserID: "@alice:example.org", DeviceID: "JLAFKJWSCS"},
		Peer:    sasstate.Device{UserID: "@bob:example.org", DeviceID: "BOBDEVCIE"},
	}
	_, start, err := sasstate.NewFlow(sasstate.NewToDeviceFlowID("router-tx-replay"), aliceIdentity, sasstate.DefaultCatalog(), false, sasstate.Options{})
	require.NoError(t, err)

	env, err := todevice.NewEnvelope(todevice.EventStart, "@alice:example.org", start)
	require.NoError(t, err)

	require.NoError(t, h.bobRouter.Handle(context.Background(), env))
	err = h.bobRouter.Handle(context.Background(), env)
	assert.Error(t, err, "a redelivered start event must not re-create the flow")
}

func TestRouterRejectsUnknownEventType(t *testing.T) {
	h := newHarness(t)
	env := &todevice.Envelope{Type: "m.key.verification.bogus", SenderUserID: "@alice:example.org"}
	err := h.bobRouter.Handle(context.Background(), env)
	assert.Error(t, err)
}
