package sasstate

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceUserID   = "@alice:example.org"
	aliceDeviceID = "JLAFKJWSCS"
	bobUserID     = "@bob:example.org"
	bobDeviceID   = "BOBDEVCIE"
)

type party struct {
	account Account
	device  Device
	signing ed25519.PrivateKey
}

func newParty(t *testing.T, userID, deviceID string) party {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return party{
		account: Account{UserID: userID, DeviceID: deviceID, SigningKey: pub},
		device:  Device{UserID: userID, DeviceID: deviceID, Ed25519Key: pub},
		signing: priv,
	}
}

func (p party) knownKeys() map[string]string {
	return map[string]string{
		"ed25519:" + p.device.DeviceID: base64.RawStdEncoding.EncodeToString(p.device.Ed25519Key),
	}
}

// driveToKeyReceived takes a fresh alice/bob pair through start, accept, and
// key exchange, returning both flows parked in PhaseKeyReceived.
func driveToKeyReceived(t *testing.T) (alice party, bob party, aliceFlow, bobFlow *Flow) {
	t.Helper()

	alice = newParty(t, aliceUserID, aliceDeviceID)
	bob = newParty(t, bobUserID, bobDeviceID)

	aliceIdentity := IdentityContext{Account: alice.account, Peer: bob.device}
	bobIdentity := IdentityContext{Account: bob.account, Peer: alice.device}

	flowID := NewToDeviceFlowID("S1-transaction")
	catalog := DefaultCatalog()

	aliceFlow, start, err := NewFlow(flowID, aliceIdentity, catalog, false, Options{})
	require.NoError(t, err)
	require.Equal(t, PhaseCreated, aliceFlow.Phase())

	bobFlow, err = FromStartEvent(flowID, bobIdentity, catalog, aliceUserID, start, false, Options{})
	require.NoError(t, err)
	require.Equal(t, PhaseStarted, bobFlow.Phase())

	bobFlow, acceptMsg, bobKeyMsg, err := bobFlow.AgreeToVerify([]ShortAuthString{SASEmoji, SASDecimal})
	require.NoError(t, err)
	require.Equal(t, PhaseWeAccepted, bobFlow.Phase())

	aliceFlow, aliceKeyMsg, err := aliceFlow.Accept(bobUserID, acceptMsg)
	require.NoError(t, err)
	require.Equal(t, PhaseAccepted, aliceFlow.Phase())

	bobFlow, err = bobFlow.ReceiveKey(aliceUserID, aliceKeyMsg)
	require.NoError(t, err)
	require.Equal(t, PhaseKeyReceived, bobFlow.Phase())

	aliceFlow, err = aliceFlow.ReceiveKey(bobUserID, bobKeyMsg)
	require.NoError(t, err)
	require.Equal(t, PhaseKeyReceived, aliceFlow.Phase())

	return alice, bob, aliceFlow, bobFlow
}

// S1: a complete to-device verification ends in Done on both sides with
// matching SAS and a verified peer device.
func TestToDeviceVerificationCompletesWithMatchingSAS(t *testing.T) {
	alice, bob, aliceFlow, bobFlow := driveToKeyReceived(t)

	aliceEmoji, err := aliceFlow.ShortAuthEmoji()
	require.NoError(t, err)
	bobEmoji, err := bobFlow.ShortAuthEmoji()
	require.NoError(t, err)
	assert.Equal(t, aliceEmoji, bobEmoji, "both sides must derive the same emoji SAS")

	aliceD1, aliceD2, aliceD3, err := aliceFlow.ShortAuthDecimal()
	require.NoError(t, err)
	bobD1, bobD2, bobD3, err := bobFlow.ShortAuthDecimal()
	require.NoError(t, err)
	assert.Equal(t, [3]uint16{aliceD1, aliceD2, aliceD3}, [3]uint16{bobD1, bobD2, bobD3})

	// Bob confirms and sends his MAC; Alice receives it, confirms, and her
	// MAC takes Bob from Confirmed straight to Done.
	bobFlow, err = bobFlow.Confirm()
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmed, bobFlow.Phase())

	bobMac, err := bobFlow.SendMac()
	require.NoError(t, err)
	aliceMac, err := aliceFlow.SendMac()
	require.NoError(t, err)

	aliceFlow, err = aliceFlow.ReceiveMac(bobUserID, bobMac, bob.knownKeys())
	require.NoError(t, err)
	assert.Equal(t, PhaseMacReceived, aliceFlow.Phase())

	aliceFlow, err = aliceFlow.ConfirmRouted()
	require.NoError(t, err)
	bobFlow, err = bobFlow.ReceiveMac(aliceUserID, aliceMac, alice.knownKeys())
	require.NoError(t, err)

	assert.Equal(t, PhaseDone, aliceFlow.Phase())
	assert.Equal(t, PhaseDone, bobFlow.Phase())

	require.Len(t, aliceFlow.VerifiedDevices(), 1)
	assert.Equal(t, bobDeviceID, aliceFlow.VerifiedDevices()[0].DeviceID)
	require.Len(t, bobFlow.VerifiedDevices(), 1)
	assert.Equal(t, aliceDeviceID, bobFlow.VerifiedDevices()[0].DeviceID)
}

// S2: an inbound event carrying the wrong transaction id cancels the flow
// with m.unknown_transaction instead of applying the transition.
func TestUnknownTransactionIDCancelsFlow(t *testing.T) {
	_, bob, aliceFlow, _ := driveToKeyReceived(t)

	badMac := MacContent{TransactionID: "not-the-real-transaction", Mac: map[string]string{}, Keys: ""}

	next, err := aliceFlow.ReceiveMac(bobUserID, badMac, bob.knownKeys())
	require.ErrorIs(t, err, ErrUnknownTransaction)
	assert.Equal(t, PhaseCancelled, next.Phase())
	assert.Equal(t, CancelUnknownTransaction, next.CancelCode())
	assert.True(t, next.CancelledByUs())
}

// S3: an event claiming to come from a user other than the expected peer
// cancels the flow with m.user_mismatch.
func TestSenderUserMismatchCancelsFlow(t *testing.T) {
	_, bob, aliceFlow, _ := driveToKeyReceived(t)

	mac, err := aliceFlow.SendMac()
	require.NoError(t, err)

	next, err := aliceFlow.ReceiveMac("@mallory:example.org", mac, bob.knownKeys())
	require.ErrorIs(t, err, ErrUserMismatch)
	assert.Equal(t, PhaseCancelled, next.Phase())
	assert.Equal(t, CancelUserMismatch, next.CancelCode())
}

// S4: a flow that has exceeded its absolute age cancels with m.timeout on
// the next inbound event instead of completing.
func TestExpiredFlowCancelsOnNextEvent(t *testing.T) {
	alice := newParty(t, aliceUserID, aliceDeviceID)
	bob := newParty(t, bobUserID, bobDeviceID)

	aliceIdentity := IdentityContext{Account: alice.account, Peer: bob.device}
	bobIdentity := IdentityContext{Account: bob.account, Peer: alice.device}

	flowID := NewToDeviceFlowID("S4-transaction")
	catalog := DefaultCatalog()

	clock := NewFixedClock(time.Now())
	aliceFlow, start, err := NewFlow(flowID, aliceIdentity, catalog, false, Options{Clock: clock})
	require.NoError(t, err)

	bobFlow, err := FromStartEvent(flowID, bobIdentity, catalog, aliceUserID, start, false, Options{Clock: clock})
	require.NoError(t, err)

	bobFlow, acceptMsg, _, err := bobFlow.AgreeToVerify([]ShortAuthString{SASDecimal})
	require.NoError(t, err)

	clock.Advance(MaxAge + time.Second)

	next, _, err := aliceFlow.Accept(bobUserID, acceptMsg)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, PhaseCancelled, next.Phase())
	assert.Equal(t, CancelTimeout, next.CancelCode())
}

// S5: a MAC whose value does not match the key the peer published is
// rejected with m.key_mismatch and cancels the flow, even though the keys
// MAC itself is valid.
func TestMacMismatchForKnownKeyCancelsFlow(t *testing.T) {
	_, bob, aliceFlow, bobFlow := driveToKeyReceived(t)

	aliceFlow, err := aliceFlow.Confirm()
	require.NoError(t, err)
	bobFlow, err = bobFlow.Confirm()
	require.NoError(t, err)

	bobMac, err := bobFlow.SendMac()
	require.NoError(t, err)

	tamperedKnownKeys := bob.knownKeys()
	for id := range tamperedKnownKeys {
		tamperedKnownKeys[id] = base64.RawStdEncoding.EncodeToString([]byte("not-the-real-key-material-32b!!"))
	}

	next, err := aliceFlow.ReceiveMac(bobUserID, bobMac, tamperedKnownKeys)
	require.ErrorIs(t, err, ErrKeyMismatch)
	assert.Equal(t, PhaseCancelled, next.Phase())
	assert.Equal(t, CancelKeyMismatch, next.CancelCode())
}

// S6: a transition that isn't valid for the current phase (here, a second
// Confirm after the flow already reached Confirmed) cancels with
// m.unexpected_message rather than silently no-oping.
func TestUnexpectedMessageCancelsFlow(t *testing.T) {
	_, _, aliceFlow, _ := driveToKeyReceived(t)

	next, err := aliceFlow.Confirm()
	require.NoError(t, err)
	assert.Equal(t, PhaseConfirmed, next.Phase())

	reConfirm, err := next.Confirm()
	require.ErrorIs(t, err, ErrUnexpectedMessage)
	assert.Equal(t, PhaseCancelled, reConfirm.Phase())
	assert.Equal(t, CancelUnexpectedMessage, reConfirm.CancelCode())
}

func TestFlowTransitionsAreNonMutating(t *testing.T) {
	_, _, aliceFlow, _ := driveToKeyReceived(t)

	before := aliceFlow.Phase()
	confirmed, err := aliceFlow.Confirm()
	require.NoError(t, err)

	assert.Equal(t, before, aliceFlow.Phase(), "the receiver must not be mutated by a transition")
	assert.Equal(t, PhaseConfirmed, confirmed.Phase())
	assert.NotSame(t, aliceFlow, confirmed)
}

func TestCancelIsExplicitAndTerminal(t *testing.T) {
	_, _, aliceFlow, _ := driveToKeyReceived(t)

	next, cancelMsg := aliceFlow.Cancel(CancelUser, "user declined")
	assert.Equal(t, PhaseCancelled, next.Phase())
	assert.Equal(t, CancelUser, next.CancelCode())
	assert.True(t, next.CancelledByUs())
	assert.Equal(t, CancelUser, cancelMsg.Code)
	assert.Equal(t, "user declined", cancelMsg.Reason)
}

func TestTimedOutReportsFalseForTerminalPhases(t *testing.T) {
	alice := newParty(t, aliceUserID, aliceDeviceID)
	bob := newParty(t, bobUserID, bobDeviceID)
	identity := IdentityContext{Account: alice.account, Peer: bob.device}

	clock := NewFixedClock(time.Now())
	flow, _, err := NewFlow(NewToDeviceFlowID("terminal-check"), identity, DefaultCatalog(), false, Options{Clock: clock})
	require.NoError(t, err)

	cancelled, _ := flow.Cancel(CancelUser, "done")
	clock.Advance(MaxAge + time.Minute)
	assert.False(t, cancelled.TimedOut(), "a cancelled flow is already terminal and never reports TimedOut")
}
