// Package sasstate implements the Matrix Short Authentication String (SAS)
// device-verification protocol as a single-flow state machine: ten states
// connected by the transitions of the Matrix client-server specification's
// SAS verification method, driven one inbound event at a time by a caller
// that owns the to-device or in-room transport.
package sasstate

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/sage-x-project/sas-verify/internal/metrics"
	"github.com/sage-x-project/sas-verify/internal/verifylog"
)

// Flow is a single SAS verification instance. Transition methods never
// mutate the receiver: each returns a new *Flow carrying the next phase,
// leaving the receiver to represent the state just before the transition.
// This is the "single mutable current_state field" rendition of the design
// note's affine-type requirement: Go has no ownership types, so illegal
// reuse of a consumed Flow is prevented by convention (discard the old
// value) rather than by the compiler.
type Flow struct {
	id       FlowID
	identity IdentityContext

	ourDH        *DHContext // nil once consumed (entry to KeyReceived)
	ourPublicKey [32]byte
	peerKey      [32]byte // ephemeral key the peer offered; set on entry to KeyReceived

	creationTime       time.Time
	lastEventTime      time.Time
	startedFromRequest bool

	clock  Clock
	logger verifylog.Logger

	phase Phase

	created        *createdPayload
	started        *startedPayload
	weAccepted     *weAcceptedPayload
	accepted       *acceptedPayload
	keyReceived    *keyReceivedPayload
	confirmed      *confirmedPayload
	macReceived    *macReceivedPayload
	waitingForDone *waitingForDonePayload
	done           *donePayload
	cancelled      *cancelledPayload
}

// Options configures a new Flow's injectable collaborators.
type Options struct {
	Clock  Clock
	Logger verifylog.Logger
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.Logger == nil {
		o.Logger = verifylog.GetDefaultLogger()
	}
	return o
}

// NewFlow creates a flow we initiate: generates our ephemeral keypair and
// enters Created, offering catalog.
func NewFlow(id FlowID, identity IdentityContext, catalog ProtocolCatalog, startedFromRequest bool, opts Options) (*Flow, StartContent, error) {
	opts = opts.withDefaults()

	dh, err := NewEphemeral()
	if err != nil {
		return nil, StartContent{}, err
	}

	now := opts.Clock.Now()
	start := BuildStart(id, identity.Account.DeviceID, catalog)

	f := &Flow{
		id:                 id,
		identity:           identity,
		ourDH:              dh,
		ourPublicKey:       dh.PublicKey(),
		creationTime:       now,
		lastEventTime:      now,
		startedFromRequest: startedFromRequest,
		clock:              opts.Clock,
		logger:             opts.Logger,
		phase:              PhaseCreated,
		created:            &createdPayload{catalog: catalog, startContent: start},
	}

	metrics.FlowsStarted.WithLabelValues("initiator").Inc()
	return f, start, nil
}

// FromStartEvent creates a flow the peer initiated: generates our ephemeral
// keypair, validates the peer's start offer against catalog, computes the
// commitment over our own public key, and enters Started.
func FromStartEvent(id FlowID, identity IdentityContext, catalog ProtocolCatalog, senderUserID string, start StartContent, startedFromRequest bool, opts Options) (*Flow, error) {
	opts = opts.withDefaults()

	if senderUserID != identity.Peer.UserID {
		return nil, fmt.Errorf("%w: sender %q", ErrUserMismatch, senderUserID)
	}

	accepted, err := catalog.AcceptFromPeerStart(start.Method, start.KeyAgreementProtocols, start.Hashes, start.MessageAuthenticationCodes, start.ShortAuthenticationString)
	if err != nil {
		return nil, err
	}

	dh, err := NewEphemeral()
	if err != nil {
		return nil, err
	}

	canonical, err := CanonicalJSON(start)
	if err != nil {
		return nil, err
	}
	commitment := CalculateCommitment(dh.PublicKey(), canonical)

	now := opts.Clock.Now()
	f := &Flow{
		id:                 id,
		identity:           identity,
		ourDH:              dh,
		ourPublicKey:       dh.PublicKey(),
		creationTime:       now,
		lastEventTime:      now,
		startedFromRequest: startedFromRequest,
		clock:              opts.Clock,
		logger:             opts.Logger,
		phase:              PhaseStarted,
		started:            &startedPayload{commitment: commitment, accepted: accepted},
	}

	f.logger.Info("sas commitment computed",
		verifylog.String("flow_id", id.String()),
		verifylog.String("our_public_key", base64.RawStdEncoding.EncodeToString(dh.PublicKey()[:])),
		verifylog.String("commitment", commitment),
	)
	metrics.FlowsStarted.WithLabelValues("responder").Inc()
	return f, nil
}

// Phase returns the flow's current state.
func (f *Flow) Phase() Phase { return f.phase }

// ID returns the flow's identifier.
func (f *Flow) ID() FlowID { return f.id }

// Peer returns the device this flow is verifying, for callers that need to
// address an outbound transition's wire event (e.g. the transport layer).
func (f *Flow) Peer() Device { return f.identity.Peer }

// commonChecks runs the §4.7 checks every inbound transition performs
// first, in order: flow id, sender, timeout.
func (f *Flow) commonChecks(flowIDStr, senderUserID string) error {
	if flowIDStr != f.id.String() {
		return ErrUnknownTransaction
	}
	if senderUserID != f.identity.Peer.UserID {
		return ErrUserMismatch
	}
	if f.timedOut() {
		return ErrTimeout
	}
	return nil
}

func (f *Flow) timedOut() bool {
	now := f.clock.Now()
	if now.Sub(f.creationTime) > MaxAge {
		return true
	}
	if now.Sub(f.lastEventTime) > MaxEventTimeout {
		return true
	}
	return false
}

// TimedOut reports whether the flow's age or inter-event gap has exceeded
// the thresholds of spec §4.6, for callers that poll independently of an
// inbound event.
func (f *Flow) TimedOut() bool {
	return f.phase != PhaseCancelled && f.phase != PhaseDone && f.timedOut()
}

// base returns a copy of the flow-wide fields for constructing the next
// phase's Flow value.
func (f *Flow) base() Flow {
	return Flow{
		id:                 f.id,
		identity:           f.identity,
		ourPublicKey:       f.ourPublicKey,
		peerKey:            f.peerKey,
		creationTime:       f.creationTime,
		lastEventTime:      f.lastEventTime,
		startedFromRequest: f.startedFromRequest,
		clock:              f.clock,
		logger:             f.logger,
	}
}

func (f *Flow) touch() time.Time {
	return f.clock.Now()
}

// cancel builds the terminal Cancelled flow plus its outbound cancel
// message, recording the reason in metrics.
func (f *Flow) cancel(err error, cancelledByUs bool) (*Flow, CancelContent) {
	code := codeOf(err)
	next := f.base()
	next.phase = PhaseCancelled
	next.cancelled = &cancelledPayload{code: code, cancelledByUs: cancelledByUs}

	f.logger.Info("sas flow cancelled",
		verifylog.String("flow_id", f.id.String()),
		verifylog.String("code", string(code)),
		verifylog.Bool("cancelled_by_us", cancelledByUs),
		verifylog.Duration("elapsed", f.clock.Now().Sub(f.creationTime)),
	)
	metrics.FlowsCancelled.WithLabelValues(string(code)).Inc()
	return &next, BuildCancel(f.id, code, err.Error())
}

// Cancel is the explicit caller-driven cancellation (local user declines,
// or the caller enforces a policy outside the protocol checks).
func (f *Flow) Cancel(code CancelCode, reason string) (*Flow, CancelContent) {
	next := f.base()
	next.phase = PhaseCancelled
	next.cancelled = &cancelledPayload{code: code, cancelledByUs: true}
	metrics.FlowsCancelled.WithLabelValues(string(code)).Inc()
	return &next, BuildCancel(f.id, code, reason)
}

// CancelCode returns the reason the flow was cancelled. Only meaningful
// when Phase() == PhaseCancelled.
func (f *Flow) CancelCode() CancelCode {
	if f.cancelled == nil {
		return ""
	}
	return f.cancelled.code
}

// CancelledByUs reports whether this side initiated the cancellation.
func (f *Flow) CancelledByUs() bool {
	if f.cancelled == nil {
		return false
	}
	return f.cancelled.cancelledByUs
}

// Accept validates the peer's accept content against our stored catalog
// (Created → Accepted, or the simultaneous-start Started → Accepted path),
// recording the start content we sent for later commitment verification.
func (f *Flow) Accept(senderUserID string, accept AcceptContent) (*Flow, KeyContent, error) {
	var catalog ProtocolCatalog
	var startContent StartContent

	switch f.phase {
	case PhaseCreated:
		catalog = f.created.catalog
		startContent = f.created.startContent
	case PhaseStarted:
		catalog = DefaultCatalog()
		startContent = BuildStart(f.id, f.identity.Account.DeviceID, catalog)
	default:
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, KeyContent{}, ErrUnexpectedMessage
	}

	if err := f.commonChecks(flowIDBound(accept.TransactionID, accept.RelatesTo, f.id), senderUserID); err != nil {
		next, _ := f.cancel(err, true)
		return next, KeyContent{}, err
	}

	accepted, err := catalog.AcceptFromPeerAccept(accept.Method, accept.KeyAgreementProtocol, accept.Hash, accept.MessageAuthenticationCode, accept.ShortAuthenticationString)
	if err != nil {
		next, _ := f.cancel(err, true)
		return next, KeyContent{}, err
	}

	next := f.base()
	next.ourDH = f.ourDH
	next.lastEventTime = f.touch()
	next.phase = PhaseAccepted
	next.accepted = &acceptedPayload{
		startContent: startContent,
		commitment:   accept.Commitment,
		accepted:     accepted,
	}

	f.logger.Debug("sas transition", verifylog.String("flow_id", f.id.String()), verifylog.String("to", PhaseAccepted.String()))
	metrics.StateTransitionDuration.WithLabelValues(f.phase.String()).Observe(next.lastEventTime.Sub(f.creationTime).Seconds())
	return &next, BuildKey(f.id, f.ourPublicKey), nil
}

// AgreeToVerify is the Started → WeAccepted transition: the local user has
// agreed to show sasKinds (augmented to include Decimal if missing), and we
// send our accept echoing the commitment computed on entry to Started.
func (f *Flow) AgreeToVerify(sasKinds []ShortAuthString) (*Flow, AcceptContent, KeyContent, error) {
	if f.phase != PhaseStarted {
		next, cancel := f.cancel(ErrUnexpectedMessage, true)
		return next, AcceptContent{}, KeyContent{}, fmt.Errorf("%s", cancel.Reason)
	}

	kinds := sasKinds
	hasDecimal := false
	for _, k := range kinds {
		if k == SASDecimal {
			hasDecimal = true
			break
		}
	}
	if !hasDecimal {
		kinds = append(append([]ShortAuthString{}, kinds...), SASDecimal)
	}

	accepted := f.started.accepted
	accepted.ShortAuthStrings = kinds

	next := f.base()
	next.ourDH = f.ourDH
	next.phase = PhaseWeAccepted
	next.weAccepted = &weAcceptedPayload{weStarted: false, accepted: accepted, commitment: f.started.commitment}

	acceptMsg := BuildAccept(f.id, accepted, f.started.commitment)
	keyMsg := BuildKey(f.id, f.ourPublicKey)
	return &next, acceptMsg, keyMsg, nil
}

// ReceiveKey is the Accepted → KeyReceived (we_started=true) or
// WeAccepted → KeyReceived (we_started=false) transition: parses the
// peer's public key, performs DH, and for the Accepted path recomputes and
// checks the commitment against the stored start content.
func (f *Flow) ReceiveKey(senderUserID string, keyContent KeyContent) (*Flow, error) {
	if f.phase != PhaseAccepted && f.phase != PhaseWeAccepted {
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, ErrUnexpectedMessage
	}
	if err := f.commonChecks(flowIDBound(keyContent.TransactionID, keyContent.RelatesTo, f.id), senderUserID); err != nil {
		next, _ := f.cancel(err, true)
		return next, err
	}

	peerKeyBytes, err := base64.RawStdEncoding.DecodeString(keyContent.Key)
	if err != nil || len(peerKeyBytes) != 32 {
		next, _ := f.cancel(ErrInvalidMessage, true)
		return next, ErrInvalidMessage
	}
	var peerKey [32]byte
	copy(peerKey[:], peerKeyBytes)

	var accepted AcceptedProtocols
	weStarted := f.phase == PhaseAccepted

	if weStarted {
		canonical, err := CanonicalJSON(f.accepted.startContent)
		if err != nil {
			next, _ := f.cancel(ErrInvalidMessage, true)
			return next, ErrInvalidMessage
		}
		if CalculateCommitment(peerKey, canonical) != f.accepted.commitment {
			next, _ := f.cancel(ErrInvalidMessage, true)
			return next, ErrInvalidMessage
		}
		accepted = f.accepted.accepted
	} else {
		accepted = f.weAccepted.accepted
	}

	established, err := f.ourDH.DiffieHellman(peerKey)
	if err != nil {
		next, _ := f.cancel(ErrInvalidMessage, true)
		return next, ErrInvalidMessage
	}

	next := f.base()
	next.lastEventTime = f.touch()
	next.phase = PhaseKeyReceived
	next.peerKey = peerKey
	next.keyReceived = &keyReceivedPayload{established: established, weStarted: weStarted, accepted: accepted}
	return &next, nil
}

// ShortAuthEmoji returns the seven emoji for the established SAS. Valid in
// KeyReceived and MacReceived.
func (f *Flow) ShortAuthEmoji() ([7]EmojiEntry, error) {
	established, weStarted, err := f.establishedForSAS()
	if err != nil {
		return [7]EmojiEntry{}, err
	}
	us, peer := f.sasParties()
	return EmojiEntries(established, us, peer, f.id.String(), weStarted)
}

// ShortAuthDecimal returns the three decimal groups for the established
// SAS. Valid in KeyReceived and MacReceived.
func (f *Flow) ShortAuthDecimal() (uint16, uint16, uint16, error) {
	established, weStarted, err := f.establishedForSAS()
	if err != nil {
		return 0, 0, 0, err
	}
	us, peer := f.sasParties()
	return Decimal(established, us, peer, f.id.String(), weStarted)
}

func (f *Flow) establishedForSAS() (*Established, bool, error) {
	switch f.phase {
	case PhaseKeyReceived:
		return f.keyReceived.established, f.keyReceived.weStarted, nil
	case PhaseMacReceived:
		return f.macReceived.established, f.macReceived.weStarted, nil
	default:
		return nil, false, fmt.Errorf("sasstate: short auth string unavailable in phase %s", f.phase)
	}
}

func (f *Flow) sasParties() (us, peer sasParty) {
	us = sasParty{
		UserID:    f.identity.Account.UserID,
		DeviceID:  f.identity.Account.DeviceID,
		PublicKey: base64.RawStdEncoding.EncodeToString(f.ourPublicKey[:]),
	}
	peer = sasParty{
		UserID:    f.identity.Peer.UserID,
		DeviceID:  f.identity.Peer.DeviceID,
		PublicKey: base64.RawStdEncoding.EncodeToString(f.peerKey[:]),
	}
	return us, peer
}

// Confirm is the KeyReceived → Confirmed local transition: the local user
// has confirmed the SAS matches.
func (f *Flow) Confirm() (*Flow, error) {
	if f.phase != PhaseKeyReceived {
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, ErrUnexpectedMessage
	}
	next := f.base()
	next.phase = PhaseConfirmed
	next.confirmed = &confirmedPayload{established: f.keyReceived.established, accepted: f.keyReceived.accepted}
	return &next, nil
}

func (f *Flow) macParties(weStarted bool) MacParties {
	sender, recipient := f.identity.Account, f.identity.Peer
	return MacParties{
		SenderUserID:      sender.UserID,
		SenderDeviceID:    sender.DeviceID,
		RecipientUserID:   recipient.UserID,
		RecipientDeviceID: recipient.DeviceID,
		FlowID:            f.id.String(),
	}
}

// OurKeysToMAC returns the base64-encoded keys this side MACs for the peer:
// our Ed25519 device key, and our cross-signing master key if present.
func (f *Flow) OurKeysToMAC() map[string]string {
	keys := map[string]string{
		deviceKeyID(f.identity.Account.DeviceID): base64.RawStdEncoding.EncodeToString(f.identity.Account.SigningKey),
	}
	if f.identity.OwnIdentity != nil {
		keys[masterKeyID(f.identity.OwnIdentity.MasterKeyID)] = base64.RawStdEncoding.EncodeToString(f.identity.OwnIdentity.MasterKey)
	}
	return keys
}

func deviceKeyID(deviceID string) string { return "ed25519:" + deviceID }
func masterKeyID(keyID string) string    { return "ed25519:" + keyID }

// SendMac computes our outbound mac content from the established SAS in
// KeyReceived or Confirmed.
func (f *Flow) SendMac() (MacContent, error) {
	var established *Established
	switch f.phase {
	case PhaseKeyReceived:
		established = f.keyReceived.established
	case PhaseConfirmed:
		established = f.confirmed.established
	default:
		return MacContent{}, fmt.Errorf("sasstate: cannot send mac in phase %s", f.phase)
	}

	weStarted := f.phase == PhaseKeyReceived && f.keyReceived.weStarted
	macs, keysMAC, err := GenerateMAC(established, f.macParties(weStarted), f.OurKeysToMAC())
	if err != nil {
		return MacContent{}, err
	}
	return BuildMac(f.id, macs, keysMAC), nil
}

// ReceiveMac is the KeyReceived → MacReceived or Confirmed → Done/
// WaitingForDone transition, depending on phase and startedFromRequest.
func (f *Flow) ReceiveMac(senderUserID string, mac MacContent, knownKeys map[string]string) (*Flow, error) {
	var established *Established
	var weStarted bool

	switch f.phase {
	case PhaseKeyReceived:
		established = f.keyReceived.established
		weStarted = f.keyReceived.weStarted
	case PhaseConfirmed:
		established = f.confirmed.established
	default:
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, ErrUnexpectedMessage
	}

	if err := f.commonChecks(flowIDBound(mac.TransactionID, mac.RelatesTo, f.id), senderUserID); err != nil {
		next, _ := f.cancel(err, true)
		return next, err
	}

	// The peer is the sender of the MAC being validated.
	parties := f.macParties(weStarted)
	parties.SenderUserID, parties.RecipientUserID = parties.RecipientUserID, parties.SenderUserID
	parties.SenderDeviceID, parties.RecipientDeviceID = parties.RecipientDeviceID, parties.SenderDeviceID
	verifiedKeyIDs, err := ValidateMAC(established, parties, mac.Mac, mac.Keys, knownKeys)
	if err != nil {
		next, _ := f.cancel(err, true)
		return next, err
	}

	devices, identities := f.resolveVerified(verifiedKeyIDs)

	next := f.base()
	next.lastEventTime = f.touch()

	if f.phase == PhaseKeyReceived {
		next.phase = PhaseMacReceived
		next.macReceived = &macReceivedPayload{
			established:        established,
			weStarted:           weStarted,
			verifiedDevices:     devices,
			verifiedIdentities:  identities,
			accepted:            f.keyReceived.accepted,
		}
		return &next, nil
	}

	// Confirmed -> Done or WaitingForDone.
	if f.startedFromRequest && !f.id.IsToDevice() {
		next.phase = PhaseWaitingForDone
		next.waitingForDone = &waitingForDonePayload{established: established, verifiedDevices: devices, verifiedIdentities: identities}
	} else {
		next.phase = PhaseDone
		next.done = &donePayload{established: established, verifiedDevices: devices, verifiedIdentities: identities}
		metrics.FlowsCompleted.WithLabelValues(roleLabel(f)).Inc()
	}
	return &next, nil
}

func roleLabel(f *Flow) string {
	if f.created != nil || (f.accepted != nil) {
		return "initiator"
	}
	return "responder"
}

// resolveVerified maps verified key ids back to the identity context's
// known devices and cross-signing identities.
func (f *Flow) resolveVerified(keyIDs []string) ([]Device, []CrossSigningIdentity) {
	var devices []Device
	var identities []CrossSigningIdentity

	deviceKey := deviceKeyID(f.identity.Peer.DeviceID)
	for _, id := range keyIDs {
		if id == deviceKey {
			devices = append(devices, f.identity.Peer)
		}
		if f.identity.PeerIdentity != nil && id == masterKeyID(f.identity.PeerIdentity.MasterKeyID) {
			identities = append(identities, *f.identity.PeerIdentity)
		}
	}
	return devices, identities
}

// ConfirmToDone is the MacReceived → Done low-level transition for
// to-device flows, used directly by flows that are known not to be
// in-room-from-request.
func (f *Flow) ConfirmToDone() (*Flow, error) {
	if f.phase != PhaseMacReceived {
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, ErrUnexpectedMessage
	}
	next := f.base()
	next.phase = PhaseDone
	next.done = &donePayload{
		established:        f.macReceived.established,
		verifiedDevices:     f.macReceived.verifiedDevices,
		verifiedIdentities:  f.macReceived.verifiedIdentities,
	}
	metrics.FlowsCompleted.WithLabelValues(roleLabel(f)).Inc()
	return &next, nil
}

// ConfirmAndWaitForDone is the MacReceived → WaitingForDone low-level
// transition for in-room flows that originated from a verification
// request.
func (f *Flow) ConfirmAndWaitForDone() (*Flow, error) {
	if f.phase != PhaseMacReceived {
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, ErrUnexpectedMessage
	}
	next := f.base()
	next.phase = PhaseWaitingForDone
	next.waitingForDone = &waitingForDonePayload{
		established:        f.macReceived.established,
		verifiedDevices:     f.macReceived.verifiedDevices,
		verifiedIdentities:  f.macReceived.verifiedIdentities,
	}
	return &next, nil
}

// ConfirmRouted is the single entry point for the local MacReceived
// confirmation, routing to ConfirmToDone or ConfirmAndWaitForDone
// depending on startedFromRequest and the flow id variant, mirroring the
// original implementation's started_from_request-gated routing.
func (f *Flow) ConfirmRouted() (*Flow, error) {
	if f.startedFromRequest && !f.id.IsToDevice() {
		return f.ConfirmAndWaitForDone()
	}
	return f.ConfirmToDone()
}

// ReceiveDone is the WaitingForDone → Done transition.
func (f *Flow) ReceiveDone(senderUserID string, flowIDStr string) (*Flow, error) {
	if f.phase != PhaseWaitingForDone {
		next, _ := f.cancel(ErrUnexpectedMessage, true)
		return next, ErrUnexpectedMessage
	}
	if err := f.commonChecks(flowIDStr, senderUserID); err != nil {
		next, _ := f.cancel(err, true)
		return next, err
	}

	next := f.base()
	next.lastEventTime = f.touch()
	next.phase = PhaseDone
	next.done = &donePayload{
		established:        f.waitingForDone.established,
		verifiedDevices:     f.waitingForDone.verifiedDevices,
		verifiedIdentities:  f.waitingForDone.verifiedIdentities,
	}
	metrics.FlowsCompleted.WithLabelValues(roleLabel(f)).Inc()
	return &next, nil
}

// VerifiedDevices returns the peer devices whose Ed25519 key was verified.
// Valid in MacReceived, WaitingForDone, and Done.
func (f *Flow) VerifiedDevices() []Device {
	switch f.phase {
	case PhaseMacReceived:
		return f.macReceived.verifiedDevices
	case PhaseWaitingForDone:
		return f.waitingForDone.verifiedDevices
	case PhaseDone:
		return f.done.verifiedDevices
	default:
		return nil
	}
}

// VerifiedIdentities returns the peer cross-signing identities whose
// master key was verified. Valid in MacReceived, WaitingForDone, and Done.
func (f *Flow) VerifiedIdentities() []CrossSigningIdentity {
	switch f.phase {
	case PhaseMacReceived:
		return f.macReceived.verifiedIdentities
	case PhaseWaitingForDone:
		return f.waitingForDone.verifiedIdentities
	case PhaseDone:
		return f.done.verifiedIdentities
	default:
		return nil
	}
}

// flowIDBound extracts the wire flow id string from an event's binding
// fields for the commonChecks comparison.
func flowIDBound(transactionID string, relatesTo *Relation, fallback FlowID) string {
	if transactionID != "" {
		return transactionID
	}
	if relatesTo != nil {
		return fmt.Sprintf("%s/%s", fallback.RoomID(), relatesTo.EventID)
	}
	return fallback.String()
}
