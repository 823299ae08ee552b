package sasstate

// Phase names the ten reachable states of §3's table. A Flow carries
// exactly one phase at a time; the matching payload struct below is the
// only one populated, modelling the affine "consumed on transition"
// discipline Go's type system can't express directly (see doc comment on
// Flow in flow.go).
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseStarted
	PhaseWeAccepted
	PhaseAccepted
	PhaseKeyReceived
	PhaseConfirmed
	PhaseMacReceived
	PhaseWaitingForDone
	PhaseDone
	PhaseCancelled
)

// String renders the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "Created"
	case PhaseStarted:
		return "Started"
	case PhaseWeAccepted:
		return "WeAccepted"
	case PhaseAccepted:
		return "Accepted"
	case PhaseKeyReceived:
		return "KeyReceived"
	case PhaseConfirmed:
		return "Confirmed"
	case PhaseMacReceived:
		return "MacReceived"
	case PhaseWaitingForDone:
		return "WaitingForDone"
	case PhaseDone:
		return "Done"
	case PhaseCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// createdPayload is carried by a flow we initiated, before the peer's
// accept arrives.
type createdPayload struct {
	catalog      ProtocolCatalog
	startContent StartContent
}

// startedPayload is carried by a flow the peer initiated, before the local
// user has agreed to verify.
type startedPayload struct {
	commitment string
	accepted   AcceptedProtocols
}

// weAcceptedPayload is carried once the local user has agreed to a
// peer-initiated flow and we have sent our accept.
type weAcceptedPayload struct {
	weStarted  bool
	accepted   AcceptedProtocols
	commitment string
}

// acceptedPayload is carried by a flow we initiated once the peer's accept
// has been validated.
type acceptedPayload struct {
	startContent StartContent
	commitment   string
	accepted     AcceptedProtocols
}

// keyReceivedPayload is carried once DH has produced an established SAS
// context.
type keyReceivedPayload struct {
	established *Established
	weStarted   bool
	accepted    AcceptedProtocols
}

// confirmedPayload is carried once the local user has confirmed the SAS
// matches, before the peer's MAC arrives.
type confirmedPayload struct {
	established *Established
	accepted    AcceptedProtocols
}

// macReceivedPayload is carried once the peer's MAC has been validated,
// before the local user confirms.
type macReceivedPayload struct {
	established        *Established
	weStarted           bool
	verifiedDevices     []Device
	verifiedIdentities  []CrossSigningIdentity
	accepted            AcceptedProtocols
}

// waitingForDonePayload is carried by an in-room flow waiting for the
// peer's m.key.verification.done.
type waitingForDonePayload struct {
	established        *Established
	verifiedDevices     []Device
	verifiedIdentities  []CrossSigningIdentity
}

// donePayload is carried by a successfully completed flow.
type donePayload struct {
	established        *Established
	verifiedDevices     []Device
	verifiedIdentities  []CrossSigningIdentity
}

// cancelledPayload is carried by a terminated flow.
type cancelledPayload struct {
	code          CancelCode
	cancelledByUs bool
}
