package sasstate

import "crypto/ed25519"

// Account is the local user's signing identity: user id, device id, and the
// Ed25519 key used to MAC the verification's exchanged keys.
type Account struct {
	UserID       string
	DeviceID     string
	SigningKey   ed25519.PublicKey
	CrossSignKey ed25519.PublicKey // master key of our own cross-signing identity, optional
}

// Device is a peer device's published identity keys, as returned by the
// identity lookup contract (see store.IdentityLookup).
type Device struct {
	UserID      string
	DeviceID    string
	Ed25519Key  ed25519.PublicKey
	Curve25519Key [32]byte
}

// CrossSigningIdentity is a user's published cross-signing master key,
// optionally attached to a flow's identity context.
type CrossSigningIdentity struct {
	UserID      string
	MasterKeyID string
	MasterKey   ed25519.PublicKey
}

// IdentityContext bundles the flow's view of both parties: our account, the
// peer device being verified, and both sides' optional cross-signing
// identities. It is read-only for the state machine; the identity lookup
// contract that populates it lives outside the core (see store.IdentityLookup).
type IdentityContext struct {
	Account Account
	Peer    Device

	OwnIdentity  *CrossSigningIdentity
	PeerIdentity *CrossSigningIdentity
}
