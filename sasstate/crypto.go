package sasstate

import (
	"crypto/ecdh"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DHContext owns an ephemeral Curve25519 keypair until Diffie-Hellman is
// performed. It satisfies the cryptographic primitive contract of §6:
// the private key is consumed exactly once by DiffieHellman.
type DHContext struct {
	private *ecdh.PrivateKey
	public  [32]byte
	used    bool
}

// NewEphemeral generates a fresh ephemeral X25519 keypair.
func NewEphemeral() (*DHContext, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("sasstate: generate ephemeral key: %w", err)
	}
	var pub [32]byte
	copy(pub[:], priv.PublicKey().Bytes())
	return &DHContext{private: priv, public: pub}, nil
}

// PublicKey returns the public key we offer to the peer.
func (d *DHContext) PublicKey() [32]byte { return d.public }

// DiffieHellman consumes the ephemeral private key, combining it with the
// peer's public key to produce an Established context. The raw shared
// secret is retained only inside Established; the private key bytes are
// dropped once this call returns, satisfying invariant 2.
func (d *DHContext) DiffieHellman(peerPublicKey [32]byte) (*Established, error) {
	if d.used {
		return nil, fmt.Errorf("sasstate: ephemeral key already consumed")
	}
	d.used = true

	peerPub, err := ecdh.X25519().NewPublicKey(peerPublicKey[:])
	if err != nil {
		zero(d.public[:])
		d.private = nil
		return nil, fmt.Errorf("%w: invalid peer public key: %v", ErrInvalidMessage, err)
	}

	shared, err := d.private.ECDH(peerPub)
	d.private = nil
	if err != nil {
		return nil, fmt.Errorf("%w: diffie-hellman failed: %v", ErrInvalidMessage, err)
	}

	return &Established{sharedSecret: shared}, nil
}

// Established is the post-DH context usable only for SAS byte and MAC
// derivation, per §6's contract.
type Established struct {
	sharedSecret []byte
}

// SASBytes derives n bytes of SAS-use key material via HKDF-SHA256 (extract
// with an empty salt, then expand) over the raw shared secret, with the
// given info string.
func (e *Established) SASBytes(info []byte, n int) ([]byte, error) {
	reader := hkdf.New(sha256.New, e.sharedSecret, nil, info)
	out := make([]byte, n)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("sasstate: derive sas bytes: %w", err)
	}
	return out, nil
}

// MAC computes a base64-encoded HKDF-HMAC-SHA256 MAC over message, keyed by
// material derived from the shared secret under info.
func (e *Established) MAC(message, info []byte) (string, error) {
	macKey := make([]byte, sha256.Size)
	reader := hkdf.New(sha256.New, e.sharedSecret, nil, info)
	if _, err := io.ReadFull(reader, macKey); err != nil {
		return "", fmt.Errorf("sasstate: derive mac key: %w", err)
	}
	mac := hmac.New(sha256.New, macKey)
	mac.Write(message)
	return base64.RawStdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
