package sasstate

import (
	"crypto/sha256"
	"encoding/base64"
)

// CalculateCommitment computes the commitment binding an initiator's start
// content to the responder's public key: base64(SHA-256(peer_public_key_base64
// || canonical_json(start_content))). The caller supplies the already
// canonicalized start content bytes (see CanonicalJSON).
func CalculateCommitment(peerPublicKey [32]byte, canonicalStartJSON []byte) string {
	peerB64 := base64.RawStdEncoding.EncodeToString(peerPublicKey[:])

	h := sha256.New()
	h.Write([]byte(peerB64))
	h.Write(canonicalStartJSON)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
