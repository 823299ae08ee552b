package sasstate

import (
	"fmt"
	"sort"
	"strings"
)

const infoPrefixMAC = "MATRIX_KEY_VERIFICATION_MAC"

// MacParties identifies the sender/recipient pair and flow the MAC info
// string is scoped to, per spec §4.5.
type MacParties struct {
	SenderUserID     string
	SenderDeviceID   string
	RecipientUserID  string
	RecipientDeviceID string
	FlowID           string
}

func (p MacParties) keyInfo(keyID string) []byte {
	return []byte(fmt.Sprintf("%s%s%s%s%s%s%s",
		infoPrefixMAC, p.SenderUserID, p.SenderDeviceID, p.RecipientUserID, p.RecipientDeviceID, p.FlowID, keyID))
}

func (p MacParties) keyIDsInfo() []byte {
	return []byte(fmt.Sprintf("%s%s%s%s%s%sKEY_IDS",
		infoPrefixMAC, p.SenderUserID, p.SenderDeviceID, p.RecipientUserID, p.RecipientDeviceID, p.FlowID))
}

// sortedKeyIDs returns the sorted, comma-joined list of a key map's ids.
func sortedKeyIDs(keys map[string]string) string {
	ids := make([]string, 0, len(keys))
	for id := range keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// GenerateMAC computes the per-key MACs and the keys-MAC for the given
// base64-encoded keys (device Ed25519 key, optionally the master signing
// key), keyed by their key id (e.g. "ed25519:DEVICEID").
func GenerateMAC(established *Established, parties MacParties, keys map[string]string) (macs map[string]string, keysMAC string, err error) {
	macs = make(map[string]string, len(keys))
	for keyID, keyB64 := range keys {
		mac, err := established.MAC([]byte(keyB64), parties.keyInfo(keyID))
		if err != nil {
			return nil, "", fmt.Errorf("sasstate: mac key %s: %w", keyID, err)
		}
		macs[keyID] = mac
	}

	keysMAC, err = established.MAC([]byte(sortedKeyIDs(keys)), parties.keyIDsInfo())
	if err != nil {
		return nil, "", fmt.Errorf("sasstate: mac key ids: %w", err)
	}
	return macs, keysMAC, nil
}

// ValidateMAC checks a peer's mac/keys content per spec §4.5 against the
// keys we know for them (knownKeys, key id -> base64 key value). It returns
// the subset of receivedMAC's key ids that are both known and verified;
// unknown ids are silently skipped. Any failure returns ErrKeyMismatch.
func ValidateMAC(established *Established, parties MacParties, receivedMAC map[string]string, receivedKeysMAC string, knownKeys map[string]string) ([]string, error) {
	expectedKeysMAC, err := established.MAC([]byte(sortedKeyIDs(receivedMAC)), parties.keyIDsInfo())
	if err != nil {
		return nil, fmt.Errorf("sasstate: compute expected keys mac: %w", err)
	}
	if expectedKeysMAC != receivedKeysMAC {
		return nil, fmt.Errorf("%w: keys mac mismatch", ErrKeyMismatch)
	}

	var verified []string
	for keyID, mac := range receivedMAC {
		keyB64, known := knownKeys[keyID]
		if !known {
			continue
		}
		expected, err := established.MAC([]byte(keyB64), parties.keyInfo(keyID))
		if err != nil {
			return nil, fmt.Errorf("sasstate: compute expected mac for %s: %w", keyID, err)
		}
		if expected != mac {
			return nil, fmt.Errorf("%w: mac mismatch for key %s", ErrKeyMismatch, keyID)
		}
		verified = append(verified, keyID)
	}
	return verified, nil
}
