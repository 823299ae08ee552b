package sasstate

import "fmt"

const infoPrefixSAS = "MATRIX_KEY_VERIFICATION_SAS"

// sasParty is one side's contribution to the SAS info string.
type sasParty struct {
	UserID    string
	DeviceID  string
	PublicKey string // base64 Curve25519 public key offered by this party
}

// sasInfo builds the HKDF info string of spec §4.4:
// "MATRIX_KEY_VERIFICATION_SAS|" ‖ first ‖ "|" ‖ second ‖ "|" ‖ flow_id,
// where first is the initiator and second the responder, chosen by weStarted.
func sasInfo(us, peer sasParty, flowID string, weStarted bool) []byte {
	first, second := peer, us
	if weStarted {
		first, second = us, peer
	}
	return []byte(fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%s",
		infoPrefixSAS,
		first.UserID, first.DeviceID, first.PublicKey,
		second.UserID, second.DeviceID, second.PublicKey,
		flowID,
	))
}

// sasKeyStream derives the 6-byte SAS keystream shared by both short-auth
// string presentations, per spec §4.4.
func sasKeyStream(established *Established, us, peer sasParty, flowID string, weStarted bool) ([]byte, error) {
	info := sasInfo(us, peer, flowID, weStarted)
	return established.SASBytes(info, 6)
}

// EmojiIndex extracts the seven 6-bit big-endian indices from the first
// 42 bits of the SAS keystream, per the Matrix client-server specification's
// short-authentication-string emoji method
// (https://spec.matrix.org/latest/client-server-api/#short-authentication-string-sas-verification).
func EmojiIndex(established *Established, us, peer sasParty, flowID string, weStarted bool) ([7]uint8, error) {
	var out [7]uint8
	stream, err := sasKeyStream(established, us, peer, flowID, weStarted)
	if err != nil {
		return out, err
	}

	bits := bitsOf(stream)
	for i := 0; i < 7; i++ {
		out[i] = uint8(readBits(bits, i*6, 6))
	}
	return out, nil
}

// EmojiEntries resolves EmojiIndex's output against the fixed emoji table.
func EmojiEntries(established *Established, us, peer sasParty, flowID string, weStarted bool) ([7]EmojiEntry, error) {
	var out [7]EmojiEntry
	idx, err := EmojiIndex(established, us, peer, flowID, weStarted)
	if err != nil {
		return out, err
	}
	for i, v := range idx {
		out[i] = Emoji(v)
	}
	return out, nil
}

// Decimal extracts the three 13-bit big-endian groups from the first 39
// bits of the SAS keystream, each transformed by adding 1000, presented as
// 4-digit decimal values in the range 1000-9191, per the same Matrix
// specification section referenced in EmojiIndex's comment.
func Decimal(established *Established, us, peer sasParty, flowID string, weStarted bool) (uint16, uint16, uint16, error) {
	stream, err := sasKeyStream(established, us, peer, flowID, weStarted)
	if err != nil {
		return 0, 0, 0, err
	}

	bits := bitsOf(stream)
	d1 := uint16(readBits(bits, 0, 13)) + 1000
	d2 := uint16(readBits(bits, 13, 13)) + 1000
	d3 := uint16(readBits(bits, 26, 13)) + 1000
	return d1, d2, d3, nil
}

// bitsOf expands bytes into a big-endian bit slice for straightforward
// fixed-width group extraction.
func bitsOf(b []byte) []byte {
	bits := make([]byte, len(b)*8)
	for i, byt := range b {
		for j := 0; j < 8; j++ {
			bits[i*8+j] = (byt >> (7 - j)) & 1
		}
	}
	return bits
}

// readBits reads an n-bit big-endian unsigned integer starting at bit
// offset off.
func readBits(bits []byte, off, n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		v <<= 1
		v |= uint32(bits[off+i])
	}
	return v
}
