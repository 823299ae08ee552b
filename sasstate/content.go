package sasstate

import "encoding/base64"

// Relation carries the m.relates_to binding for an in-room flow.
type Relation struct {
	RelType string `json:"rel_type"`
	EventID string `json:"event_id"`
}

// StartContent is the m.key.verification.start payload.
type StartContent struct {
	FromDevice                string                 `json:"from_device"`
	Method                    string                 `json:"method"`
	TransactionID             string                 `json:"transaction_id,omitempty"`
	RelatesTo                 *Relation              `json:"m.relates_to,omitempty"`
	KeyAgreementProtocols     []KeyAgreementProtocol `json:"key_agreement_protocols"`
	Hashes                    []HashAlgorithm        `json:"hashes"`
	MessageAuthenticationCodes []MacMethod           `json:"message_authentication_codes"`
	ShortAuthenticationString []ShortAuthString       `json:"short_authentication_string"`
}

// AcceptContent is the m.key.verification.accept payload.
type AcceptContent struct {
	TransactionID              string            `json:"transaction_id,omitempty"`
	RelatesTo                  *Relation         `json:"m.relates_to,omitempty"`
	Method                     string            `json:"method"`
	KeyAgreementProtocol       KeyAgreementProtocol `json:"key_agreement_protocol"`
	Hash                       HashAlgorithm     `json:"hash"`
	MessageAuthenticationCode  MacMethod         `json:"message_authentication_code"`
	ShortAuthenticationString  []ShortAuthString `json:"short_authentication_string"`
	Commitment                 string            `json:"commitment"`
}

// KeyContent is the m.key.verification.key payload.
type KeyContent struct {
	TransactionID string    `json:"transaction_id,omitempty"`
	RelatesTo     *Relation `json:"m.relates_to,omitempty"`
	Key           string    `json:"key"`
}

// MacContent is the m.key.verification.mac payload.
type MacContent struct {
	TransactionID string            `json:"transaction_id,omitempty"`
	RelatesTo     *Relation         `json:"m.relates_to,omitempty"`
	Mac           map[string]string `json:"mac"`
	Keys          string            `json:"keys"`
}

// DoneContent is the m.key.verification.done payload, only meaningful for
// in-room flows.
type DoneContent struct {
	RelatesTo *Relation `json:"m.relates_to,omitempty"`
}

// CancelContent is the m.key.verification.cancel payload.
type CancelContent struct {
	TransactionID string     `json:"transaction_id,omitempty"`
	RelatesTo     *Relation  `json:"m.relates_to,omitempty"`
	Code          CancelCode `json:"code"`
	Reason        string     `json:"reason"`
}

func relationFor(id FlowID) (transactionID string, relatesTo *Relation) {
	if id.IsToDevice() {
		return id.TransactionID(), nil
	}
	return "", &Relation{RelType: "m.reference", EventID: id.RelatedEventID()}
}

// BuildStart constructs the outbound start content for id, offering catalog.
func BuildStart(id FlowID, fromDevice string, catalog ProtocolCatalog) StartContent {
	txID, rel := relationFor(id)
	return StartContent{
		FromDevice:                 fromDevice,
		Method:                     methodSasV1,
		TransactionID:              txID,
		RelatesTo:                  rel,
		KeyAgreementProtocols:      catalog.KeyAgreementProtocols,
		Hashes:                     catalog.Hashes,
		MessageAuthenticationCodes: catalog.MACs,
		ShortAuthenticationString:  catalog.ShortAuthStrings,
	}
}

// BuildAccept constructs the outbound accept content for id.
func BuildAccept(id FlowID, accepted AcceptedProtocols, commitment string) AcceptContent {
	txID, rel := relationFor(id)
	return AcceptContent{
		TransactionID:             txID,
		RelatesTo:                 rel,
		Method:                    methodSasV1,
		KeyAgreementProtocol:      accepted.KeyAgreementProtocol,
		Hash:                      accepted.Hash,
		MessageAuthenticationCode: accepted.MAC,
		ShortAuthenticationString: accepted.ShortAuthStrings,
		Commitment:                commitment,
	}
}

// BuildKey constructs the outbound key content for id, carrying our public key.
func BuildKey(id FlowID, publicKey [32]byte) KeyContent {
	txID, rel := relationFor(id)
	return KeyContent{
		TransactionID: txID,
		RelatesTo:     rel,
		Key:           base64.RawStdEncoding.EncodeToString(publicKey[:]),
	}
}

// BuildMac constructs the outbound mac content for id.
func BuildMac(id FlowID, mac map[string]string, keys string) MacContent {
	txID, rel := relationFor(id)
	return MacContent{
		TransactionID: txID,
		RelatesTo:     rel,
		Mac:           mac,
		Keys:          keys,
	}
}

// BuildDone constructs the outbound done content for an in-room id. Callers
// must not emit this for a to-device flow id (the protocol has no
// m.key.verification.done there).
func BuildDone(id FlowID) DoneContent {
	_, rel := relationFor(id)
	return DoneContent{RelatesTo: rel}
}

// BuildCancel constructs the outbound cancel content for id.
func BuildCancel(id FlowID, code CancelCode, reason string) CancelContent {
	txID, rel := relationFor(id)
	return CancelContent{
		TransactionID: txID,
		RelatesTo:     rel,
		Code:          code,
		Reason:        reason,
	}
}
