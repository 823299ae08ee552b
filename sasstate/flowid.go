package sasstate

import "fmt"

// FlowID is the tagged union identifying a single SAS verification flow:
// either a to-device transaction id, or an in-room event the verification
// relates to.
type FlowID struct {
	toDevice bool

	transactionID string

	roomID          string
	relatedEventID  string
}

// NewToDeviceFlowID builds a to-device flow id from an opaque transaction id.
func NewToDeviceFlowID(transactionID string) FlowID {
	return FlowID{toDevice: true, transactionID: transactionID}
}

// NewInRoomFlowID builds an in-room flow id from a room id and the event id
// of the m.key.verification.request it relates to.
func NewInRoomFlowID(roomID, relatedEventID string) FlowID {
	return FlowID{toDevice: false, roomID: roomID, relatedEventID: relatedEventID}
}

// IsToDevice reports whether this is a to-device flow id.
func (f FlowID) IsToDevice() bool { return f.toDevice }

// TransactionID returns the transaction id for a to-device flow id, or the
// empty string for an in-room flow id.
func (f FlowID) TransactionID() string { return f.transactionID }

// RoomID returns the room id for an in-room flow id, or the empty string
// for a to-device flow id.
func (f FlowID) RoomID() string { return f.roomID }

// RelatedEventID returns the related request event id for an in-room flow
// id, or the empty string for a to-device flow id.
func (f FlowID) RelatedEventID() string { return f.relatedEventID }

// String renders the flow id for logging, map keys, and HKDF info strings.
func (f FlowID) String() string {
	if f.toDevice {
		return f.transactionID
	}
	return fmt.Sprintf("%s/%s", f.roomID, f.relatedEventID)
}

// Equal reports structural equality between two flow ids.
func (f FlowID) Equal(other FlowID) bool {
	if f.toDevice != other.toDevice {
		return false
	}
	if f.toDevice {
		return f.transactionID == other.transactionID
	}
	return f.roomID == other.roomID && f.relatedEventID == other.relatedEventID
}
