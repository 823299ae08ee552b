package sasstate

import "errors"

// CancelCode identifies the reason a verification flow was cancelled.
type CancelCode string

const (
	CancelUnknownTransaction CancelCode = "m.unknown_transaction"
	CancelUserMismatch       CancelCode = "m.user_mismatch"
	CancelTimeout            CancelCode = "m.timeout"
	CancelUnknownMethod      CancelCode = "m.unknown_method"
	CancelInvalidMessage     CancelCode = "m.invalid_message"
	CancelUnexpectedMessage  CancelCode = "m.unexpected_message"
	CancelKeyMismatch        CancelCode = "m.key_mismatch"
	CancelUser               CancelCode = "m.user"
	CancelAccepted           CancelCode = "m.accepted"
)

// Sentinel errors returned by transitions, each carrying an implicit
// CancelCode surfaced via codeOf.
var (
	ErrUnknownTransaction = errors.New("sasstate: inbound event references an unknown flow id")
	ErrUserMismatch       = errors.New("sasstate: sender differs from expected peer user")
	ErrTimeout            = errors.New("sasstate: flow exceeded its age or event timeout")
	ErrUnknownMethod      = errors.New("sasstate: incompatible protocol negotiation")
	ErrInvalidMessage     = errors.New("sasstate: malformed public key, commitment mismatch, or DH failure")
	ErrUnexpectedMessage  = errors.New("sasstate: message kind not valid for the current state")
	ErrKeyMismatch        = errors.New("sasstate: MAC validation failed for a known key")
	ErrCancelledByUser    = errors.New("sasstate: cancelled by the local user")
	ErrAcceptedElsewhere  = errors.New("sasstate: another device of ours accepted the same request")
)

// codeOf maps a sentinel error to its protocol CancelCode.
func codeOf(err error) CancelCode {
	switch {
	case errors.Is(err, ErrUnknownTransaction):
		return CancelUnknownTransaction
	case errors.Is(err, ErrUserMismatch):
		return CancelUserMismatch
	case errors.Is(err, ErrTimeout):
		return CancelTimeout
	case errors.Is(err, ErrUnknownMethod):
		return CancelUnknownMethod
	case errors.Is(err, ErrInvalidMessage):
		return CancelInvalidMessage
	case errors.Is(err, ErrUnexpectedMessage):
		return CancelUnexpectedMessage
	case errors.Is(err, ErrKeyMismatch):
		return CancelKeyMismatch
	case errors.Is(err, ErrCancelledByUser):
		return CancelUser
	case errors.Is(err, ErrAcceptedElsewhere):
		return CancelAccepted
	default:
		return CancelInvalidMessage
	}
}
