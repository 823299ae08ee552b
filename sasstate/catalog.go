package sasstate

import "fmt"

// KeyAgreementProtocol identifies a supported key-agreement algorithm.
type KeyAgreementProtocol string

// HashAlgorithm identifies a supported commitment hash.
type HashAlgorithm string

// MacMethod identifies a supported MAC derivation scheme.
type MacMethod string

// ShortAuthString identifies a presentation kind for the derived SAS.
type ShortAuthString string

const (
	KeyAgreementCurve25519HKDFSHA256 KeyAgreementProtocol = "curve25519-hkdf-sha256"
	HashSHA256                       HashAlgorithm        = "sha256"
	MacHKDFHMACSHA256                MacMethod            = "hkdf-hmac-sha256"

	SASDecimal ShortAuthString = "decimal"
	SASEmoji   ShortAuthString = "emoji"

	methodSasV1 = "m.sas.v1"
)

// ProtocolCatalog is the immutable offer tuple we advertise on every start.
type ProtocolCatalog struct {
	KeyAgreementProtocols []KeyAgreementProtocol
	Hashes                []HashAlgorithm
	MACs                  []MacMethod
	ShortAuthStrings      []ShortAuthString
}

// DefaultCatalog returns the single catalog this implementation supports.
func DefaultCatalog() ProtocolCatalog {
	return ProtocolCatalog{
		KeyAgreementProtocols: []KeyAgreementProtocol{KeyAgreementCurve25519HKDFSHA256},
		Hashes:                []HashAlgorithm{HashSHA256},
		MACs:                  []MacMethod{MacHKDFHMACSHA256},
		ShortAuthStrings:      []ShortAuthString{SASDecimal, SASEmoji},
	}
}

// AcceptedProtocols is the negotiated, immutable-once-constructed tuple
// both sides will use for the remainder of the flow.
type AcceptedProtocols struct {
	KeyAgreementProtocol KeyAgreementProtocol
	Hash                 HashAlgorithm
	MAC                  MacMethod
	ShortAuthStrings     []ShortAuthString
}

func containsKA(list []KeyAgreementProtocol, v KeyAgreementProtocol) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsHash(list []HashAlgorithm, v HashAlgorithm) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsMAC(list []MacMethod, v MacMethod) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func intersectSAS(ours, theirs []ShortAuthString) []ShortAuthString {
	var out []ShortAuthString
	for _, want := range []ShortAuthString{SASDecimal, SASEmoji} {
		inOurs := false
		for _, o := range ours {
			if o == want {
				inOurs = true
				break
			}
		}
		inTheirs := false
		for _, t := range theirs {
			if t == want {
				inTheirs = true
				break
			}
		}
		if inOurs && inTheirs {
			out = append(out, want)
		}
	}
	return out
}

// AcceptFromPeerAccept validates an m.key.verification.accept content
// against our offered catalog, per the Accept-from-peer-accept rule.
func (c ProtocolCatalog) AcceptFromPeerAccept(method string, ka KeyAgreementProtocol, hash HashAlgorithm, mac MacMethod, sas []ShortAuthString) (AcceptedProtocols, error) {
	if method != methodSasV1 {
		return AcceptedProtocols{}, fmt.Errorf("%w: method %q", ErrUnknownMethod, method)
	}
	if !containsKA(c.KeyAgreementProtocols, ka) || !containsHash(c.Hashes, hash) || !containsMAC(c.MACs, mac) {
		return AcceptedProtocols{}, fmt.Errorf("%w: unsupported key agreement/hash/mac combination", ErrUnknownMethod)
	}
	hasOne := false
	for _, s := range sas {
		if s == SASDecimal || s == SASEmoji {
			hasOne = true
			break
		}
	}
	if !hasOne {
		return AcceptedProtocols{}, fmt.Errorf("%w: empty short authentication string", ErrUnknownMethod)
	}
	return AcceptedProtocols{
		KeyAgreementProtocol: ka,
		Hash:                 hash,
		MAC:                  mac,
		ShortAuthStrings:     sas,
	}, nil
}

// AcceptFromPeerStart validates an m.key.verification.start content against
// our offered catalog, per the Accept-from-peer-start rule, returning the
// intersection to use as the accepted protocols.
func (c ProtocolCatalog) AcceptFromPeerStart(method string, kas []KeyAgreementProtocol, hashes []HashAlgorithm, macs []MacMethod, sas []ShortAuthString) (AcceptedProtocols, error) {
	if method != methodSasV1 {
		return AcceptedProtocols{}, fmt.Errorf("%w: method %q", ErrUnknownMethod, method)
	}

	var ka KeyAgreementProtocol
	found := false
	for _, want := range c.KeyAgreementProtocols {
		if containsKA(kas, want) {
			ka = want
			found = true
			break
		}
	}
	if !found {
		return AcceptedProtocols{}, fmt.Errorf("%w: no shared key agreement protocol", ErrUnknownMethod)
	}

	var hash HashAlgorithm
	found = false
	for _, want := range c.Hashes {
		if containsHash(hashes, want) {
			hash = want
			found = true
			break
		}
	}
	if !found {
		return AcceptedProtocols{}, fmt.Errorf("%w: no shared hash", ErrUnknownMethod)
	}

	var mac MacMethod
	found = false
	for _, want := range c.MACs {
		if containsMAC(macs, want) {
			mac = want
			found = true
			break
		}
	}
	if !found {
		return AcceptedProtocols{}, fmt.Errorf("%w: no shared mac", ErrUnknownMethod)
	}

	chosen := intersectSAS(c.ShortAuthStrings, sas)
	if len(chosen) == 0 {
		return AcceptedProtocols{}, fmt.Errorf("%w: no shared short authentication string", ErrUnknownMethod)
	}

	return AcceptedProtocols{
		KeyAgreementProtocol: ka,
		Hash:                 hash,
		MAC:                  mac,
		ShortAuthStrings:     chosen,
	}, nil
}
