package sasstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcceptFromPeerStartChoosesSharedProtocols(t *testing.T) {
	catalog := DefaultCatalog()

	accepted, err := catalog.AcceptFromPeerStart(
		"m.sas.v1",
		[]KeyAgreementProtocol{KeyAgreementCurve25519HKDFSHA256},
		[]HashAlgorithm{HashSHA256},
		[]MacMethod{MacHKDFHMACSHA256},
		[]ShortAuthString{SASEmoji},
	)
	require.NoError(t, err)
	assert.Equal(t, KeyAgreementCurve25519HKDFSHA256, accepted.KeyAgreementProtocol)
	assert.Equal(t, HashSHA256, accepted.Hash)
	assert.Equal(t, MacHKDFHMACSHA256, accepted.MAC)
	assert.Equal(t, []ShortAuthString{SASEmoji}, accepted.ShortAuthStrings)
}

func TestAcceptFromPeerStartRejectsUnknownMethod(t *testing.T) {
	catalog := DefaultCatalog()
	_, err := catalog.AcceptFromPeerStart("m.sas.v2", nil, nil, nil, nil)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestAcceptFromPeerStartRejectsNoSharedKeyAgreement(t *testing.T) {
	catalog := DefaultCatalog()
	_, err := catalog.AcceptFromPeerStart(
		"m.sas.v1",
		[]KeyAgreementProtocol{"unsupported-protocol"},
		[]HashAlgorithm{HashSHA256},
		[]MacMethod{MacHKDFHMACSHA256},
		[]ShortAuthString{SASEmoji},
	)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestAcceptFromPeerStartRejectsNoSharedSAS(t *testing.T) {
	catalog := DefaultCatalog()
	_, err := catalog.AcceptFromPeerStart(
		"m.sas.v1",
		[]KeyAgreementProtocol{KeyAgreementCurve25519HKDFSHA256},
		[]HashAlgorithm{HashSHA256},
		[]MacMethod{MacHKDFHMACSHA256},
		[]ShortAuthString{"unknown-presentation"},
	)
	require.ErrorIs(t, err, ErrUnknownMethod)
}

func TestAcceptFromPeerAcceptValidatesAgainstOurOffer(t *testing.T) {
	catalog := DefaultCatalog()

	_, err := catalog.AcceptFromPeerAccept("m.sas.v1", "unsupported", HashSHA256, MacHKDFHMACSHA256, []ShortAuthString{SASDecimal})
	require.ErrorIs(t, err, ErrUnknownMethod)

	accepted, err := catalog.AcceptFromPeerAccept("m.sas.v1", KeyAgreementCurve25519HKDFSHA256, HashSHA256, MacHKDFHMACSHA256, []ShortAuthString{SASDecimal})
	require.NoError(t, err)
	assert.Equal(t, KeyAgreementCurve25519HKDFSHA256, accepted.KeyAgreementProtocol)
}
