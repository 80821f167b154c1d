package signature

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifierAcceptsOwnSignature(t *testing.T) {
	bodies := [][]byte{
		[]byte(`{"event":"payment.captured"}`),
		[]byte(""),
		[]byte("  whitespace and \n newlines  "),
	}
	v := NewVerifier("shared-secret")
	for _, body := range bodies {
		require.NoError(t, v.Verify(body, v.Sign(body)))
	}
}

func TestVerifierRejectsForeignSecret(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	ours := NewVerifier("shared-secret")
	theirs := NewVerifier("other-secret")

	require.ErrorIs(t, ours.Verify(body, theirs.Sign(body)), ErrInvalidSignature)
}

func TestVerifierRejectsTamperedBody(t *testing.T) {
	v := NewVerifier("shared-secret")
	sig := v.Sign([]byte(`{"amount":100}`))

	require.ErrorIs(t, v.Verify([]byte(`{"amount":1000}`), sig), ErrInvalidSignature)
}

func TestVerifierMissingSignature(t *testing.T) {
	v := NewVerifier("shared-secret")
	require.ErrorIs(t, v.Verify([]byte("{}"), ""), ErrMissingSignature)
}

func TestVerifierWithoutSecretFailsClosed(t *testing.T) {
	v := NewVerifier("")
	require.ErrorIs(t, v.Verify([]byte("{}"), v.Sign([]byte("{}"))), ErrSecretMissing)
}

func TestSignKnownVector(t *testing.T) {
	// RFC 4231 test case 2.
	v := NewVerifier("Jefe")
	require.Equal(t,
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		v.Sign([]byte("what do ya want for nothing?")))
}
