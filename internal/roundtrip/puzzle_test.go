package roundtrip

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyAcceptsExactEcho(t *testing.T) {
	puzzle, verifier, err := Generate(rand.Reader, 1024)
	require.NoError(t, err)

	assert.Len(t, puzzle.Bytes(), 1024*1024)
	assert.True(t, verifier.Verify(puzzle.Bytes()))
}

func TestVerifyRejectsSingleByteFlip(t *testing.T) {
	puzzle, verifier, err := Generate(rand.Reader, 4)
	require.NoError(t, err)

	tampered := append([]byte(nil), puzzle.Bytes()...)
	tampered[2] ^= 0xFF

	assert.False(t, verifier.Verify(tampered), "P5: flipping any single byte must fail verification")
}

func TestGenerateRejectsNonPositiveSize(t *testing.T) {
	_, _, err := Generate(rand.Reader, 0)
	assert.Error(t, err)
}
