// Package roundtrip implements the network bandwidth challenge: a
// large random payload the client must echo back verbatim, verified by
// digest rather than raw comparison so the verifier's state is
// constant-size regardless of payload size.
package roundtrip

import (
	"crypto/sha256"
	"fmt"
	"io"
)

const bytesPerKB = 1024

// Puzzle owns the random payload sent to the client.
type Puzzle struct {
	data []byte
}

// Verifier holds the SHA-256 digest of the payload a Puzzle was
// generated with.
type Verifier struct {
	digest [sha256.Size]byte
}

// Generate draws kilobytes*1024 bytes of randomness from rng and
// returns the puzzle alongside a verifier holding its digest.
func Generate(rng io.Reader, kilobytes int) (Puzzle, Verifier, error) {
	if kilobytes <= 0 {
		return Puzzle{}, Verifier{}, fmt.Errorf("roundtrip: kilobytes must be positive, got %d", kilobytes)
	}

	data := make([]byte, kilobytes*bytesPerKB)
	if _, err := io.ReadFull(rng, data); err != nil {
		return Puzzle{}, Verifier{}, fmt.Errorf("roundtrip: generate payload: %w", err)
	}

	return Puzzle{data: data}, Verifier{digest: sha256.Sum256(data)}, nil
}

// Bytes returns the raw payload bytes; this is the entire wire form,
// the outer Challenge.Network message supplies the length.
func (p Puzzle) Bytes() []byte {
	return p.data
}

// Verify reports whether response digests to the same SHA-256 value as
// the originally generated payload.
func (v Verifier) Verify(response []byte) bool {
	got := sha256.Sum256(response)
	return got == v.digest
}
