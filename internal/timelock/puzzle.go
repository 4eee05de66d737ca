// Package timelock implements the Rivest-Shamir-Wagner time-lock puzzle
// used as the CPU compute challenge: cheap to generate and verify with
// the trapdoor, but forcing a linear chain of modular squarings for
// anyone without it.
package timelock

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

// primeBits is the bit length of each of the two secret factors of N.
const primeBits = 128

// baseBytes is the number of random bytes drawn for the puzzle base A.
const baseBytes = 20

// Puzzle is the tuple (a, n, squarings) a client must solve by
// performing squarings sequential modular squarings of a mod n.
type Puzzle struct {
	A         *big.Int
	N         *big.Int
	Squarings uint32
}

// Verifier holds the precomputed answer to a Puzzle. It is created
// alongside the puzzle and consumed once to check a client's response.
type Verifier struct {
	answer *big.Int
}

// Generate draws two independent 128-bit probable primes from rng,
// derives the trapdoor, and returns a puzzle solvable in squarings
// sequential modular squarings along with its verifier. p, q, and phi
// never leave this function.
func Generate(rng io.Reader, squarings uint32) (Puzzle, Verifier, error) {
	if squarings < 1 {
		return Puzzle{}, Verifier{}, fmt.Errorf("timelock: squarings must be >= 1, got %d", squarings)
	}

	p, err := rand.Prime(rng, primeBits)
	if err != nil {
		return Puzzle{}, Verifier{}, fmt.Errorf("timelock: generate p: %w", err)
	}
	q, err := rand.Prime(rng, primeBits)
	if err != nil {
		return Puzzle{}, Verifier{}, fmt.Errorf("timelock: generate q: %w", err)
	}

	one := big.NewInt(1)
	phi := new(big.Int).Mul(
		new(big.Int).Sub(p, one),
		new(big.Int).Sub(q, one),
	)
	n := new(big.Int).Mul(p, q)

	aBytes := make([]byte, baseBytes)
	if _, err := io.ReadFull(rng, aBytes); err != nil {
		return Puzzle{}, Verifier{}, fmt.Errorf("timelock: draw base: %w", err)
	}
	a := new(big.Int).SetBytes(aBytes)

	e := powTwoMod(phi, squarings)
	answer := new(big.Int).Exp(a, e, n)

	return Puzzle{A: a, N: n, Squarings: squarings}, Verifier{answer: answer}, nil
}

// PerformChallenge computes a^(2^squarings) mod n by repeated modular
// squaring. This is the only correct way to solve the puzzle without
// the trapdoor, and it is inherently sequential.
func (p Puzzle) PerformChallenge() *big.Int {
	result := new(big.Int).Set(p.A)
	for i := uint32(0); i < p.Squarings; i++ {
		result.Mul(result, result)
		result.Mod(result, p.N)
	}
	return result
}

// Verify reports whether response equals the precomputed answer.
func (v Verifier) Verify(response *big.Int) bool {
	return v.answer.Cmp(response) == 0
}

// powTwoMod returns 2^t mod m via binary exponentiation, used to reduce
// the squaring count into the trapdoor exponent in O(log t) multiplications.
func powTwoMod(m *big.Int, t uint32) *big.Int {
	res := big.NewInt(1)
	base := big.NewInt(2)

	for e := t; e > 0; e >>= 1 {
		if e&1 == 1 {
			res.Mul(res, base)
			res.Mod(res, m)
		}
		base.Mul(base, base)
		base.Mod(base, m)
	}
	return res
}
