package random

import (
	"math/rand/v2"
	"strings"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// SystemRandom implements Random using the auto-seeded math/rand/v2 source.
// Safe for concurrent use.
type SystemRandom struct{}

// New creates a new SystemRandom
func New() *SystemRandom {
	return &SystemRandom{}
}

// Intn returns a random int in [0, n), or 0 when n <= 0
func (r *SystemRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

// String generates a random string of the given length from the given alphabet
func (r *SystemRandom) String(length int, alphabet string) string {
	symbols := []rune(alphabet)
	if length <= 0 || len(symbols) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteRune(symbols[r.Intn(len(symbols))])
	}
	return b.String()
}
