package wallet

import (
	"math/rand"
	"strconv"
)

const (
	accountNumberMin = 1_000_000_000 // 10 digits
	accountNumberMax = 9_999_999_999
	savingsIDMin     = 100_000 // 6 digits
	savingsIDMax     = 999_999
)

// IntN supplies random integers in [0, n). Pluggable so tests can force
// deterministic output and collisions.
type IntN func(n int64) int64

// Generator produces candidate account numbers and savings ids. Uniqueness
// is enforced by the store; callers retry on collision.
type Generator struct {
	intN IntN
}

// NewGenerator builds a generator backed by the shared math/rand source.
func NewGenerator() *Generator {
	return &Generator{intN: rand.Int63n}
}

// NewGeneratorWithSource builds a generator with a custom integer source.
func NewGeneratorWithSource(intN IntN) *Generator {
	return &Generator{intN: intN}
}

// AccountNumber returns a random 10-digit decimal string.
func (g *Generator) AccountNumber() string {
	return strconv.FormatInt(accountNumberMin+g.intN(accountNumberMax-accountNumberMin+1), 10)
}

// SavingsID returns a random 6-digit decimal string.
func (g *Generator) SavingsID() string {
	return strconv.FormatInt(savingsIDMin+g.intN(savingsIDMax-savingsIDMin+1), 10)
}
