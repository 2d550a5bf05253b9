package keygen

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Symbols used for key generation (lowercase alphanumeric)
const defaultSymbols = "abcdefghijklmnopqrstuvwxyz0123456789"

// DefaultLength is the key length used when none is configured.
const DefaultLength = 7

// Generator produces random paste keys. Collision handling is the
// caller's responsibility: a key that loses the insertion race must be
// thrown away and a fresh one generated.
type Generator struct {
	symbols string
	length  int
}

// New creates a key generator producing keys of the given length.
func New(length int) *Generator {
	if length < 4 || length > 32 {
		length = DefaultLength
	}
	return &Generator{
		symbols: defaultSymbols,
		length:  length,
	}
}

// Generate creates a new random key of the configured length.
func (g *Generator) Generate() (string, error) {
	result := make([]byte, g.length)
	symbolsLen := big.NewInt(int64(len(g.symbols)))

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, symbolsLen)
		if err != nil {
			return "", err
		}
		result[i] = g.symbols[n.Int64()]
	}

	return string(result), nil
}

// Length returns the configured key length.
func (g *Generator) Length() int {
	return g.length
}

// IsValidKey reports whether s could have been produced by a generator.
// Used by the request layer to reject malformed keys before any lookup.
func IsValidKey(s string) bool {
	if len(s) < 4 || len(s) > 32 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(defaultSymbols, r) {
			return false
		}
	}
	return true
}
