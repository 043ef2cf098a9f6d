// Package keys generates random S-DES and transposition keys.
package keys

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/RowanDark/esdes/internal/sdes"
	"github.com/RowanDark/esdes/internal/transposition"
)

// DefaultColumns is the transposition width used when none is requested.
const DefaultColumns = 3

var ErrInvalidColumnCount = fmt.Errorf("keys: column count must be between %d and %d",
	transposition.MinColumns, transposition.MaxColumns)

// Generator draws keys from a random source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading from r. A nil reader selects
// crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

// SDESKey returns a uniformly random 10-bit key.
func (g *Generator) SDESKey() (sdes.Key, error) {
	var buf [2]byte
	if _, err := io.ReadFull(g.rand, buf[:]); err != nil {
		return 0, fmt.Errorf("generate sdes key: %w", err)
	}
	v := (uint16(buf[0])<<8 | uint16(buf[1])) & (1<<sdes.KeyBits - 1)
	return sdes.Key(v), nil
}

// TranspositionKey returns a uniformly random permutation of 1..columns.
func (g *Generator) TranspositionKey(columns int) (transposition.Key, error) {
	if columns < transposition.MinColumns || columns > transposition.MaxColumns {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidColumnCount, columns)
	}
	key := make(transposition.Key, columns)
	for i := range key {
		key[i] = i + 1
	}
	for i := columns - 1; i > 0; i-- {
		j, err := rand.Int(g.rand, big.NewInt(int64(i+1)))
		if err != nil {
			return nil, fmt.Errorf("generate transposition key: %w", err)
		}
		k := int(j.Int64())
		key[i], key[k] = key[k], key[i]
	}
	return key, nil
}

var defaultGenerator = NewGenerator(nil)

// GenerateSDESKey returns a random S-DES key as ten '0'/'1' characters.
func GenerateSDESKey() (string, error) {
	k, err := defaultGenerator.SDESKey()
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

// GenerateTranspositionKey returns a random permutation of 1..n.
func GenerateTranspositionKey(n int) ([]int, error) {
	k, err := defaultGenerator.TranspositionKey(n)
	if err != nil {
		return nil, err
	}
	return []int(k), nil
}
