// Package transposition implements a keyed columnar transposition.
//
// Character i of a round's input lands in bucket key[i mod N]-1; buckets keep
// their characters in original order and are concatenated in index order.
// Text is padded once, on the right, with Filler up to a multiple of N.
package transposition

import (
	"bytes"
	"errors"
	"fmt"
)

// Filler pads text to a whole number of rows.
const Filler = ' '

var ErrInvalidRounds = errors.New("rounds must be at least 1")

// Pad right-pads text with Filler to a multiple of columns. The input is not
// modified.
func Pad(text []byte, columns int) []byte {
	extra := 0
	if columns > 0 {
		extra = (columns - len(text)%columns) % columns
	}
	out := make([]byte, len(text), len(text)+extra)
	copy(out, text)
	for i := 0; i < extra; i++ {
		out = append(out, Filler)
	}
	return out
}

// Transpose pads text and applies rounds forward rounds with key.
func Transpose(text []byte, key Key, rounds int) ([]byte, error) {
	if err := checkArgs(key, rounds); err != nil {
		return nil, err
	}
	out := Pad(text, key.Columns())
	for r := 0; r < rounds; r++ {
		out = transposeRound(out, key)
	}
	return out, nil
}

// InverseTranspose undoes Transpose with the same key and round count. Input
// that lost trailing filler is re-padded first; the result keeps its padding.
func InverseTranspose(text []byte, key Key, rounds int) ([]byte, error) {
	if err := checkArgs(key, rounds); err != nil {
		return nil, err
	}
	inv := key.Inverse()
	out := Pad(text, key.Columns())
	for r := 0; r < rounds; r++ {
		out = inverseRound(out, inv)
	}
	return out, nil
}

// TrimFiller strips trailing Filler characters.
func TrimFiller(text []byte) []byte {
	return bytes.TrimRight(text, string(Filler))
}

func checkArgs(key Key, rounds int) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if rounds < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidRounds, rounds)
	}
	return nil
}

func transposeRound(text []byte, key Key) []byte {
	n := len(key)
	buckets := make([][]byte, n)
	for i, c := range text {
		b := key[i%n] - 1
		buckets[b] = append(buckets[b], c)
	}
	return bytes.Join(buckets, nil)
}

// inverseRound takes the inverse key: bucket b was fed by column inv[b]-1.
func inverseRound(text []byte, inv Key) []byte {
	n := len(inv)
	full, rem := len(text)/n, len(text)%n

	columns := make([][]byte, n)
	offset := 0
	for b := 0; b < n; b++ {
		col := inv[b] - 1
		size := full
		if col < rem {
			size++
		}
		columns[col] = text[offset : offset+size]
		offset += size
	}

	out := make([]byte, 0, len(text))
	for row := 0; row <= full; row++ {
		for _, col := range columns {
			if row < len(col) {
				out = append(out, col[row])
			}
		}
	}
	return out
}
