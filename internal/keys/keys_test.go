package keys

import (
	"bytes"
	"errors"
	"io"
	mathrand "math/rand"
	"testing"

	"github.com/RowanDark/esdes/internal/sdes"
)

func TestSDESKeyFromReader(t *testing.T) {
	g := NewGenerator(bytes.NewReader([]byte{0x02, 0x97}))
	key, err := g.SDESKey()
	if err != nil {
		t.Fatalf("SDESKey failed: %v", err)
	}
	if key.String() != "1010010111" {
		t.Errorf("expected 1010010111, got %s", key)
	}
}

func TestSDESKeyShortSource(t *testing.T) {
	g := NewGenerator(bytes.NewReader([]byte{0x01}))
	if _, err := g.SDESKey(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestGenerateSDESKey(t *testing.T) {
	for i := 0; i < 32; i++ {
		key, err := GenerateSDESKey()
		if err != nil {
			t.Fatalf("GenerateSDESKey failed: %v", err)
		}
		if _, err := sdes.ParseKey(key); err != nil {
			t.Fatalf("generated key %q is invalid: %v", key, err)
		}
	}
}

func TestTranspositionKeyIsPermutation(t *testing.T) {
	g := NewGenerator(mathrand.New(mathrand.NewSource(7)))
	for n := 2; n <= 26; n++ {
		key, err := g.TranspositionKey(n)
		if err != nil {
			t.Fatalf("TranspositionKey(%d) failed: %v", n, err)
		}
		if len(key) != n {
			t.Fatalf("expected %d columns, got %d", n, len(key))
		}
		if err := key.Validate(); err != nil {
			t.Fatalf("TranspositionKey(%d) produced %v: %v", n, key, err)
		}
	}
}

func TestTranspositionKeyDeterministicForSource(t *testing.T) {
	a, err := NewGenerator(mathrand.New(mathrand.NewSource(42))).TranspositionKey(8)
	if err != nil {
		t.Fatalf("TranspositionKey failed: %v", err)
	}
	b, err := NewGenerator(mathrand.New(mathrand.NewSource(42))).TranspositionKey(8)
	if err != nil {
		t.Fatalf("TranspositionKey failed: %v", err)
	}
	if a.String() != b.String() {
		t.Errorf("same source produced %s and %s", a, b)
	}
}

func TestTranspositionKeyBounds(t *testing.T) {
	for _, n := range []int{-1, 0, 1, 27, 100} {
		if _, err := GenerateTranspositionKey(n); !errors.Is(err, ErrInvalidColumnCount) {
			t.Errorf("GenerateTranspositionKey(%d): expected ErrInvalidColumnCount, got %v", n, err)
		}
	}
	key, err := GenerateTranspositionKey(DefaultColumns)
	if err != nil {
		t.Fatalf("GenerateTranspositionKey(%d) failed: %v", DefaultColumns, err)
	}
	if len(key) != DefaultColumns {
		t.Errorf("expected %d columns, got %d", DefaultColumns, len(key))
	}
}
