package transposition

import (
	"errors"
	"fmt"
	"testing"
)

func TestTranspose(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		key      Key
		rounds   int
		expected string
	}{
		{"single round", "DIDYOUSEE", Key{3, 1, 2}, 1, "IOEDUEDYS"},
		{"two rounds", "DIDYOUSEE", Key{3, 1, 2}, 2, "OUYEESIDD"},
		{"spaces kept", "DID YOU SEE", Key{3, 1, 2}, 1, "IY EDOS D UE"},
		{"padded", "ATTACKPOSTPONEDUNTILTWOAM", Key{4, 3, 1, 2, 5, 6, 7}, 1, "TTNAAPTMTSUOAODWCOI KNL PET "},
		{"padded two rounds", "ATTACKPOSTPONEDUNTILTWOAM", Key{4, 3, 1, 2, 5, 6, 7}, 2, "NSC AUOPTTWLTMDNAOIEPA TTOK "},
		{"five columns", "WEWEREDISCOVEREDYESTERDAY", Key{3, 1, 4, 2, 5}, 1, "EDVYRESRSAWEODEWIEEDRCETY"},
		{"empty", "", Key{2, 1}, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transpose([]byte(tt.input), tt.key, tt.rounds)
			if err != nil {
				t.Fatalf("Transpose failed: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, string(got))
			}
		})
	}
}

func TestInverseTranspose(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		key      Key
		rounds   int
		expected string
	}{
		{"single round", "IOEDUEDYS", Key{3, 1, 2}, 1, "DIDYOUSEE"},
		{"two rounds", "OUYEESIDD", Key{3, 1, 2}, 2, "DIDYOUSEE"},
		{"keeps padding", "NSC AUOPTTWLTMDNAOIEPA TTOK ", Key{4, 3, 1, 2, 5, 6, 7}, 2, "ATTACKPOSTPONEDUNTILTWOAM   "},
		{"restores trimmed filler", "NSC AUOPTTWLTMDNAOIEPA TTOK", Key{4, 3, 1, 2, 5, 6, 7}, 2, "ATTACKPOSTPONEDUNTILTWOAM   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InverseTranspose([]byte(tt.input), tt.key, tt.rounds)
			if err != nil {
				t.Fatalf("InverseTranspose failed: %v", err)
			}
			if string(got) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, string(got))
			}
		})
	}
}

func TestTransposeRoundTrip(t *testing.T) {
	texts := []string{
		"WEWEREDISCOVEREDYESTERDAY",
		"HELLO WORLD",
		"A B C",
		"x",
		"The quick brown fox jumps over the lazy dog.",
	}
	keys := []Key{
		{1, 2},
		{2, 1},
		{3, 1, 2},
		{3, 1, 4, 2, 5},
		{4, 3, 1, 2, 5, 6, 7},
	}

	for _, text := range texts {
		for _, key := range keys {
			for rounds := 1; rounds <= 4; rounds++ {
				name := fmt.Sprintf("%s/%s/%d", text, key, rounds)
				padded := Pad([]byte(text), key.Columns())

				enc, err := Transpose([]byte(text), key, rounds)
				if err != nil {
					t.Fatalf("%s: Transpose failed: %v", name, err)
				}
				if len(enc) != len(padded) {
					t.Fatalf("%s: length changed from %d to %d", name, len(padded), len(enc))
				}
				dec, err := InverseTranspose(enc, key, rounds)
				if err != nil {
					t.Fatalf("%s: InverseTranspose failed: %v", name, err)
				}
				if string(dec) != string(padded) {
					t.Errorf("%s: expected %q, got %q", name, padded, dec)
				}
				if string(TrimFiller(dec)) != text {
					t.Errorf("%s: trimmed result %q differs from input", name, TrimFiller(dec))
				}
			}
		}
	}
}

func TestInverseRoundHandlesRaggedLength(t *testing.T) {
	key := Key{3, 1, 2}
	text := []byte("ABCDEFGH")
	enc := transposeRound(text, key)
	if got := inverseRound(enc, key.Inverse()); string(got) != string(text) {
		t.Fatalf("expected %q, got %q", text, got)
	}
}

func TestInverseKey(t *testing.T) {
	tests := []struct {
		key      Key
		expected Key
	}{
		{Key{3, 1, 2}, Key{2, 3, 1}},
		{Key{1, 2}, Key{1, 2}},
		{Key{4, 3, 1, 2, 5, 6, 7}, Key{3, 4, 2, 1, 5, 6, 7}},
	}

	for _, tt := range tests {
		got := tt.key.Inverse()
		if got.String() != tt.expected.String() {
			t.Errorf("Inverse(%s): expected %s, got %s", tt.key, tt.expected, got)
		}
		if back := got.Inverse(); back.String() != tt.key.String() {
			t.Errorf("double inverse of %s gave %s", tt.key, back)
		}
	}
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[3,1,2]", "3,1,2"},
		{"3, 1, 2", "3,1,2"},
		{"3 1 2", "3,1,2"},
		{" 2 1 ", "2,1"},
	}

	for _, tt := range tests {
		key, err := ParseKey(tt.input)
		if err != nil {
			t.Fatalf("ParseKey(%q) failed: %v", tt.input, err)
		}
		if key.String() != tt.expected {
			t.Errorf("ParseKey(%q): expected %s, got %s", tt.input, tt.expected, key)
		}
	}
}

func TestInvalidKeys(t *testing.T) {
	tests := []struct {
		name string
		key  Key
	}{
		{"too short", Key{1}},
		{"empty", Key{}},
		{"duplicate", Key{1, 1, 2}},
		{"zero based", Key{0, 1, 2}},
		{"out of range", Key{1, 2, 4}},
		{"too long", make(Key, 27)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.key.Validate(); !errors.Is(err, ErrInvalidPermutationKey) {
				t.Errorf("Validate: expected ErrInvalidPermutationKey, got %v", err)
			}
			if _, err := Transpose([]byte("HELLO"), tt.key, 1); !errors.Is(err, ErrInvalidPermutationKey) {
				t.Errorf("Transpose: expected ErrInvalidPermutationKey, got %v", err)
			}
			if _, err := InverseTranspose([]byte("HELLO"), tt.key, 1); !errors.Is(err, ErrInvalidPermutationKey) {
				t.Errorf("InverseTranspose: expected ErrInvalidPermutationKey, got %v", err)
			}
		})
	}

	if _, err := ParseKey("3,x,2"); !errors.Is(err, ErrInvalidPermutationKey) {
		t.Errorf("ParseKey: expected ErrInvalidPermutationKey, got %v", err)
	}
}

func TestInvalidRounds(t *testing.T) {
	if _, err := Transpose([]byte("HELLO"), Key{2, 1}, 0); !errors.Is(err, ErrInvalidRounds) {
		t.Errorf("expected ErrInvalidRounds, got %v", err)
	}
	if _, err := InverseTranspose([]byte("HELLO"), Key{2, 1}, -1); !errors.Is(err, ErrInvalidRounds) {
		t.Errorf("expected ErrInvalidRounds, got %v", err)
	}
}

func TestPad(t *testing.T) {
	if got := string(Pad([]byte("ABCD"), 3)); got != "ABCD  " {
		t.Errorf("expected %q, got %q", "ABCD  ", got)
	}
	if got := string(Pad([]byte("ABC"), 3)); got != "ABC" {
		t.Errorf("expected %q, got %q", "ABC", got)
	}
}
