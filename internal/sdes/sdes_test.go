package sdes

import (
	"crypto/cipher"
	"errors"
	"testing"
)

func TestGenerateSubkeys(t *testing.T) {
	tests := []struct {
		key string
		k1  string
		k2  string
	}{
		{"1010000010", "10100100", "01000011"},
		{"0010010111", "00101111", "11101010"},
		{"0111111101", "01011111", "11111100"},
		{"0000000000", "00000000", "00000000"},
		{"1111111111", "11111111", "11111111"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			k1, k2, err := GenerateSubkeys(tt.key)
			if err != nil {
				t.Fatalf("GenerateSubkeys failed: %v", err)
			}
			if k1 != tt.k1 || k2 != tt.k2 {
				t.Errorf("expected (%s, %s), got (%s, %s)", tt.k1, tt.k2, k1, k2)
			}

			again1, again2, _ := GenerateSubkeys(tt.key)
			if again1 != k1 || again2 != k2 {
				t.Errorf("subkeys are not deterministic")
			}
		})
	}
}

func TestKeyScheduleShiftComposition(t *testing.T) {
	// Shifting by three from P10 must equal shifting the once-shifted halves by two more.
	for v := uint16(0); v < 1<<KeyBits; v++ {
		p := permute(v, KeyBits, p10[:])
		left, right := p>>5, p&0x1f
		direct := rotl5(left, 3)<<5 | rotl5(right, 3)
		stepped := rotl5(rotl5(left, 1), 2)<<5 | rotl5(rotl5(right, 1), 2)
		if direct != stepped {
			t.Fatalf("key %010b: direct %010b != stepped %010b", v, direct, stepped)
		}
	}
}

func TestEncryptBitsKnownVectors(t *testing.T) {
	tests := []struct {
		block      string
		key        string
		ciphertext string
	}{
		{"10010111", "1010000010", "00111000"},
		{"00000000", "1010000010", "11001110"},
		{"11111111", "1010000010", "00101010"},
		{"01010101", "1010000010", "11000001"},
		{"01000001", "0010010111", "11101001"},
	}

	for _, tt := range tests {
		t.Run(tt.block+"/"+tt.key, func(t *testing.T) {
			got, err := EncryptBits(tt.block, tt.key)
			if err != nil {
				t.Fatalf("EncryptBits failed: %v", err)
			}
			if got != tt.ciphertext {
				t.Errorf("expected %s, got %s", tt.ciphertext, got)
			}

			plain, err := DecryptBits(got, tt.key)
			if err != nil {
				t.Fatalf("DecryptBits failed: %v", err)
			}
			if plain != tt.block {
				t.Errorf("decrypt: expected %s, got %s", tt.block, plain)
			}
		})
	}
}

func TestRoundTripAllKeysAndBlocks(t *testing.T) {
	for k := uint16(0); k < 1<<KeyBits; k++ {
		c := NewCipher(Key(k))
		for b := 0; b < 256; b++ {
			enc := c.EncryptByte(byte(b))
			if dec := c.DecryptByte(enc); dec != byte(b) {
				t.Fatalf("key %010b block %08b: decrypt(encrypt) = %08b", k, b, dec)
			}
		}
	}
}

func TestDistinctSubkeysForGenericKey(t *testing.T) {
	k1, k2 := Key(0b1010000010).Subkeys()
	if k1 == k2 {
		t.Fatalf("expected distinct subkeys, both were %08b", k1)
	}
}

func TestSBoxTables(t *testing.T) {
	wantS0 := []uint8{1, 3, 0, 2, 3, 1, 2, 0, 0, 3, 2, 1, 1, 3, 3, 2}
	wantS1 := []uint8{0, 2, 1, 0, 2, 1, 3, 3, 3, 2, 0, 1, 1, 0, 0, 3}

	for in := uint8(0); in < 16; in++ {
		if got := sbox(&s0, in); got != wantS0[in] {
			t.Errorf("S0(%04b): expected %d, got %d", in, wantS0[in], got)
		}
		if got := sbox(&s1, in); got != wantS1[in] {
			t.Errorf("S1(%04b): expected %d, got %d", in, wantS1[in], got)
		}
		if sbox(&s0, in) > 3 || sbox(&s1, in) > 3 {
			t.Errorf("S-box output for %04b exceeds two bits", in)
		}
	}
}

func TestInitialPermutationInverse(t *testing.T) {
	for b := 0; b < 256; b++ {
		p := permute(uint16(b), BlockBits, ip[:])
		if back := permute(p, BlockBits, ipInv[:]); back != uint16(b) {
			t.Fatalf("IP^-1(IP(%08b)) = %08b", b, back)
		}
	}
}

func TestInputValidation(t *testing.T) {
	tests := []struct {
		name  string
		block string
		key   string
		want  error
	}{
		{"short block", "1010", "1010000010", ErrInvalidBlockLength},
		{"long block", "101010101", "1010000010", ErrInvalidBlockLength},
		{"short key", "10101010", "10100", ErrInvalidKeyLength},
		{"long key", "10101010", "10100000101", ErrInvalidKeyLength},
		{"bad block alphabet", "1010a010", "1010000010", ErrInvalidBitAlphabet},
		{"bad key alphabet", "10101010", "10100x0010", ErrInvalidBitAlphabet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := EncryptBits(tt.block, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("EncryptBits: expected %v, got %v", tt.want, err)
			}
			if _, err := DecryptBits(tt.block, tt.key); !errors.Is(err, tt.want) {
				t.Errorf("DecryptBits: expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestNewKeyOverflow(t *testing.T) {
	if _, err := NewKey(1 << KeyBits); !errors.Is(err, ErrInvalidKeyLength) {
		t.Fatalf("expected ErrInvalidKeyLength, got %v", err)
	}
	k, err := NewKey(0b0010010111)
	if err != nil {
		t.Fatalf("NewKey failed: %v", err)
	}
	if k.String() != "0010010111" {
		t.Errorf("expected 0010010111, got %s", k.String())
	}
}

func TestCipherImplementsBlock(t *testing.T) {
	var block cipher.Block = NewCipher(Key(0b1010000010))
	if block.BlockSize() != 1 {
		t.Fatalf("expected block size 1, got %d", block.BlockSize())
	}

	dst := make([]byte, 1)
	block.Encrypt(dst, []byte{0b10010111})
	if dst[0] != 0b00111000 {
		t.Errorf("expected 00111000, got %08b", dst[0])
	}
	block.Decrypt(dst, dst)
	if dst[0] != 0b10010111 {
		t.Errorf("expected 10010111, got %08b", dst[0])
	}
}

func TestEncryptSteps(t *testing.T) {
	c := NewCipher(Key(0b1010000010))
	steps := c.EncryptSteps(0b10010111)
	if steps.Output != 0b00111000 {
		t.Fatalf("expected output 00111000, got %08b", steps.Output)
	}
	if steps.Switched != steps.FirstRound<<4|steps.FirstRound>>4 {
		t.Errorf("switch step did not swap halves")
	}
	back := c.DecryptSteps(steps.Output)
	if back.Output != steps.Input {
		t.Errorf("expected decrypt steps to restore %08b, got %08b", steps.Input, back.Output)
	}
}
