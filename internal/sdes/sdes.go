// Package sdes implements Simplified DES: a two-round Feistel cipher over
// 8-bit blocks with a 10-bit key.
//
// The cipher is a teaching algorithm and offers no real security.
package sdes

import (
	"crypto/cipher"
	"errors"
	"fmt"

	"github.com/RowanDark/esdes/internal/codec"
)

const (
	// BlockSize is the block size in bytes.
	BlockSize = 1
	// BlockBits is the block width in bits.
	BlockBits = 8
	// KeyBits is the key width in bits.
	KeyBits = 10
)

var (
	ErrInvalidBlockLength = errors.New("sdes: block must be 8 bits")
	ErrInvalidKeyLength   = errors.New("sdes: key must be 10 bits")
	ErrInvalidBitAlphabet = codec.ErrInvalidBitAlphabet
)

// Key is a 10-bit S-DES key held in the low bits.
type Key uint16

// NewKey validates that v fits in ten bits.
func NewKey(v uint16) (Key, error) {
	if v >= 1<<KeyBits {
		return 0, fmt.Errorf("%w: value %d overflows", ErrInvalidKeyLength, v)
	}
	return Key(v), nil
}

// ParseKey parses a string of exactly ten '0'/'1' characters.
func ParseKey(s string) (Key, error) {
	v, err := parseBits(s, KeyBits, ErrInvalidKeyLength)
	if err != nil {
		return 0, err
	}
	return Key(v), nil
}

// String renders the key as ten bits.
func (k Key) String() string {
	return fmt.Sprintf("%010b", uint16(k))
}

// Subkeys derives the two round keys. K1 rotates each P10 half left by one,
// K2 by three; both are then compressed through P8.
func (k Key) Subkeys() (k1, k2 uint8) {
	p := permute(uint16(k), KeyBits, p10[:])
	left, right := p>>5, p&0x1f
	k1 = uint8(permute(rotl5(left, 1)<<5|rotl5(right, 1), KeyBits, p8[:]))
	k2 = uint8(permute(rotl5(left, 3)<<5|rotl5(right, 3), KeyBits, p8[:]))
	return k1, k2
}

// Cipher is an S-DES instance with its round keys expanded. It satisfies
// cipher.Block with a one-byte block; the zero value is not usable.
type Cipher struct {
	k1, k2 uint8
}

var _ cipher.Block = (*Cipher)(nil)

// NewCipher expands key into a ready-to-use Cipher.
func NewCipher(key Key) *Cipher {
	k1, k2 := key.Subkeys()
	return &Cipher{k1: k1, k2: k2}
}

// BlockSize returns the S-DES block size, one byte.
func (c *Cipher) BlockSize() int { return BlockSize }

// Encrypt encrypts the first byte of src into dst.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("sdes: input not full block")
	}
	if len(dst) < BlockSize {
		panic("sdes: output not full block")
	}
	dst[0] = c.EncryptByte(src[0])
}

// Decrypt decrypts the first byte of src into dst.
func (c *Cipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("sdes: input not full block")
	}
	if len(dst) < BlockSize {
		panic("sdes: output not full block")
	}
	dst[0] = c.DecryptByte(src[0])
}

// EncryptByte encrypts a single block.
func (c *Cipher) EncryptByte(b byte) byte {
	return crypt(b, c.k1, c.k2, nil)
}

// DecryptByte decrypts a single block.
func (c *Cipher) DecryptByte(b byte) byte {
	return crypt(b, c.k2, c.k1, nil)
}

// Subkeys returns the expanded round keys.
func (c *Cipher) Subkeys() (k1, k2 uint8) {
	return c.k1, c.k2
}

// Steps records the intermediate values of one block transform.
type Steps struct {
	Input       uint8
	Permuted    uint8
	FirstRound  uint8
	Switched    uint8
	SecondRound uint8
	Output      uint8
}

// EncryptSteps encrypts b and returns every intermediate value.
func (c *Cipher) EncryptSteps(b byte) Steps {
	var s Steps
	crypt(b, c.k1, c.k2, &s)
	return s
}

// DecryptSteps decrypts b and returns every intermediate value.
func (c *Cipher) DecryptSteps(b byte) Steps {
	var s Steps
	crypt(b, c.k2, c.k1, &s)
	return s
}

func crypt(b, first, second uint8, steps *Steps) uint8 {
	permuted := uint8(permute(uint16(b), BlockBits, ip[:]))
	r1 := fk(permuted, first)
	switched := r1<<4 | r1>>4
	r2 := fk(switched, second)
	out := uint8(permute(uint16(r2), BlockBits, ipInv[:]))
	if steps != nil {
		*steps = Steps{
			Input:       b,
			Permuted:    permuted,
			FirstRound:  r1,
			Switched:    switched,
			SecondRound: r2,
			Output:      out,
		}
	}
	return out
}

// fk is the round function: the right half is expanded, mixed with the
// subkey, substituted and permuted, then folded into the left half.
func fk(bits, subkey uint8) uint8 {
	left, right := bits>>4, bits&0x0f
	x := uint8(permute(uint16(right), 4, ep[:])) ^ subkey
	s := sbox(&s0, x>>4)<<2 | sbox(&s1, x&0x0f)
	p := uint8(permute(uint16(s), 4, p4[:]))
	return (left^p)<<4 | right
}

// EncryptBits encrypts an 8-bit block with a 10-bit key, both given as
// '0'/'1' strings.
func EncryptBits(block, key string) (string, error) {
	return cryptBits(block, key, true)
}

// DecryptBits is the inverse of EncryptBits.
func DecryptBits(block, key string) (string, error) {
	return cryptBits(block, key, false)
}

func cryptBits(block, key string, encrypt bool) (string, error) {
	b, err := parseBits(block, BlockBits, ErrInvalidBlockLength)
	if err != nil {
		return "", err
	}
	k, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	c := NewCipher(k)
	if encrypt {
		return formatByte(c.EncryptByte(uint8(b))), nil
	}
	return formatByte(c.DecryptByte(uint8(b))), nil
}

// GenerateSubkeys derives K1 and K2 from a 10-bit key string.
func GenerateSubkeys(key string) (string, string, error) {
	k, err := ParseKey(key)
	if err != nil {
		return "", "", err
	}
	k1, k2 := k.Subkeys()
	return formatByte(k1), formatByte(k2), nil
}

func formatByte(b uint8) string {
	return fmt.Sprintf("%08b", b)
}

func parseBits(s string, width int, lengthErr error) (uint16, error) {
	if err := codec.ValidateBits(s); err != nil {
		return 0, err
	}
	if len(s) != width {
		return 0, fmt.Errorf("%w: got %d bits", lengthErr, len(s))
	}
	var v uint16
	for i := 0; i < len(s); i++ {
		v = v<<1 | uint16(s[i]-'0')
	}
	return v, nil
}
