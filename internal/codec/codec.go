// Package codec converts between text, bit strings, and hexadecimal.
//
// A character is one byte. Go strings are mapped to ISO-8859-1 so every code
// point in 0..255 occupies exactly eight bits; anything wider is rejected.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrInvalidBitAlphabet  = errors.New("bit string may only contain '0' and '1'")
	ErrInvalidBitLength    = errors.New("invalid bit string length")
	ErrInvalidHex          = errors.New("invalid hexadecimal string")
	ErrUnrepresentableText = errors.New("text contains characters outside the 8-bit range")
)

const hexDigits = "0123456789ABCDEF"

// EncodeText maps each character of text to its single-byte code point.
func EncodeText(text string) ([]byte, error) {
	out, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrepresentableText, err)
	}
	return out, nil
}

// DecodeText is the inverse of EncodeText.
func DecodeText(data []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		// every byte value is a valid ISO-8859-1 code point
		panic(fmt.Sprintf("codec: latin-1 decode: %v", err))
	}
	return string(out)
}

// ValidateBits checks that bits only holds '0' and '1' characters.
func ValidateBits(bits string) error {
	for i := 0; i < len(bits); i++ {
		if bits[i] != '0' && bits[i] != '1' {
			return fmt.Errorf("%w: %q at position %d", ErrInvalidBitAlphabet, bits[i], i)
		}
	}
	return nil
}

// BytesToBits renders every byte as eight bits, most significant first.
func BytesToBits(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) * 8)
	for _, b := range data {
		for shift := 7; shift >= 0; shift-- {
			sb.WriteByte('0' + (b>>uint(shift))&1)
		}
	}
	return sb.String()
}

// BitsToBytes packs a bit string whose length is a multiple of eight.
func BitsToBytes(bits string) ([]byte, error) {
	if err := ValidateBits(bits); err != nil {
		return nil, err
	}
	if len(bits)%8 != 0 {
		return nil, fmt.Errorf("%w: %d is not a multiple of 8", ErrInvalidBitLength, len(bits))
	}
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for _, c := range bits[i*8 : i*8+8] {
			b = b<<1 | byte(c-'0')
		}
		out[i] = b
	}
	return out, nil
}

// TextToBits maps each character to its 8-bit code point, concatenated in order.
func TextToBits(text string) (string, error) {
	data, err := EncodeText(text)
	if err != nil {
		return "", err
	}
	return BytesToBits(data), nil
}

// BitsToText is the inverse of TextToBits.
func BitsToText(bits string) (string, error) {
	data, err := BitsToBytes(bits)
	if err != nil {
		return "", err
	}
	return DecodeText(data), nil
}

// BitsToHex converts a bit string whose length is a multiple of four into
// uppercase hex with exactly len(bits)/4 digits.
func BitsToHex(bits string) (string, error) {
	if err := ValidateBits(bits); err != nil {
		return "", err
	}
	if len(bits)%4 != 0 {
		return "", fmt.Errorf("%w: %d is not a multiple of 4", ErrInvalidBitLength, len(bits))
	}
	out := make([]byte, len(bits)/4)
	for i := range out {
		var nibble byte
		for _, c := range bits[i*4 : i*4+4] {
			nibble = nibble<<1 | byte(c-'0')
		}
		out[i] = hexDigits[nibble]
	}
	return string(out), nil
}

// HexToBits expands every hex digit into four bits. Surrounding whitespace and
// a leading 0x are ignored.
func HexToBits(hex string) (string, error) {
	hex = normalizeHex(hex)
	var sb strings.Builder
	sb.Grow(len(hex) * 4)
	for i := 0; i < len(hex); i++ {
		v, ok := hexValue(hex[i])
		if !ok {
			return "", fmt.Errorf("%w: %q at position %d", ErrInvalidHex, hex[i], i)
		}
		for shift := 3; shift >= 0; shift-- {
			sb.WriteByte('0' + (v>>uint(shift))&1)
		}
	}
	return sb.String(), nil
}

// BytesToHex renders data as uppercase hex, two digits per byte.
func BytesToHex(data []byte) string {
	out := make([]byte, len(data)*2)
	for i, b := range data {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return string(out)
}

// HexToBytes parses hex produced by BytesToHex. Case is ignored.
func HexToBytes(hex string) ([]byte, error) {
	hex = normalizeHex(hex)
	if len(hex)%2 != 0 {
		return nil, fmt.Errorf("%w: odd length %d", ErrInvalidHex, len(hex))
	}
	out := make([]byte, len(hex)/2)
	for i := range out {
		hi, ok := hexValue(hex[i*2])
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidHex, hex[i*2], i*2)
		}
		lo, ok := hexValue(hex[i*2+1])
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidHex, hex[i*2+1], i*2+1)
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	return s
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
