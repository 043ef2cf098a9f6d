package cipher

import (
	"context"
	"errors"
	"testing"

	"github.com/RowanDark/esdes/internal/codec"
	"github.com/RowanDark/esdes/internal/sdes"
	"github.com/RowanDark/esdes/internal/transposition"
)

func TestOperations(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		input    string
		params   map[string]interface{}
		expected string
	}{
		{
			name:     "binary encode",
			op:       "binary_encode",
			input:    "HI",
			expected: "0100100001001001",
		},
		{
			name:     "binary decode",
			op:       "binary_decode",
			input:    "0100100001001001\n",
			expected: "HI",
		},
		{
			name:     "hex encode",
			op:       "hex_encode",
			input:    "1110000010101111",
			expected: "E0AF",
		},
		{
			name:     "hex decode lowercase",
			op:       "hex_decode",
			input:    "e0af",
			expected: "1110000010101111",
		},
		{
			name:     "sdes encrypt",
			op:       "sdes_encrypt",
			input:    "0100100001001001",
			params:   map[string]interface{}{"key": "1010000010"},
			expected: "1110000010101111",
		},
		{
			name:     "sdes decrypt",
			op:       "sdes_decrypt",
			input:    "1110000010101111",
			params:   map[string]interface{}{"key": "1010000010"},
			expected: "0100100001001001",
		},
		{
			name:     "column transpose one round",
			op:       "column_transpose",
			input:    "HELLO",
			params:   map[string]interface{}{"trans_key": "3,1,2"},
			expected: "EOL HL",
		},
		{
			name:     "column transpose json params",
			op:       "column_transpose",
			input:    "HELLO",
			params:   map[string]interface{}{"trans_key": []interface{}{3.0, 1.0, 2.0}, "rounds": 2.0},
			expected: "OHLLE ",
		},
		{
			name:     "column inverse transpose strips filler",
			op:       "column_inverse_transpose",
			input:    "OHLLE ",
			params:   map[string]interface{}{"trans_key": []int{3, 1, 2}, "rounds": 2},
			expected: "HELLO",
		},
		{
			name:     "row shift explicit columns",
			op:       "row_shift",
			input:    "ABCDEFGHI",
			params:   map[string]interface{}{"columns": 3},
			expected: "ABCEFDIGH",
		},
		{
			name:     "row shift columns from key",
			op:       "row_shift",
			input:    "ABCDEFGHI",
			params:   map[string]interface{}{"trans_key": "[2,3,1]"},
			expected: "ABCEFDIGH",
		},
		{
			name:     "row inverse shift",
			op:       "row_inverse_shift",
			input:    "ABCEFDIGH",
			params:   map[string]interface{}{"columns": "3"},
			expected: "ABCDEFGHI",
		},
		{
			name:     "esdes encrypt",
			op:       "esdes_encrypt",
			input:    "DIDYOUSEE",
			params:   map[string]interface{}{"key": "0010010111", "trans_key": []int{3, 1, 2}},
			expected: "CF4A218C4C8C7C827C",
		},
		{
			name:     "esdes decrypt",
			op:       "esdes_decrypt",
			input:    "CF4A218C4C8C7C827C",
			params:   map[string]interface{}{"key": "0010010111", "trans_key": "3 1 2", "rounds": 2},
			expected: "DIDYOUSEE",
		},
		{
			name:     "yaml integer key keeps leading zeros",
			op:       "esdes_encrypt",
			input:    "DIDYOUSEE",
			params:   map[string]interface{}{"key": 10010111, "trans_key": "3,1,2", "workers": 1},
			expected: "CF4A218C4C8C7C827C",
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, exists := GetOperation(tt.op)
			if !exists {
				t.Fatalf("operation %s not found", tt.op)
			}

			result, err := op.Execute(ctx, []byte(tt.input), tt.params)
			if err != nil {
				t.Fatalf("execution failed: %v", err)
			}

			if string(result) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, string(result))
			}
		})
	}
}

func TestOperationErrors(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		input  string
		params map[string]interface{}
		want   error
	}{
		{
			name:   "sdes missing key",
			op:     "sdes_encrypt",
			input:  "01000001",
			params: nil,
			want:   ErrMissingParameter,
		},
		{
			name:   "sdes short key",
			op:     "sdes_encrypt",
			input:  "01000001",
			params: map[string]interface{}{"key": "101"},
			want:   sdes.ErrInvalidKeyLength,
		},
		{
			name:   "sdes partial block",
			op:     "sdes_decrypt",
			input:  "0100000",
			params: map[string]interface{}{"key": "1010000010"},
			want:   sdes.ErrInvalidBlockLength,
		},
		{
			name:   "sdes bad alphabet",
			op:     "sdes_encrypt",
			input:  "0100000x",
			params: map[string]interface{}{"key": "1010000010"},
			want:   codec.ErrInvalidBitAlphabet,
		},
		{
			name:  "binary decode bad length",
			op:    "binary_decode",
			input: "0101",
			want:  codec.ErrInvalidBitLength,
		},
		{
			name:  "hex decode bad digit",
			op:    "hex_decode",
			input: "ZZ",
			want:  codec.ErrInvalidHex,
		},
		{
			name:   "transpose missing key",
			op:     "column_transpose",
			input:  "HELLO",
			params: map[string]interface{}{"rounds": 1},
			want:   ErrMissingParameter,
		},
		{
			name:   "transpose repeated key",
			op:     "column_transpose",
			input:  "HELLO",
			params: map[string]interface{}{"trans_key": []int{1, 1, 2}},
			want:   transposition.ErrInvalidPermutationKey,
		},
		{
			name:   "transpose zero rounds",
			op:     "column_transpose",
			input:  "HELLO",
			params: map[string]interface{}{"trans_key": "2,1", "rounds": 0},
			want:   transposition.ErrInvalidRounds,
		},
		{
			name:  "row shift without columns",
			op:    "row_shift",
			input: "ABC",
			want:  ErrMissingParameter,
		},
	}

	ctx := context.Background()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, _ := GetOperation(tt.op)
			_, err := op.Execute(ctx, []byte(tt.input), tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestOperationReversibility(t *testing.T) {
	params := map[string]interface{}{
		"key":       "0111111101",
		"trans_key": []int{4, 3, 1, 2, 5, 6, 7},
		"rounds":    3,
	}
	inputs := map[string]string{
		"binary_encode":    "ATTACK AT DAWN",
		"hex_encode":       "0100000101010100",
		"sdes_encrypt":     "0100000101010100",
		"column_transpose": "ATTACK AT DAWN",
		"row_shift":        "ATTACK AT DAWN",
		"esdes_encrypt":    "ATTACK AT DAWN",
	}

	ctx := context.Background()

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			op, _ := GetOperation(name)
			reverse, ok := op.Reverse()
			if !ok {
				t.Fatalf("%s should be reversible", name)
			}
			back, ok := reverse.Reverse()
			if !ok || back.Name() != name {
				t.Fatalf("reverse of %s should point back to it", reverse.Name())
			}

			encoded, err := op.Execute(ctx, []byte(input), params)
			if err != nil {
				t.Fatalf("forward failed: %v", err)
			}
			decoded, err := reverse.Execute(ctx, encoded, params)
			if err != nil {
				t.Fatalf("reverse failed: %v", err)
			}
			if string(decoded) != input {
				t.Errorf("roundtrip failed: expected %q, got %q", input, decoded)
			}
		})
	}
}
