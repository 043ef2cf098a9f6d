package cipher

import (
	"bytes"
	"context"
	"fmt"

	"github.com/RowanDark/esdes/internal/codec"
	"github.com/RowanDark/esdes/internal/esdes"
	"github.com/RowanDark/esdes/internal/rowshift"
	"github.com/RowanDark/esdes/internal/sdes"
	"github.com/RowanDark/esdes/internal/transposition"
)

// Binary Operations

// BinaryEncodeOp renders text as eight bits per character
type BinaryEncodeOp struct {
	BaseOperation
}

func (op *BinaryEncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	return []byte(codec.BytesToBits(input)), nil
}

// BinaryDecodeOp packs a bit string back into text
type BinaryDecodeOp struct {
	BaseOperation
}

func (op *BinaryDecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	decoded, err := codec.BitsToBytes(string(bytes.TrimSpace(input)))
	if err != nil {
		return nil, fmt.Errorf("binary decode failed: %w", err)
	}
	return decoded, nil
}

// Hex Operations

// HexEncodeOp converts a bit string to uppercase hexadecimal
type HexEncodeOp struct {
	BaseOperation
}

func (op *HexEncodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	encoded, err := codec.BitsToHex(string(bytes.TrimSpace(input)))
	if err != nil {
		return nil, fmt.Errorf("hex encode failed: %w", err)
	}
	return []byte(encoded), nil
}

// HexDecodeOp converts hexadecimal to a bit string
type HexDecodeOp struct {
	BaseOperation
}

func (op *HexDecodeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	decoded, err := codec.HexToBits(string(bytes.TrimSpace(input)))
	if err != nil {
		return nil, fmt.Errorf("hex decode failed: %w", err)
	}
	return []byte(decoded), nil
}

// S-DES Operations

// SDESOp runs S-DES over a bit string one 8-bit block at a time
type SDESOp struct {
	BaseOperation
	decrypt bool
}

func (op *SDESOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := keyParam(params)
	if err != nil {
		return nil, err
	}
	bits := string(bytes.TrimSpace(input))
	if len(bits)%sdes.BlockBits != 0 {
		return nil, fmt.Errorf("%w: input has %d bits", sdes.ErrInvalidBlockLength, len(bits))
	}
	data, err := codec.BitsToBytes(bits)
	if err != nil {
		return nil, err
	}

	c := sdes.NewCipher(key)
	out := make([]byte, len(data))
	for i := range data {
		if op.decrypt {
			out[i] = c.DecryptByte(data[i])
		} else {
			out[i] = c.EncryptByte(data[i])
		}
	}
	return []byte(codec.BytesToBits(out)), nil
}

// Transposition Operations

// ColumnTransposeOp applies the keyed columnar transposition
type ColumnTransposeOp struct {
	BaseOperation
}

func (op *ColumnTransposeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := requireTransKey(params)
	if err != nil {
		return nil, err
	}
	rounds, err := intParam(params, ParamRounds, 1)
	if err != nil {
		return nil, err
	}
	return transposition.Transpose(input, key, rounds)
}

// ColumnInverseTransposeOp undoes ColumnTransposeOp and strips the filler
type ColumnInverseTransposeOp struct {
	BaseOperation
}

func (op *ColumnInverseTransposeOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := requireTransKey(params)
	if err != nil {
		return nil, err
	}
	rounds, err := intParam(params, ParamRounds, 1)
	if err != nil {
		return nil, err
	}
	restored, err := transposition.InverseTranspose(input, key, rounds)
	if err != nil {
		return nil, err
	}
	return transposition.TrimFiller(restored), nil
}

// Row Shift Operations

// RowShiftOp rotates row i of the grid left by i positions
type RowShiftOp struct {
	BaseOperation
	inverse bool
}

func (op *RowShiftOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	columns, err := columnsParam(params)
	if err != nil {
		return nil, err
	}
	if op.inverse {
		return rowshift.InverseShift(input, columns)
	}
	return rowshift.Shift(input, columns)
}

// Enhanced S-DES Operations

// EnhancedSDESOp runs the complete pipeline: text in, hex out and back
type EnhancedSDESOp struct {
	BaseOperation
	decrypt bool
}

func (op *EnhancedSDESOp) Execute(ctx context.Context, input []byte, params map[string]interface{}) ([]byte, error) {
	key, err := keyParam(params)
	if err != nil {
		return nil, err
	}
	transKey, err := requireTransKey(params)
	if err != nil {
		return nil, err
	}
	rounds, err := intParam(params, ParamRounds, esdes.DefaultRounds)
	if err != nil {
		return nil, err
	}
	workers, err := intParam(params, ParamWorkers, 0)
	if err != nil {
		return nil, err
	}

	p := esdes.New(esdes.Options{Workers: workers})
	if op.decrypt {
		return p.DecryptBytes(ctx, string(bytes.TrimSpace(input)), key, transKey, rounds)
	}
	hex, err := p.EncryptBytes(ctx, input, key, transKey, rounds)
	if err != nil {
		return nil, err
	}
	return []byte(hex), nil
}

func init() {
	binaryEncode := &BinaryEncodeOp{
		BaseOperation: BaseOperation{
			NameValue:        "binary_encode",
			TypeValue:        OperationTypeEncode,
			DescriptionValue: "Encode text as 8-bit binary per character",
		},
	}
	binaryDecode := &BinaryDecodeOp{
		BaseOperation: BaseOperation{
			NameValue:        "binary_decode",
			TypeValue:        OperationTypeDecode,
			DescriptionValue: "Decode an 8-bit binary string to text",
		},
	}
	binaryEncode.ReverseOp = binaryDecode
	binaryDecode.ReverseOp = binaryEncode

	hexEncode := &HexEncodeOp{
		BaseOperation: BaseOperation{
			NameValue:        "hex_encode",
			TypeValue:        OperationTypeEncode,
			DescriptionValue: "Convert a binary string to uppercase hexadecimal",
		},
	}
	hexDecode := &HexDecodeOp{
		BaseOperation: BaseOperation{
			NameValue:        "hex_decode",
			TypeValue:        OperationTypeDecode,
			DescriptionValue: "Convert hexadecimal to a binary string",
		},
	}
	hexEncode.ReverseOp = hexDecode
	hexDecode.ReverseOp = hexEncode

	sdesEncrypt := &SDESOp{
		BaseOperation: BaseOperation{
			NameValue:        "sdes_encrypt",
			TypeValue:        OperationTypeEncrypt,
			DescriptionValue: "S-DES encrypt a binary string per 8-bit block (param: key)",
		},
	}
	sdesDecrypt := &SDESOp{
		BaseOperation: BaseOperation{
			NameValue:        "sdes_decrypt",
			TypeValue:        OperationTypeDecrypt,
			DescriptionValue: "S-DES decrypt a binary string per 8-bit block (param: key)",
		},
		decrypt: true,
	}
	sdesEncrypt.ReverseOp = sdesDecrypt
	sdesDecrypt.ReverseOp = sdesEncrypt

	transpose := &ColumnTransposeOp{
		BaseOperation: BaseOperation{
			NameValue:        "column_transpose",
			TypeValue:        OperationTypeEncrypt,
			DescriptionValue: "Columnar transposition (params: trans_key, rounds)",
		},
	}
	inverseTranspose := &ColumnInverseTransposeOp{
		BaseOperation: BaseOperation{
			NameValue:        "column_inverse_transpose",
			TypeValue:        OperationTypeDecrypt,
			DescriptionValue: "Inverse columnar transposition, strips filler (params: trans_key, rounds)",
		},
	}
	transpose.ReverseOp = inverseTranspose
	inverseTranspose.ReverseOp = transpose

	shift := &RowShiftOp{
		BaseOperation: BaseOperation{
			NameValue:        "row_shift",
			TypeValue:        OperationTypeEncrypt,
			DescriptionValue: "Rotate grid row i left by i (param: columns or trans_key)",
		},
	}
	inverseShift := &RowShiftOp{
		BaseOperation: BaseOperation{
			NameValue:        "row_inverse_shift",
			TypeValue:        OperationTypeDecrypt,
			DescriptionValue: "Rotate grid row i right by i (param: columns or trans_key)",
		},
		inverse: true,
	}
	shift.ReverseOp = inverseShift
	inverseShift.ReverseOp = shift

	esdesEncrypt := &EnhancedSDESOp{
		BaseOperation: BaseOperation{
			NameValue:        "esdes_encrypt",
			TypeValue:        OperationTypeEncrypt,
			DescriptionValue: "Enhanced S-DES encrypt text to hex (params: key, trans_key, rounds)",
		},
	}
	esdesDecrypt := &EnhancedSDESOp{
		BaseOperation: BaseOperation{
			NameValue:        "esdes_decrypt",
			TypeValue:        OperationTypeDecrypt,
			DescriptionValue: "Enhanced S-DES decrypt hex to text (params: key, trans_key, rounds)",
		},
		decrypt: true,
	}
	esdesEncrypt.ReverseOp = esdesDecrypt
	esdesDecrypt.ReverseOp = esdesEncrypt

	for _, op := range []Operation{
		binaryEncode, binaryDecode,
		hexEncode, hexDecode,
		sdesEncrypt, sdesDecrypt,
		transpose, inverseTranspose,
		shift, inverseShift,
		esdesEncrypt, esdesDecrypt,
	} {
		mustRegister(op)
	}
}
