// Package cipher exposes every Enhanced S-DES stage as a named, reversible
// operation.
//
// # Operations
//
// Each operation maps bytes to bytes and takes its keys from a parameter map:
//
//	op, _ := cipher.GetOperation("sdes_encrypt")
//	out, _ := op.Execute(ctx, []byte("01000001"), map[string]interface{}{
//	    "key": "1010000010",
//	})
//
// Registered operations, each paired with its inverse:
//   - binary_encode/binary_decode - text to 8-bit binary and back
//   - hex_encode/hex_decode - binary string to uppercase hex and back
//   - sdes_encrypt/sdes_decrypt - S-DES per 8-bit block (key)
//   - column_transpose/column_inverse_transpose - columnar transposition (trans_key, rounds)
//   - row_shift/row_inverse_shift - grid row rotation (columns or trans_key)
//   - esdes_encrypt/esdes_decrypt - the whole pipeline (key, trans_key, rounds)
//
// Parameters may be Go values, JSON-decoded values or strings, so recipes
// read from disk and flags from the command line work unchanged.
//
// # Pipelines
//
// A Pipeline runs operations in order. Bind supplies shared parameters and
// Reverse builds the inverse chain:
//
//	p := cipher.BuiltinRecipes()[0].Pipeline.Bind(map[string]interface{}{
//	    "key":       "0010010111",
//	    "trans_key": "3,1,2",
//	})
//	hex, _ := p.Execute(ctx, []byte("DIDYOUSEE"))
//	back, _ := p.Reverse()
//	plain, _ := back.Execute(ctx, hex)
//
// # Recipes
//
// RecipeManager stores named pipelines as JSON files and exchanges them as
// YAML. The enhanced-sdes recipe is always present and cannot be changed.
//
// The registry and RecipeManager are safe for concurrent use.
package cipher
