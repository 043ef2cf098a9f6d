// Package esdes chains columnar transposition, row shifting and S-DES into
// the Enhanced S-DES pipeline.
//
// Encryption runs transpose, shift rows, then S-DES over every byte and
// renders the result as uppercase hex. Decryption mirrors it and strips the
// transposition filler from the recovered text.
package esdes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RowanDark/esdes/internal/codec"
	"github.com/RowanDark/esdes/internal/observability/metrics"
	"github.com/RowanDark/esdes/internal/observability/tracing"
	"github.com/RowanDark/esdes/internal/rowshift"
	"github.com/RowanDark/esdes/internal/sdes"
	"github.com/RowanDark/esdes/internal/transposition"
)

// DefaultRounds is the transposition round count used when none is given.
const DefaultRounds = 2

var (
	ErrEmptyPlaintext  = errors.New("plaintext must not be empty")
	ErrEmptyCiphertext = errors.New("ciphertext must not be empty")
)

// Options configures a Pipeline.
type Options struct {
	// Level controls which events reach Observer.
	Level Level
	// Observer receives stage events. Nil disables reporting.
	Observer Observer
	// Workers bounds the goroutines used by the block stage. Zero selects
	// runtime.NumCPU(), one forces sequential processing.
	Workers int
}

// Pipeline runs Enhanced S-DES. It holds no per-call state and is safe for
// concurrent use.
type Pipeline struct {
	opts Options
}

// New returns a Pipeline configured with opts.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// run carries the identity of one Encrypt or Decrypt call.
type run struct {
	id        string
	direction Direction
	p         *Pipeline
}

func (r *run) emit(ctx context.Context, level Level, stage Stage, output string, detail map[string]any) {
	if r.p.opts.Observer == nil || r.p.opts.Level < level {
		return
	}
	r.p.opts.Observer(ctx, StageEvent{
		RunID:     r.id,
		Direction: r.direction,
		Stage:     stage,
		Output:    output,
		Detail:    detail,
	})
}

// Encrypt parses the keys and encrypts plaintext. See EncryptBytes.
func (p *Pipeline) Encrypt(ctx context.Context, plaintext, sdesKey string, transKey []int, rounds int) (string, error) {
	key, err := sdes.ParseKey(sdesKey)
	if err != nil {
		return "", err
	}
	data, err := codec.EncodeText(plaintext)
	if err != nil {
		return "", err
	}
	return p.EncryptBytes(ctx, data, key, transposition.Key(transKey), rounds)
}

// Decrypt parses the keys and decrypts ciphertextHex. See DecryptBytes.
func (p *Pipeline) Decrypt(ctx context.Context, ciphertextHex, sdesKey string, transKey []int, rounds int) (string, error) {
	key, err := sdes.ParseKey(sdesKey)
	if err != nil {
		return "", err
	}
	data, err := p.DecryptBytes(ctx, ciphertextHex, key, transposition.Key(transKey), rounds)
	if err != nil {
		return "", err
	}
	return codec.DecodeText(data), nil
}

// EncryptBytes transposes plaintext rounds times with transKey, shifts the
// rows of the result using len(transKey) columns, encrypts every byte with
// key and returns the ciphertext as uppercase hex.
func (p *Pipeline) EncryptBytes(ctx context.Context, plaintext []byte, key sdes.Key, transKey transposition.Key, rounds int) (hex string, err error) {
	r := &run{id: ulid.Make().String(), direction: DirectionEncrypt, p: p}
	ctx, span, finish := r.start(ctx, transKey, rounds, len(plaintext))
	defer func() { finish(err) }()

	if err = checkInputs(transKey, rounds); err != nil {
		return "", err
	}
	if len(plaintext) == 0 {
		return "", ErrEmptyPlaintext
	}

	r.emit(ctx, LevelNormal, StageInput, codec.DecodeText(plaintext), nil)

	var transposed []byte
	err = r.stage(ctx, "esdes.transpose", func(context.Context) error {
		var err error
		transposed, err = transposition.Transpose(plaintext, transKey, rounds)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("transpose: %w", err)
	}
	r.emit(ctx, LevelNormal, StageTranspose, codec.DecodeText(transposed), nil)

	var shifted []byte
	err = r.stage(ctx, "esdes.shift_rows", func(context.Context) error {
		var err error
		shifted, err = rowshift.Shift(transposed, transKey.Columns())
		return err
	})
	if err != nil {
		return "", fmt.Errorf("shift rows: %w", err)
	}
	r.emit(ctx, LevelNormal, StageShiftRows, codec.DecodeText(shifted), nil)
	r.emit(ctx, LevelDetailed, StageGrid, "", map[string]any{
		"columns": transKey.Columns(),
		"before":  rowshift.Table(transposed, transKey.Columns()),
		"after":   rowshift.Table(shifted, transKey.Columns()),
	})
	r.emit(ctx, LevelNormal, StageBinary, codec.BytesToBits(shifted), nil)

	var encrypted []byte
	err = r.stage(ctx, "esdes.sdes", func(ctx context.Context) error {
		var err error
		encrypted, err = r.cryptBlocks(ctx, sdes.NewCipher(key), shifted)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("sdes: %w", err)
	}
	hex = codec.BytesToHex(encrypted)
	r.emit(ctx, LevelNormal, StageSDES, hex, nil)
	r.emit(ctx, LevelNormal, StageOutput, hex, nil)
	span.SetAttribute("esdes.output_length", len(hex))
	return hex, nil
}

// DecryptBytes reverses EncryptBytes: it decrypts every byte, undoes the row
// shift and the transposition, and strips trailing filler.
func (p *Pipeline) DecryptBytes(ctx context.Context, ciphertextHex string, key sdes.Key, transKey transposition.Key, rounds int) (plaintext []byte, err error) {
	r := &run{id: ulid.Make().String(), direction: DirectionDecrypt, p: p}
	ctx, span, finish := r.start(ctx, transKey, rounds, len(ciphertextHex))
	defer func() { finish(err) }()

	if err = checkInputs(transKey, rounds); err != nil {
		return nil, err
	}
	data, err := codec.HexToBytes(ciphertextHex)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyCiphertext
	}

	r.emit(ctx, LevelNormal, StageInput, codec.BytesToHex(data), nil)
	r.emit(ctx, LevelNormal, StageBinary, codec.BytesToBits(data), nil)

	var decrypted []byte
	err = r.stage(ctx, "esdes.sdes", func(ctx context.Context) error {
		var err error
		decrypted, err = r.cryptBlocks(ctx, sdes.NewCipher(key), data)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sdes: %w", err)
	}
	r.emit(ctx, LevelNormal, StageSDES, codec.BytesToBits(decrypted), nil)
	r.emit(ctx, LevelNormal, StageText, codec.DecodeText(decrypted), nil)

	var unshifted []byte
	err = r.stage(ctx, "esdes.inverse_shift_rows", func(context.Context) error {
		var err error
		unshifted, err = rowshift.InverseShift(decrypted, transKey.Columns())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("inverse shift rows: %w", err)
	}
	r.emit(ctx, LevelNormal, StageInverseShiftRows, codec.DecodeText(unshifted), nil)
	r.emit(ctx, LevelDetailed, StageGrid, "", map[string]any{
		"columns": transKey.Columns(),
		"before":  rowshift.Table(decrypted, transKey.Columns()),
		"after":   rowshift.Table(unshifted, transKey.Columns()),
	})

	var restored []byte
	err = r.stage(ctx, "esdes.inverse_transpose", func(context.Context) error {
		var err error
		restored, err = transposition.InverseTranspose(unshifted, transKey, rounds)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("inverse transpose: %w", err)
	}
	r.emit(ctx, LevelNormal, StageInverseTranspose, codec.DecodeText(restored), nil)

	plaintext = transposition.TrimFiller(restored)
	r.emit(ctx, LevelNormal, StageOutput, codec.DecodeText(plaintext), nil)
	span.SetAttribute("esdes.output_length", len(plaintext))
	return plaintext, nil
}

func checkInputs(transKey transposition.Key, rounds int) error {
	if err := transKey.Validate(); err != nil {
		return err
	}
	if rounds < 1 {
		return fmt.Errorf("%w: got %d", transposition.ErrInvalidRounds, rounds)
	}
	return nil
}

// start opens the run span and returns a finisher that closes it, records
// metrics and reports failures.
func (r *run) start(ctx context.Context, transKey transposition.Key, rounds, length int) (context.Context, tracing.Span, func(error)) {
	began := time.Now()
	ctx, span := tracing.StartSpan(ctx, "esdes."+string(r.direction), map[string]any{
		"esdes.run_id":       r.id,
		"esdes.columns":      transKey.Columns(),
		"esdes.rounds":       rounds,
		"esdes.input_length": length,
	})
	return ctx, span, func(err error) {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			r.emit(ctx, LevelNormal, StageFailed, "", map[string]any{"error": err.Error()})
			span.End()
		} else {
			span.EndWithStatus(tracing.StatusOK, "")
		}
		metrics.RecordOperation(ctx, string(r.direction), status, time.Since(began))
	}
}

// stage runs fn inside a child span named name.
func (r *run) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := tracing.StartSpan(ctx, name, map[string]any{"esdes.run_id": r.id})
	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.End()
		return err
	}
	span.EndWithStatus(tracing.StatusOK, "")
	return nil
}

var defaultPipeline = New(Options{})

// Encrypt runs the pipeline without tracing or cancellation.
func Encrypt(plaintext, sdesKey string, transKey []int, rounds int) (string, error) {
	return defaultPipeline.Encrypt(context.Background(), plaintext, sdesKey, transKey, rounds)
}

// Decrypt is the inverse of Encrypt.
func Decrypt(ciphertextHex, sdesKey string, transKey []int, rounds int) (string, error) {
	return defaultPipeline.Decrypt(context.Background(), ciphertextHex, sdesKey, transKey, rounds)
}
