package esdes

import (
	"context"
	"runtime"
	"sync"

	"github.com/RowanDark/esdes/internal/codec"
	"github.com/RowanDark/esdes/internal/observability/metrics"
	"github.com/RowanDark/esdes/internal/observability/tracing"
	"github.com/RowanDark/esdes/internal/sdes"
)

const (
	// chunkSize is the number of blocks handed to a worker at a time.
	chunkSize = 512
	// parallelThreshold is the input size below which workers are not started.
	parallelThreshold = 4 * chunkSize
)

type chunk struct {
	start, end int
}

// cryptBlocks applies c to every byte of data. Blocks are independent, so
// chunks may run on separate goroutines; the output never depends on the
// worker count. Detailed runs stay sequential so block events arrive in order
// and are also recorded on the stage span.
func (r *run) cryptBlocks(ctx context.Context, c *sdes.Cipher, data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	crypt := c.EncryptByte
	if r.direction == DirectionDecrypt {
		crypt = c.DecryptByte
	}

	if r.p.opts.Level >= LevelDetailed && r.p.opts.Observer != nil {
		k1, k2 := c.Subkeys()
		r.emit(ctx, LevelDetailed, StageSubkeys, "", map[string]any{
			"subkey1": formatBlock(k1),
			"subkey2": formatBlock(k2),
			"blocks":  len(data),
		})
		span := tracing.SpanFromContext(ctx)
		for i, b := range data {
			if i%chunkSize == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			out[i] = crypt(b)
			r.emit(ctx, LevelDetailed, StageBlock, formatBlock(out[i]), map[string]any{
				"block_number": i + 1,
				"blocks":       len(data),
				"input":        formatBlock(b),
			})
			span.AddEvent("esdes.block", map[string]any{
				"esdes.block_number": i + 1,
				"esdes.input":        formatBlock(b),
				"esdes.output":       formatBlock(out[i]),
			})
		}
		metrics.RecordBlocks(string(r.direction), len(data))
		return out, nil
	}

	workers := r.p.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 || len(data) < parallelThreshold {
		for start := 0; start < len(data); start += chunkSize {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			end := min(start+chunkSize, len(data))
			for i := start; i < end; i++ {
				out[i] = crypt(data[i])
			}
		}
		metrics.RecordBlocks(string(r.direction), len(data))
		return out, nil
	}

	jobs := make(chan chunk)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				for i := j.start; i < j.end; i++ {
					out[i] = crypt(data[i])
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for start := 0; start < len(data); start += chunkSize {
			select {
			case <-ctx.Done():
				return
			case jobs <- chunk{start: start, end: min(start+chunkSize, len(data))}:
			}
		}
	}()

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.RecordBlocks(string(r.direction), len(data))
	return out, nil
}

func formatBlock(b byte) string {
	return codec.BytesToBits([]byte{b})
}
