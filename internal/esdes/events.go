package esdes

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/RowanDark/esdes/internal/logging"
	"github.com/RowanDark/esdes/internal/observability/metrics"
	"github.com/RowanDark/esdes/internal/redact"
)

// Direction names which way a run goes through the pipeline.
type Direction string

const (
	DirectionEncrypt Direction = "encrypt"
	DirectionDecrypt Direction = "decrypt"
)

// Stage identifies the step that produced a StageEvent.
type Stage string

const (
	StageInput            Stage = "input"
	StageTranspose        Stage = "transpose"
	StageShiftRows        Stage = "shift_rows"
	StageGrid             Stage = "grid"
	StageBinary           Stage = "binary"
	StageSubkeys          Stage = "subkeys"
	StageBlock            Stage = "block"
	StageSDES             Stage = "sdes"
	StageText             Stage = "text"
	StageInverseShiftRows Stage = "inverse_shift_rows"
	StageInverseTranspose Stage = "inverse_transpose"
	StageOutput           Stage = "output"
	StageFailed           Stage = "failed"
)

// StageEvent reports the result of one pipeline step.
type StageEvent struct {
	RunID     string
	Direction Direction
	Stage     Stage
	Output    string
	Detail    map[string]any
}

// Observer receives stage events on the goroutine that called the pipeline.
type Observer func(ctx context.Context, event StageEvent)

// Observers fans each event out to every non-nil observer in order.
func Observers(observers ...Observer) Observer {
	return func(ctx context.Context, event StageEvent) {
		for _, o := range observers {
			if o != nil {
				o(ctx, event)
			}
		}
	}
}

// LoggingObserver writes stage events to an audit log. Block events become
// EventBlock lines, the final output becomes an EventEncrypt or EventDecrypt
// line and failures become EventOperationFailed. Events the logger cannot
// write are counted in the audit failure metric.
func LoggingObserver(logger *logging.AuditLogger) Observer {
	return func(_ context.Context, event StageEvent) {
		metadata := make(map[string]any, len(event.Detail)+3)
		for k, v := range event.Detail {
			metadata[k] = v
		}
		metadata["direction"] = string(event.Direction)
		metadata["stage"] = string(event.Stage)
		if event.Output != "" {
			metadata["output"] = event.Output
		}

		entry := logging.AuditEvent{
			RunID:     event.RunID,
			EventType: logging.EventStage,
			Metadata:  metadata,
			Outcome:   logging.OutcomeInfo,
		}
		switch event.Stage {
		case StageBlock:
			entry.EventType = logging.EventBlock
		case StageOutput:
			entry.EventType = logging.EventType(event.Direction)
			entry.Outcome = logging.OutcomeSuccess
		case StageFailed:
			entry.EventType = logging.EventOperationFailed
			entry.Outcome = logging.OutcomeFailure
			if reason, ok := event.Detail["error"].(string); ok {
				entry.Reason = reason
				delete(metadata, "error")
			}
		}
		if err := logger.Emit(entry); err != nil {
			metrics.RecordAuditFailure(string(entry.EventType))
		}
	}
}

// ConsoleObserver renders events as human-readable progress lines. Subkeys
// are masked unless showKeys is set.
func ConsoleObserver(w io.Writer, showKeys bool) Observer {
	return func(_ context.Context, event StageEvent) {
		verb := "Encrypting"
		if event.Direction == DirectionDecrypt {
			verb = "Decrypting"
		}
		switch event.Stage {
		case StageInput:
			label := "Plaintext"
			if event.Direction == DirectionDecrypt {
				label = "Ciphertext"
			}
			fmt.Fprintf(w, "%s: %s\n", label, event.Output)
		case StageTranspose:
			fmt.Fprintf(w, "\nColumnar Transposition: %q\n", event.Output)
		case StageShiftRows:
			fmt.Fprintf(w, "\nShift Rows: %q\n", event.Output)
		case StageGrid:
			fmt.Fprintf(w, "\nGrid before:\n%s", event.Detail["before"])
			fmt.Fprintf(w, "Grid after:\n%s", event.Detail["after"])
		case StageBinary:
			fmt.Fprintf(w, "\nConverted to binary: %s\n", event.Output)
		case StageSubkeys:
			k1, k2 := event.Detail["subkey1"], event.Detail["subkey2"]
			if !showKeys {
				k1, k2 = redact.RedactedKey, redact.RedactedKey
			}
			fmt.Fprintf(w, "\n%s with S-DES:\nTotal blocks to process: %v\nK1: %v\nK2: %v\n", verb, event.Detail["blocks"], k1, k2)
		case StageBlock:
			fmt.Fprintf(w, "\n%s block %v/%v\nInput block: %v\nOutput block: %s\n",
				verb, event.Detail["block_number"], event.Detail["blocks"], event.Detail["input"], event.Output)
		case StageSDES:
			if event.Direction == DirectionEncrypt {
				fmt.Fprintf(w, "\nS-DES Encryption (hex): %s\n", event.Output)
			} else {
				fmt.Fprintf(w, "\nS-DES Decryption (binary): %s\n", event.Output)
			}
		case StageText:
			fmt.Fprintf(w, "\nConverted to text: %q\n", event.Output)
		case StageInverseShiftRows:
			fmt.Fprintf(w, "\nInverse Shift Rows: %q\n", event.Output)
		case StageInverseTranspose:
			fmt.Fprintf(w, "\nInverse Columnar Transposition: %q\n", event.Output)
		case StageOutput:
			if event.Direction == DirectionDecrypt {
				fmt.Fprintf(w, "\nPlaintext: %s\n", event.Output)
			}
		case StageFailed:
			fmt.Fprintf(w, "\n%s failed: %v\n", verb, event.Detail["error"])
		default:
			fmt.Fprintf(w, "\n%s: %s%s\n", event.Stage, event.Output, formatDetail(event.Detail))
		}
	}
}

func formatDetail(detail map[string]any) string {
	if len(detail) == 0 {
		return ""
	}
	keys := make([]string, 0, len(detail))
	for k := range detail {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, detail[k])
	}
	return " (" + strings.Join(parts, " ") + ")"
}
