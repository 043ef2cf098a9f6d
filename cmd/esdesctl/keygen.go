package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/RowanDark/esdes/internal/config"
	"github.com/RowanDark/esdes/internal/keys"
	"github.com/RowanDark/esdes/internal/logging"
	"github.com/RowanDark/esdes/internal/transposition"
)

type keygenResult struct {
	SDESKey  string `json:"sdes_key"`
	TransKey []int  `json:"trans_key"`
}

func runKeygen(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("keygen", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	columns := fs.Int("columns", cfg.Columns, "columns of the transposition key")
	asJSON := fs.Bool("json", false, "emit JSON")
	auditLog := fs.String("audit-log", cfg.AuditLog, "append JSON audit events to this file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "keygen takes no arguments")
		return 2
	}

	transKey, err := keys.GenerateTranspositionKey(*columns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate transposition key: %v\n", err)
		return 2
	}
	sdesKey, err := keys.GenerateSDESKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		return 1
	}

	ctx := context.Background()
	sess, err := openSession(ctx, config.Config{}, *auditLog, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close(ctx)
	sess.emit(logging.AuditEvent{
		EventType: logging.EventKeyGenerated,
		Outcome:   logging.OutcomeSuccess,
		Metadata:  map[string]any{"sdes_key": sdesKey, "trans_key": transKey, "columns": len(transKey)},
	})

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(keygenResult{SDESKey: sdesKey, TransKey: transKey}); err != nil {
			fmt.Fprintf(os.Stderr, "encode keys: %v\n", err)
			return 1
		}
		return 0
	}
	fmt.Fprintf(os.Stdout, "S-DES key: %s\n", sdesKey)
	fmt.Fprintf(os.Stdout, "Transposition key: %s\n", transposition.Key(transKey))
	return 0
}
