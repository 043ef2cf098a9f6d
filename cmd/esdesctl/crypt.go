package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/RowanDark/esdes/internal/config"
	"github.com/RowanDark/esdes/internal/esdes"
	"github.com/RowanDark/esdes/internal/keys"
	"github.com/RowanDark/esdes/internal/logging"
	"github.com/RowanDark/esdes/internal/transposition"
)

type cryptFlags struct {
	key        *string
	transKey   *string
	rounds     *int
	trace      *string
	showKeys   *bool
	workers    *int
	metricsOut *string
	auditLog   *string
}

func addCryptFlags(fs *flag.FlagSet, cfg config.Config) *cryptFlags {
	return &cryptFlags{
		key:        fs.String("key", "", "10-bit S-DES key, or - to prompt"),
		transKey:   fs.String("trans-key", "", "transposition key such as 3,1,2"),
		rounds:     fs.Int("rounds", cfg.Rounds, "transposition rounds"),
		trace:      fs.String("trace", cfg.Trace, "progress output: none, normal or detailed"),
		showKeys:   fs.Bool("show-keys", false, "print subkeys and keep key material in the audit log"),
		workers:    fs.Int("workers", cfg.Workers, "block workers (0 uses every CPU)"),
		metricsOut: fs.String("metrics-out", "", "write Prometheus metrics to this file"),
		auditLog:   fs.String("audit-log", cfg.AuditLog, "append JSON audit events to this file"),
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runEncrypt(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("encrypt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	f := addCryptFlags(fs, cfg)
	columns := fs.Int("columns", cfg.Columns, "columns of a generated transposition key")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	level, err := esdes.ParseLevel(*f.trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse trace: %v\n", err)
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	sess, err := openSession(ctx, cfg, *f.auditLog, *f.showKeys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close(ctx)

	in := newInput()
	sdesKey, err := in.key(*f.key)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *f.key != "" && sdesKey == "" {
		fmt.Fprintln(os.Stderr, "read key: no key given")
		return 2
	}
	generated := map[string]any{}
	if sdesKey == "" {
		if sdesKey, err = keys.GenerateSDESKey(); err != nil {
			fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "S-DES key: %s\n", sdesKey)
		generated["sdes_key"] = sdesKey
	}

	var transKey transposition.Key
	if *f.transKey == "" {
		raw, err := keys.GenerateTranspositionKey(*columns)
		if err != nil {
			fmt.Fprintf(os.Stderr, "generate transposition key: %v\n", err)
			return 2
		}
		transKey = raw
		fmt.Fprintf(os.Stderr, "Transposition key: %s\n", transKey)
		generated["trans_key"] = transKey.String()
		generated["columns"] = transKey.Columns()
	} else if transKey, err = transposition.ParseKey(*f.transKey); err != nil {
		fmt.Fprintf(os.Stderr, "parse trans-key: %v\n", err)
		return 2
	}

	if len(generated) > 0 {
		sess.emit(logging.AuditEvent{
			EventType: logging.EventKeyGenerated,
			Outcome:   logging.OutcomeSuccess,
			Metadata:  generated,
		})
	}

	text, err := in.text(fs.Args(), " ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	p := sess.pipeline(level, *f.workers, *f.showKeys)
	hex, err := p.Encrypt(ctx, text, sdesKey, transKey, *f.rounds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "encrypt: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, hex)

	if err := writeMetrics(*f.metricsOut); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDecrypt(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	fs := flag.NewFlagSet("decrypt", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	f := addCryptFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *f.key == "" {
		fmt.Fprintln(os.Stderr, "--key is required")
		return 2
	}
	if *f.transKey == "" {
		fmt.Fprintln(os.Stderr, "--trans-key is required")
		return 2
	}
	transKey, err := transposition.ParseKey(*f.transKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse trans-key: %v\n", err)
		return 2
	}
	level, err := esdes.ParseLevel(*f.trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse trace: %v\n", err)
		return 2
	}

	ctx, cancel := signalContext()
	defer cancel()

	sess, err := openSession(ctx, cfg, *f.auditLog, *f.showKeys)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer sess.close(ctx)

	in := newInput()
	sdesKey, err := in.key(*f.key)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if sdesKey == "" {
		fmt.Fprintln(os.Stderr, "read key: no key given")
		return 2
	}
	ciphertext, err := in.text(fs.Args(), "")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	p := sess.pipeline(level, *f.workers, *f.showKeys)
	plaintext, err := p.Decrypt(ctx, ciphertext, sdesKey, transKey, *f.rounds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decrypt: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, plaintext)

	if err := writeMetrics(*f.metricsOut); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
