package main

import (
	"fmt"
	"os"

	"github.com/RowanDark/esdes/internal/config"
)

func runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "config subcommand required")
		return 2
	}

	switch args[0] {
	case "print":
		return runConfigPrint(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runConfigPrint(args []string) int {
	if len(args) > 0 {
		fmt.Fprintln(os.Stderr, "config print takes no arguments")
		return 2
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	if err := cfg.WriteYAML(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "print config: %v\n", err)
		return 1
	}
	return 0
}
