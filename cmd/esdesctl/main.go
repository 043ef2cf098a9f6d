package main

import (
	"flag"
	"fmt"
	"os"
)

const productName = "esdes"
const cliBanner = productName + " CLI (esdesctl)"

const usageText = `usage: esdesctl <command> [flags] [args]

commands:
  encrypt [flags] TEXT...       encrypt text (reads stdin when TEXT is absent)
  decrypt [flags] HEX           decrypt hex ciphertext
  keygen  [flags]               generate an S-DES key and a transposition key
  ops     [--json]              list registered operations
  recipe  list|show|run|export|import|delete
  config  print                 print the resolved configuration
  version                       print the version`

func init() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), cliBanner)
		fmt.Fprintln(flag.CommandLine.Output())
		fmt.Fprintln(flag.CommandLine.Output(), usageText)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	os.Exit(run(args))
}

func run(args []string) int {
	switch args[0] {
	case "encrypt":
		return runEncrypt(args[1:])
	case "decrypt":
		return runDecrypt(args[1:])
	case "keygen":
		return runKeygen(args[1:])
	case "ops":
		return runOps(args[1:])
	case "recipe":
		return runRecipe(args[1:])
	case "config":
		return runConfig(args[1:])
	case "version":
		return runVersion(args[1:])
	case "help", "-h", "--help":
		fmt.Fprintln(os.Stdout, usageText)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, usageText)
		return 2
	}
}
