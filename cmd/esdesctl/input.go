package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// input shares one buffered reader over stdin so a key read from the first
// line does not swallow the text that follows it.
type input struct {
	r *bufio.Reader
}

func newInput() *input {
	return &input{r: bufio.NewReader(os.Stdin)}
}

// key resolves a --key value. "-" prompts without echo on a terminal and
// otherwise reads the first line of stdin.
func (in *input) key(value string) (string, error) {
	if value != "-" {
		return strings.TrimSpace(value), nil
	}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "S-DES key: ")
		secret, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("read key: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
	line, err := in.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// text joins args with sep, or reads the rest of stdin when args is empty.
// A single trailing newline is dropped.
func (in *input) text(args []string, sep string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, sep), nil
	}
	data, err := io.ReadAll(in.r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	s := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}

// paramFlag collects repeated --param k=v values.
type paramFlag map[string]interface{}

func (p paramFlag) String() string {
	parts := make([]string, 0, len(p))
	for k, v := range p {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return strings.Join(parts, ",")
}

func (p paramFlag) Set(value string) error {
	k, v, ok := strings.Cut(value, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", value)
	}
	p[k] = strings.TrimSpace(v)
	return nil
}
