// Package env reads ESDES_* environment variables.
package env

import (
	"os"
	"strings"
)

// Prefix is shared by every variable the toolkit reads.
const Prefix = "ESDES_"

// Lookup returns the trimmed value of key. Blank values count as unset.
func Lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Key prefixes name with Prefix.
func Key(name string) string {
	return Prefix + name
}
