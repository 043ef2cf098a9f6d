// Package redact masks cipher key material before it is written to logs.
package redact

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	neverPersistKey = "never_persist"
	// RedactedKey replaces masked key material.
	RedactedKey = "[REDACTED_KEY]"
)

// keyFields are metadata keys whose values are always key material.
var keyFields = map[string]struct{}{
	"key":       {},
	"sdes_key":  {},
	"trans_key": {},
	"subkey1":   {},
	"subkey2":   {},
}

var (
	// bitKeyRe matches inline assignments such as "key=1010000010" or "K1: 10100100".
	bitKeyRe = regexp.MustCompile(`(?i)\b((?:sdes[_-]?)?key|k[12]|subkey[12])(\s*[:=]\s*)([01]{8,10})\b`)
	// permKeyRe matches inline transposition keys such as "trans_key=[3,1,2]".
	permKeyRe = regexp.MustCompile(`(?i)\b(trans(?:position)?[_-]?key)(\s*[:=]\s*)(\[[0-9,\s]*\]|[0-9]+(?:\s*,\s*[0-9]+)*)`)
)

// IsKeyField reports whether name always carries key material.
func IsKeyField(name string) bool {
	_, ok := keyFields[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// String masks inline key assignments in free text.
func String(in string) string {
	if strings.TrimSpace(in) == "" {
		return in
	}
	masked := bitKeyRe.ReplaceAllString(in, "${1}${2}"+RedactedKey)
	return permKeyRe.ReplaceAllString(masked, "${1}${2}"+RedactedKey)
}

// Interface redacts recognised key material within nested structures.
func Interface(value any) any {
	switch v := value.(type) {
	case string:
		return String(v)
	case []string:
		return Slice(v)
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Interface(elem)
		}
		return out
	case map[string]string:
		return MapString(v)
	case map[string]any:
		return Map(v)
	case fmt.Stringer:
		return String(v.String())
	default:
		return value
	}
}

// Map masks key fields, fields listed under "never_persist", and inline key
// assignments inside string values.
func Map(in map[string]any) map[string]any {
	if len(in) == 0 {
		return nil
	}
	var extra []string
	out := make(map[string]any, len(in))
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			extra = append(extra, collectNeverPersist(v)...)
			continue
		}
		if IsKeyField(k) {
			out[k] = RedactedKey
			continue
		}
		out[k] = Interface(v)
	}
	for _, k := range extra {
		if _, ok := out[k]; ok {
			out[k] = RedactedKey
		}
	}
	return out
}

// MapString is Map for string-valued maps.
func MapString(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	var extra []string
	out := make(map[string]string, len(in))
	for k, v := range in {
		if strings.EqualFold(k, neverPersistKey) {
			extra = append(extra, splitList(v)...)
			continue
		}
		if IsKeyField(k) {
			out[k] = RedactedKey
			continue
		}
		out[k] = String(v)
	}
	for _, k := range extra {
		if _, ok := out[k]; ok {
			out[k] = RedactedKey
		}
	}
	return out
}

// Slice redacts each element of in.
func Slice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = String(v)
	}
	return out
}

func collectNeverPersist(value any) []string {
	switch v := value.(type) {
	case string:
		return splitList(v)
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			out = append(out, strings.TrimSpace(fmt.Sprint(elem)))
		}
		return out
	default:
		return nil
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
