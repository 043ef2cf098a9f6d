package transposition

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	MinColumns = 2
	MaxColumns = 26
)

var ErrInvalidPermutationKey = errors.New("transposition key must be a permutation of 1..N with 2 <= N <= 26")

// Key is a column order: a permutation of 1..N.
type Key []int

// ParseKey accepts "[3,1,2]", "3,1,2" or "3 1 2".
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")

	var fields []string
	if strings.Contains(s, ",") {
		fields = strings.Split(s, ",")
	} else {
		fields = strings.Fields(s)
	}

	key := make(Key, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidPermutationKey, field)
		}
		key = append(key, v)
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	return key, nil
}

// Validate reports whether k is a permutation of 1..N within the column bounds.
func (k Key) Validate() error {
	n := len(k)
	if n < MinColumns || n > MaxColumns {
		return fmt.Errorf("%w: %d columns", ErrInvalidPermutationKey, n)
	}
	seen := make([]bool, n+1)
	for i, v := range k {
		if v < 1 || v > n {
			return fmt.Errorf("%w: value %d at position %d out of range", ErrInvalidPermutationKey, v, i)
		}
		if seen[v] {
			return fmt.Errorf("%w: value %d repeated", ErrInvalidPermutationKey, v)
		}
		seen[v] = true
	}
	return nil
}

// Columns returns N.
func (k Key) Columns() int {
	return len(k)
}

// Inverse returns the positional inverse: if k[i] = v then inverse[v-1] = i+1.
// k must be valid.
func (k Key) Inverse() Key {
	inv := make(Key, len(k))
	for i, v := range k {
		inv[v-1] = i + 1
	}
	return inv
}

// String renders the key as a comma separated list.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, v := range k {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
