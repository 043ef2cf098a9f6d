package cipher

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/RowanDark/esdes/internal/sdes"
	"github.com/RowanDark/esdes/internal/transposition"
)

// Parameter names understood by the built-in operations.
const (
	ParamKey      = "key"
	ParamTransKey = "trans_key"
	ParamRounds   = "rounds"
	ParamColumns  = "columns"
	ParamWorkers  = "workers"
)

var ErrMissingParameter = errors.New("missing required parameter")

// Parameters arrive as Go values, as JSON-decoded values (float64,
// []interface{}) or as strings from the command line; the helpers below
// accept all three.

func keyParam(params map[string]interface{}) (sdes.Key, error) {
	raw, ok := params[ParamKey]
	if !ok || raw == nil {
		return 0, fmt.Errorf("%w: %s", ErrMissingParameter, ParamKey)
	}
	switch v := raw.(type) {
	case sdes.Key:
		return v, nil
	case string:
		return sdes.ParseKey(strings.TrimSpace(v))
	case int, int64, float64:
		// JSON numbers drop leading zeros; restore them
		n, err := toInt(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %v", sdes.ErrInvalidKeyLength, raw)
		}
		return sdes.ParseKey(fmt.Sprintf("%0*d", sdes.KeyBits, n))
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", sdes.ErrInvalidKeyLength, raw)
	}
}

func transKeyParam(params map[string]interface{}) (transposition.Key, bool, error) {
	raw, ok := params[ParamTransKey]
	if !ok || raw == nil {
		return nil, false, nil
	}
	var key transposition.Key
	switch v := raw.(type) {
	case transposition.Key:
		key = v
	case []int:
		key = transposition.Key(v)
	case string:
		parsed, err := transposition.ParseKey(v)
		if err != nil {
			return nil, true, err
		}
		return parsed, true, nil
	case []interface{}:
		key = make(transposition.Key, len(v))
		for i, item := range v {
			n, err := toInt(item)
			if err != nil {
				return nil, true, fmt.Errorf("%w: position %d: %v", transposition.ErrInvalidPermutationKey, i, err)
			}
			key[i] = n
		}
	default:
		return nil, true, fmt.Errorf("%w: unsupported type %T", transposition.ErrInvalidPermutationKey, raw)
	}
	if err := key.Validate(); err != nil {
		return nil, true, err
	}
	return key, true, nil
}

func requireTransKey(params map[string]interface{}) (transposition.Key, error) {
	key, ok, err := transKeyParam(params)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParameter, ParamTransKey)
	}
	return key, nil
}

func intParam(params map[string]interface{}, name string, def int) (int, error) {
	raw, ok := params[name]
	if !ok || raw == nil {
		return def, nil
	}
	n, err := toInt(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %s: %w", name, err)
	}
	return n, nil
}

// columnsParam prefers an explicit column count and falls back to the width
// of the transposition key.
func columnsParam(params map[string]interface{}) (int, error) {
	if _, ok := params[ParamColumns]; ok {
		return intParam(params, ParamColumns, 0)
	}
	key, ok, err := transKeyParam(params)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s or %s", ErrMissingParameter, ParamColumns, ParamTransKey)
	}
	return key.Columns(), nil
}

func toInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
