package esdes

import (
	"errors"
	"fmt"
	"strings"
)

// Level selects how much the pipeline reports to its Observer.
type Level int

const (
	// LevelNone reports nothing.
	LevelNone Level = iota
	// LevelNormal reports the output of every stage.
	LevelNormal
	// LevelDetailed adds row-shift grids, subkeys and one event per block.
	LevelDetailed
)

var ErrInvalidLevel = errors.New("trace level must be none, normal or detailed")

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelNormal:
		return "normal"
	case LevelDetailed:
		return "detailed"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel accepts a level name or its number. The empty string is LevelNone.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0", "off":
		return LevelNone, nil
	case "normal", "1":
		return LevelNormal, nil
	case "detailed", "2", "verbose":
		return LevelDetailed, nil
	default:
		return LevelNone, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}
