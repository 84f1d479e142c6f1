package model

import (
	"fmt"
	"strings"
)

// Direction is the player's call on the next close.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up"/"down" in any case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	default:
		return "", fmt.Errorf("invalid direction %q", s)
	}
}

// Label returns "Up" or "Down" for status text.
func (d Direction) Label() string {
	if d == Up {
		return "Up"
	}
	return "Down"
}

// GuessOutcome is the result of a single reveal. Not stored.
type GuessOutcome struct {
	Direction Direction
	Actual    Direction
	Correct   bool
	Revealed  Observation
}
