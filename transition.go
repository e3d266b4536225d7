package depparse

import (
	"fmt"
	"strings"
)

// Transition is one atomic edit to a parser configuration.
type Transition int

const (
	Shift Transition = iota
	LeftArc
	RightArc
)

// transitionNames maps each Transition to its short name.
var transitionNames = map[Transition]string{
	Shift:    "S",
	LeftArc:  "LA",
	RightArc: "RA",
}

// String returns the short name used in scripts and transition files.
func (t Transition) String() string {
	if name, ok := transitionNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Transition(%d)", int(t))
}

// Valid reports whether t is one of Shift, LeftArc or RightArc.
func (t Transition) Valid() bool {
	_, ok := transitionNames[t]
	return ok
}

// ParseTransition converts a short name ("S", "LA", "RA") to a Transition.
// Long forms ("shift", "left-arc", "right-arc") are accepted, case-insensitive.
func ParseTransition(s string) (Transition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SH", "SHIFT":
		return Shift, nil
	case "LA", "LEFT-ARC", "LEFTARC":
		return LeftArc, nil
	case "RA", "RIGHT-ARC", "RIGHTARC":
		return RightArc, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTransition, s)
}

// ParseTransitions converts a sequence of names. Fields may be separated by
// whitespace or commas.
func ParseTransitions(s string) ([]Transition, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]Transition, 0, len(fields))
	for i, f := range fields {
		t, err := ParseTransition(f)
		if err != nil {
			return nil, fmt.Errorf("transition %d: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
