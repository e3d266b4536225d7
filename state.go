package depparse

import (
	"fmt"
	"strings"
)

// Token is one word of the input sentence.
type Token string

// Root is the synthetic token at the bottom of every stack.
const Root Token = "ROOT"

// Arc is a dependency edge: Head governs Dependent.
type Arc struct {
	Head      Token `json:"head"`
	Dependent Token `json:"dependent"`
}

func (a Arc) String() string {
	return fmt.Sprintf("(%s,%s)", a.Head, a.Dependent)
}

// IndexedArc is an Arc addressed by sentence positions. Position 0 is ROOT,
// the sentence's tokens are 1..n.
type IndexedArc struct {
	Head      int `json:"head"`
	Dependent int `json:"dependent"`
}

// ParseState is the (stack, buffer, arcs) configuration of one sentence.
//
// The stack and buffer hold positions into the sentence rather than tokens so
// repeated words stay distinct. The buffer is consumed by advancing front.
type ParseState struct {
	id       int
	sentence []Token
	stack    []int
	buffer   []int
	front    int
	arcs     []IndexedArc
	steps    int
}

// NewParseState creates the initial configuration for sentence: stack
// [ROOT], buffer holding every token in order, no arcs. The caller's slice
// is copied.
func NewParseState(sentence []Token) *ParseState {
	return newParseState(-1, sentence)
}

func newParseState(id int, sentence []Token) *ParseState {
	s := &ParseState{
		id:       id,
		sentence: make([]Token, len(sentence)),
		stack:    make([]int, 1, len(sentence)+1),
		buffer:   make([]int, len(sentence)),
	}
	copy(s.sentence, sentence)
	for i := range s.buffer {
		s.buffer[i] = i + 1
	}
	return s
}

// ID returns the sentence's index in its parse session, or -1 for a state
// built with NewParseState.
func (s *ParseState) ID() int { return s.id }

// Steps returns the number of transitions applied so far.
func (s *ParseState) Steps() int { return s.steps }

// Len returns the sentence length, ROOT excluded.
func (s *ParseState) Len() int { return len(s.sentence) }

// Sentence returns a copy of the input tokens.
func (s *ParseState) Sentence() []Token {
	out := make([]Token, len(s.sentence))
	copy(out, s.sentence)
	return out
}

// Token returns the token at position pos; position 0 is Root. Positions
// outside 0..Len() yield the empty token.
func (s *ParseState) Token(pos int) Token {
	switch {
	case pos == 0:
		return Root
	case pos < 0 || pos > len(s.sentence):
		return ""
	}
	return s.sentence[pos-1]
}

// Apply applies t. A transition whose precondition fails returns a
// *TransitionError and leaves the configuration unchanged.
func (s *ParseState) Apply(t Transition) error {
	if !s.Legal(t) {
		return &TransitionError{Transition: t, StackLen: len(s.stack), BufferLen: s.bufferLen()}
	}
	n := len(s.stack)
	switch t {
	case Shift:
		s.stack = append(s.stack, s.buffer[s.front])
		s.front++
	case LeftArc:
		head, dep := s.stack[n-1], s.stack[n-2]
		s.stack[n-2] = head
		s.stack = s.stack[:n-1]
		s.arcs = append(s.arcs, IndexedArc{Head: head, Dependent: dep})
	case RightArc:
		head, dep := s.stack[n-2], s.stack[n-1]
		s.stack = s.stack[:n-1]
		s.arcs = append(s.arcs, IndexedArc{Head: head, Dependent: dep})
	}
	s.steps++
	return nil
}

// Legal reports whether t may be applied to the current configuration.
func (s *ParseState) Legal(t Transition) bool {
	switch t {
	case Shift:
		return s.bufferLen() > 0
	case LeftArc, RightArc:
		return len(s.stack) >= 2
	}
	return false
}

// LegalTransitions returns the transitions Apply would accept, in
// Shift, LeftArc, RightArc order.
func (s *ParseState) LegalTransitions() []Transition {
	var out []Transition
	for _, t := range []Transition{Shift, LeftArc, RightArc} {
		if s.Legal(t) {
			out = append(out, t)
		}
	}
	return out
}

// IsTerminal reports whether parsing is complete: fewer than two stack
// elements and an empty buffer.
func (s *ParseState) IsTerminal() bool {
	return len(s.stack) < 2 && s.bufferLen() == 0
}

// Parse applies transitions in order and returns the arcs. It stops at the
// first rejected transition.
func (s *ParseState) Parse(transitions []Transition) ([]Arc, error) {
	for i, t := range transitions {
		if err := s.Apply(t); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return s.Arcs(), nil
}

// Arcs returns a copy of the arcs in the order they were added.
func (s *ParseState) Arcs() []Arc {
	out := make([]Arc, len(s.arcs))
	for i, a := range s.arcs {
		out[i] = Arc{Head: s.Token(a.Head), Dependent: s.Token(a.Dependent)}
	}
	return out
}

// IndexedArcs returns a copy of the arcs as positions.
func (s *ParseState) IndexedArcs() []IndexedArc {
	out := make([]IndexedArc, len(s.arcs))
	copy(out, s.arcs)
	return out
}

// Stack returns the stack tokens, bottom first.
func (s *ParseState) Stack() []Token {
	return s.tokens(s.stack)
}

// Buffer returns the remaining buffer tokens, front first.
func (s *ParseState) Buffer() []Token {
	return s.tokens(s.buffer[s.front:])
}

// StackPositions returns the stack as sentence positions, bottom first.
func (s *ParseState) StackPositions() []int {
	out := make([]int, len(s.stack))
	copy(out, s.stack)
	return out
}

// BufferPositions returns the remaining buffer as sentence positions.
func (s *ParseState) BufferPositions() []int {
	rest := s.buffer[s.front:]
	out := make([]int, len(rest))
	copy(out, rest)
	return out
}

func (s *ParseState) bufferLen() int {
	return len(s.buffer) - s.front
}

func (s *ParseState) tokens(positions []int) []Token {
	out := make([]Token, len(positions))
	for i, p := range positions {
		out[i] = s.Token(p)
	}
	return out
}

func (s *ParseState) String() string {
	var arcs []string
	for _, a := range s.Arcs() {
		arcs = append(arcs, a.String())
	}
	return fmt.Sprintf("stack=%v buffer=%v arcs=[%s]", s.Stack(), s.Buffer(), strings.Join(arcs, " "))
}
