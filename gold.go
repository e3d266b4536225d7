package depparse

import (
	"context"
	"fmt"
)

// GoldOracle is the static arc-standard oracle: given the gold head of every
// token it returns the transition that builds the gold tree.
//
// Heads[id][i] is the gold head position of token i+1 of sentence id, where
// 0 is ROOT.
//
//	LA	if head(s2) = s1 and s2 != ROOT
//	RA	if head(s1) = s2 and every gold dependent of s1 is attached
//	SH	otherwise
type GoldOracle struct {
	Heads [][]int
}

var _ Oracle = (*GoldOracle)(nil)

func NewGoldOracle(heads ...[]int) *GoldOracle {
	return &GoldOracle{Heads: heads}
}

func (o *GoldOracle) Name() string { return "gold:" + contentKey(o.Heads) }

func (o *GoldOracle) Predict(_ context.Context, batch []*ParseState) ([]Transition, error) {
	out := make([]Transition, len(batch))
	for i, s := range batch {
		t, err := o.next(s)
		if err != nil {
			return nil, fmt.Errorf("gold oracle: sentence %d: %w", s.ID(), err)
		}
		out[i] = t
	}
	return out, nil
}

// Transitions derives the complete gold transition sequence for sentence id
// by running the oracle on a fresh configuration.
func (o *GoldOracle) Transitions(id int, sentence []Token) ([]Transition, error) {
	s := newParseState(id, sentence)
	var seq []Transition
	for !s.IsTerminal() {
		t, err := o.next(s)
		if err != nil {
			return nil, err
		}
		if err := s.Apply(t); err != nil {
			return nil, err
		}
		seq = append(seq, t)
	}
	return seq, nil
}

func (o *GoldOracle) next(s *ParseState) (Transition, error) {
	if s.ID() < 0 || s.ID() >= len(o.Heads) {
		return 0, fmt.Errorf("no gold heads for sentence %d", s.ID())
	}
	heads := o.Heads[s.ID()]
	if len(heads) != s.Len() {
		return 0, fmt.Errorf("gold has %d heads for %d tokens", len(heads), s.Len())
	}

	stack := s.stack
	if n := len(stack); n >= 2 {
		top, second := stack[n-1], stack[n-2]
		if second != 0 && heads[second-1] == top {
			return LeftArc, nil
		}
		if heads[top-1] == second && o.complete(s, heads, top) {
			return RightArc, nil
		}
	}
	if s.bufferLen() > 0 {
		return Shift, nil
	}
	return 0, ErrNonProjective
}

// complete reports whether every gold dependent of pos is already attached.
func (o *GoldOracle) complete(s *ParseState, heads []int, pos int) bool {
	want := 0
	for _, h := range heads {
		if h == pos {
			want++
		}
	}
	got := 0
	for _, a := range s.arcs {
		if a.Head == pos {
			got++
		}
	}
	return got == want
}
