package depparse

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toks(words ...string) []Token {
	out := make([]Token, len(words))
	for i, w := range words {
		out[i] = Token(w)
	}
	return out
}

func seq(t *testing.T, s string) []Transition {
	t.Helper()
	out, err := ParseTransitions(s)
	require.NoError(t, err)
	return out
}

func TestNewParseState_Initial(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("Book", "the", "flight"))

	assert.Equal(t, []Token{Root}, s.Stack())
	assert.Equal(t, toks("Book", "the", "flight"), s.Buffer())
	assert.Empty(t, s.Arcs())
	assert.Equal(t, -1, s.ID())
	assert.Equal(t, 0, s.Steps())
	assert.Equal(t, 3, s.Len())
	assert.False(t, s.IsTerminal())
}

func TestNewParseState_CopiesSentence(t *testing.T) {
	t.Parallel()
	sentence := toks("a", "b")
	s := NewParseState(sentence)
	sentence[0] = "changed"

	assert.Equal(t, toks("a", "b"), s.Buffer())
	assert.Equal(t, toks("a", "b"), s.Sentence())
}

func TestNewParseState_Empty(t *testing.T) {
	t.Parallel()
	s := NewParseState(nil)

	assert.True(t, s.IsTerminal())
	assert.Empty(t, s.LegalTransitions())
	assert.Equal(t, []Token{Root}, s.Stack())
	assert.Empty(t, s.Arcs())
}

func TestApply_Shift(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("a", "b"))

	require.NoError(t, s.Apply(Shift))
	assert.Equal(t, []Token{Root, "a"}, s.Stack())
	assert.Equal(t, toks("b"), s.Buffer())
	assert.Empty(t, s.Arcs())
	assert.Equal(t, 1, s.Steps())
}

func TestApply_LeftArcTopGovernsSecond(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("the", "flight"))
	require.NoError(t, s.Apply(Shift))
	require.NoError(t, s.Apply(Shift))

	require.NoError(t, s.Apply(LeftArc))
	assert.Equal(t, []Arc{{Head: "flight", Dependent: "the"}}, s.Arcs())
	assert.Equal(t, []Token{Root, "flight"}, s.Stack())
}

func TestApply_RightArcSecondGovernsTop(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("Book", "flights"))
	require.NoError(t, s.Apply(Shift))
	require.NoError(t, s.Apply(Shift))

	require.NoError(t, s.Apply(RightArc))
	assert.Equal(t, []Arc{{Head: "Book", Dependent: "flights"}}, s.Arcs())
	assert.Equal(t, []Token{Root, "Book"}, s.Stack())
}

func TestApply_LeftArcMayAttachRoot(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("x"))
	require.NoError(t, s.Apply(Shift))

	require.NoError(t, s.Apply(LeftArc))
	assert.Equal(t, []Arc{{Head: "x", Dependent: Root}}, s.Arcs())
	assert.Equal(t, []Token{"x"}, s.Stack())
	assert.True(t, s.IsTerminal())
}

func TestApply_IllegalLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup string
		bad   Transition
	}{
		{"shift on empty buffer", "S", Shift},
		{"left arc on root only", "", LeftArc},
		{"right arc on root only", "", RightArc},
		{"right arc after full reduce", "S RA", RightArc},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewParseState(toks("only"))
			_, err := s.Parse(seq(t, tt.setup))
			require.NoError(t, err)

			stack, buffer, arcs, steps := s.Stack(), s.Buffer(), s.Arcs(), s.Steps()
			err = s.Apply(tt.bad)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPreconditionViolation)

			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.bad, te.Transition)

			assert.Equal(t, stack, s.Stack())
			assert.Equal(t, buffer, s.Buffer())
			assert.Equal(t, arcs, s.Arcs())
			assert.Equal(t, steps, s.Steps())
		})
	}
}

func TestApply_UnknownTransition(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("a", "b"))
	err := s.Apply(Transition(9))
	assert.ErrorIs(t, err, ErrPreconditionViolation)
	assert.Equal(t, 0, s.Steps())
}

func TestParse_Fixtures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sentence    []Token
		transitions string
		want        []Arc
	}{
		{
			name:        "three words",
			sentence:    toks("parse", "this", "sentence"),
			transitions: "S S S LA RA RA",
			want: []Arc{
				{Head: "sentence", Dependent: "this"},
				{Head: "parse", Dependent: "sentence"},
				{Head: Root, Dependent: "parse"},
			},
		},
		{
			name:        "four words",
			sentence:    toks("parsed", "this", "sentence", "correctly"),
			transitions: "S S S LA RA S RA RA",
			want: []Arc{
				{Head: "sentence", Dependent: "this"},
				{Head: "parsed", Dependent: "sentence"},
				{Head: "parsed", Dependent: "correctly"},
				{Head: Root, Dependent: "parsed"},
			},
		},
		{
			name:        "book the flight",
			sentence:    toks("Book", "the", "flight"),
			transitions: "S,S,S,LA,RA,RA",
			want: []Arc{
				{Head: "flight", Dependent: "the"},
				{Head: "Book", Dependent: "flight"},
				{Head: Root, Dependent: "Book"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewParseState(tt.sentence)
			arcs, err := s.Parse(seq(t, tt.transitions))
			require.NoError(t, err)
			assert.Equal(t, tt.want, arcs)
			assert.True(t, s.IsTerminal())
			assert.Equal(t, 2*len(tt.sentence), s.Steps())
		})
	}
}

func TestParse_StopsAtFirstIllegal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sentence    []Token
		transitions string
		failStep    int
		wantStack   []Token
		wantArcs    []Arc
	}{
		{
			name:        "shift past end of four words",
			sentence:    toks("parsed", "this", "sentence", "correctly"),
			transitions: "S S S LA S S LA RA RA",
			failStep:    5,
			wantStack:   []Token{Root, "parsed", "sentence", "correctly"},
			wantArcs:    []Arc{{Head: "sentence", Dependent: "this"}},
		},
		{
			name:        "shift past end of book the flight",
			sentence:    toks("Book", "the", "flight"),
			transitions: "S S LA S S LA RA RA",
			failStep:    4,
			wantStack:   []Token{Root, "the", "flight"},
			wantArcs:    []Arc{{Head: "the", Dependent: "Book"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewParseState(tt.sentence)
			arcs, err := s.Parse(seq(t, tt.transitions))
			require.Error(t, err)
			assert.Nil(t, arcs)
			assert.ErrorIs(t, err, ErrPreconditionViolation)
			assert.Contains(t, err.Error(), fmt.Sprintf("step %d:", tt.failStep))

			assert.Equal(t, tt.failStep, s.Steps())
			assert.Equal(t, tt.wantStack, s.Stack())
			assert.Empty(t, s.Buffer())
			assert.Equal(t, tt.wantArcs, s.Arcs())
		})
	}
}

func TestParse_DuplicateTokensStayDistinct(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("the", "dog", "saw", "the", "cat"))
	// the<-dog, dog<-saw, the<-cat, saw->cat, ROOT->saw
	_, err := s.Parse(seq(t, "S S LA S LA S S LA RA RA"))
	require.NoError(t, err)

	assert.Equal(t, []IndexedArc{
		{Head: 2, Dependent: 1},
		{Head: 3, Dependent: 2},
		{Head: 5, Dependent: 4},
		{Head: 3, Dependent: 5},
		{Head: 0, Dependent: 3},
	}, s.IndexedArcs())
	assert.Equal(t, Arc{Head: "cat", Dependent: "the"}, s.Arcs()[2])
}

func TestLegalTransitions(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("a", "b"))
	assert.Equal(t, []Transition{Shift}, s.LegalTransitions())

	require.NoError(t, s.Apply(Shift))
	assert.Equal(t, []Transition{Shift, LeftArc, RightArc}, s.LegalTransitions())

	require.NoError(t, s.Apply(Shift))
	assert.Equal(t, []Transition{LeftArc, RightArc}, s.LegalTransitions())
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("a", "b"))
	_, err := s.Parse(seq(t, "S S RA"))
	require.NoError(t, err)

	s.StackPositions()[0] = 99
	s.IndexedArcs()[0] = IndexedArc{Head: 7, Dependent: 7}
	s.Arcs()[0] = Arc{Head: "x", Dependent: "y"}
	s.Sentence()[0] = "z"

	assert.Equal(t, []int{0, 1}, s.StackPositions())
	assert.Equal(t, []IndexedArc{{Head: 1, Dependent: 2}}, s.IndexedArcs())
	assert.Equal(t, []Arc{{Head: "a", Dependent: "b"}}, s.Arcs())
	assert.Equal(t, Token("a"), s.Token(1))
}

func TestToken_Positions(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("a", "b"))

	assert.Equal(t, Root, s.Token(0))
	assert.Equal(t, Token("a"), s.Token(1))
	assert.Equal(t, Token("b"), s.Token(2))
	assert.Equal(t, Token(""), s.Token(3))
	assert.Equal(t, Token(""), s.Token(-1))
	assert.Equal(t, Token(""), NewParseState(nil).Token(1))
}

// TestRandomLegalWalks drives states with random legal transitions and
// checks the configuration bookkeeping after every step.
func TestRandomLegalWalks(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))

	for trial := range 200 {
		n := rng.IntN(8)
		words := make([]string, n)
		for i := range words {
			words[i] = string(rune('a' + rng.IntN(4)))
		}
		s := NewParseState(toks(words...))

		for !s.IsTerminal() {
			legal := s.LegalTransitions()
			require.NotEmpty(t, legal, "trial %d: non-terminal state with no legal transition", trial)
			require.NoError(t, s.Apply(legal[rng.IntN(len(legal))]))

			assert.Equal(t, n+1, len(s.StackPositions())+len(s.BufferPositions())+len(s.IndexedArcs()),
				"trial %d: stack+buffer+arcs must stay n+1", trial)
			assert.GreaterOrEqual(t, len(s.StackPositions()), 1)
			require.LessOrEqual(t, s.Steps(), 2*n)
		}

		assert.Equal(t, 2*n, s.Steps(), "trial %d", trial)
		assert.Len(t, s.IndexedArcs(), n)
		seen := make(map[int]bool)
		for _, a := range s.IndexedArcs() {
			assert.False(t, seen[a.Dependent], "trial %d: position %d attached twice", trial, a.Dependent)
			seen[a.Dependent] = true
			assert.NotEqual(t, a.Head, a.Dependent)
		}
	}
}

func TestParseState_String(t *testing.T) {
	t.Parallel()
	s := NewParseState(toks("a", "b"))
	_, err := s.Parse(seq(t, "S S LA"))
	require.NoError(t, err)
	assert.Equal(t, "stack=[ROOT b] buffer=[] arcs=[(b,a)]", s.String())
}
