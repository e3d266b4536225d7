package depparse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoldOracle_Transitions(t *testing.T) {
	t.Parallel()
	oracle := NewGoldOracle([]int{0, 3, 1}, []int{0, 3, 1, 1})

	got, err := oracle.Transitions(0, toks("parse", "this", "sentence"))
	require.NoError(t, err)
	assert.Equal(t, seq(t, "S S S LA RA RA"), got)

	got, err = oracle.Transitions(1, toks("parsed", "this", "sentence", "correctly"))
	require.NoError(t, err)
	assert.Equal(t, seq(t, "S S S LA RA S RA RA"), got)
}

func TestGoldOracle_ReconstructsHeads(t *testing.T) {
	t.Parallel()
	oracle := corpusOracle()
	states, err := NewBatchParser(oracle, WithBatchSize(3)).ParseStates(context.Background(), corpusSentences())
	require.NoError(t, err)

	for i, s := range states {
		heads := make([]int, s.Len())
		for _, a := range s.IndexedArcs() {
			heads[a.Dependent-1] = a.Head
		}
		assert.Equal(t, corpus[i].heads, heads, "sentence %d", i)
	}
}

func TestGoldOracle_WaitsForRightDependents(t *testing.T) {
	t.Parallel()
	// "saw" heads "cat"; RA on (ROOT, saw) must wait until cat is attached.
	oracle := NewGoldOracle([]int{0, 1})
	got, err := oracle.Transitions(0, toks("saw", "cat"))
	require.NoError(t, err)
	assert.Equal(t, seq(t, "S S RA RA"), got)
}

func TestGoldOracle_NonProjective(t *testing.T) {
	t.Parallel()
	// 1->3 and 2->4 cross.
	oracle := NewGoldOracle([]int{0, 4, 1, 1})
	_, err := oracle.Transitions(0, toks("a", "b", "c", "d"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonProjective)
}

func TestGoldOracle_HeadCountMismatch(t *testing.T) {
	t.Parallel()
	oracle := NewGoldOracle([]int{0})

	_, err := ParseBatch(context.Background(), [][]Token{toks("a", "b")}, oracle, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gold has 1 heads for 2 tokens")
}

func TestGoldOracle_UnknownSentence(t *testing.T) {
	t.Parallel()
	oracle := NewGoldOracle()

	_, err := ParseBatch(context.Background(), [][]Token{toks("a")}, oracle, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no gold heads for sentence 0")
}
