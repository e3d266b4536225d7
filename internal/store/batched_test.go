package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchedStore_FakeIDsAreNegative(t *testing.T) {
	t.Parallel()
	batch := NewBatchedStore(newTestStore(t))

	sentID, err := batch.InsertSentence(&Sentence{Hash: "h", Oracle: "test", ParsedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), sentID)

	tokID, err := batch.InsertToken(&Token{SentenceID: sentID, Position: 1, Form: "a"})
	require.NoError(t, err)
	assert.Equal(t, int64(-2), tokID)

	arcID, err := batch.InsertArc(&Arc{SentenceID: sentID, Head: 0, Dependent: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(-3), arcID)
	assert.Equal(t, 3, batch.Len())
}

func TestBatchedStore_SentenceByHash_BufferThenDatabase(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	stored := insertTestSentence(t, s, "stored", "x")

	batch := NewBatchedStore(s)
	_, err := batch.InsertSentence(&Sentence{Hash: "buffered", Oracle: "test", ParsedAt: time.Now()})
	require.NoError(t, err)

	got, err := batch.SentenceByHash("buffered")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Negative(t, got.ID)

	got, err = batch.SentenceByHash("stored")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, stored.ID, got.ID)

	got, err = batch.SentenceByHash("neither")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Nothing reaches SQLite before CommitBatch.
	dbGot, err := s.SentenceByHash("buffered")
	require.NoError(t, err)
	assert.Nil(t, dbGot)
}

func TestCommitBatch_RemapsSentenceIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore(s)

	var fakes []int64
	for _, forms := range [][]string{{"a", "b"}, {"c"}} {
		id, err := batch.InsertSentence(&Sentence{Hash: forms[0], Oracle: "test", TokenCount: len(forms), ParsedAt: time.Now()})
		require.NoError(t, err)
		fakes = append(fakes, id)
		for i, f := range forms {
			_, err := batch.InsertToken(&Token{SentenceID: id, Position: i + 1, Form: f})
			require.NoError(t, err)
			_, err = batch.InsertArc(&Arc{SentenceID: id, Ordinal: i, Head: i, Dependent: i + 1})
			require.NoError(t, err)
		}
	}

	fakeToReal, err := s.CommitBatch(batch)
	require.NoError(t, err)
	require.Len(t, fakeToReal, 2)

	first := fakeToReal[fakes[0]]
	assert.Positive(t, first)
	toks, err := s.TokensBySentence(first)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, "b", toks[1].Form)

	arcs, err := s.ArcsBySentence(fakeToReal[fakes[1]])
	require.NoError(t, err)
	require.Len(t, arcs, 1)
	assert.Equal(t, 0, arcs[0].Head)
	assert.Equal(t, 1, arcs[0].Dependent)
}

func TestCommitBatch_RollsBackOnError(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	insertTestSentence(t, s, "taken", "x")

	batch := NewBatchedStore(s)
	_, err := batch.InsertSentence(&Sentence{Hash: "fresh", Oracle: "test", ParsedAt: time.Now()})
	require.NoError(t, err)
	_, err = batch.InsertSentence(&Sentence{Hash: "taken", Oracle: "test", ParsedAt: time.Now()})
	require.NoError(t, err)

	_, err = s.CommitBatch(batch)
	require.Error(t, err)

	got, err := s.SentenceByHash("fresh")
	require.NoError(t, err)
	assert.Nil(t, got, "failed commit must not leave partial rows")
}

func TestCommitBatch_UnknownFakeSentence(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	batch := NewBatchedStore(s)
	_, err := batch.InsertToken(&Token{SentenceID: -99, Position: 1, Form: "orphan"})
	require.NoError(t, err)

	_, err = s.CommitBatch(batch)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown fake sentence id -99")
}

func TestCommitBatch_DeletesBeforeInsert(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	old := insertTestSentence(t, s, "same", "a", "b")

	batch := NewBatchedStore(s)
	batch.DeleteSentence(old.ID)
	fake, err := batch.InsertSentence(&Sentence{Hash: "same", Oracle: "test", TokenCount: 1, ParsedAt: time.Now()})
	require.NoError(t, err)
	_, err = batch.InsertToken(&Token{SentenceID: fake, Position: 1, Form: "c"})
	require.NoError(t, err)

	fakeToReal, err := s.CommitBatch(batch)
	require.NoError(t, err)

	got, err := s.SentenceByHash("same")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fakeToReal[fake], got.ID)
	assert.NotEqual(t, old.ID, got.ID)

	oldArcs, err := s.ArcsBySentence(old.ID)
	require.NoError(t, err)
	assert.Empty(t, oldArcs)
	toks, err := s.TokensBySentence(got.ID)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, "c", toks[0].Form)
}

func TestCommitBatch_FailedCommitKeepsDeletedRows(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	keep := insertTestSentence(t, s, "keep", "a")
	insertTestSentence(t, s, "taken", "x")

	batch := NewBatchedStore(s)
	batch.DeleteSentence(keep.ID)
	_, err := batch.InsertSentence(&Sentence{Hash: "taken", Oracle: "test", ParsedAt: time.Now()})
	require.NoError(t, err)

	_, err = s.CommitBatch(batch)
	require.Error(t, err)

	got, err := s.SentenceByID(keep.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}
