package depparse

import (
	"fmt"
	"time"

	"github.com/jward/depparse/internal/store"
)

// QueryBuilder reads parses back out of the treebank.
type QueryBuilder struct {
	store *store.Store
}

// ParsedSentence is a stored sentence with its parse.
type ParsedSentence struct {
	ID          int64        `json:"id"`
	Oracle      string       `json:"oracle"`
	ParsedAt    time.Time    `json:"parsed_at"`
	Tokens      []Token      `json:"tokens"`
	Arcs        []Arc        `json:"arcs"`
	IndexedArcs []IndexedArc `json:"indexed_arcs"`
}

// Sentence returns the stored sentence with the given ID, or nil when
// there is none.
func (q *QueryBuilder) Sentence(id int64) (*ParsedSentence, error) {
	sent, err := q.store.SentenceByID(id)
	if err != nil {
		return nil, err
	}
	if sent == nil {
		return nil, nil
	}
	tokens, err := q.tokens(id)
	if err != nil {
		return nil, err
	}
	rows, err := q.store.ArcsBySentence(id)
	if err != nil {
		return nil, err
	}

	ps := &ParsedSentence{
		ID:          sent.ID,
		Oracle:      sent.Oracle,
		ParsedAt:    sent.ParsedAt,
		Tokens:      tokens,
		Arcs:        make([]Arc, len(rows)),
		IndexedArcs: make([]IndexedArc, len(rows)),
	}
	for i, r := range rows {
		ps.IndexedArcs[i] = IndexedArc{Head: r.Head, Dependent: r.Dependent}
		ps.Arcs[i] = Arc{Head: tokenAt(tokens, r.Head), Dependent: tokenAt(tokens, r.Dependent)}
	}
	return ps, nil
}

// Arcs returns a stored sentence's arcs in the order the parser added them.
func (q *QueryBuilder) Arcs(id int64) ([]Arc, error) {
	ps, err := q.Sentence(id)
	if err != nil {
		return nil, err
	}
	if ps == nil {
		return nil, fmt.Errorf("sentence %d not found", id)
	}
	return ps.Arcs, nil
}

// HeadOf returns the head position of the token at position, and false when
// the token has no head in the stored parse.
func (q *QueryBuilder) HeadOf(id int64, position int) (int, bool, error) {
	arc, err := q.store.ArcByDependent(id, position)
	if err != nil {
		return 0, false, err
	}
	if arc == nil {
		return 0, false, nil
	}
	return arc.Head, true, nil
}

// Dependents returns the positions governed by position, in sentence order.
func (q *QueryBuilder) Dependents(id int64, position int) ([]int, error) {
	arcs, err := q.store.ArcsByHead(id, position)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(arcs))
	for i, a := range arcs {
		out[i] = a.Dependent
	}
	return out, nil
}

// Sentences lists every stored sentence record.
func (q *QueryBuilder) Sentences() ([]*SentenceRecord, error) {
	return q.store.Sentences()
}

func (q *QueryBuilder) tokens(id int64) ([]Token, error) {
	rows, err := q.store.TokensBySentence(id)
	if err != nil {
		return nil, err
	}
	out := make([]Token, len(rows))
	for i, r := range rows {
		out[i] = Token(r.Form)
	}
	return out, nil
}

// tokenAt maps a position to its token; 0 is Root.
func tokenAt(tokens []Token, pos int) Token {
	if pos <= 0 || pos > len(tokens) {
		return Root
	}
	return tokens[pos-1]
}
