package depparse

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jward/depparse/internal/store"
)

// Engine parses sentences with a BatchParser and keeps the results in a
// SQLite treebank. Sentences already parsed by the same oracle are served
// from the database instead of being parsed again.
type Engine struct {
	store     *store.Store
	parseOpts []BatchOption
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithParseOptions forwards options to the BatchParser used for each
// ParseSentences call.
func WithParseOptions(opts ...BatchOption) Option {
	return func(e *Engine) {
		e.parseOpts = append(e.parseOpts, opts...)
	}
}

// WithEngineLogger sets the logger for engine summaries and parse rounds.
func WithEngineLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("depparse: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("depparse: migrate: %w", err)
	}

	e := &Engine{
		store:  s,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Query returns a new QueryBuilder wrapping the Store.
func (e *Engine) Query() *QueryBuilder {
	return &QueryBuilder{store: e.store}
}

// ParseSentences parses sentences with oracle and stores the results. It
// returns the stored sentence IDs in input order.
//
// Stored parses are reused only for oracles that implement Named. An
// unnamed oracle always parses, and its result replaces any row stored
// under the same name for that sentence.
//
// The work runs in three phases:
//
//	Phase A (serial):  hash each sentence with the oracle name, reuse stored parses.
//	Phase B (batched): parse the remaining sentences in one BatchParser session.
//	Phase C (serial):  buffer rows in a BatchedStore and commit them in one transaction.
//
// Oracle state IDs are the sentences' input positions, so scripted and gold
// oracles index the caller's slice even when some sentences are cached.
func (e *Engine) ParseSentences(ctx context.Context, oracle Oracle, sentences [][]Token) ([]int64, error) {
	start := time.Now()
	name, cacheable := oracleName(oracle)
	ids := make([]int64, len(sentences))

	// ---- Phase A: change detection ----
	hashes := make([]string, len(sentences))
	firstByHash := make(map[string]int)
	var (
		pendingIDs  []int
		pendingSent [][]Token
		replaced    []int64
		cached      int
	)
	for i, sentence := range sentences {
		hashes[i] = store.ComputeSentenceHash(name, tokenForms(sentence))
		if _, dup := firstByHash[hashes[i]]; dup {
			continue
		}
		firstByHash[hashes[i]] = i

		existing, err := e.store.SentenceByHash(hashes[i])
		if err != nil {
			return nil, fmt.Errorf("depparse: lookup sentence %d: %w", i, err)
		}
		if existing != nil {
			if cacheable {
				ids[i] = existing.ID
				cached++
				continue
			}
			replaced = append(replaced, existing.ID)
		}
		pendingIDs = append(pendingIDs, i)
		pendingSent = append(pendingSent, sentence)
	}

	// ---- Phase B: batched parsing ----
	var states []*ParseState
	if len(pendingSent) > 0 {
		opts := append([]BatchOption{WithLogger(e.logger)}, e.parseOpts...)
		var err error
		states, err = NewBatchParser(oracle, opts...).parseStates(ctx, pendingIDs, pendingSent)
		if err != nil {
			return nil, fmt.Errorf("depparse: parse: %w", err)
		}
	}

	// ---- Phase C: buffered commit ----
	if len(states) > 0 {
		batch := store.NewBatchedStore(e.store)
		for _, id := range replaced {
			batch.DeleteSentence(id)
		}
		now := time.Now()
		for _, st := range states {
			fakeID, err := writeParse(batch, st, hashes[st.ID()], name, now)
			if err != nil {
				return nil, fmt.Errorf("depparse: buffer sentence %d: %w", st.ID(), err)
			}
			ids[st.ID()] = fakeID
		}
		fakeToReal, err := e.store.CommitBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("depparse: %w", err)
		}
		for _, st := range states {
			ids[st.ID()] = fakeToReal[ids[st.ID()]]
		}
	}

	// Repeated sentences share the first occurrence's row.
	for i := range sentences {
		ids[i] = ids[firstByHash[hashes[i]]]
	}

	e.logger.Info("parsed sentences",
		"oracle", name,
		"sentences", len(sentences),
		"parsed", len(states),
		"cached", cached,
		"replaced", len(replaced),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return ids, nil
}

// DeleteSentence removes a stored parse with its tokens and arcs. It reports
// whether the sentence existed.
func (e *Engine) DeleteSentence(id int64) (bool, error) {
	sent, err := e.store.SentenceByID(id)
	if err != nil {
		return false, fmt.Errorf("depparse: lookup sentence %d: %w", id, err)
	}
	if sent == nil {
		return false, nil
	}
	if err := e.store.DeleteSentenceData(id); err != nil {
		return false, fmt.Errorf("depparse: delete sentence %d: %w", id, err)
	}
	return true, nil
}

// writeParse buffers one finished configuration: the sentence row, its
// tokens and its arcs in application order.
func writeParse(ds store.DataStore, st *ParseState, hash, oracle string, parsedAt time.Time) (int64, error) {
	sentID, err := ds.InsertSentence(&store.Sentence{
		Hash:       hash,
		Oracle:     oracle,
		TokenCount: st.Len(),
		ParsedAt:   parsedAt,
	})
	if err != nil {
		return 0, err
	}
	for i, tok := range st.sentence {
		if _, err := ds.InsertToken(&store.Token{SentenceID: sentID, Position: i + 1, Form: string(tok)}); err != nil {
			return 0, err
		}
	}
	for i, a := range st.arcs {
		if _, err := ds.InsertArc(&store.Arc{SentenceID: sentID, Ordinal: i, Head: a.Head, Dependent: a.Dependent}); err != nil {
			return 0, err
		}
	}
	return sentID, nil
}

func tokenForms(sentence []Token) []string {
	out := make([]string, len(sentence))
	for i, t := range sentence {
		out[i] = string(t)
	}
	return out
}
