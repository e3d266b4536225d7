package depparse

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DefaultBatchSize is the number of configurations sent to the oracle per
// round when WithBatchSize is not given.
const DefaultBatchSize = 64

// BatchParser parses many sentences at once, asking the oracle for one
// transition per unfinished sentence per round.
type BatchParser struct {
	oracle    Oracle
	batchSize int
	workers   int
	logger    *slog.Logger
}

// BatchOption configures a BatchParser.
type BatchOption func(*BatchParser)

// WithBatchSize sets how many configurations each oracle call receives.
func WithBatchSize(n int) BatchOption {
	return func(p *BatchParser) {
		p.batchSize = n
	}
}

// WithWorkers applies each round's transitions with up to n goroutines.
// Values below 2 apply them serially.
func WithWorkers(n int) BatchOption {
	return func(p *BatchParser) {
		p.workers = n
	}
}

// WithLogger sets the logger for per-round debug records.
func WithLogger(l *slog.Logger) BatchOption {
	return func(p *BatchParser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewBatchParser creates a BatchParser driven by oracle.
func NewBatchParser(oracle Oracle, opts ...BatchOption) *BatchParser {
	p := &BatchParser{
		oracle:    oracle,
		batchSize: DefaultBatchSize,
		workers:   1,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseBatch parses sentences with oracle, batchSize configurations per
// oracle call. Result i holds the arcs of sentences[i].
func ParseBatch(ctx context.Context, sentences [][]Token, oracle Oracle, batchSize int) ([][]Arc, error) {
	return NewBatchParser(oracle, WithBatchSize(batchSize)).Parse(ctx, sentences)
}

// Parse runs every sentence to a terminal configuration and returns the arcs
// in input order.
func (p *BatchParser) Parse(ctx context.Context, sentences [][]Token) ([][]Arc, error) {
	states, err := p.ParseStates(ctx, sentences)
	if err != nil {
		return nil, err
	}
	out := make([][]Arc, len(states))
	for i, s := range states {
		out[i] = s.Arcs()
	}
	return out, nil
}

// ParseStates is Parse returning the final configurations. State i has ID i.
//
// Each round takes the first batchSize unfinished states in input order,
// asks the oracle once, validates the whole answer, applies it, and keeps
// the states that are still unfinished for the next round. Sentences that
// start terminal (empty ones) never reach the oracle.
func (p *BatchParser) ParseStates(ctx context.Context, sentences [][]Token) ([]*ParseState, error) {
	return p.parseStates(ctx, nil, sentences)
}

// parseStates runs the session with explicit state IDs; ids[i] identifies
// sentences[i] to the oracle. A nil ids uses input positions.
func (p *BatchParser) parseStates(ctx context.Context, ids []int, sentences [][]Token) ([]*ParseState, error) {
	if p.batchSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBatchSize, p.batchSize)
	}

	states := make([]*ParseState, len(sentences))
	pool := make([]*ParseState, 0, len(sentences))
	for i, sentence := range sentences {
		id := i
		if ids != nil {
			id = ids[i]
		}
		states[i] = newParseState(id, sentence)
		if !states[i].IsTerminal() {
			pool = append(pool, states[i])
		}
	}

	round := 0
	for ; len(pool) > 0; round++ {
		n := min(p.batchSize, len(pool))
		batch := pool[:n:n]

		transitions, err := p.oracle.Predict(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("round %d: oracle: %w", round, err)
		}
		if err := validateRound(round, batch, transitions); err != nil {
			return nil, err
		}
		if err := p.apply(round, batch, transitions); err != nil {
			return nil, err
		}

		pool = retire(pool)
		p.logger.Debug("parse round",
			"round", round,
			"batch", n,
			"pool", len(pool),
		)
	}

	p.logger.Debug("parse complete", "sentences", len(sentences), "rounds", round)
	return states, nil
}

// validateRound checks the oracle's answer before any state is touched.
func validateRound(round int, batch []*ParseState, transitions []Transition) error {
	if len(transitions) != len(batch) {
		return &OracleContractError{
			Round:      round,
			Position:   -1,
			SentenceID: -1,
			Err:        fmt.Errorf("got %d transitions for %d configurations", len(transitions), len(batch)),
		}
	}
	for i, t := range transitions {
		s := batch[i]
		if !s.Legal(t) {
			return &OracleContractError{
				Round:      round,
				Position:   i,
				SentenceID: s.ID(),
				Err:        &TransitionError{Transition: t, StackLen: len(s.stack), BufferLen: s.bufferLen()},
			}
		}
	}
	return nil
}

// apply applies transitions[i] to batch[i]. With more than one worker the
// batch is shared out over a channel; each state is owned by one worker.
func (p *BatchParser) apply(round int, batch []*ParseState, transitions []Transition) error {
	errs := make([]error, len(batch))

	numWorkers := min(p.workers, len(batch))
	if numWorkers < 2 {
		for i, s := range batch {
			errs[i] = s.Apply(transitions[i])
		}
	} else {
		workCh := make(chan int, len(batch))
		for i := range batch {
			workCh <- i
		}
		close(workCh)

		var wg sync.WaitGroup
		for range numWorkers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range workCh {
					errs[i] = batch[i].Apply(transitions[i])
				}
			}()
		}
		wg.Wait()
	}

	for i, err := range errs {
		if err != nil {
			return &OracleContractError{Round: round, Position: i, SentenceID: batch[i].ID(), Err: err}
		}
	}
	return nil
}

// retire returns the unfinished states of pool in their original order.
func retire(pool []*ParseState) []*ParseState {
	next := make([]*ParseState, 0, len(pool))
	for _, s := range pool {
		if !s.IsTerminal() {
			next = append(next, s)
		}
	}
	return next
}
