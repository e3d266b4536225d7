package store

import "fmt"

// CommitBatch inserts all buffered data from a BatchedStore into SQLite
// within a single transaction. Fake (negative) IDs are remapped to real
// (positive) IDs, and sentence references within the batch are rewritten
// using the fakeToReal mapping. It returns that mapping so callers holding
// fake sentence IDs can translate them.
//
// Scheduled deletes run first, then inserts in FK order:
//  1. Sentences
//  2. Tokens (depend on sentence_id)
//  3. Arcs (depend on sentence_id)
func (s *Store) CommitBatch(batch *BatchedStore) (map[int64]int64, error) {
	batch.mu.Lock()
	defer batch.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("commit batch: begin: %w", err)
	}
	defer tx.Rollback()

	fakeToReal := make(map[int64]int64, len(batch.Sentences))
	resolve := func(id int64) (int64, error) {
		if id >= 0 {
			return id, nil
		}
		realID, ok := fakeToReal[id]
		if !ok {
			return 0, fmt.Errorf("unknown fake sentence id %d", id)
		}
		return realID, nil
	}

	for _, id := range batch.Deletes {
		if err := deleteSentence(tx, id); err != nil {
			return nil, fmt.Errorf("commit batch: sentence %d: %w", id, err)
		}
	}

	// 1. Sentences
	for _, sent := range batch.Sentences {
		realID, err := insertSentence(tx, &sent)
		if err != nil {
			return nil, fmt.Errorf("commit batch: sentence %s: %w", sent.Hash, err)
		}
		fakeToReal[sent.ID] = realID
	}

	// 2. Tokens
	for _, tok := range batch.Tokens {
		sentID, err := resolve(tok.SentenceID)
		if err != nil {
			return nil, fmt.Errorf("commit batch: token %q: %w", tok.Form, err)
		}
		tok.SentenceID = sentID
		if _, err := insertToken(tx, &tok); err != nil {
			return nil, fmt.Errorf("commit batch: token %q: %w", tok.Form, err)
		}
	}

	// 3. Arcs
	for _, arc := range batch.Arcs {
		sentID, err := resolve(arc.SentenceID)
		if err != nil {
			return nil, fmt.Errorf("commit batch: arc %d: %w", arc.Ordinal, err)
		}
		arc.SentenceID = sentID
		if _, err := insertArc(tx, &arc); err != nil {
			return nil, fmt.Errorf("commit batch: arc %d: %w", arc.Ordinal, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit batch: %w", err)
	}
	return fakeToReal, nil
}
