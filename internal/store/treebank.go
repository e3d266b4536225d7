package store

import (
	"database/sql"
	"fmt"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// --- Sentence operations ---

func (s *Store) InsertSentence(sent *Sentence) (int64, error) {
	id, err := insertSentence(s.db, sent)
	if err != nil {
		return 0, err
	}
	sent.ID = id
	return id, nil
}

func insertSentence(db execer, sent *Sentence) (int64, error) {
	res, err := db.Exec(
		"INSERT INTO sentences (hash, oracle, token_count, parsed_at) VALUES (?, ?, ?, ?)",
		sent.Hash, sent.Oracle, sent.TokenCount, sent.ParsedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert sentence: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const sentenceColumns = "id, hash, oracle, token_count, parsed_at"

func scanSentence(row interface{ Scan(...any) error }) (*Sentence, error) {
	sent := &Sentence{}
	if err := row.Scan(&sent.ID, &sent.Hash, &sent.Oracle, &sent.TokenCount, &sent.ParsedAt); err != nil {
		return nil, err
	}
	return sent, nil
}

func (s *Store) SentenceByHash(hash string) (*Sentence, error) {
	sent, err := scanSentence(s.db.QueryRow(
		"SELECT "+sentenceColumns+" FROM sentences WHERE hash = ?", hash,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sentence by hash: %w", err)
	}
	return sent, nil
}

func (s *Store) SentenceByID(id int64) (*Sentence, error) {
	sent, err := scanSentence(s.db.QueryRow(
		"SELECT "+sentenceColumns+" FROM sentences WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sentence by id: %w", err)
	}
	return sent, nil
}

// Sentences returns every stored sentence ordered by ID.
func (s *Store) Sentences() ([]*Sentence, error) {
	rows, err := s.db.Query("SELECT " + sentenceColumns + " FROM sentences ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("sentences: %w", err)
	}
	defer rows.Close()
	var out []*Sentence
	for rows.Next() {
		sent, err := scanSentence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sentence: %w", err)
		}
		out = append(out, sent)
	}
	return out, rows.Err()
}

// --- Token operations ---

func (s *Store) InsertToken(tok *Token) (int64, error) {
	id, err := insertToken(s.db, tok)
	if err != nil {
		return 0, err
	}
	tok.ID = id
	return id, nil
}

func insertToken(db execer, tok *Token) (int64, error) {
	res, err := db.Exec(
		"INSERT INTO tokens (sentence_id, position, form) VALUES (?, ?, ?)",
		tok.SentenceID, tok.Position, tok.Form,
	)
	if err != nil {
		return 0, fmt.Errorf("insert token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// TokensBySentence returns a sentence's tokens ordered by position.
func (s *Store) TokensBySentence(sentenceID int64) ([]*Token, error) {
	rows, err := s.db.Query(
		"SELECT id, sentence_id, position, form FROM tokens WHERE sentence_id = ? ORDER BY position", sentenceID,
	)
	if err != nil {
		return nil, fmt.Errorf("tokens by sentence: %w", err)
	}
	defer rows.Close()
	var out []*Token
	for rows.Next() {
		tok := &Token{}
		if err := rows.Scan(&tok.ID, &tok.SentenceID, &tok.Position, &tok.Form); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		out = append(out, tok)
	}
	return out, rows.Err()
}

// --- Arc operations ---

func (s *Store) InsertArc(arc *Arc) (int64, error) {
	id, err := insertArc(s.db, arc)
	if err != nil {
		return 0, err
	}
	arc.ID = id
	return id, nil
}

func insertArc(db execer, arc *Arc) (int64, error) {
	res, err := db.Exec(
		"INSERT INTO arcs (sentence_id, ordinal, head, dependent) VALUES (?, ?, ?, ?)",
		arc.SentenceID, arc.Ordinal, arc.Head, arc.Dependent,
	)
	if err != nil {
		return 0, fmt.Errorf("insert arc: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ArcsBySentence returns a sentence's arcs in the order the parser added them.
func (s *Store) ArcsBySentence(sentenceID int64) ([]*Arc, error) {
	return s.queryArcs(
		"SELECT id, sentence_id, ordinal, head, dependent FROM arcs WHERE sentence_id = ? ORDER BY ordinal",
		sentenceID,
	)
}

// ArcsByHead returns the arcs whose head is the given position.
func (s *Store) ArcsByHead(sentenceID int64, head int) ([]*Arc, error) {
	return s.queryArcs(
		"SELECT id, sentence_id, ordinal, head, dependent FROM arcs WHERE sentence_id = ? AND head = ? ORDER BY dependent",
		sentenceID, head,
	)
}

// ArcByDependent returns the arc attaching the given position, or nil.
func (s *Store) ArcByDependent(sentenceID int64, dependent int) (*Arc, error) {
	arcs, err := s.queryArcs(
		"SELECT id, sentence_id, ordinal, head, dependent FROM arcs WHERE sentence_id = ? AND dependent = ? ORDER BY ordinal LIMIT 1",
		sentenceID, dependent,
	)
	if err != nil || len(arcs) == 0 {
		return nil, err
	}
	return arcs[0], nil
}

func (s *Store) queryArcs(query string, args ...any) ([]*Arc, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query arcs: %w", err)
	}
	defer rows.Close()
	var out []*Arc
	for rows.Next() {
		a := &Arc{}
		if err := rows.Scan(&a.ID, &a.SentenceID, &a.Ordinal, &a.Head, &a.Dependent); err != nil {
			return nil, fmt.Errorf("scan arc: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
