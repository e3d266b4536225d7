package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the treebank tables.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SchemaVersion is the table layout Migrate creates. It is recorded in the
// metadata table under "schema_version".
const SchemaVersion = "1"

// Migrate creates all tables and indexes and records SchemaVersion. It fails
// on a database written with a different schema version. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	v, err := s.GetMetadata("schema_version")
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	switch v {
	case SchemaVersion:
		return nil
	case "":
		if err := s.SetMetadata("schema_version", SchemaVersion); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		return nil
	}
	return fmt.Errorf("migrate: treebank schema version %s, want %s", v, SchemaVersion)
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS sentences (
  id              INTEGER PRIMARY KEY,
  hash            TEXT NOT NULL UNIQUE,
  oracle          TEXT NOT NULL,
  token_count     INTEGER NOT NULL,
  parsed_at       TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tokens (
  id              INTEGER PRIMARY KEY,
  sentence_id     INTEGER NOT NULL REFERENCES sentences(id),
  position        INTEGER NOT NULL,
  form            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS arcs (
  id              INTEGER PRIMARY KEY,
  sentence_id     INTEGER NOT NULL REFERENCES sentences(id),
  ordinal         INTEGER NOT NULL,
  head            INTEGER NOT NULL,
  dependent       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT
);

CREATE INDEX IF NOT EXISTS idx_sentences_oracle ON sentences(oracle);
CREATE INDEX IF NOT EXISTS idx_tokens_sentence ON tokens(sentence_id, position);
CREATE INDEX IF NOT EXISTS idx_arcs_sentence ON arcs(sentence_id, ordinal);
CREATE INDEX IF NOT EXISTS idx_arcs_head ON arcs(sentence_id, head);
`

// DeleteSentenceData transactionally removes a sentence with its tokens and
// arcs. Child rows go first to respect FK constraints.
func (s *Store) DeleteSentenceData(sentenceID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSentence(tx, sentenceID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteSentence(db execer, sentenceID int64) error {
	for _, q := range []string{
		"DELETE FROM arcs WHERE sentence_id = ?",
		"DELETE FROM tokens WHERE sentence_id = ?",
		"DELETE FROM sentences WHERE id = ?",
	} {
		if _, err := db.Exec(q, sentenceID); err != nil {
			return fmt.Errorf("delete sentence data: %w", err)
		}
	}
	return nil
}

// GetMetadata returns the value stored under key, or "" when absent.
func (s *Store) GetMetadata(key string) (string, error) {
	var value sql.NullString
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get metadata %s: %w", key, err)
	}
	return value.String, nil
}

// SetMetadata upserts a metadata value.
func (s *Store) SetMetadata(key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO metadata (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set metadata %s: %w", key, err)
	}
	return nil
}
