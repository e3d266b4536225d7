package store

// DataStore is the interface for parse-result writes. Both Store (direct
// SQLite) and BatchedStore (in-memory buffering committed in one
// transaction) implement this interface.
type DataStore interface {
	// Inserts return the assigned ID.
	InsertSentence(sent *Sentence) (int64, error)
	InsertToken(tok *Token) (int64, error)
	InsertArc(arc *Arc) (int64, error)

	// SentenceByHash finds a sentence already parsed with the same tokens
	// and oracle.
	SentenceByHash(hash string) (*Sentence, error)
}

// Compile-time check: *Store satisfies DataStore.
var _ DataStore = (*Store)(nil)
