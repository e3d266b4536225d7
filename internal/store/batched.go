package store

import "sync"

// BatchedStore buffers parse-result inserts in memory using fake (negative)
// IDs. It implements DataStore so the engine can write a whole parse session
// without touching SQLite until CommitBatch.
//
// Thread safety: the mutex protects fake ID allocation and slice appends.
// SentenceByHash checks the buffer first, then passes through to the
// underlying Store.
type BatchedStore struct {
	store *Store // for read passthrough
	mu    sync.Mutex

	Sentences []Sentence
	Tokens    []Token
	Arcs      []Arc
	Deletes   []int64 // committed sentence IDs to remove before inserting

	nextFakeID int64 // starts at -1, decrements
}

// Compile-time check: *BatchedStore satisfies DataStore.
var _ DataStore = (*BatchedStore)(nil)

// NewBatchedStore creates a BatchedStore backed by the given Store for read queries.
func NewBatchedStore(s *Store) *BatchedStore {
	return &BatchedStore{
		store:      s,
		nextFakeID: -1,
	}
}

func (b *BatchedStore) allocFakeID() int64 {
	id := b.nextFakeID
	b.nextFakeID--
	return id
}

func (b *BatchedStore) InsertSentence(sent *Sentence) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	sent.ID = fakeID
	b.Sentences = append(b.Sentences, *sent)
	return fakeID, nil
}

func (b *BatchedStore) InsertToken(tok *Token) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	tok.ID = fakeID
	b.Tokens = append(b.Tokens, *tok)
	return fakeID, nil
}

func (b *BatchedStore) InsertArc(arc *Arc) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fakeID := b.allocFakeID()
	arc.ID = fakeID
	b.Arcs = append(b.Arcs, *arc)
	return fakeID, nil
}

// DeleteSentence schedules removal of a committed sentence with its tokens
// and arcs. Deletes run before the buffered inserts, so a replacement row
// may reuse the deleted sentence's hash.
func (b *BatchedStore) DeleteSentence(id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Deletes = append(b.Deletes, id)
}

// SentenceByHash returns a buffered sentence with the hash if there is one,
// otherwise the committed one from the database.
func (b *BatchedStore) SentenceByHash(hash string) (*Sentence, error) {
	b.mu.Lock()
	for i := range b.Sentences {
		if b.Sentences[i].Hash == hash {
			sent := b.Sentences[i]
			b.mu.Unlock()
			return &sent, nil
		}
	}
	b.mu.Unlock()
	return b.store.SentenceByHash(hash)
}

// Len returns the number of buffered rows.
func (b *BatchedStore) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Sentences) + len(b.Tokens) + len(b.Arcs)
}
