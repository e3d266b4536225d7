package depparse

import "github.com/jward/depparse/internal/store"

// Public type aliases for internal store types used in the Engine and
// QueryBuilder API. These are Go type aliases (=), identical to the internal
// types at compile time.

type Store = store.Store
type SentenceRecord = store.Sentence
