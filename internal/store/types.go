package store

import "time"

// Sentence is one parsed sentence. Hash covers the token forms and the
// oracle that produced the parse.
type Sentence struct {
	ID         int64
	Hash       string
	Oracle     string
	TokenCount int
	ParsedAt   time.Time
}

// Token is one word of a sentence. Positions start at 1; 0 is ROOT and is
// never stored.
type Token struct {
	ID         int64
	SentenceID int64
	Position   int
	Form       string
}

// Arc is a stored dependency. Ordinal is the order in which the parser
// added it; Head and Dependent are sentence positions.
type Arc struct {
	ID         int64
	SentenceID int64
	Ordinal    int
	Head       int
	Dependent  int
}
