package main

import (
	"time"

	"github.com/jward/depparse"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIParse is a JSON-friendly stored parse.
type CLIParse struct {
	ID       int64     `json:"id"`
	Oracle   string    `json:"oracle"`
	ParsedAt time.Time `json:"parsed_at"`
	Tokens   []string  `json:"tokens"`
	Arcs     []CLIArc  `json:"arcs"`
}

// CLIArc carries both the token forms and the positions of an arc.
type CLIArc struct {
	Head         string `json:"head"`
	Dependent    string `json:"dependent"`
	HeadPos      int    `json:"head_pos"`
	DependentPos int    `json:"dependent_pos"`
}

// CLISentence is a treebank listing row.
type CLISentence struct {
	ID         int64     `json:"id"`
	Oracle     string    `json:"oracle"`
	TokenCount int       `json:"token_count"`
	ParsedAt   time.Time `json:"parsed_at"`
}

// CLIDeleted reports a removed parse.
type CLIDeleted struct {
	ID int64 `json:"id"`
}

func toCLIParse(ps *depparse.ParsedSentence) CLIParse {
	out := CLIParse{
		ID:       ps.ID,
		Oracle:   ps.Oracle,
		ParsedAt: ps.ParsedAt,
		Tokens:   make([]string, len(ps.Tokens)),
		Arcs:     make([]CLIArc, len(ps.Arcs)),
	}
	for i, t := range ps.Tokens {
		out.Tokens[i] = string(t)
	}
	for i, a := range ps.Arcs {
		out.Arcs[i] = CLIArc{
			Head:         string(a.Head),
			Dependent:    string(a.Dependent),
			HeadPos:      ps.IndexedArcs[i].Head,
			DependentPos: ps.IndexedArcs[i].Dependent,
		}
	}
	return out
}

func toCLISentence(s *depparse.SentenceRecord) CLISentence {
	return CLISentence{
		ID:         s.ID,
		Oracle:     s.Oracle,
		TokenCount: s.TokenCount,
		ParsedAt:   s.ParsedAt,
	}
}
