package depparse

import (
	"context"
	"crypto/sha256"
	"fmt"
)

// Oracle decides the next transition for each configuration in a batch.
//
// Predict must return exactly one transition per configuration, in the same
// order, each legal for its configuration. The decision for a configuration
// must depend only on that configuration, never on the rest of the batch.
// Implementations must not mutate the states they are given.
type Oracle interface {
	Predict(ctx context.Context, batch []*ParseState) ([]Transition, error)
}

// Named is implemented by oracles that can identify themselves. The name
// keys cached parses in the Engine, so it must change whenever the oracle's
// decisions can change. Oracles without a name are never served from the
// cache.
type Named interface {
	Name() string
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, batch []*ParseState) ([]Transition, error)

func (f OracleFunc) Predict(ctx context.Context, batch []*ParseState) ([]Transition, error) {
	return f(ctx, batch)
}

// oracleName returns the oracle's name. Unnamed oracles get their type name
// and ok is false.
func oracleName(o Oracle) (name string, ok bool) {
	if n, isNamed := o.(Named); isNamed {
		if name := n.Name(); name != "" {
			return name, true
		}
	}
	return fmt.Sprintf("%T", o), false
}

// ScriptedOracle replays a pre-recorded transition sequence per sentence.
// Scripts are indexed by ParseState.ID, and the next entry is chosen by
// ParseState.Steps.
type ScriptedOracle struct {
	Scripts [][]Transition
}

var _ Oracle = (*ScriptedOracle)(nil)

// NewScriptedOracle builds a ScriptedOracle from one sequence per sentence.
func NewScriptedOracle(scripts ...[]Transition) *ScriptedOracle {
	return &ScriptedOracle{Scripts: scripts}
}

// Name identifies the oracle by the content of its scripts.
func (o *ScriptedOracle) Name() string {
	return "scripted:" + contentKey(o.Scripts)
}

func (o *ScriptedOracle) Predict(_ context.Context, batch []*ParseState) ([]Transition, error) {
	out := make([]Transition, len(batch))
	for i, s := range batch {
		if s.ID() < 0 || s.ID() >= len(o.Scripts) {
			return nil, fmt.Errorf("scripted oracle: no script for sentence %d", s.ID())
		}
		script := o.Scripts[s.ID()]
		if s.Steps() >= len(script) {
			return nil, fmt.Errorf("scripted oracle: sentence %d ran past its %d-step script", s.ID(), len(script))
		}
		out[i] = script[s.Steps()]
	}
	return out, nil
}

// contentKey is a short content hash used in oracle names.
func contentKey(v any) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(fmt.Sprint(v))))[:12]
}
