// Package depparse implements arc-standard transition-based dependency
// parsing driven by an external decision oracle.
//
// # Configurations
//
// A [ParseState] holds one sentence's stack, buffer and arcs. The stack
// starts as [ROOT] and the buffer as the whole sentence. Three transitions
// edit it:
//
//   - [Shift] moves the front of the buffer onto the stack.
//   - [LeftArc] makes the top of the stack the head of the element below it
//     and removes that element.
//   - [RightArc] makes the element below the top the head of the top and
//     pops the top.
//
// A configuration is terminal once the stack holds fewer than two elements
// and the buffer is empty. [ParseState.Apply] rejects illegal transitions
// with [ErrPreconditionViolation] without modifying the state.
//
// # Batched parsing
//
// [BatchParser] keeps many configurations in flight and asks the [Oracle]
// for one transition per configuration per round, so a model can score a
// whole batch at once:
//
//	arcs, err := depparse.ParseBatch(ctx, sentences, oracle, 64)
//
// Results come back in input order and do not depend on the batch size. An
// oracle that answers with the wrong number of transitions or an illegal
// one fails the session with [ErrOracleContractViolation].
//
// # Oracles
//
// Any type with a Predict method is an oracle. The package provides
// [ScriptedOracle] (replays recorded transitions), [GoldOracle] (derives
// transitions from gold heads), [ScriptOracle] (runs a Risor script per
// configuration) and [OracleFunc].
//
// # Treebank
//
// [Engine] wraps a BatchParser with a SQLite treebank. Sentences already
// parsed by the same oracle are read back rather than parsed again:
//
//	e, err := depparse.New("treebank.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	ids, err := e.ParseSentences(ctx, oracle, sentences)
//	parse, err := e.Query().Sentence(ids[0])
package depparse
