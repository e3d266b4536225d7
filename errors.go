package depparse

import (
	"errors"
	"fmt"
)

var (
	// ErrPreconditionViolation is returned when a transition is applied to a
	// configuration for which it is not legal.
	ErrPreconditionViolation = errors.New("transition precondition violated")

	// ErrOracleContractViolation is returned when an oracle answers with the
	// wrong number of transitions or with a transition that is illegal for
	// its configuration.
	ErrOracleContractViolation = errors.New("oracle contract violated")

	ErrInvalidBatchSize  = errors.New("batch size must be positive")
	ErrUnknownTransition = errors.New("unknown transition")

	// ErrNonProjective is returned by GoldOracle when no transition can
	// reach the gold tree from the current configuration.
	ErrNonProjective = errors.New("gold tree is not reachable by arc-standard transitions")
)

// TransitionError describes a rejected transition. The configuration it was
// applied to is left untouched.
type TransitionError struct {
	Transition Transition
	StackLen   int
	BufferLen  int
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s with stack=%d buffer=%d",
		ErrPreconditionViolation, e.Transition, e.StackLen, e.BufferLen)
}

func (e *TransitionError) Unwrap() error {
	return ErrPreconditionViolation
}

// OracleContractError locates a contract violation within a parse session.
// Position is the index in the round's batch; SentenceID is the index in the
// caller's input (-1 when the violation is a count mismatch).
type OracleContractError struct {
	Round      int
	Position   int
	SentenceID int
	Err        error
}

func (e *OracleContractError) Error() string {
	if e.SentenceID < 0 {
		return fmt.Sprintf("%s: round %d: %v", ErrOracleContractViolation, e.Round, e.Err)
	}
	return fmt.Sprintf("%s: round %d, batch position %d, sentence %d: %v",
		ErrOracleContractViolation, e.Round, e.Position, e.SentenceID, e.Err)
}

// Unwrap exposes both the contract sentinel and the underlying cause.
func (e *OracleContractError) Unwrap() []error {
	return []error{ErrOracleContractViolation, e.Err}
}
