package diplomacy

import "fmt"

// InvalidGameState signals malformed input to Adjudicate: a referenced id
// that does not resolve, a piece with no territory, an order for a piece
// that does not exist. The caller is expected to have validated the state
// before calling; this error means it didn't.
type InvalidGameState struct {
	Reason string
}

func (e *InvalidGameState) Error() string {
	return fmt.Sprintf("invalid game state: %s", e.Reason)
}

// AdjudicatorBug signals an internal invariant violation: a resolver
// decision written twice with conflicting values, or a fixed-point that
// failed to converge after the paradox pass. Should be unreachable; no
// function in this package returns it.
type AdjudicatorBug struct {
	Details string
}

func (e *AdjudicatorBug) Error() string {
	return fmt.Sprintf("adjudicator bug: %s", e.Details)
}
