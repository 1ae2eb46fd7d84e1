package search

// State identifies a phase of the search loop.
type State int

const (
	// StateInit is the starting state before any oracle call is made.
	StateInit State = iota

	// StateScore embeds the current guess and computes its error.
	StateScore

	// StateDecide records the attempt and evaluates stopping conditions.
	StateDecide

	// StatePropose asks the proposal oracle for the next guess.
	StatePropose

	// StateConverged is the terminal success state: a guess landed within
	// the match threshold.
	StateConverged

	// StateBudgetExceeded is the terminal partial-result state: the cost
	// limit was reached before any guess converged.
	StateBudgetExceeded
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateScore:
		return "SCORE"
	case StateDecide:
		return "DECIDE"
	case StatePropose:
		return "PROPOSE"
	case StateConverged:
		return "CONVERGED"
	case StateBudgetExceeded:
		return "BUDGET_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state ends the loop.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateBudgetExceeded
}
