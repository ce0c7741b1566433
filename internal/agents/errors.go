package agents

import (
	"errors"
	"fmt"
)

// ReasonNoBudgetRecord is the BudgetConfigurationError reason when neither a
// token budget nor a phase budget exists for the venture.
const ReasonNoBudgetRecord = "NO_BUDGET_RECORD"

// InstantiationError is the closed set of permanent instantiation failures:
// *VentureRequiredError, *BudgetExhaustedError and *BudgetConfigurationError.
// The unexported method keeps other packages from adding variants, so a type
// switch over the three is exhaustive.
//
// None of them is retryable. They stay failed until someone outside this
// process fixes the venture or its budget.
type InstantiationError interface {
	error
	Retryable() bool
	instantiationError()
}

// VentureRequiredError is returned when Create is called without a venture.
type VentureRequiredError struct {
	AgentName string
}

func (e *VentureRequiredError) Error() string {
	return fmt.Sprintf(
		"agents: %s requires a venture ID: legacy ventureless mode has been eliminated and there is no fallback path",
		e.AgentName,
	)
}

// Retryable always reports false.
func (e *VentureRequiredError) Retryable() bool { return false }
func (e *VentureRequiredError) instantiationError() {}

// BudgetExhaustedError is returned when the venture's budget record exists
// but has nothing left (zero or negative).
type BudgetExhaustedError struct {
	AgentID         string
	VentureID       string
	BudgetRemaining int64
}

func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf(
		"agents: budget exhausted for venture %s (agent %s, remaining %d)",
		e.VentureID, e.AgentID, e.BudgetRemaining,
	)
}

// Retryable always reports false.
func (e *BudgetExhaustedError) Retryable() bool { return false }
func (e *BudgetExhaustedError) instantiationError() {}

// BudgetConfigurationError is returned when no budget record of any kind can
// be resolved. Missing configuration counts as zero budget, never unlimited.
type BudgetConfigurationError struct {
	AgentID   string
	VentureID string
	Reason    string
}

func (e *BudgetConfigurationError) Error() string {
	return fmt.Sprintf(
		"agents: no budget configured for venture %s (agent %s, reason %s)",
		e.VentureID, e.AgentID, e.Reason,
	)
}

// Retryable always reports false.
func (e *BudgetConfigurationError) Retryable() bool { return false }
func (e *BudgetConfigurationError) instantiationError() {}

// IsRetryable reports whether a caller may retry after err. The typed
// instantiation failures are permanent; anything else is left to the
// caller's usual retry policy and reported as retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ie InstantiationError
	if errors.As(err, &ie) {
		return ie.Retryable()
	}
	return true
}
