package agent

import "errors"

// Sentinel errors returned by pipeline operations.
var (
	ErrBudgetExhausted = errors.New("agent: budget exhausted")
)
