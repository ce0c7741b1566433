// Package audit records every attempt to instantiate a sub-agent.
//
// Events are append-only. Sinks never mutate or delete what they were given,
// and the factory writes exactly one terminal event per attempt (optionally
// preceded by a STARTED event for the same attempt).
//
// BLOCKED_NO_BUDGET_RECORD extends the base status set (STARTED, SUCCEEDED,
// BLOCKED_NO_VENTURE, BLOCKED_BUDGET_EXHAUSTED, FAILED_ERROR). It marks a
// venture with no budget configured, which the base set would log as
// FAILED_ERROR. Consumers matching on the base set must accept it.
package audit

import (
	"context"
	"time"
)

// EventType is fixed for instantiation events.
const EventType = "AGENT_INSTANTIATION"

// Severity of an audit event.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Status is the outcome an event records.
type Status string

const (
	StatusStarted                Status = "STARTED"
	StatusSucceeded              Status = "SUCCEEDED"
	StatusBlockedNoVenture       Status = "BLOCKED_NO_VENTURE"
	StatusBlockedBudgetExhausted Status = "BLOCKED_BUDGET_EXHAUSTED"
	StatusBlockedNoBudgetRecord  Status = "BLOCKED_NO_BUDGET_RECORD" // extension, see package doc
	StatusFailedError            Status = "FAILED_ERROR"
)

// Terminal reports whether s ends an attempt.
func (s Status) Terminal() bool {
	return s != StatusStarted && s != ""
}

// Event is one audit record for one instantiation attempt.
type Event struct {
	Type            string    `json:"event_type"`
	Severity        Severity  `json:"severity"`
	AgentID         string    `json:"agent_id"`
	VentureID       *string   `json:"venture_id"` // nil only for BLOCKED_NO_VENTURE
	Status          Status    `json:"status"`
	BudgetRemaining *int64    `json:"budget_remaining,omitempty"`
	BudgetSource    string    `json:"budget_source,omitempty"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Sink receives audit events. Implementations must be safe for concurrent
// use by independent Create calls.
type Sink interface {
	Append(ctx context.Context, e Event) error
}
