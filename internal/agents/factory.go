// Package agents is the single sanctioned way to create a sub-agent.
//
// Factory.Create checks, in order and stopping at the first failure:
//  1. a venture ID was supplied
//  2. a budget record resolves (token budget, else latest phase budget)
//  3. that record still has a positive balance
//
// Each check has its own typed, non-retryable error. Anything unexpected
// (the budget store being unreachable, say) is returned as is. Every call
// writes exactly one terminal audit event before returning.
package agents

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rickfelix/ehg-leo/internal/audit"
	"github.com/rickfelix/ehg-leo/internal/budget"
)

const tracerName = "github.com/rickfelix/ehg-leo/internal/agents"

// Options describes the sub-agent a caller wants.
type Options struct {
	VentureID string `json:"venture_id"`
	AgentID   string `json:"agent_id"`
	AgentName string `json:"agent_name,omitempty"`
	AgentType string `json:"agent_type,omitempty"`
}

// agentID is the identifier used in audit events and errors.
func (o Options) agentID() string {
	if o.AgentID != "" {
		return o.AgentID
	}
	return o.AgentName
}

// displayName is the human-facing name, falling back to the ID.
func (o Options) displayName() string {
	if o.AgentName != "" {
		return o.AgentName
	}
	return o.AgentID
}

// Factory creates budget-validated sub-agents.
// A Factory holds no mutable state and may be shared between goroutines.
type Factory struct {
	budgets     budget.Store
	sink        audit.Sink
	logger      *slog.Logger
	now         func() time.Time
	newID       func() string
	tracer      trace.Tracer
	emitStarted bool
}

// Option configures a Factory.
type Option func(*Factory)

// WithLogger sets the logger used for audit-sink failures and outcomes.
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithClock replaces time.Now for event timestamps and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		if now != nil {
			f.now = now
		}
	}
}

// WithStartedEvents makes Create write a STARTED event before any check.
func WithStartedEvents(on bool) Option {
	return func(f *Factory) { f.emitStarted = on }
}

// WithTracer overrides the global OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(f *Factory) {
		if t != nil {
			f.tracer = t
		}
	}
}

// NewFactory creates a Factory reading budgets from budgets and writing
// audit events to sink.
func NewFactory(budgets budget.Store, sink audit.Sink, opts ...Option) *Factory {
	f := &Factory{
		budgets: budgets,
		sink:    sink,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create validates the venture and its budget and returns a new SubAgent.
//
// On success the returned instance has BudgetValidated() == true and its
// budget was positive when checked. Nothing here holds the budget between
// that check and any later spend.
func (f *Factory) Create(ctx context.Context, opts Options) (agent *SubAgent, err error) {
	ctx, span := f.startCreateSpan(ctx, opts)
	var status audit.Status
	defer func() { f.endCreateSpan(span, status, agent, err) }()

	if f.emitStarted {
		f.record(ctx, f.event(opts, audit.StatusStarted, nil, ""))
	}

	// 1. Venture presence.
	if !budget.HasVenture(opts.VentureID) {
		status = audit.StatusBlockedNoVenture
		f.record(ctx, f.event(opts, status, nil, ""))
		return nil, &VentureRequiredError{AgentName: opts.displayName()}
	}

	// 2. Budget resolution.
	rec, err := budget.Resolve(ctx, f.budgets, opts.VentureID)
	if err != nil {
		status = audit.StatusFailedError
		f.record(ctx, f.event(opts, status, nil, err.Error()))
		return nil, err
	}
	if rec == nil {
		status = audit.StatusBlockedNoBudgetRecord
		f.record(ctx, f.event(opts, status, nil, ReasonNoBudgetRecord))
		return nil, &BudgetConfigurationError{
			AgentID:   opts.agentID(),
			VentureID: opts.VentureID,
			Reason:    ReasonNoBudgetRecord,
		}
	}

	// 3. Budget positivity.
	if budget.Exhausted(rec) {
		status = audit.StatusBlockedBudgetExhausted
		f.record(ctx, f.event(opts, status, rec, ""))
		return nil, &BudgetExhaustedError{
			AgentID:         opts.agentID(),
			VentureID:       opts.VentureID,
			BudgetRemaining: rec.Remaining,
		}
	}

	// 4. Success.
	status = audit.StatusSucceeded
	agent = newSubAgent(f.newID(), opts, rec, f.now())
	f.record(ctx, f.event(opts, status, rec, ""))
	f.logger.Info("sub-agent created",
		"agent_id", agent.AgentID(),
		"instance_id", agent.ID(),
		"venture_id", agent.VentureID(),
		"budget_remaining", rec.Remaining,
		"budget_source", string(rec.Source),
	)
	return agent, nil
}

// event builds an audit event for opts. rec, when non-nil, supplies the
// budget snapshot.
func (f *Factory) event(opts Options, status audit.Status, rec *budget.Record, errMsg string) audit.Event {
	e := audit.Event{
		Type:      audit.EventType,
		Severity:  severityFor(status),
		AgentID:   opts.agentID(),
		Status:    status,
		Error:     errMsg,
		Timestamp: f.now().UTC(),
	}
	// The event carries a null venture whenever none was supplied.
	if budget.HasVenture(opts.VentureID) {
		venture := opts.VentureID
		e.VentureID = &venture
	}
	if rec != nil {
		remaining := rec.Remaining
		e.BudgetRemaining = &remaining
		e.BudgetSource = string(rec.Source)
	}
	return e
}

// record appends e to the sink. A sink failure is logged and swallowed so
// it never replaces the result the caller is about to get.
func (f *Factory) record(ctx context.Context, e audit.Event) {
	if f.sink == nil {
		f.logger.Warn("audit sink not configured; event dropped",
			"status", string(e.Status), "agent_id", e.AgentID)
		return
	}
	if err := f.sink.Append(ctx, e); err != nil {
		f.logger.Warn("audit event not recorded",
			"status", string(e.Status),
			"agent_id", e.AgentID,
			"error", err,
		)
	}
}

func severityFor(s audit.Status) audit.Severity {
	switch s {
	case audit.StatusStarted, audit.StatusSucceeded:
		return audit.SeverityInfo
	default:
		return audit.SeverityError
	}
}
