// Tracing instrumentation for the factory.
package agents

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rickfelix/ehg-leo/internal/audit"
)

// startCreateSpan starts a span for one Create call.
func (f *Factory) startCreateSpan(ctx context.Context, opts Options) (context.Context, trace.Span) {
	ctx, span := f.tracer.Start(ctx, "agents.create")
	span.SetAttributes(
		attribute.String("agent.id", opts.agentID()),
		attribute.String("agent.type", opts.AgentType),
		attribute.String("venture.id", opts.VentureID),
	)
	return ctx, span
}

// endCreateSpan ends the span with the terminal audit status.
func (f *Factory) endCreateSpan(span trace.Span, status audit.Status, agent *SubAgent, err error) {
	span.SetAttributes(attribute.String("agent.status", string(status)))
	if agent != nil {
		span.SetAttributes(
			attribute.String("agent.instance_id", agent.ID()),
			attribute.Int64("budget.remaining", agent.BudgetRemaining()),
			attribute.String("budget.source", string(agent.BudgetSource())),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(status))
	}
	span.End()
}
