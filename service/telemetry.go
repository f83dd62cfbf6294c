package service

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/ludo-technologies/pygrade/domain"
)

// Package-level tracer and meter for tool runs.
var (
	tracer = otel.Tracer("pygrade.service")
	meter  = otel.Meter("pygrade.service")
)

// Metrics for tool invocations and report gathering.
var (
	invokeLatency metric.Float64Histogram
	invokeTotal   metric.Int64Counter
	gatherLatency metric.Float64Histogram
	sectionsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		invokeLatency, err = meter.Float64Histogram(
			"pygrade_tool_duration_seconds",
			metric.WithDescription("Duration of external tool invocations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		invokeTotal, err = meter.Int64Counter(
			"pygrade_tool_invocations_total",
			metric.WithDescription("Total number of external tool invocations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		gatherLatency, err = meter.Float64Histogram(
			"pygrade_gather_duration_seconds",
			metric.WithDescription("Duration of a full report gather"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		sectionsTotal, err = meter.Int64Counter(
			"pygrade_report_sections_total",
			metric.WithDescription("Report sections produced, by tool and status"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func startInvokeSpan(ctx context.Context, inv domain.Invocation) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ProcessInvoker.Execute",
		trace.WithAttributes(
			attribute.String("tool.name", string(inv.Tool)),
			attribute.String("tool.command", inv.Command),
		),
	)
}

func setInvokeSpanResult(span trace.Span, exitCode int, empty bool, err error) {
	span.SetAttributes(
		attribute.Int("tool.exit_code", exitCode),
		attribute.Bool("tool.empty", empty),
		attribute.Bool("tool.success", err == nil),
	)
	if err != nil {
		span.RecordError(err)
	}
}

func recordInvokeMetrics(ctx context.Context, tool domain.ToolName, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("tool", string(tool)),
		attribute.Bool("success", success),
	)

	invokeLatency.Record(ctx, duration.Seconds(), attrs)
	invokeTotal.Add(ctx, 1, attrs)
}

func startGatherSpan(ctx context.Context, root string, tools int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "ReportAggregator.Gather",
		trace.WithAttributes(
			attribute.String("gather.root", root),
			attribute.Int("gather.tools", tools),
		),
	)
}

func recordGatherMetrics(ctx context.Context, duration time.Duration, report *domain.Report) {
	if err := initMetrics(); err != nil {
		return
	}

	gatherLatency.Record(ctx, duration.Seconds())
	for _, section := range report.Sections() {
		sectionsTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("tool", string(section.Tool)),
			attribute.String("status", string(section.Status)),
		))
	}
}
