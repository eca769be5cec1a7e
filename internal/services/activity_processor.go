package services

import (
	"context"
	"fmt"
	"log/slog"

	"driverdash/internal/amqp"
)

// EventRecorder persists login activity.
type EventRecorder interface {
	RecordLoginEvent(ctx context.Context, e amqp.LoginEvent) error
}

// ActivityProcessor handles login events consumed by the worker.
type ActivityProcessor struct {
	recorder EventRecorder
	logger   *slog.Logger
}

// NewActivityProcessor creates a processor. A nil recorder only logs events.
func NewActivityProcessor(recorder EventRecorder, logger *slog.Logger) *ActivityProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityProcessor{recorder: recorder, logger: logger}
}

// Handle logs and records one event. A returned error requeues the message.
func (p *ActivityProcessor) Handle(ctx context.Context, e *amqp.LoginEvent) error {
	level := slog.LevelInfo
	if e.Outcome == amqp.OutcomeFailure {
		level = slog.LevelWarn
	}
	p.logger.Log(ctx, level, "Login activity",
		"id", e.ID,
		"driver_id", e.DriverID,
		"outcome", e.Outcome,
		"client_ip", e.ClientIP,
		"at", e.Timestamp)

	if p.recorder == nil {
		return nil
	}
	if err := p.recorder.RecordLoginEvent(ctx, *e); err != nil {
		return fmt.Errorf("record login event %s: %w", e.ID, err)
	}
	return nil
}
