package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"driverdash/internal/amqp"
	"driverdash/internal/auth"
)

// EventPublisher publishes login activity.
type EventPublisher interface {
	PublishLoginEvent(ctx context.Context, e *amqp.LoginEvent) error
}

// LoginService verifies credentials and reports login activity.
type LoginService struct {
	verifier  auth.Verifier
	publisher EventPublisher
}

// NewLoginService creates a login service. publisher may be nil.
func NewLoginService(verifier auth.Verifier, publisher EventPublisher) *LoginService {
	return &LoginService{verifier: verifier, publisher: publisher}
}

// Login checks the credentials. Activity is published best-effort and never
// changes the outcome.
func (s *LoginService) Login(ctx context.Context, id, secret, clientIP string) (auth.Driver, error) {
	d, err := s.verifier.Verify(ctx, id, secret)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		s.publish(ctx, id, amqp.OutcomeFailure, clientIP)
		return auth.Driver{}, err
	case err != nil:
		return auth.Driver{}, fmt.Errorf("verify credentials: %w", err)
	}
	s.publish(ctx, d.ID, amqp.OutcomeSuccess, clientIP)
	return d, nil
}

// Logout reports that a driver signed out.
func (s *LoginService) Logout(ctx context.Context, driverID, clientIP string) {
	s.publish(ctx, driverID, amqp.OutcomeLogout, clientIP)
}

func (s *LoginService) publish(ctx context.Context, driverID string, outcome amqp.LoginOutcome, clientIP string) {
	if s.publisher == nil || driverID == "" {
		return
	}
	if err := s.publisher.PublishLoginEvent(ctx, amqp.NewLoginEvent(driverID, outcome, clientIP)); err != nil {
		slog.WarnContext(ctx, "Failed to publish login event",
			"driver_id", driverID,
			"outcome", outcome,
			"error", err)
	}
}
