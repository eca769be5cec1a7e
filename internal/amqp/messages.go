package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LoginOutcome is the result of a login attempt.
type LoginOutcome string

const (
	OutcomeSuccess LoginOutcome = "success"
	OutcomeFailure LoginOutcome = "failure"
	OutcomeLogout  LoginOutcome = "logout"
)

// LoginEvent records one authentication activity of a driver.
type LoginEvent struct {
	ID        uuid.UUID    `json:"id"`
	DriverID  string       `json:"driver_id"`
	Outcome   LoginOutcome `json:"outcome"`
	ClientIP  string       `json:"client_ip,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// NewLoginEvent creates an event with a fresh ID stamped now.
func NewLoginEvent(driverID string, outcome LoginOutcome, clientIP string) *LoginEvent {
	return &LoginEvent{
		ID:        uuid.New(),
		DriverID:  driverID,
		Outcome:   outcome,
		ClientIP:  clientIP,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LoginEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LoginEventFromJSON decodes and validates an event.
func LoginEventFromJSON(data []byte) (*LoginEvent, error) {
	var e LoginEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.ID == uuid.Nil {
		return nil, fmt.Errorf("login event without id")
	}
	switch e.Outcome {
	case OutcomeSuccess, OutcomeFailure, OutcomeLogout:
	default:
		return nil, fmt.Errorf("unknown login outcome %q", e.Outcome)
	}
	return &e, nil
}
