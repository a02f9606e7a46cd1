package checkout

import (
	"github.com/google/uuid"

	"github.com/portal/backend/internal/domain/shared"
)

// Event types for the checkout session aggregate
const (
	EventSessionStarted   = "checkout.session_started"
	EventStepAdvanced     = "checkout.step_advanced"
	EventSessionFailed    = "checkout.session_failed"
	EventSessionCompleted = "checkout.session_completed"
	EventSessionAbandoned = "checkout.session_abandoned"
)

// SessionStartedEvent fires when a new checkout session is created
type SessionStartedEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID
}

func NewSessionStartedEvent(sessionID, userID uuid.UUID) *SessionStartedEvent {
	return &SessionStartedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSessionStarted, sessionID),
		UserID:          userID,
	}
}

// StepAdvancedEvent fires when the session moves to the next checkout step
type StepAdvancedEvent struct {
	shared.BaseDomainEvent
	From Step
	To   Step
}

func NewStepAdvancedEvent(sessionID uuid.UUID, from, to Step) *StepAdvancedEvent {
	return &StepAdvancedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventStepAdvanced, sessionID),
		From:            from,
		To:              to,
	}
}

// SessionFailedEvent fires when a session gives up on the current step
type SessionFailedEvent struct {
	shared.BaseDomainEvent
	Step    Step
	Message string
}

func NewSessionFailedEvent(sessionID uuid.UUID, step Step, message string) *SessionFailedEvent {
	return &SessionFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSessionFailed, sessionID),
		Step:            step,
		Message:         message,
	}
}

// SessionCompletedEvent fires when checkout finishes and an order exists
type SessionCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID uuid.UUID
}

func NewSessionCompletedEvent(sessionID, orderID uuid.UUID) *SessionCompletedEvent {
	return &SessionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSessionCompleted, sessionID),
		OrderID:         orderID,
	}
}

// SessionAbandonedEvent fires when a session is closed without an order
type SessionAbandonedEvent struct {
	shared.BaseDomainEvent
	Step Step
}

func NewSessionAbandonedEvent(sessionID uuid.UUID, step Step) *SessionAbandonedEvent {
	return &SessionAbandonedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSessionAbandoned, sessionID),
		Step:            step,
	}
}
