package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portal/backend/internal/domain/checkout"
	"github.com/portal/backend/internal/domain/shared"
)

// RecoveryAction tells the caller what happens next after a recovery request
type RecoveryAction string

const (
	// ActionCartRetried means cart creation was re-run server side.
	ActionCartRetried RecoveryAction = "cart_retried"
	// ActionResubmitAddresses means the buyer must submit addresses again.
	ActionResubmitAddresses RecoveryAction = "resubmit_addresses"
	// ActionResumePayment means the buyer should re-open the payment widget.
	ActionResumePayment RecoveryAction = "resume_payment"
	// ActionAlreadyCompleted means the session already produced an order.
	ActionAlreadyCompleted RecoveryAction = "already_completed"
)

// RecoveryResult describes the resume point of a recovered session
type RecoveryResult struct {
	Action  RecoveryAction `json:"action"`
	Session *SessionResult `json:"session"`
}

// RecoveryService inspects an interrupted session and works out where the
// checkout flow can resume. Cart creation is replayed server side since it
// needs no buyer input; later steps hand control back to the buyer.
type RecoveryService struct {
	orchestrator *OrchestratorService
	sessions     checkout.SessionRepository
	logger       *zap.Logger
}

// NewRecoveryService creates the recovery resolver
func NewRecoveryService(orchestrator *OrchestratorService, sessions checkout.SessionRepository, logger *zap.Logger) *RecoveryService {
	return &RecoveryService{
		orchestrator: orchestrator,
		sessions:     sessions,
		logger:       logger,
	}
}

// Recover resolves the resume point for a session
func (s *RecoveryService) Recover(ctx context.Context, sessionID uuid.UUID) (*RecoveryResult, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status == checkout.SessionStatusCompleted {
		return &RecoveryResult{Action: ActionAlreadyCompleted, Session: NewSessionResult(session)}, nil
	}
	if session.Status == checkout.SessionStatusAbandoned {
		return nil, shared.NewDomainError("INVALID_STATE_TRANSITION", "session is abandoned")
	}
	if session.IsExpired(time.Now()) {
		if abandonErr := session.Abandon(); abandonErr == nil {
			_ = s.sessions.SaveWithLock(ctx, session)
		}
		return nil, shared.ErrSessionExpired
	}

	// A session past cart creation without a remote cart cannot make
	// progress on any path. Fail it permanently.
	if session.Step != checkout.StepCartCreation && session.RemoteCartID == "" {
		_ = session.Fail("session lost its remote cart")
		_ = s.sessions.SaveWithLock(ctx, session)
		return nil, shared.ErrSessionInconsistent
	}

	switch session.Step {
	case checkout.StepCartCreation:
		if session.Status == checkout.SessionStatusFailed {
			if err := session.ResumeProcessing(); err != nil {
				return nil, err
			}
		}
		s.orchestrator.createCart(ctx, session)
		if err := s.sessions.SaveWithLock(ctx, session); err != nil {
			return nil, err
		}
		s.logger.Info("session recovery retried cart creation",
			zap.String("session_id", session.ID.String()),
			zap.String("status", session.Status.String()))
		return &RecoveryResult{Action: ActionCartRetried, Session: NewSessionResult(session)}, nil

	case checkout.StepAddressEntry:
		if session.Status == checkout.SessionStatusFailed {
			if err := session.ResumeProcessing(); err != nil {
				return nil, err
			}
			if err := s.sessions.SaveWithLock(ctx, session); err != nil {
				return nil, err
			}
		}
		return &RecoveryResult{Action: ActionResubmitAddresses, Session: NewSessionResult(session)}, nil

	case checkout.StepPayment:
		if session.RemoteCheckoutID == "" {
			_ = session.Fail("session lost its remote checkout")
			_ = s.sessions.SaveWithLock(ctx, session)
			return nil, shared.ErrSessionInconsistent
		}
		if session.Status == checkout.SessionStatusFailed {
			if err := session.ResumeProcessing(); err != nil {
				return nil, err
			}
			if err := s.sessions.SaveWithLock(ctx, session); err != nil {
				return nil, err
			}
		}
		return &RecoveryResult{Action: ActionResumePayment, Session: NewSessionResult(session)}, nil

	case checkout.StepConfirmation:
		// Confirmation is only reached together with completion, but a
		// session observed here has nothing left to resume either way.
		return &RecoveryResult{Action: ActionAlreadyCompleted, Session: NewSessionResult(session)}, nil
	}

	return nil, shared.ErrSessionInconsistent
}

// FindResumable lists the user's sessions that recovery could act on
func (s *RecoveryService) FindResumable(ctx context.Context, userID uuid.UUID) ([]*SessionResult, error) {
	sessions, err := s.sessions.FindResumable(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}
	results := make([]*SessionResult, len(sessions))
	for i, session := range sessions {
		results[i] = NewSessionResult(session)
	}
	return results, nil
}
