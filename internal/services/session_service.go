package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
)

// --- Custom Service Errors for Session ---
var (
	ErrSessionNotFound          = errors.New("session not found")
	ErrInvalidSessionStatus     = errors.New("invalid session status")
	ErrSessionValidation        = errors.New("session data validation error")
	ErrNoCreditsRemaining       = errors.New("linked package has no credits remaining")
	ErrPackageForSessionMissing = errors.New("package specified for session not found")
	ErrDogForSessionMissing     = errors.New("dog specified for session not found")
)

func isValidSessionStatus(status string) bool {
	switch status {
	case models.SessionStatusScheduled, models.SessionStatusDone,
		models.SessionStatusCancelled, models.SessionStatusNoShow:
		return true
	}
	return false
}

// --- Session DTOs ---

type CreateSessionRequest struct {
	DogID     int64      `json:"dog_id" binding:"required"`
	PackageID *int64     `json:"package_id"`
	TrainerID *int64     `json:"trainer_id"`
	Status    string     `json:"status"` // defaults to scheduled
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   *time.Time `json:"end_time"`
	Location  *string    `json:"location"`
	Notes     *string    `json:"notes"`
}

type UpdateSessionRequest struct {
	DogID     *int64     `json:"dog_id"`
	PackageID *int64     `json:"package_id"`
	TrainerID *int64     `json:"trainer_id"`
	Status    *string    `json:"status"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Location  *string    `json:"location"`
	Notes     *string    `json:"notes"`
}

// --- SessionService Interface ---
type SessionService interface {
	CreateSession(req CreateSessionRequest, actorID *int64) (*models.Session, error)
	GetSessionByID(sessionID int64) (*models.Session, error)
	GetSessions(filters repositories.SessionFilters) ([]models.Session, error)
	UpdateSession(sessionID int64, req UpdateSessionRequest, actorID *int64) (*models.Session, error)
	DeleteSession(sessionID int64, actorID *int64) error
}

// --- sessionService Implementation ---
type sessionService struct {
	sessionRepo repositories.SessionRepository
	packageRepo repositories.PackageRepository
	dogRepo     repositories.DogRepository
	audit       AuditRecorder
	db          *sql.DB
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	packageRepo repositories.PackageRepository,
	dogRepo repositories.DogRepository,
	audit AuditRecorder,
	db *sql.DB,
) SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		packageRepo: packageRepo,
		dogRepo:     dogRepo,
		audit:       audit,
		db:          db,
	}
}

// deductCredit takes one credit from the package and flips the session's
// deduction guard, all on the caller's transaction. The package row is read
// FOR UPDATE first so two concurrent "mark done" calls serialize instead of
// losing an update.
func (s *sessionService) deductCredit(tx *sql.Tx, sessionID, packageID int64) error {
	pkg, err := s.packageRepo.LockPackage(tx, packageID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPackageForSessionMissing
		}
		return fmt.Errorf("failed to lock package for deduction: %w", err)
	}
	if pkg.UsedCredits >= pkg.TotalCredits {
		return fmt.Errorf("%w: package %d has used %d of %d credits",
			ErrNoCreditsRemaining, pkg.ID, pkg.UsedCredits, pkg.TotalCredits)
	}
	if err := s.packageRepo.AddUsedCredits(tx, packageID, 1); err != nil {
		if errors.Is(err, repositories.ErrCreditBounds) {
			return ErrNoCreditsRemaining
		}
		return fmt.Errorf("failed to deduct credit: %w", err)
	}
	if err := s.sessionRepo.SetCreditDeducted(tx, sessionID, true); err != nil {
		return fmt.Errorf("failed to flag session as deducted: %w", err)
	}
	return nil
}

// refundCredit reverses a prior deduction on the caller's transaction.
func (s *sessionService) refundCredit(tx *sql.Tx, sessionID, packageID int64) error {
	if _, err := s.packageRepo.LockPackage(tx, packageID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPackageForSessionMissing
		}
		return fmt.Errorf("failed to lock package for refund: %w", err)
	}
	if err := s.packageRepo.AddUsedCredits(tx, packageID, -1); err != nil {
		if errors.Is(err, repositories.ErrCreditBounds) {
			// Nothing to refund; leave the ledger alone.
			return nil
		}
		return fmt.Errorf("failed to refund credit: %w", err)
	}
	if err := s.sessionRepo.SetCreditDeducted(tx, sessionID, false); err != nil {
		return fmt.Errorf("failed to clear session deduction flag: %w", err)
	}
	return nil
}

// CreateSession schedules a new session. A session created directly in the
// done state with a linked package deducts a credit in the same transaction.
func (s *sessionService) CreateSession(req CreateSessionRequest, actorID *int64) (*models.Session, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	status := req.Status
	if status == "" {
		status = models.SessionStatusScheduled
	}
	if !isValidSessionStatus(status) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSessionStatus, status)
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return nil, fmt.Errorf("%w: end_time is before start_time", ErrSessionValidation)
	}

	if _, err := s.dogRepo.GetDogByID(req.DogID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDogForSessionMissing
		}
		return nil, fmt.Errorf("failed to verify dog for session: %w", err)
	}
	if req.PackageID != nil {
		if _, err := s.packageRepo.GetPackageByID(*req.PackageID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrPackageForSessionMissing
			}
			return nil, fmt.Errorf("failed to verify package for session: %w", err)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	session := &models.Session{
		DogID:     req.DogID,
		PackageID: req.PackageID,
		TrainerID: req.TrainerID,
		Status:    status,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Notes:     req.Notes,
	}
	sessionID, err := s.sessionRepo.CreateSession(tx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session record: %w", err)
	}

	deducted := false
	if status == models.SessionStatusDone && req.PackageID != nil {
		if err := s.deductCredit(tx, sessionID, *req.PackageID); err != nil {
			return nil, err
		}
		deducted = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session transaction: %w", err)
	}

	s.audit.Record("session.create", "Session", sessionID, "Scheduled session", actorID)
	if deducted {
		s.audit.Record("session.deduct", "Package", *req.PackageID, "1 session deducted from package", actorID)
	}

	created, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session created but failed to reload: %w", err)
	}
	return created, nil
}

// GetSessionByID returns a single session.
func (s *sessionService) GetSessionByID(sessionID int64) (*models.Session, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session by ID: %w", err)
	}
	return session, nil
}

// GetSessions lists sessions matching the filters.
func (s *sessionService) GetSessions(filters repositories.SessionFilters) ([]models.Session, error) {
	if s.db == nil {
		return []models.Session{}, nil
	}
	sessions, err := s.sessionRepo.GetSessions(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSession applies the requested changes. Transitions into done deduct
// one credit from the linked package exactly once; re-marking an already
// deducted session done is a no-op on the ledger, and moving a done session
// back refunds the credit. Deduction, flag and session update share one
// transaction.
func (s *sessionService) UpdateSession(sessionID int64, req UpdateSessionRequest, actorID *int64) (*models.Session, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session for update: %w", err)
	}

	if req.DogID != nil {
		session.DogID = *req.DogID
	}
	if req.PackageID != nil {
		if session.CreditDeducted && *req.PackageID != derefInt64(session.PackageID) {
			return nil, fmt.Errorf("%w: cannot relink a session whose credit is already deducted", ErrSessionValidation)
		}
		session.PackageID = req.PackageID
	}
	if req.TrainerID != nil {
		session.TrainerID = req.TrainerID
	}
	if req.StartTime != nil {
		session.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		session.EndTime = req.EndTime
	}
	if req.Location != nil {
		session.Location = req.Location
	}
	if req.Notes != nil {
		session.Notes = req.Notes
	}

	previousStatus := session.Status
	if req.Status != nil {
		if !isValidSessionStatus(*req.Status) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSessionStatus, *req.Status)
		}
		session.Status = *req.Status
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.sessionRepo.UpdateSession(tx, session); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	deducted, refunded := false, false
	if session.PackageID != nil {
		becameDone := session.Status == models.SessionStatusDone
		wasDone := previousStatus == models.SessionStatusDone
		if becameDone && !session.CreditDeducted {
			if err := s.deductCredit(tx, sessionID, *session.PackageID); err != nil {
				return nil, err
			}
			deducted = true
		} else if !becameDone && wasDone && session.CreditDeducted {
			if err := s.refundCredit(tx, sessionID, *session.PackageID); err != nil {
				return nil, err
			}
			refunded = true
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session transaction: %w", err)
	}

	s.audit.Record("session.update", "Session", sessionID, "Updated session", actorID)
	if deducted {
		s.audit.Record("session.deduct", "Package", *session.PackageID, "1 session deducted from package", actorID)
	}
	if refunded {
		s.audit.Record("session.refund", "Package", *session.PackageID, "1 session credit refunded to package", actorID)
	}

	updated, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session updated but failed to reload: %w", err)
	}
	return updated, nil
}

// DeleteSession removes a session, refunding its package credit when one
// had been deducted.
func (s *sessionService) DeleteSession(sessionID int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to find session for deletion: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if session.CreditDeducted && session.PackageID != nil {
		if _, err := s.packageRepo.LockPackage(tx, *session.PackageID); err == nil {
			if err := s.packageRepo.AddUsedCredits(tx, *session.PackageID, -1); err != nil && !errors.Is(err, repositories.ErrCreditBounds) {
				return fmt.Errorf("failed to refund credit on session deletion: %w", err)
			}
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to lock package on session deletion: %w", err)
		}
	}

	if err := s.sessionRepo.DeleteSession(tx, sessionID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session deletion: %w", err)
	}

	s.audit.Record("session.delete", "Session", sessionID, "Deleted session", actorID)
	return nil
}

func derefInt64(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
