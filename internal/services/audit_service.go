package services

import (
	"database/sql"
	"fmt"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"

	"github.com/google/uuid"
)

// AuditRecorder records mutating actions. Recording is fire-and-forget:
// a failed audit write is logged and swallowed so it can never abort the
// operation that triggered it.
type AuditRecorder interface {
	Record(action, entityType string, entityID int64, summary string, actorID *int64)
	GetEntries(page, pageSize int, entityType *string) ([]models.AuditLog, int, error)
}

type auditService struct {
	auditRepo repositories.AuditRepository
	db        *sql.DB
}

// NewAuditService creates a new AuditRecorder.
func NewAuditService(auditRepo repositories.AuditRepository, db *sql.DB) AuditRecorder {
	return &auditService{auditRepo: auditRepo, db: db}
}

// Record appends an audit entry. Errors are logged, never returned.
func (s *auditService) Record(action, entityType string, entityID int64, summary string, actorID *int64) {
	if s.db == nil {
		utils.LogWarn("Audit entry dropped, persistence not configured", map[string]interface{}{
			"action": action, "entity_type": entityType, "entity_id": entityID,
		})
		return
	}

	entry := &models.AuditLog{
		RequestID:  uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Summary:    utils.NewNullString(summary),
		ActorID:    actorID,
	}
	if _, err := s.auditRepo.AppendEntry(s.db, entry); err != nil {
		utils.LogError(err, fmt.Sprintf("Failed to record audit entry %s/%s/%d", action, entityType, entityID))
	}
}

// GetEntries lists audit entries with pagination.
func (s *auditService) GetEntries(page, pageSize int, entityType *string) ([]models.AuditLog, int, error) {
	if s.db == nil {
		return []models.AuditLog{}, 0, nil
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	entries, totalCount, err := s.auditRepo.GetEntries(page, pageSize, entityType)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get audit entries: %w", err)
	}
	return entries, totalCount, nil
}
