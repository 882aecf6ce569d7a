package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
)

// AuditRepository appends and lists audit-log entries. Entries are
// append-only; there is deliberately no update or delete.
type AuditRepository interface {
	AppendEntry(executor SQLExecutor, entry *models.AuditLog) (int64, error)
	GetEntries(page, pageSize int, entityType *string) ([]models.AuditLog, int, error)
}

type auditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new instance of AuditRepository.
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

// AppendEntry inserts a new audit row.
func (r *auditRepository) AppendEntry(executor SQLExecutor, entry *models.AuditLog) (int64, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	err := executor.QueryRow(
		`INSERT INTO audit_log (request_id, action, entity_type, entity_id, summary, actor_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		entry.RequestID, entry.Action, entry.EntityType, entry.EntityID,
		entry.Summary, entry.ActorID, entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: appending audit entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

// GetEntries lists audit entries, newest first, with pagination and an
// optional entity-type filter.
func (r *auditRepository) GetEntries(page, pageSize int, entityType *string) ([]models.AuditLog, int, error) {
	query := `SELECT id, request_id, action, entity_type, entity_id, summary, actor_id, created_at,
	                 COUNT(*) OVER() as total_count
	          FROM audit_log`
	var args []interface{}
	argCount := 1

	if entityType != nil && *entityType != "" {
		query += fmt.Sprintf(" WHERE entity_type = $%d", argCount)
		args = append(args, *entityType)
		argCount++
	}
	query += " ORDER BY created_at DESC"

	if pageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argCount)
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argCount)
			args = append(args, (page-1)*pageSize)
		}
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying audit entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.AuditLog{}
	totalCount := 0
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID, &entry.RequestID, &entry.Action, &entry.EntityType,
			&entry.EntityID, &entry.Summary, &entry.ActorID, &entry.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning audit entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating audit rows: %v", ErrDatabaseError, err)
	}
	return entries, totalCount, nil
}
