package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/lib/pq"
)

// SessionFilters narrows session listings.
type SessionFilters struct {
	DogID     *int64
	PackageID *int64
	Status    *string
	From      *time.Time
	To        *time.Time
}

// SessionRepository defines the interface for training-session database operations.
type SessionRepository interface {
	CreateSession(executor SQLExecutor, session *models.Session) (int64, error)
	GetSessionByID(id int64) (*models.Session, error)
	GetSessions(filters SessionFilters) ([]models.Session, error)
	UpdateSession(executor SQLExecutor, session *models.Session) error
	DeleteSession(executor SQLExecutor, id int64) error
	// SetCreditDeducted flips the per-session deduction guard. Written in
	// the same transaction as the package credit adjustment.
	SetCreditDeducted(executor SQLExecutor, id int64, deducted bool) error
	CountSessionsByPackage(packageID int64) (int, error)
}

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new instance of SessionRepository.
func NewSessionRepository(db *sql.DB) SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, dog_id, package_id, trainer_id, status, start_time, end_time, location, notes, credit_deducted, created_at, updated_at`

func scanSession(row interface{ Scan(...interface{}) error }, session *models.Session) error {
	var packageID, trainerID sql.NullInt64
	var endTime sql.NullTime
	err := row.Scan(
		&session.ID, &session.DogID, &packageID, &trainerID, &session.Status,
		&session.StartTime, &endTime, &session.Location, &session.Notes,
		&session.CreditDeducted, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if packageID.Valid {
		session.PackageID = &packageID.Int64
	}
	if trainerID.Valid {
		session.TrainerID = &trainerID.Int64
	}
	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	return nil
}

// CreateSession inserts a new session row.
func (r *sessionRepository) CreateSession(executor SQLExecutor, session *models.Session) (int64, error) {
	query := `INSERT INTO sessions (dog_id, package_id, trainer_id, status, start_time, end_time, location, notes, credit_deducted, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`

	currentTime := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = currentTime
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = currentTime
	}

	var endTime sql.NullTime
	if session.EndTime != nil {
		endTime = sql.NullTime{Time: *session.EndTime, Valid: true}
	}

	err := executor.QueryRow(query,
		session.DogID, session.PackageID, session.TrainerID, session.Status,
		session.StartTime, endTime, session.Location, session.Notes,
		session.CreditDeducted, session.CreatedAt, session.UpdatedAt,
	).Scan(&session.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: dog or package for session", ErrNotFound)
		}
		return 0, fmt.Errorf("%w: creating session: %v", ErrDatabaseError, err)
	}
	return session.ID, nil
}

// GetSessionByID retrieves a session by its ID.
func (r *sessionRepository) GetSessionByID(id int64) (*models.Session, error) {
	session := &models.Session{}
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	err := scanSession(r.db.QueryRow(query, id), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting session by ID %d: %v", ErrDatabaseError, id, err)
	}
	return session, nil
}

// GetSessions lists sessions matching the filters, upcoming first.
func (r *sessionRepository) GetSessions(filters SessionFilters) ([]models.Session, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + sessionColumns + ` FROM sessions`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.DogID != nil {
		conditions = append(conditions, fmt.Sprintf("dog_id = $%d", argCount))
		args = append(args, *filters.DogID)
		argCount++
	}
	if filters.PackageID != nil {
		conditions = append(conditions, fmt.Sprintf("package_id = $%d", argCount))
		args = append(args, *filters.PackageID)
		argCount++
	}
	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", argCount))
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_time <= $%d", argCount))
		args = append(args, *filters.To)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY start_time ASC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sessions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		var session models.Session
		if err := scanSession(rows, &session); err != nil {
			return nil, fmt.Errorf("%w: scanning session: %v", ErrDatabaseError, err)
		}
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating session rows: %v", ErrDatabaseError, err)
	}
	return sessions, nil
}

// UpdateSession overwrites the mutable fields of a session. The deduction
// guard is only moved through SetCreditDeducted.
func (r *sessionRepository) UpdateSession(executor SQLExecutor, session *models.Session) error {
	query := `UPDATE sessions SET
	            dog_id = $1, package_id = $2, trainer_id = $3, status = $4,
	            start_time = $5, end_time = $6, location = $7, notes = $8, updated_at = $9
	          WHERE id = $10`

	session.UpdatedAt = time.Now()
	var endTime sql.NullTime
	if session.EndTime != nil {
		endTime = sql.NullTime{Time: *session.EndTime, Valid: true}
	}

	result, err := executor.Exec(query,
		session.DogID, session.PackageID, session.TrainerID, session.Status,
		session.StartTime, endTime, session.Location, session.Notes,
		session.UpdatedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating session ID %d: %v", ErrDatabaseError, session.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating session ID %d: %v", ErrDatabaseError, session.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a session row.
func (r *sessionRepository) DeleteSession(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting session ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting session ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCreditDeducted flips the per-session deduction guard.
func (r *sessionRepository) SetCreditDeducted(executor SQLExecutor, id int64, deducted bool) error {
	result, err := executor.Exec(`UPDATE sessions SET credit_deducted = $1, updated_at = $2 WHERE id = $3`, deducted, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: setting credit_deducted for session ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for session ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSessionsByPackage reports how many sessions reference a package.
// Used by the package delete guard.
func (r *sessionRepository) CountSessionsByPackage(packageID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE package_id = $1`, packageID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting sessions for package ID %d: %v", ErrDatabaseError, packageID, err)
	}
	return count, nil
}
