package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
)

// NoteRepository defines the interface for client-note database operations.
type NoteRepository interface {
	CreateNote(executor SQLExecutor, note *models.Note) (int64, error)
	GetNoteByID(id int64) (*models.Note, error)
	GetNotesByClient(clientID int64) ([]models.Note, error)
	DeleteNote(executor SQLExecutor, id int64) error
}

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new instance of NoteRepository.
func NewNoteRepository(db *sql.DB) NoteRepository {
	return &noteRepository{db: db}
}

// CreateNote inserts a new note attached to a client.
func (r *noteRepository) CreateNote(executor SQLExecutor, note *models.Note) (int64, error) {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	err := executor.QueryRow(
		`INSERT INTO notes (client_id, body, author_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		note.ClientID, note.Body, note.AuthorID, note.CreatedAt,
	).Scan(&note.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating note: %v", ErrDatabaseError, err)
	}
	return note.ID, nil
}

// GetNoteByID retrieves a note by its ID.
func (r *noteRepository) GetNoteByID(id int64) (*models.Note, error) {
	note := &models.Note{}
	err := r.db.QueryRow(
		`SELECT id, client_id, body, author_id, created_at FROM notes WHERE id = $1`, id,
	).Scan(&note.ID, &note.ClientID, &note.Body, &note.AuthorID, &note.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting note by ID %d: %v", ErrDatabaseError, id, err)
	}
	return note, nil
}

// GetNotesByClient lists a client's notes, newest first.
func (r *noteRepository) GetNotesByClient(clientID int64) ([]models.Note, error) {
	rows, err := r.db.Query(
		`SELECT id, client_id, body, author_id, created_at FROM notes WHERE client_id = $1 ORDER BY created_at DESC`,
		clientID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: querying notes: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.ClientID, &note.Body, &note.AuthorID, &note.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning note: %v", ErrDatabaseError, err)
		}
		notes = append(notes, note)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating note rows: %v", ErrDatabaseError, err)
	}
	return notes, nil
}

// DeleteNote removes a note. Callers are expected to write the explicit
// delete audit entry alongside.
func (r *noteRepository) DeleteNote(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting note ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting note ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
