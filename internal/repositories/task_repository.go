package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
)

// TaskRepository defines the interface for back-office task database operations.
type TaskRepository interface {
	CreateTask(executor SQLExecutor, task *models.Task) (int64, error)
	GetTaskByID(id int64) (*models.Task, error)
	GetTasks(done *bool) ([]models.Task, error)
	UpdateTask(executor SQLExecutor, task *models.Task) error
	DeleteTask(executor SQLExecutor, id int64) error
}

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new instance of TaskRepository.
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

const taskColumns = `id, title, details, client_id, assignee_id, due_on, done, created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }, task *models.Task) error {
	var clientID, assigneeID sql.NullInt64
	var dueOn sql.NullTime
	err := row.Scan(
		&task.ID, &task.Title, &task.Details, &clientID, &assigneeID,
		&dueOn, &task.Done, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if clientID.Valid {
		task.ClientID = &clientID.Int64
	}
	if assigneeID.Valid {
		task.AssigneeID = &assigneeID.Int64
	}
	if dueOn.Valid {
		task.DueOn = &dueOn.Time
	}
	return nil
}

// CreateTask inserts a new task row.
func (r *taskRepository) CreateTask(executor SQLExecutor, task *models.Task) (int64, error) {
	query := `INSERT INTO tasks (title, details, client_id, assignee_id, due_on, done, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = currentTime
	}
	if task.UpdatedAt.IsZero() {
		task.UpdatedAt = currentTime
	}

	var dueOn sql.NullTime
	if task.DueOn != nil {
		dueOn = sql.NullTime{Time: *task.DueOn, Valid: true}
	}

	err := executor.QueryRow(query,
		task.Title, task.Details, task.ClientID, task.AssigneeID, dueOn,
		task.Done, task.CreatedAt, task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating task: %v", ErrDatabaseError, err)
	}
	return task.ID, nil
}

// GetTaskByID retrieves a task by its ID.
func (r *taskRepository) GetTaskByID(id int64) (*models.Task, error) {
	task := &models.Task{}
	err := scanTask(r.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id), task)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting task by ID %d: %v", ErrDatabaseError, id, err)
	}
	return task, nil
}

// GetTasks lists tasks, optionally filtered on completion, due-date order.
func (r *taskRepository) GetTasks(done *bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	var args []interface{}
	if done != nil {
		query += ` WHERE done = $1`
		args = append(args, *done)
	}
	query += ` ORDER BY due_on ASC NULLS LAST, created_at ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tasks: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := scanTask(rows, &task); err != nil {
			return nil, fmt.Errorf("%w: scanning task: %v", ErrDatabaseError, err)
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating task rows: %v", ErrDatabaseError, err)
	}
	return tasks, nil
}

// UpdateTask overwrites the mutable fields of a task.
func (r *taskRepository) UpdateTask(executor SQLExecutor, task *models.Task) error {
	query := `UPDATE tasks SET
	            title = $1, details = $2, client_id = $3, assignee_id = $4,
	            due_on = $5, done = $6, updated_at = $7
	          WHERE id = $8`

	task.UpdatedAt = time.Now()
	var dueOn sql.NullTime
	if task.DueOn != nil {
		dueOn = sql.NullTime{Time: *task.DueOn, Valid: true}
	}

	result, err := executor.Exec(query,
		task.Title, task.Details, task.ClientID, task.AssigneeID, dueOn,
		task.Done, task.UpdatedAt, task.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating task ID %d: %v", ErrDatabaseError, task.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating task ID %d: %v", ErrDatabaseError, task.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task row.
func (r *taskRepository) DeleteTask(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting task ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting task ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
