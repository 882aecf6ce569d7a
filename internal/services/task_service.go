package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"
)

// --- Custom Service Errors for Task ---
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrTaskValidation = errors.New("task data validation error")
)

// --- Task DTOs ---

type CreateTaskRequest struct {
	Title      string  `json:"title" binding:"required"`
	Details    *string `json:"details"`
	ClientID   *int64  `json:"client_id"`
	AssigneeID *int64  `json:"assignee_id"`
	DueOn      *string `json:"due_on"` // YYYY-MM-DD
}

type UpdateTaskRequest struct {
	Title      string  `json:"title" binding:"required"`
	Details    *string `json:"details"`
	ClientID   *int64  `json:"client_id"`
	AssigneeID *int64  `json:"assignee_id"`
	DueOn      *string `json:"due_on"`
	Done       bool    `json:"done"`
}

// --- TaskService Interface ---

type TaskService interface {
	CreateTask(req CreateTaskRequest, actorID *int64) (*models.Task, error)
	GetTaskByID(id int64) (*models.Task, error)
	GetTasks(done *bool) ([]models.Task, error)
	UpdateTask(id int64, req UpdateTaskRequest, actorID *int64) (*models.Task, error)
	SetTaskDone(id int64, done bool, actorID *int64) (*models.Task, error)
	DeleteTask(id int64, actorID *int64) error
}

type taskService struct {
	taskRepo   repositories.TaskRepository
	clientRepo repositories.ClientRepository
	audit      AuditRecorder
	db         *sql.DB
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(
	taskRepo repositories.TaskRepository,
	clientRepo repositories.ClientRepository,
	audit AuditRecorder,
	db *sql.DB,
) TaskService {
	return &taskService{
		taskRepo:   taskRepo,
		clientRepo: clientRepo,
		audit:      audit,
		db:         db,
	}
}

func parseDueOn(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(packageDateLayout, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: due_on must be YYYY-MM-DD", ErrTaskValidation)
	}
	return &parsed, nil
}

func (s *taskService) verifyClientRef(clientID *int64) error {
	if clientID == nil {
		return nil
	}
	if _, err := s.clientRepo.GetClientByID(*clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to verify client %d: %w", *clientID, err)
	}
	return nil
}

// CreateTask records a back-office to-do, optionally tied to a client.
func (s *taskService) CreateTask(req CreateTaskRequest, actorID *int64) (*models.Task, error) {
	if utils.IsEmpty(req.Title) {
		return nil, fmt.Errorf("%w: title is required", ErrTaskValidation)
	}
	dueOn, err := parseDueOn(req.DueOn)
	if err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	if err := s.verifyClientRef(req.ClientID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:      req.Title,
		Details:    req.Details,
		ClientID:   req.ClientID,
		AssigneeID: req.AssigneeID,
		DueOn:      dueOn,
	}
	id, err := s.taskRepo.CreateTask(s.db, task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.audit.Record("task.create", "Task", id, fmt.Sprintf("Task %q created", task.Title), actorID)
	return s.taskRepo.GetTaskByID(id)
}

// GetTaskByID retrieves a single task.
func (s *taskService) GetTaskByID(id int64) (*models.Task, error) {
	if s.db == nil {
		return nil, ErrTaskNotFound
	}
	task, err := s.taskRepo.GetTaskByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// GetTasks lists tasks, optionally filtered by completion state.
func (s *taskService) GetTasks(done *bool) ([]models.Task, error) {
	if s.db == nil {
		return []models.Task{}, nil
	}
	tasks, err := s.taskRepo.GetTasks(done)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a full update to a task.
func (s *taskService) UpdateTask(id int64, req UpdateTaskRequest, actorID *int64) (*models.Task, error) {
	if utils.IsEmpty(req.Title) {
		return nil, fmt.Errorf("%w: title is required", ErrTaskValidation)
	}
	dueOn, err := parseDueOn(req.DueOn)
	if err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	if err := s.verifyClientRef(req.ClientID); err != nil {
		return nil, err
	}

	task, err := s.GetTaskByID(id)
	if err != nil {
		return nil, err
	}

	task.Title = req.Title
	task.Details = req.Details
	task.ClientID = req.ClientID
	task.AssigneeID = req.AssigneeID
	task.DueOn = dueOn
	task.Done = req.Done

	if err := s.taskRepo.UpdateTask(s.db, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	s.audit.Record("task.update", "Task", id, fmt.Sprintf("Task %q updated", task.Title), actorID)
	return s.taskRepo.GetTaskByID(id)
}

// SetTaskDone toggles only the completion flag.
func (s *taskService) SetTaskDone(id int64, done bool, actorID *int64) (*models.Task, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	task, err := s.GetTaskByID(id)
	if err != nil {
		return nil, err
	}
	if task.Done == done {
		return task, nil
	}

	task.Done = done
	if err := s.taskRepo.UpdateTask(s.db, task); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}

	verb := "reopened"
	if done {
		verb = "completed"
	}
	s.audit.Record("task.update", "Task", id, fmt.Sprintf("Task %q %s", task.Title, verb), actorID)
	return s.taskRepo.GetTaskByID(id)
}

// DeleteTask removes a task.
func (s *taskService) DeleteTask(id int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	task, err := s.GetTaskByID(id)
	if err != nil {
		return err
	}

	if err := s.taskRepo.DeleteTask(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}

	s.audit.Record("task.delete", "Task", id, fmt.Sprintf("Task %q deleted", task.Title), actorID)
	return nil
}
