package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"
)

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound   = errors.New("client not found")
	ErrClientValidation = errors.New("client data validation error")
	ErrClientDuplicate  = errors.New("client with this email already exists")
	ErrNoteNotFound     = errors.New("note not found")
)

// --- Client DTOs ---

type CreateClientRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Source   *string `json:"source"`
	Language *string `json:"language"`
	Notes    *string `json:"notes"`
}

type UpdateClientRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Source   *string `json:"source"`
	Language *string `json:"language"`
	Notes    *string `json:"notes"`
}

type CreateNoteRequest struct {
	Body string `json:"body" binding:"required"`
}

// PaginatedClientsResponse is the list envelope for GET /clients.
type PaginatedClientsResponse struct {
	Clients    []models.Client `json:"clients"`
	TotalItems int             `json:"total_items"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// --- ClientService Interface ---

type ClientService interface {
	CreateClient(req CreateClientRequest, actorID *int64) (*models.Client, error)
	GetClientByID(id int64) (*models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) (*PaginatedClientsResponse, error)
	UpdateClient(id int64, req UpdateClientRequest, actorID *int64) (*models.Client, error)
	DeleteClient(id int64, actorID *int64) error

	AddNote(clientID int64, req CreateNoteRequest, actorID *int64) (*models.Note, error)
	GetNotes(clientID int64) ([]models.Note, error)
	DeleteNote(clientID, noteID int64, actorID *int64) error
}

type clientService struct {
	clientRepo repositories.ClientRepository
	noteRepo   repositories.NoteRepository
	audit      AuditRecorder
	db         *sql.DB
}

// NewClientService creates a new instance of ClientService.
func NewClientService(
	clientRepo repositories.ClientRepository,
	noteRepo repositories.NoteRepository,
	audit AuditRecorder,
	db *sql.DB,
) ClientService {
	return &clientService{
		clientRepo: clientRepo,
		noteRepo:   noteRepo,
		audit:      audit,
		db:         db,
	}
}

func validateClientFields(fullName string, email *string) error {
	if utils.IsEmpty(fullName) {
		return fmt.Errorf("%w: full name is required", ErrClientValidation)
	}
	if strings.TrimSpace(fullName) == models.TemplateClientName {
		return fmt.Errorf("%w: this name is reserved", ErrClientValidation)
	}
	if email != nil && *email != "" && !utils.IsValidEmail(*email) {
		return fmt.Errorf("%w: invalid email format", ErrClientValidation)
	}
	return nil
}

// CreateClient validates and persists a new client record.
func (s *clientService) CreateClient(req CreateClientRequest, actorID *int64) (*models.Client, error) {
	if err := validateClientFields(req.FullName, req.Email); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	client := &models.Client{
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Phone:    req.Phone,
		Source:   req.Source,
		Language: req.Language,
		Notes:    req.Notes,
	}

	id, err := s.clientRepo.CreateClient(s.db, client)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrClientDuplicate
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.audit.Record("client.create", "Client", id, fmt.Sprintf("Client %q created", client.FullName), actorID)
	return s.clientRepo.GetClientByID(id)
}

// GetClientByID retrieves a single client.
func (s *clientService) GetClientByID(id int64) (*models.Client, error) {
	if s.db == nil {
		return nil, ErrClientNotFound
	}
	client, err := s.clientRepo.GetClientByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client %d: %w", id, err)
	}
	return client, nil
}

// GetClients lists clients with pagination and optional name/email search.
// The template sentinel client is never part of the listing.
func (s *clientService) GetClients(page, pageSize int, searchTerm *string) (*PaginatedClientsResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	if s.db == nil {
		return &PaginatedClientsResponse{Clients: []models.Client{}, Page: page, PageSize: pageSize}, nil
	}

	clients, total, err := s.clientRepo.GetClients(page, pageSize, searchTerm)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return &PaginatedClientsResponse{
		Clients:    clients,
		TotalItems: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// UpdateClient applies a full update to an existing client.
func (s *clientService) UpdateClient(id int64, req UpdateClientRequest, actorID *int64) (*models.Client, error) {
	if err := validateClientFields(req.FullName, req.Email); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	client, err := s.GetClientByID(id)
	if err != nil {
		return nil, err
	}

	client.FullName = strings.TrimSpace(req.FullName)
	client.Email = req.Email
	client.Phone = req.Phone
	client.Source = req.Source
	client.Language = req.Language
	client.Notes = req.Notes

	if err := s.clientRepo.UpdateClient(s.db, client); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrClientDuplicate
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client %d: %w", id, err)
	}

	s.audit.Record("client.update", "Client", id, fmt.Sprintf("Client %q updated", client.FullName), actorID)
	return s.clientRepo.GetClientByID(id)
}

// DeleteClient removes a client. Dogs, notes, packages and the rest of the
// dependent rows go with it via ON DELETE CASCADE.
func (s *clientService) DeleteClient(id int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	client, err := s.GetClientByID(id)
	if err != nil {
		return err
	}

	if err := s.clientRepo.DeleteClient(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client %d: %w", id, err)
	}

	s.audit.Record("client.delete", "Client", id, fmt.Sprintf("Client %q deleted", client.FullName), actorID)
	return nil
}

// AddNote attaches a free-form note to a client.
func (s *clientService) AddNote(clientID int64, req CreateNoteRequest, actorID *int64) (*models.Note, error) {
	if utils.IsEmpty(req.Body) {
		return nil, fmt.Errorf("%w: note body is required", ErrClientValidation)
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	if _, err := s.GetClientByID(clientID); err != nil {
		return nil, err
	}

	note := &models.Note{
		ClientID: clientID,
		Body:     req.Body,
		AuthorID: actorID,
	}
	id, err := s.noteRepo.CreateNote(s.db, note)
	if err != nil {
		return nil, fmt.Errorf("failed to create note for client %d: %w", clientID, err)
	}

	s.audit.Record("note.create", "Note", id, fmt.Sprintf("Note added to client %d", clientID), actorID)
	return s.noteRepo.GetNoteByID(id)
}

// GetNotes lists a client's notes, newest first.
func (s *clientService) GetNotes(clientID int64) ([]models.Note, error) {
	if s.db == nil {
		return []models.Note{}, nil
	}
	if _, err := s.GetClientByID(clientID); err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.GetNotesByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for client %d: %w", clientID, err)
	}
	return notes, nil
}

// DeleteNote removes one note from a client. A removed note is the one
// destructive edit the audit trail records explicitly, body included.
func (s *clientService) DeleteNote(clientID, noteID int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	note, err := s.noteRepo.GetNoteByID(noteID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to get note %d: %w", noteID, err)
	}
	if note.ClientID != clientID {
		return ErrNoteNotFound
	}

	if err := s.noteRepo.DeleteNote(s.db, noteID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoteNotFound
		}
		return fmt.Errorf("failed to delete note %d: %w", noteID, err)
	}

	s.audit.Record("note.delete", "Note", noteID, fmt.Sprintf("Note removed from client %d: %s", clientID, note.Body), actorID)
	return nil
}
