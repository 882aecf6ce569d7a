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

// --- Custom Service Errors for Dog ---
var (
	ErrDogNotFound   = errors.New("dog not found")
	ErrDogValidation = errors.New("dog data validation error")
)

// --- Dog DTOs ---

type CreateDogRequest struct {
	ClientID    int64   `json:"client_id" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Breed       *string `json:"breed"`
	DateOfBirth *string `json:"date_of_birth"` // YYYY-MM-DD
	Temperament *string `json:"temperament"`
	Notes       *string `json:"notes"`
}

type UpdateDogRequest struct {
	Name        string  `json:"name" binding:"required"`
	Breed       *string `json:"breed"`
	DateOfBirth *string `json:"date_of_birth"`
	Temperament *string `json:"temperament"`
	Notes       *string `json:"notes"`
}

// --- DogService Interface ---

type DogService interface {
	CreateDog(req CreateDogRequest, actorID *int64) (*models.Dog, error)
	GetDogByID(id int64) (*models.Dog, error)
	GetDogsByClient(clientID int64) ([]models.Dog, error)
	UpdateDog(id int64, req UpdateDogRequest, actorID *int64) (*models.Dog, error)
	DeleteDog(id int64, actorID *int64) error
}

type dogService struct {
	dogRepo    repositories.DogRepository
	clientRepo repositories.ClientRepository
	audit      AuditRecorder
	db         *sql.DB
}

// NewDogService creates a new instance of DogService.
func NewDogService(
	dogRepo repositories.DogRepository,
	clientRepo repositories.ClientRepository,
	audit AuditRecorder,
	db *sql.DB,
) DogService {
	return &dogService{
		dogRepo:    dogRepo,
		clientRepo: clientRepo,
		audit:      audit,
		db:         db,
	}
}

func parseDateOfBirth(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(packageDateLayout, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: date_of_birth must be YYYY-MM-DD", ErrDogValidation)
	}
	return &parsed, nil
}

// CreateDog registers a dog under an existing client.
func (s *dogService) CreateDog(req CreateDogRequest, actorID *int64) (*models.Dog, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name is required", ErrDogValidation)
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	if _, err := s.clientRepo.GetClientByID(req.ClientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to verify client %d: %w", req.ClientID, err)
	}

	dog := &models.Dog{
		ClientID:    req.ClientID,
		Name:        req.Name,
		Breed:       req.Breed,
		DateOfBirth: dob,
		Temperament: req.Temperament,
		Notes:       req.Notes,
	}
	id, err := s.dogRepo.CreateDog(s.db, dog)
	if err != nil {
		return nil, fmt.Errorf("failed to create dog: %w", err)
	}

	s.audit.Record("dog.create", "Dog", id, fmt.Sprintf("Dog %q added to client %d", dog.Name, dog.ClientID), actorID)
	return s.dogRepo.GetDogByID(id)
}

// GetDogByID retrieves a single dog.
func (s *dogService) GetDogByID(id int64) (*models.Dog, error) {
	if s.db == nil {
		return nil, ErrDogNotFound
	}
	dog, err := s.dogRepo.GetDogByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDogNotFound
		}
		return nil, fmt.Errorf("failed to get dog %d: %w", id, err)
	}
	return dog, nil
}

// GetDogsByClient lists a client's dogs.
func (s *dogService) GetDogsByClient(clientID int64) ([]models.Dog, error) {
	if s.db == nil {
		return []models.Dog{}, nil
	}
	if _, err := s.clientRepo.GetClientByID(clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to verify client %d: %w", clientID, err)
	}
	dogs, err := s.dogRepo.GetDogsByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dogs for client %d: %w", clientID, err)
	}
	return dogs, nil
}

// UpdateDog applies a full update. The owning client cannot be changed.
func (s *dogService) UpdateDog(id int64, req UpdateDogRequest, actorID *int64) (*models.Dog, error) {
	if utils.IsEmpty(req.Name) {
		return nil, fmt.Errorf("%w: name is required", ErrDogValidation)
	}
	dob, err := parseDateOfBirth(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	dog, err := s.GetDogByID(id)
	if err != nil {
		return nil, err
	}

	dog.Name = req.Name
	dog.Breed = req.Breed
	dog.DateOfBirth = dob
	dog.Temperament = req.Temperament
	dog.Notes = req.Notes

	if err := s.dogRepo.UpdateDog(s.db, dog); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDogNotFound
		}
		return nil, fmt.Errorf("failed to update dog %d: %w", id, err)
	}

	s.audit.Record("dog.update", "Dog", id, fmt.Sprintf("Dog %q updated", dog.Name), actorID)
	return s.dogRepo.GetDogByID(id)
}

// DeleteDog removes a dog and, via cascade, its sessions.
func (s *dogService) DeleteDog(id int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	dog, err := s.GetDogByID(id)
	if err != nil {
		return err
	}

	if err := s.dogRepo.DeleteDog(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrDogNotFound
		}
		return fmt.Errorf("failed to delete dog %d: %w", id, err)
	}

	s.audit.Record("dog.delete", "Dog", id, fmt.Sprintf("Dog %q deleted", dog.Name), actorID)
	return nil
}
