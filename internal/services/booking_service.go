package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
)

// --- Custom Service Errors for Booking ---
var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrBookingValidation = errors.New("booking data validation error")
)

var validBookingStatuses = map[string]bool{
	models.BookingStatusPending:   true,
	models.BookingStatusConfirmed: true,
	models.BookingStatusDeclined:  true,
	models.BookingStatusCancelled: true,
}

// --- Booking DTOs ---

type CreateBookingRequest struct {
	ClientID      int64     `json:"client_id" binding:"required"`
	DogID         *int64    `json:"dog_id"`
	RequestedTime time.Time `json:"requested_time" binding:"required"`
	Message       *string   `json:"message"`
}

type UpdateBookingRequest struct {
	RequestedTime time.Time `json:"requested_time" binding:"required"`
	Status        string    `json:"status" binding:"required"`
	Message       *string   `json:"message"`
}

// --- BookingService Interface ---

type BookingService interface {
	CreateBooking(req CreateBookingRequest, actorID *int64) (*models.Booking, error)
	GetBookingByID(id int64) (*models.Booking, error)
	GetBookings(status *string, clientID *int64) ([]models.Booking, error)
	UpdateBooking(id int64, req UpdateBookingRequest, actorID *int64) (*models.Booking, error)
	DeleteBooking(id int64, actorID *int64) error
}

type bookingService struct {
	bookingRepo repositories.BookingRepository
	clientRepo  repositories.ClientRepository
	dogRepo     repositories.DogRepository
	audit       AuditRecorder
	db          *sql.DB
}

// NewBookingService creates a new instance of BookingService.
func NewBookingService(
	bookingRepo repositories.BookingRepository,
	clientRepo repositories.ClientRepository,
	dogRepo repositories.DogRepository,
	audit AuditRecorder,
	db *sql.DB,
) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		clientRepo:  clientRepo,
		dogRepo:     dogRepo,
		audit:       audit,
		db:          db,
	}
}

// CreateBooking records an inbound appointment request. New bookings always
// start out pending.
func (s *bookingService) CreateBooking(req CreateBookingRequest, actorID *int64) (*models.Booking, error) {
	if req.RequestedTime.IsZero() {
		return nil, fmt.Errorf("%w: requested_time is required", ErrBookingValidation)
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
	if req.DogID != nil {
		dog, err := s.dogRepo.GetDogByID(*req.DogID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrDogNotFound
			}
			return nil, fmt.Errorf("failed to verify dog %d: %w", *req.DogID, err)
		}
		if dog.ClientID != req.ClientID {
			return nil, fmt.Errorf("%w: dog %d does not belong to client %d", ErrBookingValidation, *req.DogID, req.ClientID)
		}
	}

	booking := &models.Booking{
		ClientID:      req.ClientID,
		DogID:         req.DogID,
		RequestedTime: req.RequestedTime,
		Status:        models.BookingStatusPending,
		Message:       req.Message,
	}
	id, err := s.bookingRepo.CreateBooking(s.db, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.audit.Record("booking.create", "Booking", id, fmt.Sprintf("Booking requested for client %d", booking.ClientID), actorID)
	return s.bookingRepo.GetBookingByID(id)
}

// GetBookingByID retrieves a single booking.
func (s *bookingService) GetBookingByID(id int64) (*models.Booking, error) {
	if s.db == nil {
		return nil, ErrBookingNotFound
	}
	booking, err := s.bookingRepo.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	return booking, nil
}

// GetBookings lists bookings with optional status and client filters.
func (s *bookingService) GetBookings(status *string, clientID *int64) ([]models.Booking, error) {
	if status != nil && !validBookingStatuses[*status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBookingValidation, *status)
	}
	if s.db == nil {
		return []models.Booking{}, nil
	}
	bookings, err := s.bookingRepo.GetBookings(status, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBooking changes the requested time, status or message of a booking.
// The client and dog references are fixed at creation.
func (s *bookingService) UpdateBooking(id int64, req UpdateBookingRequest, actorID *int64) (*models.Booking, error) {
	if req.RequestedTime.IsZero() {
		return nil, fmt.Errorf("%w: requested_time is required", ErrBookingValidation)
	}
	if !validBookingStatuses[req.Status] {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBookingValidation, req.Status)
	}
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	booking, err := s.GetBookingByID(id)
	if err != nil {
		return nil, err
	}

	previousStatus := booking.Status
	booking.RequestedTime = req.RequestedTime
	booking.Status = req.Status
	booking.Message = req.Message

	if err := s.bookingRepo.UpdateBooking(s.db, booking); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to update booking %d: %w", id, err)
	}

	summary := "Booking updated"
	if previousStatus != req.Status {
		summary = fmt.Sprintf("Booking %s -> %s", previousStatus, req.Status)
	}
	s.audit.Record("booking.update", "Booking", id, summary, actorID)
	return s.bookingRepo.GetBookingByID(id)
}

// DeleteBooking removes a booking request.
func (s *bookingService) DeleteBooking(id int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	if _, err := s.GetBookingByID(id); err != nil {
		return err
	}

	if err := s.bookingRepo.DeleteBooking(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to delete booking %d: %w", id, err)
	}

	s.audit.Record("booking.delete", "Booking", id, fmt.Sprintf("Booking %d deleted", id), actorID)
	return nil
}
