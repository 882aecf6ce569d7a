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

// BookingRepository defines the interface for booking-request database operations.
type BookingRepository interface {
	CreateBooking(executor SQLExecutor, booking *models.Booking) (int64, error)
	GetBookingByID(id int64) (*models.Booking, error)
	GetBookings(status *string, clientID *int64) ([]models.Booking, error)
	UpdateBooking(executor SQLExecutor, booking *models.Booking) error
	DeleteBooking(executor SQLExecutor, id int64) error
}

type bookingRepository struct {
	db *sql.DB
}

// NewBookingRepository creates a new instance of BookingRepository.
func NewBookingRepository(db *sql.DB) BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, client_id, dog_id, requested_time, status, message, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }, booking *models.Booking) error {
	var dogID sql.NullInt64
	err := row.Scan(
		&booking.ID, &booking.ClientID, &dogID, &booking.RequestedTime,
		&booking.Status, &booking.Message, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if dogID.Valid {
		booking.DogID = &dogID.Int64
	}
	return nil
}

// CreateBooking inserts a new booking request.
func (r *bookingRepository) CreateBooking(executor SQLExecutor, booking *models.Booking) (int64, error) {
	query := `INSERT INTO bookings (client_id, dog_id, requested_time, status, message, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	currentTime := time.Now()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = currentTime
	}
	if booking.UpdatedAt.IsZero() {
		booking.UpdatedAt = currentTime
	}

	err := executor.QueryRow(query,
		booking.ClientID, booking.DogID, booking.RequestedTime, booking.Status,
		booking.Message, booking.CreatedAt, booking.UpdatedAt,
	).Scan(&booking.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: client %d for booking", ErrNotFound, booking.ClientID)
		}
		return 0, fmt.Errorf("%w: creating booking: %v", ErrDatabaseError, err)
	}
	return booking.ID, nil
}

// GetBookingByID retrieves a booking by its ID.
func (r *bookingRepository) GetBookingByID(id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	err := scanBooking(r.db.QueryRow(`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id), booking)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting booking by ID %d: %v", ErrDatabaseError, id, err)
	}
	return booking, nil
}

// GetBookings lists bookings, optionally filtered by status and client.
func (r *bookingRepository) GetBookings(status *string, clientID *int64) ([]models.Booking, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + bookingColumns + ` FROM bookings`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *status)
		argCount++
	}
	if clientID != nil {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argCount))
		args = append(args, *clientID)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY requested_time ASC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying bookings: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		var booking models.Booking
		if err := scanBooking(rows, &booking); err != nil {
			return nil, fmt.Errorf("%w: scanning booking: %v", ErrDatabaseError, err)
		}
		bookings = append(bookings, booking)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating booking rows: %v", ErrDatabaseError, err)
	}
	return bookings, nil
}

// UpdateBooking overwrites the mutable fields of a booking.
func (r *bookingRepository) UpdateBooking(executor SQLExecutor, booking *models.Booking) error {
	query := `UPDATE bookings SET
	            dog_id = $1, requested_time = $2, status = $3, message = $4, updated_at = $5
	          WHERE id = $6`

	booking.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		booking.DogID, booking.RequestedTime, booking.Status, booking.Message,
		booking.UpdatedAt, booking.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating booking ID %d: %v", ErrDatabaseError, booking.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating booking ID %d: %v", ErrDatabaseError, booking.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBooking removes a booking row.
func (r *bookingRepository) DeleteBooking(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting booking ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting booking ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
