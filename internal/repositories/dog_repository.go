package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/lib/pq"
)

// DogRepository defines the interface for dog-related database operations.
type DogRepository interface {
	CreateDog(executor SQLExecutor, dog *models.Dog) (int64, error)
	GetDogByID(id int64) (*models.Dog, error)
	GetDogsByClient(clientID int64) ([]models.Dog, error)
	UpdateDog(executor SQLExecutor, dog *models.Dog) error
	DeleteDog(executor SQLExecutor, id int64) error
}

type dogRepository struct {
	db *sql.DB
}

// NewDogRepository creates a new instance of DogRepository.
func NewDogRepository(db *sql.DB) DogRepository {
	return &dogRepository{db: db}
}

const dogColumns = `id, client_id, name, breed, date_of_birth, temperament, notes, created_at, updated_at`

func scanDog(row interface{ Scan(...interface{}) error }, dog *models.Dog) error {
	var dob sql.NullTime
	err := row.Scan(
		&dog.ID, &dog.ClientID, &dog.Name, &dog.Breed, &dob,
		&dog.Temperament, &dog.Notes, &dog.CreatedAt, &dog.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if dob.Valid {
		dog.DateOfBirth = &dob.Time
	}
	return nil
}

// CreateDog inserts a new dog into the database.
func (r *dogRepository) CreateDog(executor SQLExecutor, dog *models.Dog) (int64, error) {
	query := `INSERT INTO dogs (client_id, name, breed, date_of_birth, temperament, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	currentTime := time.Now()
	if dog.CreatedAt.IsZero() {
		dog.CreatedAt = currentTime
	}
	if dog.UpdatedAt.IsZero() {
		dog.UpdatedAt = currentTime
	}

	var dob sql.NullTime
	if dog.DateOfBirth != nil && !dog.DateOfBirth.IsZero() {
		dob = sql.NullTime{Time: *dog.DateOfBirth, Valid: true}
	}

	err := executor.QueryRow(query,
		dog.ClientID, dog.Name, dog.Breed, dob, dog.Temperament, dog.Notes,
		dog.CreatedAt, dog.UpdatedAt,
	).Scan(&dog.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: client %d for dog", ErrNotFound, dog.ClientID)
		}
		return 0, fmt.Errorf("%w: creating dog: %v", ErrDatabaseError, err)
	}
	return dog.ID, nil
}

// GetDogByID retrieves a dog by its ID.
func (r *dogRepository) GetDogByID(id int64) (*models.Dog, error) {
	dog := &models.Dog{}
	query := `SELECT ` + dogColumns + ` FROM dogs WHERE id = $1`

	err := scanDog(r.db.QueryRow(query, id), dog)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting dog by ID %d: %v", ErrDatabaseError, id, err)
	}
	return dog, nil
}

// GetDogsByClient lists a client's dogs.
func (r *dogRepository) GetDogsByClient(clientID int64) ([]models.Dog, error) {
	rows, err := r.db.Query(`SELECT `+dogColumns+` FROM dogs WHERE client_id = $1 ORDER BY name ASC`, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying dogs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	dogs := []models.Dog{}
	for rows.Next() {
		var dog models.Dog
		if err := scanDog(rows, &dog); err != nil {
			return nil, fmt.Errorf("%w: scanning dog: %v", ErrDatabaseError, err)
		}
		dogs = append(dogs, dog)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating dog rows: %v", ErrDatabaseError, err)
	}
	return dogs, nil
}

// UpdateDog updates an existing dog in the database.
func (r *dogRepository) UpdateDog(executor SQLExecutor, dog *models.Dog) error {
	query := `UPDATE dogs SET
	            name = $1, breed = $2, date_of_birth = $3, temperament = $4,
	            notes = $5, updated_at = $6
	          WHERE id = $7`

	dog.UpdatedAt = time.Now()
	var dob sql.NullTime
	if dog.DateOfBirth != nil && !dog.DateOfBirth.IsZero() {
		dob = sql.NullTime{Time: *dog.DateOfBirth, Valid: true}
	}

	result, err := executor.Exec(query,
		dog.Name, dog.Breed, dob, dog.Temperament, dog.Notes, dog.UpdatedAt, dog.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating dog ID %d: %v", ErrDatabaseError, dog.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating dog ID %d: %v", ErrDatabaseError, dog.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDog removes a dog from the database.
func (r *dogRepository) DeleteDog(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM dogs WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("%w: dog ID %d is referenced by other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting dog ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting dog ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
