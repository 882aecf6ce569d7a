package models

import "time"

// TemplateClientName is the sentinel client that owns package templates.
// The packages table requires an owner, so reusable templates are parked
// under this documented schema workaround instead of a nullable column.
const TemplateClientName = "__TEMPLATES__"

// Client represents a customer of the dog-training business.
type Client struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Source    *string   `json:"source,omitempty" db:"source"`     // how the client found the business
	Language  *string   `json:"language,omitempty" db:"language"` // preferred contact language
	Notes     *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Dog is a client-owned animal that sessions are scheduled for.
type Dog struct {
	ID          int64      `json:"id" db:"id"`
	ClientID    int64      `json:"client_id" db:"client_id"`
	Name        string     `json:"name" db:"name"`
	Breed       *string    `json:"breed,omitempty" db:"breed"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Temperament *string    `json:"temperament,omitempty" db:"temperament"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Note is a free-form annotation attached to a client record.
type Note struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	Body      string    `json:"body" db:"body"`
	AuthorID  *int64    `json:"author_id,omitempty" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
