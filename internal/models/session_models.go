package models

import "time"

// Session statuses.
const (
	SessionStatusScheduled = "scheduled"
	SessionStatusDone      = "done"
	SessionStatusCancelled = "cancelled"
	SessionStatusNoShow    = "no_show"
)

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusDeclined  = "declined"
	BookingStatusCancelled = "cancelled"
)

// Session is a scheduled training appointment for a dog, optionally drawing
// a credit from a linked package once it is marked done.
type Session struct {
	ID             int64      `json:"id" db:"id"`
	DogID          int64      `json:"dog_id" db:"dog_id"`
	PackageID      *int64     `json:"package_id,omitempty" db:"package_id"`
	TrainerID      *int64     `json:"trainer_id,omitempty" db:"trainer_id"`
	Status         string     `json:"status" db:"status"`
	StartTime      time.Time  `json:"start_time" db:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty" db:"end_time"`
	Location       *string    `json:"location,omitempty" db:"location"`
	Notes          *string    `json:"notes,omitempty" db:"notes"`
	CreditDeducted bool       `json:"credit_deducted" db:"credit_deducted"` // guards against double-deduction
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Booking is an inbound appointment request that has not yet been turned
// into a scheduled session.
type Booking struct {
	ID            int64     `json:"id" db:"id"`
	ClientID      int64     `json:"client_id" db:"client_id"`
	DogID         *int64    `json:"dog_id,omitempty" db:"dog_id"`
	RequestedTime time.Time `json:"requested_time" db:"requested_time"`
	Status        string    `json:"status" db:"status"`
	Message       *string   `json:"message,omitempty" db:"message"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Task is a back-office to-do item, optionally tied to a client.
type Task struct {
	ID         int64      `json:"id" db:"id"`
	Title      string     `json:"title" db:"title"`
	Details    *string    `json:"details,omitempty" db:"details"`
	ClientID   *int64     `json:"client_id,omitempty" db:"client_id"`
	AssigneeID *int64     `json:"assignee_id,omitempty" db:"assignee_id"`
	DueOn      *time.Time `json:"due_on,omitempty" db:"due_on"`
	Done       bool       `json:"done" db:"done"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
