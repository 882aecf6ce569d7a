package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/lib/pq"
)

// PaymentRepository defines the interface for payment database operations.
type PaymentRepository interface {
	CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentByID(id int64) (*models.Payment, error)
	GetAllPayments() ([]models.Payment, error)
	GetPaymentsByClient(clientID int64) ([]models.Payment, error)
	CountPaymentsByInvoice(invoiceID int64) (int, error)
	UpdatePayment(executor SQLExecutor, payment *models.Payment) error
	DeletePayment(executor SQLExecutor, id int64) error
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, invoice_id, client_id, amount_cents, currency, method, notes, received_on, created_at, updated_at`

func scanPayment(row interface{ Scan(...interface{}) error }, payment *models.Payment) error {
	return row.Scan(
		&payment.ID, &payment.InvoiceID, &payment.ClientID, &payment.AmountCents,
		&payment.Currency, &payment.Method, &payment.Notes, &payment.ReceivedOn,
		&payment.CreatedAt, &payment.UpdatedAt,
	)
}

// CreatePayment inserts a new payment row.
func (r *paymentRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (invoice_id, client_id, amount_cents, currency, method, notes, received_on, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	currentTime := time.Now()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = currentTime
	}
	if payment.UpdatedAt.IsZero() {
		payment.UpdatedAt = currentTime
	}
	if payment.ReceivedOn.IsZero() {
		payment.ReceivedOn = currentTime
	}

	err := executor.QueryRow(query,
		payment.InvoiceID, payment.ClientID, payment.AmountCents, payment.Currency,
		payment.Method, payment.Notes, payment.ReceivedOn,
		payment.CreatedAt, payment.UpdatedAt,
	).Scan(&payment.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: invoice %d for payment", ErrNotFound, payment.InvoiceID)
		}
		return 0, fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

// GetPaymentByID retrieves a payment by its ID.
func (r *paymentRepository) GetPaymentByID(id int64) (*models.Payment, error) {
	payment := &models.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	err := scanPayment(r.db.QueryRow(query, id), payment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting payment by ID %d: %v", ErrDatabaseError, id, err)
	}
	return payment, nil
}

func (r *paymentRepository) queryPayments(query string, args ...interface{}) ([]models.Payment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var payment models.Payment
		if err := scanPayment(rows, &payment); err != nil {
			return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, payment)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment rows: %v", ErrDatabaseError, err)
	}
	return payments, nil
}

// GetAllPayments lists every payment, oldest first. The revenue aggregator
// re-scans this stream on each request.
func (r *paymentRepository) GetAllPayments() ([]models.Payment, error) {
	return r.queryPayments(`SELECT ` + paymentColumns + ` FROM payments ORDER BY received_on ASC`)
}

// GetPaymentsByClient lists a client's payments, newest first.
func (r *paymentRepository) GetPaymentsByClient(clientID int64) ([]models.Payment, error) {
	return r.queryPayments(`SELECT `+paymentColumns+` FROM payments WHERE client_id = $1 ORDER BY received_on DESC`, clientID)
}

// CountPaymentsByInvoice reports how many payments reference an invoice.
func (r *paymentRepository) CountPaymentsByInvoice(invoiceID int64) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM payments WHERE invoice_id = $1`, invoiceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting payments for invoice ID %d: %v", ErrDatabaseError, invoiceID, err)
	}
	return count, nil
}

// UpdatePayment overwrites the mutable fields of a payment. The linked
// invoice's status is never re-touched here.
func (r *paymentRepository) UpdatePayment(executor SQLExecutor, payment *models.Payment) error {
	query := `UPDATE payments SET
	            amount_cents = $1, currency = $2, method = $3, notes = $4, updated_at = $5
	          WHERE id = $6`

	payment.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		payment.AmountCents, payment.Currency, payment.Method, payment.Notes,
		payment.UpdatedAt, payment.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating payment ID %d: %v", ErrDatabaseError, payment.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for updating payment ID %d: %v", ErrDatabaseError, payment.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePayment removes a payment row.
func (r *paymentRepository) DeletePayment(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting payment ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting payment ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
