package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/lib/pq"
)

// InvoiceRepository defines the interface for invoice database operations.
type InvoiceRepository interface {
	CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error)
	GetInvoiceByID(id int64) (*models.Invoice, error)
	GetInvoicesByClient(clientID int64) ([]models.Invoice, error)
	// GetPendingInvoices lists every invoice not yet marked PAID.
	GetPendingInvoices() ([]models.Invoice, error)
	MarkInvoicePaid(executor SQLExecutor, id int64, paidOn time.Time) error
	DeleteInvoice(executor SQLExecutor, id int64) error
}

type invoiceRepository struct {
	db *sql.DB
}

// NewInvoiceRepository creates a new instance of InvoiceRepository.
func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, client_id, package_id, total_cents, currency, status, issued_on, paid_on, notes, created_at, updated_at`

func scanInvoice(row interface{ Scan(...interface{}) error }, invoice *models.Invoice) error {
	var packageID sql.NullInt64
	var paidOn sql.NullTime
	err := row.Scan(
		&invoice.ID, &invoice.ClientID, &packageID, &invoice.TotalCents,
		&invoice.Currency, &invoice.Status, &invoice.IssuedOn, &paidOn,
		&invoice.Notes, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if packageID.Valid {
		invoice.PackageID = &packageID.Int64
	}
	if paidOn.Valid {
		invoice.PaidOn = &paidOn.Time
	}
	return nil
}

// CreateInvoice inserts a new invoice row.
func (r *invoiceRepository) CreateInvoice(executor SQLExecutor, invoice *models.Invoice) (int64, error) {
	query := `INSERT INTO invoices (client_id, package_id, total_cents, currency, status, issued_on, paid_on, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	          RETURNING id`

	currentTime := time.Now()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = currentTime
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = currentTime
	}

	var packageID sql.NullInt64
	if invoice.PackageID != nil {
		packageID = sql.NullInt64{Int64: *invoice.PackageID, Valid: true}
	}
	var paidOn sql.NullTime
	if invoice.PaidOn != nil {
		paidOn = sql.NullTime{Time: *invoice.PaidOn, Valid: true}
	}

	err := executor.QueryRow(query,
		invoice.ClientID, packageID, invoice.TotalCents, invoice.Currency,
		invoice.Status, invoice.IssuedOn, paidOn, invoice.Notes,
		invoice.CreatedAt, invoice.UpdatedAt,
	).Scan(&invoice.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return 0, fmt.Errorf("%w: client %d for invoice", ErrNotFound, invoice.ClientID)
		}
		return 0, fmt.Errorf("%w: creating invoice: %v", ErrDatabaseError, err)
	}
	return invoice.ID, nil
}

// GetInvoiceByID retrieves an invoice by its ID.
func (r *invoiceRepository) GetInvoiceByID(id int64) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	err := scanInvoice(r.db.QueryRow(query, id), invoice)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting invoice by ID %d: %v", ErrDatabaseError, id, err)
	}
	return invoice, nil
}

func (r *invoiceRepository) queryInvoices(query string, args ...interface{}) ([]models.Invoice, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying invoices: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	invoices := []models.Invoice{}
	for rows.Next() {
		var invoice models.Invoice
		if err := scanInvoice(rows, &invoice); err != nil {
			return nil, fmt.Errorf("%w: scanning invoice: %v", ErrDatabaseError, err)
		}
		invoices = append(invoices, invoice)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating invoice rows: %v", ErrDatabaseError, err)
	}
	return invoices, nil
}

// GetInvoicesByClient lists a client's invoices, newest first.
func (r *invoiceRepository) GetInvoicesByClient(clientID int64) ([]models.Invoice, error) {
	return r.queryInvoices(`SELECT `+invoiceColumns+` FROM invoices WHERE client_id = $1 ORDER BY issued_on DESC`, clientID)
}

// GetPendingInvoices lists every invoice whose status is not PAID.
func (r *invoiceRepository) GetPendingInvoices() ([]models.Invoice, error) {
	return r.queryInvoices(`SELECT `+invoiceColumns+` FROM invoices WHERE status <> $1 ORDER BY issued_on ASC`, models.InvoiceStatusPaid)
}

// MarkInvoicePaid flips the invoice to PAID and stamps paid_on.
func (r *invoiceRepository) MarkInvoicePaid(executor SQLExecutor, id int64, paidOn time.Time) error {
	query := `UPDATE invoices SET status = $1, paid_on = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, models.InvoiceStatusPaid, paidOn, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: marking invoice ID %d paid: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for invoice ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteInvoice removes an invoice row.
func (r *invoiceRepository) DeleteInvoice(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting invoice ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for deleting invoice ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
