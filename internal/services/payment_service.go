package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
	"github.com/dillendillen/doya.app-sub001/pkg/utils"
)

// --- Custom Service Errors for Payment ---
var (
	ErrPaymentNotFound       = errors.New("payment not found")
	ErrInvoiceNotFound       = errors.New("invoice not found")
	ErrInvoiceClientMismatch = errors.New("invoice belongs to a different client")
	ErrPaymentValidation     = errors.New("payment data validation error")
)

// paymentMethodLookup maps free-text method strings onto the fixed
// enumeration. The lookup is case-sensitive on purpose; anything not in the
// table falls through to OTHER.
var paymentMethodLookup = map[string]string{
	"CASH":          models.PaymentMethodCash,
	"Cash":          models.PaymentMethodCash,
	"cash":          models.PaymentMethodCash,
	"BANK_TRANSFER": models.PaymentMethodBankTransfer,
	"Bank Transfer": models.PaymentMethodBankTransfer,
	"BankTransfer":  models.PaymentMethodBankTransfer,
	"Wire":          models.PaymentMethodBankTransfer,
	"SEPA":          models.PaymentMethodBankTransfer,
	"IBAN":          models.PaymentMethodBankTransfer,
	"CARD":          models.PaymentMethodCard,
	"Card":          models.PaymentMethodCard,
	"Credit Card":   models.PaymentMethodCard,
	"Debit Card":    models.PaymentMethodCard,
	"PayPal":        models.PaymentMethodCard,
	"Stripe":        models.PaymentMethodCard,
	"SumUp":         models.PaymentMethodCard,
	"OTHER":         models.PaymentMethodOther,
	"Other":         models.PaymentMethodOther,
}

// NormalizePaymentMethod maps a free-text method onto the enumeration,
// defaulting to OTHER.
func NormalizePaymentMethod(method string) string {
	if normalized, ok := paymentMethodLookup[strings.TrimSpace(method)]; ok {
		return normalized
	}
	return models.PaymentMethodOther
}

// --- Payment DTOs ---

type CreatePaymentRequest struct {
	ClientID  int64   `json:"client_id" binding:"required"`
	InvoiceID *int64  `json:"invoice_id"` // nil records a standalone receipt
	Amount    float64 `json:"amount" binding:"required,gt=0"` // major units
	Currency  string  `json:"currency"`
	Method    string  `json:"method"`
	Notes     *string `json:"notes"`
}

type UpdatePaymentRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency"`
	Method   string  `json:"method"`
	Notes    *string `json:"notes"`
}

// --- PaymentService Interface ---
type PaymentService interface {
	RecordPayment(req CreatePaymentRequest, actorID *int64) (*models.Payment, error)
	GetPaymentByID(paymentID int64) (*models.Payment, error)
	GetPayments(clientID *int64) ([]models.Payment, error)
	UpdatePayment(paymentID int64, req UpdatePaymentRequest, actorID *int64) (*models.Payment, error)
	DeletePayment(paymentID int64, actorID *int64) error

	GetInvoiceByID(invoiceID int64) (*models.Invoice, error)
	GetInvoicesByClient(clientID int64) ([]models.Invoice, error)
	GetPendingInvoices() ([]models.Invoice, error)
}

// --- paymentService Implementation ---
type paymentService struct {
	paymentRepo repositories.PaymentRepository
	invoiceRepo repositories.InvoiceRepository
	audit       AuditRecorder
	db          *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	invoiceRepo repositories.InvoiceRepository,
	audit AuditRecorder,
	db *sql.DB,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		audit:       audit,
		db:          db,
	}
}

// RecordPayment records a received amount. Against an existing invoice the
// invoice flips to PAID and the payment takes the invoice's currency, not
// the request's, so the two can never disagree. Without an invoice a new
// invoice is created pre-marked PAID as an ad hoc receipt.
func (s *paymentService) RecordPayment(req CreatePaymentRequest, actorID *int64) (*models.Payment, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	amountCents := utils.CentsFromMajor(req.Amount)
	method := NormalizePaymentMethod(req.Method)
	now := time.Now()

	var invoice *models.Invoice
	if req.InvoiceID != nil {
		existing, err := s.invoiceRepo.GetInvoiceByID(*req.InvoiceID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrInvoiceNotFound
			}
			return nil, fmt.Errorf("failed to load invoice for payment: %w", err)
		}
		if existing.ClientID != req.ClientID {
			return nil, fmt.Errorf("%w: invoice %d is for client %d, payment declared client %d",
				ErrInvoiceClientMismatch, existing.ID, existing.ClientID, req.ClientID)
		}
		invoice = existing
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	payment := &models.Payment{
		ClientID:    req.ClientID,
		AmountCents: amountCents,
		Method:      method,
		Notes:       req.Notes,
		ReceivedOn:  now,
	}

	if invoice != nil {
		if err := s.invoiceRepo.MarkInvoicePaid(tx, invoice.ID, now); err != nil {
			return nil, fmt.Errorf("failed to mark invoice paid: %w", err)
		}
		payment.InvoiceID = invoice.ID
		payment.Currency = invoice.Currency
	} else {
		currency := strings.ToUpper(strings.TrimSpace(req.Currency))
		if currency == "" {
			currency = "EUR"
		}
		receipt := &models.Invoice{
			ClientID:   req.ClientID,
			TotalCents: amountCents,
			Currency:   currency,
			Status:     models.InvoiceStatusPaid,
			IssuedOn:   now,
			PaidOn:     &now,
		}
		invoiceID, err := s.invoiceRepo.CreateInvoice(tx, receipt)
		if err != nil {
			return nil, fmt.Errorf("failed to create receipt invoice: %w", err)
		}
		payment.InvoiceID = invoiceID
		payment.Currency = currency
	}

	paymentID, err := s.paymentRepo.CreatePayment(tx, payment)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment transaction: %w", err)
	}

	s.audit.Record("payment.create", "Payment", paymentID,
		fmt.Sprintf("Recorded %s payment of %d cents", method, amountCents), actorID)

	created, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment recorded but failed to reload: %w", err)
	}
	return created, nil
}

// GetPaymentByID returns a single payment.
func (s *paymentService) GetPaymentByID(paymentID int64) (*models.Payment, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	payment, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment by ID: %w", err)
	}
	return payment, nil
}

// GetPayments lists payments, optionally scoped to one client.
func (s *paymentService) GetPayments(clientID *int64) ([]models.Payment, error) {
	if s.db == nil {
		return []models.Payment{}, nil
	}
	if clientID != nil {
		payments, err := s.paymentRepo.GetPaymentsByClient(*clientID)
		if err != nil {
			return nil, fmt.Errorf("failed to get payments for client: %w", err)
		}
		return payments, nil
	}
	payments, err := s.paymentRepo.GetAllPayments()
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	return payments, nil
}

// UpdatePayment overwrites amount, currency, method and notes. The linked
// invoice's status is deliberately not re-touched.
func (s *paymentService) UpdatePayment(paymentID int64, req UpdatePaymentRequest, actorID *int64) (*models.Payment, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}

	payment, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to find payment for update: %w", err)
	}

	payment.AmountCents = utils.CentsFromMajor(req.Amount)
	if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
		payment.Currency = currency
	}
	if req.Method != "" {
		payment.Method = NormalizePaymentMethod(req.Method)
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	if err := s.paymentRepo.UpdatePayment(s.db, payment); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	s.audit.Record("payment.update", "Payment", paymentID,
		fmt.Sprintf("Updated payment to %d cents", payment.AmountCents), actorID)

	updated, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		return nil, fmt.Errorf("payment updated but failed to reload: %w", err)
	}
	return updated, nil
}

// GetInvoiceByID returns a single invoice.
func (s *paymentService) GetInvoiceByID(invoiceID int64) (*models.Invoice, error) {
	if s.db == nil {
		return nil, ErrServiceUnavailable
	}
	invoice, err := s.invoiceRepo.GetInvoiceByID(invoiceID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice by ID: %w", err)
	}
	return invoice, nil
}

// GetInvoicesByClient lists a client's invoices, newest first.
func (s *paymentService) GetInvoicesByClient(clientID int64) ([]models.Invoice, error) {
	if s.db == nil {
		return []models.Invoice{}, nil
	}
	invoices, err := s.invoiceRepo.GetInvoicesByClient(clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoices for client: %w", err)
	}
	return invoices, nil
}

// GetPendingInvoices lists every invoice still awaiting payment.
func (s *paymentService) GetPendingInvoices() ([]models.Invoice, error) {
	if s.db == nil {
		return []models.Invoice{}, nil
	}
	invoices, err := s.invoiceRepo.GetPendingInvoices()
	if err != nil {
		return nil, fmt.Errorf("failed to get pending invoices: %w", err)
	}
	return invoices, nil
}

// DeletePayment removes a payment. When the payment is the only one on a
// standalone (package-less) invoice, that orphaned invoice is removed in
// the same transaction; a shared or package-linked invoice stays.
func (s *paymentService) DeletePayment(paymentID int64, actorID *int64) error {
	if s.db == nil {
		return ErrServiceUnavailable
	}

	payment, err := s.paymentRepo.GetPaymentByID(paymentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to find payment for deletion: %w", err)
	}

	invoice, err := s.invoiceRepo.GetInvoiceByID(payment.InvoiceID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to load invoice for payment deletion: %w", err)
	}

	siblingCount, err := s.paymentRepo.CountPaymentsByInvoice(payment.InvoiceID)
	if err != nil {
		return fmt.Errorf("failed to count payments on invoice: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.paymentRepo.DeletePayment(tx, paymentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	if invoice != nil && invoice.PackageID == nil && siblingCount == 1 {
		if err := s.invoiceRepo.DeleteInvoice(tx, invoice.ID); err != nil {
			return fmt.Errorf("failed to delete orphaned invoice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit payment deletion: %w", err)
	}

	s.audit.Record("payment.delete", "Payment", paymentID,
		fmt.Sprintf("Deleted %s payment of %d cents", payment.Method, payment.AmountCents), actorID)
	return nil
}
