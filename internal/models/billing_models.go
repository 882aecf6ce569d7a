package models

import "time"

// Invoice statuses. UNPAID is the "awaiting payment" state used for
// package-purchase invoices; DRAFT and ISSUED are the normal billing
// document path. All three count as pending revenue (see revenue service).
const (
	InvoiceStatusDraft  = "DRAFT"
	InvoiceStatusIssued = "ISSUED"
	InvoiceStatusUnpaid = "UNPAID"
	InvoiceStatusPaid   = "PAID"
)

// Payment methods. Free-text method strings from clients are normalized
// onto this enumeration, defaulting to OTHER.
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
	PaymentMethodCard         = "CARD"
	PaymentMethodOther        = "OTHER"
)

// Derived package statuses, never stored. Precedence is fixed:
// expired beats low beats empty beats active.
const (
	PackageStatusExpired = "expired"
	PackageStatusLow     = "low"
	PackageStatusEmpty   = "empty"
	PackageStatusActive  = "active"
)

// Package is a bundle of purchased session-credits, or, when owned by the
// sentinel template client, a reusable template with no real owner.
type Package struct {
	ID           int64      `json:"id" db:"id"`
	ClientID     int64      `json:"client_id" db:"client_id"`
	IsTemplate   bool       `json:"is_template" db:"-"` // derived from ownership by the sentinel client
	PackageType  string     `json:"package_type" db:"package_type"`
	TotalCredits int        `json:"total_credits" db:"total_credits"`
	UsedCredits  int        `json:"used_credits" db:"used_credits"`
	PriceCents   int64      `json:"price_cents" db:"price_cents"`
	Currency     string     `json:"currency" db:"currency"`
	ExpiresOn    *time.Time `json:"expires_on,omitempty" db:"expires_on"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// SessionsRemaining reports the unredeemed credit count.
func (p *Package) SessionsRemaining() int {
	return p.TotalCredits - p.UsedCredits
}

// StatusAt derives the display status at the given instant. The branch
// order must not change: a package that is both expired and out of credits
// reports "expired", never "empty".
func (p *Package) StatusAt(now time.Time) string {
	if p.ExpiresOn != nil && p.ExpiresOn.Before(now) {
		return PackageStatusExpired
	}
	remaining := p.SessionsRemaining()
	if remaining <= 1 {
		return PackageStatusLow
	}
	if remaining == 0 {
		return PackageStatusEmpty
	}
	return PackageStatusActive
}

// Invoice is a billing document for a client. PackageID links the invoice
// to the package purchase that generated it; standalone invoices record
// ad hoc payments and have no package link.
type Invoice struct {
	ID         int64      `json:"id" db:"id"`
	ClientID   int64      `json:"client_id" db:"client_id"`
	PackageID  *int64     `json:"package_id,omitempty" db:"package_id"`
	TotalCents int64      `json:"total_cents" db:"total_cents"`
	Currency   string     `json:"currency" db:"currency"`
	Status     string     `json:"status" db:"status"`
	IssuedOn   time.Time  `json:"issued_on" db:"issued_on"`
	PaidOn     *time.Time `json:"paid_on,omitempty" db:"paid_on"`
	Notes      *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// Payment is a received amount linked to exactly one invoice.
type Payment struct {
	ID          int64     `json:"id" db:"id"`
	InvoiceID   int64     `json:"invoice_id" db:"invoice_id"`
	ClientID    int64     `json:"client_id" db:"client_id"`
	AmountCents int64     `json:"amount_cents" db:"amount_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Method      string    `json:"method" db:"method"`
	Notes       *string   `json:"notes,omitempty" db:"notes"`
	ReceivedOn  time.Time `json:"received_on" db:"received_on"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
