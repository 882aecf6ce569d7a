package services

import (
	"testing"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	service     PaymentService
	paymentRepo *fakePaymentRepo
	invoiceRepo *fakeInvoiceRepo
	audit       *fakeAudit
}

func newPaymentFixture(t *testing.T) (*paymentFixture, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	f := &paymentFixture{
		paymentRepo: newFakePaymentRepo(),
		invoiceRepo: newFakeInvoiceRepo(),
		audit:       &fakeAudit{},
	}
	f.service = NewPaymentService(f.paymentRepo, f.invoiceRepo, f.audit, db)
	return f, mock
}

func TestNormalizePaymentMethod(t *testing.T) {
	cases := map[string]string{
		"CASH":          models.PaymentMethodCash,
		"cash":          models.PaymentMethodCash,
		"  Cash  ":      models.PaymentMethodCash,
		"Bank Transfer": models.PaymentMethodBankTransfer,
		"SEPA":          models.PaymentMethodBankTransfer,
		"Wire":          models.PaymentMethodBankTransfer,
		"IBAN":          models.PaymentMethodBankTransfer,
		"PayPal":        models.PaymentMethodCard,
		"Stripe":        models.PaymentMethodCard,
		"SumUp":         models.PaymentMethodCard,
		"Credit Card":   models.PaymentMethodCard,
		"":              models.PaymentMethodOther,
		"Bitcoin":       models.PaymentMethodOther,
		"CASh":          models.PaymentMethodOther, // lookup is case-sensitive
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePaymentMethod(input), "input %q", input)
	}
}

func TestRecordPayment_SettlesInvoice(t *testing.T) {
	f, mock := newPaymentFixture(t)
	invoice := f.invoiceRepo.add(models.Invoice{
		ClientID: 7, TotalCents: 4999, Currency: "CHF", Status: models.InvoiceStatusUnpaid,
	})
	expectTx(mock)

	payment, err := f.service.RecordPayment(CreatePaymentRequest{
		ClientID:  7,
		InvoiceID: &invoice.ID,
		Amount:    49.99,
		Currency:  "EUR", // ignored, the invoice currency wins
		Method:    "PayPal",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4999), payment.AmountCents)
	assert.Equal(t, "CHF", payment.Currency)
	assert.Equal(t, models.PaymentMethodCard, payment.Method)
	assert.Equal(t, invoice.ID, payment.InvoiceID)

	settled := f.invoiceRepo.invoices[invoice.ID]
	assert.Equal(t, models.InvoiceStatusPaid, settled.Status)
	require.NotNil(t, settled.PaidOn)

	require.Len(t, f.audit.calls, 1)
	assert.Equal(t, "payment.create", f.audit.calls[0].Action)
}

func TestRecordPayment_InvoiceClientMismatch(t *testing.T) {
	f, _ := newPaymentFixture(t)
	invoice := f.invoiceRepo.add(models.Invoice{
		ClientID: 7, TotalCents: 1000, Currency: "EUR", Status: models.InvoiceStatusUnpaid,
	})

	_, err := f.service.RecordPayment(CreatePaymentRequest{
		ClientID:  8,
		InvoiceID: &invoice.ID,
		Amount:    10,
	}, nil)
	assert.ErrorIs(t, err, ErrInvoiceClientMismatch)
	assert.Equal(t, models.InvoiceStatusUnpaid, f.invoiceRepo.invoices[invoice.ID].Status)
	assert.Empty(t, f.paymentRepo.payments)
}

func TestRecordPayment_UnknownInvoice(t *testing.T) {
	f, _ := newPaymentFixture(t)
	missing := int64(404)

	_, err := f.service.RecordPayment(CreatePaymentRequest{
		ClientID: 7, InvoiceID: &missing, Amount: 10,
	}, nil)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestRecordPayment_StandaloneCreatesPaidReceipt(t *testing.T) {
	f, mock := newPaymentFixture(t)
	expectTx(mock)

	payment, err := f.service.RecordPayment(CreatePaymentRequest{
		ClientID: 3,
		Amount:   25.50,
		Method:   "cash",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(2550), payment.AmountCents)
	assert.Equal(t, "EUR", payment.Currency)
	assert.Equal(t, models.PaymentMethodCash, payment.Method)

	receipt, err := f.invoiceRepo.onlyInvoice()
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusPaid, receipt.Status)
	assert.Nil(t, receipt.PackageID)
	assert.Equal(t, int64(2550), receipt.TotalCents)
	require.NotNil(t, receipt.PaidOn)
	assert.Equal(t, receipt.ID, payment.InvoiceID)
}

func TestUpdatePayment_NeverTouchesInvoice(t *testing.T) {
	f, _ := newPaymentFixture(t)
	invoice := f.invoiceRepo.add(models.Invoice{
		ClientID: 3, TotalCents: 2000, Currency: "EUR", Status: models.InvoiceStatusPaid,
	})
	payment := f.paymentRepo.add(models.Payment{
		InvoiceID: invoice.ID, ClientID: 3, AmountCents: 2000, Currency: "EUR",
		Method: models.PaymentMethodCash,
	})

	updated, err := f.service.UpdatePayment(payment.ID, UpdatePaymentRequest{
		Amount: 18.00,
		Method: "SEPA",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1800), updated.AmountCents)
	assert.Equal(t, models.PaymentMethodBankTransfer, updated.Method)
	assert.Equal(t, "EUR", updated.Currency) // empty currency in request keeps the old one
	assert.Equal(t, int64(2000), f.invoiceRepo.invoices[invoice.ID].TotalCents)
	assert.Equal(t, models.InvoiceStatusPaid, f.invoiceRepo.invoices[invoice.ID].Status)
}

func TestDeletePayment_RemovesOrphanedStandaloneInvoice(t *testing.T) {
	f, mock := newPaymentFixture(t)
	receipt := f.invoiceRepo.add(models.Invoice{
		ClientID: 3, TotalCents: 2550, Currency: "EUR", Status: models.InvoiceStatusPaid,
	})
	payment := f.paymentRepo.add(models.Payment{
		InvoiceID: receipt.ID, ClientID: 3, AmountCents: 2550, Currency: "EUR",
		Method: models.PaymentMethodCash,
	})

	expectTx(mock)
	require.NoError(t, f.service.DeletePayment(payment.ID, nil))

	assert.NotContains(t, f.paymentRepo.payments, payment.ID)
	assert.NotContains(t, f.invoiceRepo.invoices, receipt.ID)
}

func TestDeletePayment_KeepsPackageLinkedInvoice(t *testing.T) {
	f, mock := newPaymentFixture(t)
	packageID := int64(5)
	invoice := f.invoiceRepo.add(models.Invoice{
		ClientID: 3, PackageID: &packageID, TotalCents: 4999, Currency: "EUR",
		Status: models.InvoiceStatusPaid,
	})
	payment := f.paymentRepo.add(models.Payment{
		InvoiceID: invoice.ID, ClientID: 3, AmountCents: 4999, Currency: "EUR",
		Method: models.PaymentMethodCard,
	})

	expectTx(mock)
	require.NoError(t, f.service.DeletePayment(payment.ID, nil))

	assert.NotContains(t, f.paymentRepo.payments, payment.ID)
	assert.Contains(t, f.invoiceRepo.invoices, invoice.ID)
}

func TestDeletePayment_KeepsSharedInvoice(t *testing.T) {
	f, mock := newPaymentFixture(t)
	invoice := f.invoiceRepo.add(models.Invoice{
		ClientID: 3, TotalCents: 5000, Currency: "EUR", Status: models.InvoiceStatusPaid,
	})
	first := f.paymentRepo.add(models.Payment{
		InvoiceID: invoice.ID, ClientID: 3, AmountCents: 2500, Currency: "EUR",
		Method: models.PaymentMethodCash,
	})
	f.paymentRepo.add(models.Payment{
		InvoiceID: invoice.ID, ClientID: 3, AmountCents: 2500, Currency: "EUR",
		Method: models.PaymentMethodCash,
	})

	expectTx(mock)
	require.NoError(t, f.service.DeletePayment(first.ID, nil))

	assert.Contains(t, f.invoiceRepo.invoices, invoice.ID)
	assert.Len(t, f.paymentRepo.payments, 1)
}

func TestGetInvoiceByID_NotFound(t *testing.T) {
	f, _ := newPaymentFixture(t)

	_, err := f.service.GetInvoiceByID(404)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestGetInvoicesByClient(t *testing.T) {
	f, _ := newPaymentFixture(t)
	mine := f.invoiceRepo.add(models.Invoice{
		ClientID: 3, TotalCents: 4999, Currency: "EUR", Status: models.InvoiceStatusUnpaid,
	})
	f.invoiceRepo.add(models.Invoice{
		ClientID: 9, TotalCents: 1500, Currency: "EUR", Status: models.InvoiceStatusUnpaid,
	})

	invoices, err := f.service.GetInvoicesByClient(3)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, mine.ID, invoices[0].ID)
}

func TestGetPendingInvoices_ExcludesPaid(t *testing.T) {
	f, _ := newPaymentFixture(t)
	open := f.invoiceRepo.add(models.Invoice{
		ClientID: 3, TotalCents: 4999, Currency: "EUR", Status: models.InvoiceStatusUnpaid,
	})
	f.invoiceRepo.add(models.Invoice{
		ClientID: 3, TotalCents: 2550, Currency: "EUR", Status: models.InvoiceStatusPaid,
	})

	pending, err := f.service.GetPendingInvoices()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, open.ID, pending[0].ID)
}
