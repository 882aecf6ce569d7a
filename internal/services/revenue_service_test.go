package services

import (
	"testing"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Friday, so the surrounding week runs Sunday Aug 23 through Saturday Aug 29.
var revenueNow = time.Date(2026, time.August, 28, 15, 0, 0, 0, time.UTC)

func paidAt(cents int64, receivedOn time.Time) models.Payment {
	return models.Payment{AmountCents: cents, Currency: "CHF", ReceivedOn: receivedOn}
}

func pendingAt(cents int64, issuedOn time.Time) models.Invoice {
	return models.Invoice{TotalCents: cents, Currency: "CHF", Status: models.InvoiceStatusUnpaid, IssuedOn: issuedOn}
}

func TestWeekKey(t *testing.T) {
	cases := []struct {
		day  time.Time
		want string
	}{
		{time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2026, time.January, 7, 0, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2026, time.January, 8, 0, 0, 0, 0, time.UTC), "2026-W02"},
		{time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), "2025-W53"},
		{time.Date(2026, time.August, 23, 0, 0, 0, 0, time.UTC), "2026-W34"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, weekKey(tc.day), "day %s", tc.day)
	}
}

func TestStartOfWeek(t *testing.T) {
	sunday := time.Date(2026, time.August, 23, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, sunday, startOfWeek(revenueNow))
	// A Sunday opens its own week.
	assert.Equal(t, sunday, startOfWeek(sunday.Add(5*time.Hour)))
}

func TestBuildSummary(t *testing.T) {
	payments := []models.Payment{
		paidAt(10000, revenueNow),                                              // this week and this month
		paidAt(5000, time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC)),    // this month only
		paidAt(2000, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)),   // older
	}
	pending := []models.Invoice{
		pendingAt(4000, time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)), // this week and this month
	}

	summary := buildSummary(payments, pending, revenueNow)

	assert.Equal(t, int64(17000), summary.TotalPaidCents)
	assert.Equal(t, int64(4000), summary.TotalPendingCents)
	assert.Equal(t, int64(21000), summary.TotalRevenueCents)
	assert.Equal(t, int64(15000), summary.ThisMonthPaid)
	assert.Equal(t, int64(4000), summary.ThisMonthPending)
	assert.Equal(t, int64(10000), summary.ThisWeekPaid)
	assert.Equal(t, int64(4000), summary.ThisWeekPending)
	assert.Equal(t, "CHF", summary.Currency)
}

func TestBuildSummary_Empty(t *testing.T) {
	summary := buildSummary(nil, nil, revenueNow)
	assert.Equal(t, int64(0), summary.TotalRevenueCents)
	assert.Equal(t, "EUR", summary.Currency)
}

func TestBuildSeries_Monthly(t *testing.T) {
	payments := []models.Payment{
		paidAt(10000, revenueNow),
		paidAt(5000, time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC)),
		paidAt(2000, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)),
		paidAt(99900, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)), // outside the window
	}
	pending := []models.Invoice{
		pendingAt(4000, time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)),
	}

	series := buildSeries(payments, pending, revenueNow)
	require.Len(t, series.Monthly, 12)

	oldest := series.Monthly[0]
	assert.Equal(t, "2025-09", oldest.Period)
	assert.Equal(t, int64(0), oldest.TotalCents)

	march := series.Monthly[6]
	assert.Equal(t, "2026-03", march.Period)
	assert.Equal(t, int64(2000), march.PaidCents)

	current := series.Monthly[11]
	assert.Equal(t, "2026-08", current.Period)
	assert.Equal(t, int64(15000), current.PaidCents)
	assert.Equal(t, int64(4000), current.PendingCents)
	assert.Equal(t, int64(19000), current.TotalCents)

	var windowTotal int64
	for _, point := range series.Monthly {
		windowTotal += point.PaidCents
	}
	assert.Equal(t, int64(17000), windowTotal, "the 2024 payment must not appear in any bucket")
}

func TestBuildSeries_Weekly(t *testing.T) {
	payments := []models.Payment{
		paidAt(10000, revenueNow),
		paidAt(5000, time.Date(2026, time.August, 3, 9, 0, 0, 0, time.UTC)), // week of Sunday Aug 2
	}
	pending := []models.Invoice{
		pendingAt(4000, time.Date(2026, time.August, 25, 8, 0, 0, 0, time.UTC)),
	}

	series := buildSeries(payments, pending, revenueNow)
	require.Len(t, series.Weekly, 12)

	current := series.Weekly[11]
	assert.Equal(t, "2026-W34", current.Period)
	assert.Equal(t, int64(10000), current.PaidCents)
	assert.Equal(t, int64(4000), current.PendingCents)

	augustStart := series.Weekly[8]
	assert.Equal(t, "2026-W31", augustStart.Period)
	assert.Equal(t, int64(5000), augustStart.PaidCents)
}

func TestBuildSeries_BucketBoundary(t *testing.T) {
	// Received exactly at the next month's midnight: counts for September.
	payments := []models.Payment{
		paidAt(1000, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)),
		paidAt(500, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)),
	}

	series := buildSeries(payments, nil, time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC))
	august := series.Monthly[10]
	september := series.Monthly[11]
	require.Equal(t, "2026-08", august.Period)
	require.Equal(t, "2026-09", september.Period)
	assert.Equal(t, int64(1000), august.PaidCents)
	assert.Equal(t, int64(500), september.PaidCents)
}

func TestRevenueService_NilDB(t *testing.T) {
	service := NewRevenueService(newFakePaymentRepo(), newFakeInvoiceRepo(), nil)

	summary, err := service.GetSummary()
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.TotalRevenueCents)
	assert.Equal(t, "EUR", summary.Currency)

	series, err := service.GetByPeriod()
	require.NoError(t, err)
	assert.Len(t, series.Monthly, 12)
	assert.Len(t, series.Weekly, 12)
}

func TestRevenueService_SummaryFromStore(t *testing.T) {
	db, _ := newMockDB(t)
	paymentRepo := newFakePaymentRepo()
	invoiceRepo := newFakeInvoiceRepo()
	paymentRepo.add(paidAt(4999, time.Now()))
	invoiceRepo.add(pendingAt(2500, time.Now()))
	invoiceRepo.add(models.Invoice{TotalCents: 9999, Currency: "CHF", Status: models.InvoiceStatusPaid, IssuedOn: time.Now()})

	service := NewRevenueService(paymentRepo, invoiceRepo, db)
	summary, err := service.GetSummary()
	require.NoError(t, err)

	assert.Equal(t, int64(4999), summary.TotalPaidCents)
	// Paid invoices are settled; only the UNPAID one counts as pending.
	assert.Equal(t, int64(2500), summary.TotalPendingCents)
	assert.Equal(t, int64(7499), summary.TotalRevenueCents)
}
