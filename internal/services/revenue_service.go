package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dillendillen/doya.app-sub001/internal/models"
	"github.com/dillendillen/doya.app-sub001/internal/repositories"
)

// RevenueService builds the dashboard projections. Both projections re-scan
// the same two source streams on every request: all payments, and every
// invoice not yet marked PAID.
type RevenueService interface {
	GetSummary() (*models.RevenueSummary, error)
	GetByPeriod() (*models.RevenueByPeriod, error)
}

type revenueService struct {
	paymentRepo repositories.PaymentRepository
	invoiceRepo repositories.InvoiceRepository
	db          *sql.DB
}

// NewRevenueService creates a new instance of RevenueService.
func NewRevenueService(
	paymentRepo repositories.PaymentRepository,
	invoiceRepo repositories.InvoiceRepository,
	db *sql.DB,
) RevenueService {
	return &revenueService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		db:          db,
	}
}

const trailingWindows = 12

// monthKey renders a calendar-month bucket key, e.g. "2026-08".
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// weekKey renders a week bucket key, e.g. "2026-W35". The week number is
// days-since-Jan-1 divided by 7 — not ISO-8601 week numbering. Dashboards
// key off these exact strings, so the formula must stay as-is.
func weekKey(t time.Time) string {
	week := (t.YearDay()-1)/7 + 1
	return fmt.Sprintf("%d-W%02d", t.Year(), week)
}

// startOfWeek returns the Sunday 00:00 local time opening t's week.
func startOfWeek(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// startOfMonth returns the first day of t's month at 00:00 local time.
func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// buildSummary folds the two streams into the headline numbers at the
// given instant. Amounts are integer cents; currencies are not converted.
func buildSummary(payments []models.Payment, pending []models.Invoice, now time.Time) models.RevenueSummary {
	summary := models.RevenueSummary{Currency: "EUR"}
	if len(payments) > 0 {
		summary.Currency = payments[0].Currency
	}

	monthStart := startOfMonth(now)
	monthEnd := monthStart.AddDate(0, 1, 0)
	weekStart := startOfWeek(now)
	weekEnd := weekStart.AddDate(0, 0, 7)

	for _, payment := range payments {
		summary.TotalPaidCents += payment.AmountCents
		if within(payment.ReceivedOn, monthStart, monthEnd) {
			summary.ThisMonthPaid += payment.AmountCents
		}
		if within(payment.ReceivedOn, weekStart, weekEnd) {
			summary.ThisWeekPaid += payment.AmountCents
		}
	}
	for _, invoice := range pending {
		summary.TotalPendingCents += invoice.TotalCents
		if within(invoice.IssuedOn, monthStart, monthEnd) {
			summary.ThisMonthPending += invoice.TotalCents
		}
		if within(invoice.IssuedOn, weekStart, weekEnd) {
			summary.ThisWeekPending += invoice.TotalCents
		}
	}
	summary.TotalRevenueCents = summary.TotalPaidCents + summary.TotalPendingCents
	return summary
}

// buildSeries folds the streams into the trailing 12-month and 12-week
// windows ending at now, oldest bucket first.
func buildSeries(payments []models.Payment, pending []models.Invoice, now time.Time) models.RevenueByPeriod {
	series := models.RevenueByPeriod{
		Monthly: make([]models.RevenuePoint, 0, trailingWindows),
		Weekly:  make([]models.RevenuePoint, 0, trailingWindows),
	}

	for i := trailingWindows - 1; i >= 0; i-- {
		bucketStart := startOfMonth(now).AddDate(0, -i, 0)
		bucketEnd := bucketStart.AddDate(0, 1, 0)
		point := models.RevenuePoint{Period: monthKey(bucketStart)}
		for _, payment := range payments {
			if within(payment.ReceivedOn, bucketStart, bucketEnd) {
				point.PaidCents += payment.AmountCents
			}
		}
		for _, invoice := range pending {
			if within(invoice.IssuedOn, bucketStart, bucketEnd) {
				point.PendingCents += invoice.TotalCents
			}
		}
		point.TotalCents = point.PaidCents + point.PendingCents
		series.Monthly = append(series.Monthly, point)
	}

	for i := trailingWindows - 1; i >= 0; i-- {
		bucketStart := startOfWeek(now).AddDate(0, 0, -7*i)
		bucketEnd := bucketStart.AddDate(0, 0, 7)
		point := models.RevenuePoint{Period: weekKey(bucketStart)}
		for _, payment := range payments {
			if within(payment.ReceivedOn, bucketStart, bucketEnd) {
				point.PaidCents += payment.AmountCents
			}
		}
		for _, invoice := range pending {
			if within(invoice.IssuedOn, bucketStart, bucketEnd) {
				point.PendingCents += invoice.TotalCents
			}
		}
		point.TotalCents = point.PaidCents + point.PendingCents
		series.Weekly = append(series.Weekly, point)
	}

	return series
}

func (s *revenueService) loadStreams() ([]models.Payment, []models.Invoice, error) {
	payments, err := s.paymentRepo.GetAllPayments()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load payments for revenue: %w", err)
	}
	pending, err := s.invoiceRepo.GetPendingInvoices()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load pending invoices for revenue: %w", err)
	}
	return payments, pending, nil
}

// GetSummary returns headline revenue totals. With no store configured the
// summary is all zeroes rather than an error; this is a read projection.
func (s *revenueService) GetSummary() (*models.RevenueSummary, error) {
	if s.db == nil {
		return &models.RevenueSummary{Currency: "EUR"}, nil
	}
	payments, pending, err := s.loadStreams()
	if err != nil {
		return nil, err
	}
	summary := buildSummary(payments, pending, time.Now())
	return &summary, nil
}

// GetByPeriod returns the trailing 12-month and 12-week series.
func (s *revenueService) GetByPeriod() (*models.RevenueByPeriod, error) {
	if s.db == nil {
		empty := buildSeries(nil, nil, time.Now())
		return &empty, nil
	}
	payments, pending, err := s.loadStreams()
	if err != nil {
		return nil, err
	}
	series := buildSeries(payments, pending, time.Now())
	return &series, nil
}
