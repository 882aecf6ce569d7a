package models

// RevenueSummary is the dashboard headline: lifetime and current-period
// paid/pending splits, all in integer cents. Multi-currency totals are not
// unit-converted; the business operates in a single currency.
type RevenueSummary struct {
	TotalPaidCents    int64  `json:"total_paid_cents"`
	TotalPendingCents int64  `json:"total_pending_cents"`
	TotalRevenueCents int64  `json:"total_revenue_cents"`
	ThisMonthPaid     int64  `json:"this_month_paid_cents"`
	ThisMonthPending  int64  `json:"this_month_pending_cents"`
	ThisWeekPaid      int64  `json:"this_week_paid_cents"`
	ThisWeekPending   int64  `json:"this_week_pending_cents"`
	Currency          string `json:"currency"`
}

// RevenuePoint is one bucket of the trailing by-period series. Period is
// "YYYY-MM" for months and "YYYY-Wnn" for weeks; dashboards key off these
// exact strings.
type RevenuePoint struct {
	Period       string `json:"period"`
	PaidCents    int64  `json:"paid_cents"`
	PendingCents int64  `json:"pending_cents"`
	TotalCents   int64  `json:"total_cents"`
}

// RevenueByPeriod carries both trailing windows.
type RevenueByPeriod struct {
	Monthly []RevenuePoint `json:"monthly"`
	Weekly  []RevenuePoint `json:"weekly"`
}
