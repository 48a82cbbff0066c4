package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportPeriod is the date-range filter applied to all aggregation.
// A nil bound means unbounded on that side.
type ReportPeriod struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// IsValid reports whether the period bounds are consistent
// (start <= end when both are present).
func (p ReportPeriod) IsValid() bool {
	if p.StartDate == nil || p.EndDate == nil {
		return true
	}
	return !p.EndDate.Before(*p.StartDate)
}

// Group is a set of records sharing a category key. Amount and ItemCount are
// range-wide totals; Items holds only the pages loaded so far.
type Group struct {
	Key       string
	Label     string
	Amount    decimal.Decimal
	ItemCount int
	Items     []FinancialRecord
}

// Aggregate is the full computed report for a period: totals plus
// per-category groups for payments and expenses.
type Aggregate struct {
	Period        ReportPeriod
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Net           decimal.Decimal
	PaymentGroups []Group
	ExpenseGroups []Group
	// Truncated is set when a fallback aggregation hit the hard page cap
	// and the totals cover only the fetched records.
	Truncated bool
}

// MonthlyBucket is one calendar bucket of the coarse overview summary.
// Month is nil when the bucket covers a whole year.
type MonthlyBucket struct {
	Year     int
	Month    *int
	Label    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// MonthlySummary is the bucketed overview consumed by the dashboard widget.
type MonthlySummary struct {
	Buckets []MonthlyBucket
	HasMore bool
}
