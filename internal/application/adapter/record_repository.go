// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/domain/entity"
)

// RecordFilter defines filter options for listing financial records.
type RecordFilter struct {
	Period entity.ReportPeriod
	// Key restricts the listing to one category key (payment type or
	// expense category). Empty means all.
	Key string
	// KeyIsEmpty restricts the listing to records whose category key is
	// blank, the rows the report buckets under its placeholder group.
	// Takes precedence over Key.
	KeyIsEmpty bool
}

// RecordPagination defines pagination options for record listings.
type RecordPagination struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the page.
func (p RecordPagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// CategoryTotal is a range-wide per-category sum and count, ordered by the
// category's first occurrence in the range.
type CategoryTotal struct {
	Key       string
	Amount    decimal.Decimal
	ItemCount int
}

// PeriodTotals holds the income/expense sums for one calendar window.
type PeriodTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// PaymentRepository defines the interface for payment persistence operations.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *entity.Payment) error

	// List returns one page of payments matching the filter plus the
	// authoritative total for the filter.
	List(ctx context.Context, filter RecordFilter, pagination RecordPagination) (*entity.RecordPage, error)

	// CategoryTotals returns range-wide sums grouped by payment type.
	CategoryTotals(ctx context.Context, period entity.ReportPeriod) ([]CategoryTotal, error)

	// SumRange returns the signed sum of payment amounts in a window.
	SumRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error)

	// HasBefore reports whether any payment exists before the given time.
	HasBefore(ctx context.Context, t time.Time) (bool, error)
}

// ExpenseRepository defines the interface for expense persistence operations.
type ExpenseRepository interface {
	// Create persists a new expense.
	Create(ctx context.Context, expense *entity.Expense) error

	// List returns one page of expenses matching the filter plus the
	// authoritative total for the filter.
	List(ctx context.Context, filter RecordFilter, pagination RecordPagination) (*entity.RecordPage, error)

	// CategoryTotals returns range-wide sums grouped by expense category.
	CategoryTotals(ctx context.Context, period entity.ReportPeriod) ([]CategoryTotal, error)

	// SumRange returns the sum of expense amounts in a window.
	SumRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error)

	// HasBefore reports whether any expense exists before the given time.
	HasBefore(ctx context.Context, t time.Time) (bool, error)
}
