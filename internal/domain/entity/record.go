// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordKind discriminates the two kinds of financial records.
type RecordKind string

const (
	RecordKindPayment RecordKind = "payment"
	RecordKindExpense RecordKind = "expense"
)

// Payment type keys used as category keys for payment records.
const (
	PaymentTypeMonthlyFee = "monthly_fee"
	PaymentTypeDeposit    = "deposit"
	PaymentTypeRefund     = "refund"
)

// FinancialRecord is the common shape of a payment or an expense as seen by
// the aggregation core. Kind-specific attributes are carried alongside and
// never interpreted by the aggregator.
type FinancialRecord struct {
	ID          uuid.UUID
	Kind        RecordKind
	Amount      decimal.Decimal // Sign preserved: refunds are negative
	OccurredAt  time.Time       // Stored and compared in UTC
	CategoryKey string          // payment_type for payments, category for expenses

	// Payment attributes
	StudentID   *uuid.UUID
	StudentName string
	PaymentMode string

	// Expense attributes
	Description string
}

// Payment represents a seat/membership payment made by a student.
type Payment struct {
	ID          uuid.UUID
	StudentID   *uuid.UUID
	StudentName string
	Type        string // monthly_fee, deposit, refund, ...
	Mode        string // cash, card, transfer
	Amount      decimal.Decimal
	PaidAt      time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record converts the payment into its FinancialRecord view.
func (p *Payment) Record() FinancialRecord {
	return FinancialRecord{
		ID:          p.ID,
		Kind:        RecordKindPayment,
		Amount:      p.Amount,
		OccurredAt:  p.PaidAt,
		CategoryKey: p.Type,
		StudentID:   p.StudentID,
		StudentName: p.StudentName,
		PaymentMode: p.Mode,
	}
}

// Expense represents an operating expense of the study room.
type Expense struct {
	ID          uuid.UUID
	Category    string
	Description string
	Amount      decimal.Decimal
	SpentAt     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record converts the expense into its FinancialRecord view.
func (e *Expense) Record() FinancialRecord {
	return FinancialRecord{
		ID:          e.ID,
		Kind:        RecordKindExpense,
		Amount:      e.Amount,
		OccurredAt:  e.SpentAt,
		CategoryKey: e.Category,
		Description: e.Description,
	}
}

// RecordPage is a single page of records returned by a list query, together
// with the authoritative total for the filter.
type RecordPage struct {
	Items []FinancialRecord
	Total int
}
