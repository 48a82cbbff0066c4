// Package report contains the finance report use cases and the pure
// aggregation core shared by the server endpoints and the report client.
package report

import (
	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/domain/entity"
)

// SentinelPaymentKey groups payments that carry no payment type.
const SentinelPaymentKey = "other"

// SentinelExpenseKey groups expenses that carry no category.
const SentinelExpenseKey = "Uncategorized"

// paymentTypeLabels maps well-known payment type keys to display labels.
var paymentTypeLabels = map[string]string{
	entity.PaymentTypeMonthlyFee: "Monthly fee",
	entity.PaymentTypeDeposit:    "Deposit",
	entity.PaymentTypeRefund:     "Refund",
	SentinelPaymentKey:           "Other",
}

// KeyFunc extracts the grouping key from a record.
type KeyFunc func(entity.FinancialRecord) string

// CategoryKey is the standard KeyFunc: the record's category key.
func CategoryKey(r entity.FinancialRecord) string {
	return r.CategoryKey
}

// SentinelFor returns the sentinel group key for records of the given kind
// that carry no category key.
func SentinelFor(kind entity.RecordKind) string {
	if kind == entity.RecordKindPayment {
		return SentinelPaymentKey
	}
	return SentinelExpenseKey
}

// GroupLabel returns the display label for a group key.
func GroupLabel(kind entity.RecordKind, key string) string {
	if kind == entity.RecordKindPayment {
		if label, ok := paymentTypeLabels[key]; ok {
			return label
		}
	}
	return key
}

// AggregateRecords partitions records by keyFn into groups reported in
// first-seen key order, so repeated calls over the same input produce the
// same ordering. Records with an empty key land in the sentinel group.
// Sums preserve sign: a refund with a negative amount reduces its group
// total. Records whose amount failed to parse upstream arrive as zero and
// still count toward ItemCount and Items.
func AggregateRecords(records []entity.FinancialRecord, keyFn KeyFunc, kind entity.RecordKind) []entity.Group {
	groups := make([]entity.Group, 0)
	index := make(map[string]int)

	for _, rec := range records {
		key := keyFn(rec)
		if key == "" {
			key = SentinelFor(kind)
		}

		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, entity.Group{
				Key:    key,
				Label:  GroupLabel(kind, key),
				Amount: decimal.Zero,
			})
		}

		groups[i].Amount = groups[i].Amount.Add(rec.Amount)
		groups[i].ItemCount++
		groups[i].Items = append(groups[i].Items, rec)
	}

	return groups
}

// SumGroups returns the sum of the range-wide group amounts.
func SumGroups(groups []entity.Group) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Amount)
	}
	return total
}

// BuildAggregate assembles the full report for a period from raw payment and
// expense records. Totals are derived from the groups so the sum invariant
// (net == income - expenses, totals == sum of group amounts) holds by
// construction.
func BuildAggregate(period entity.ReportPeriod, payments, expenses []entity.FinancialRecord) *entity.Aggregate {
	paymentGroups := AggregateRecords(payments, CategoryKey, entity.RecordKindPayment)
	expenseGroups := AggregateRecords(expenses, CategoryKey, entity.RecordKindExpense)

	totalIncome := SumGroups(paymentGroups)
	totalExpenses := SumGroups(expenseGroups)

	return &entity.Aggregate{
		Period:        period,
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Net:           totalIncome.Sub(totalExpenses),
		PaymentGroups: paymentGroups,
		ExpenseGroups: expenseGroups,
	}
}

// ParseAmount parses a wire amount defensively. A missing or non-numeric
// amount yields zero and ok=false; the caller keeps the record so a
// malformed amount never crashes a report.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	if raw == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
