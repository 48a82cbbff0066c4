package report

import (
	"context"
	"fmt"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/domain/entity"
)

const (
	// DefaultGroupPageSize is the number of items shipped per group with the
	// initial aggregate when the caller gives no hint.
	DefaultGroupPageSize = 5

	// MaxGroupPageSize caps the per-group page size a caller may request.
	MaxGroupPageSize = 500

	// MaxExportPageSize bounds the per-group item count loaded for a
	// complete export. A group larger than this marks the aggregate
	// truncated instead of silently dropping rows.
	MaxExportPageSize = 10000
)

// GetBalanceSheetInput represents the input for computing a balance sheet.
type GetBalanceSheetInput struct {
	Period       entity.ReportPeriod
	PageSizeHint int

	// Complete loads every group's items up to MaxExportPageSize instead
	// of one page, for exports that must cover the whole range.
	Complete bool
}

// GetBalanceSheetUseCase computes the pre-aggregated balance sheet served by
// the finance detail endpoint: range-wide per-category totals plus an
// initial page of items per group.
type GetBalanceSheetUseCase struct {
	paymentRepo adapter.PaymentRepository
	expenseRepo adapter.ExpenseRepository
}

// NewGetBalanceSheetUseCase creates a new GetBalanceSheetUseCase instance.
func NewGetBalanceSheetUseCase(
	paymentRepo adapter.PaymentRepository,
	expenseRepo adapter.ExpenseRepository,
) *GetBalanceSheetUseCase {
	return &GetBalanceSheetUseCase{
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
	}
}

// Execute computes the aggregate for the given period.
func (uc *GetBalanceSheetUseCase) Execute(
	ctx context.Context,
	input GetBalanceSheetInput,
) (*entity.Aggregate, error) {
	if err := ValidatePeriod(input.Period); err != nil {
		return nil, err
	}

	pageSize := input.PageSizeHint
	if pageSize <= 0 {
		pageSize = DefaultGroupPageSize
	}
	if pageSize > MaxGroupPageSize {
		pageSize = MaxGroupPageSize
	}
	if input.Complete {
		pageSize = MaxExportPageSize
	}

	paymentGroups, err := uc.buildGroups(ctx, uc.paymentRepo, entity.RecordKindPayment, input.Period, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payments: %w", err)
	}

	expenseGroups, err := uc.buildGroups(ctx, uc.expenseRepo, entity.RecordKindExpense, input.Period, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expenses: %w", err)
	}

	totalIncome := SumGroups(paymentGroups)
	totalExpenses := SumGroups(expenseGroups)

	aggregate := &entity.Aggregate{
		Period:        input.Period,
		TotalIncome:   totalIncome,
		TotalExpenses: totalExpenses,
		Net:           totalIncome.Sub(totalExpenses),
		PaymentGroups: paymentGroups,
		ExpenseGroups: expenseGroups,
	}
	if input.Complete {
		aggregate.Truncated = anyGroupPartial(paymentGroups) || anyGroupPartial(expenseGroups)
	}
	return aggregate, nil
}

// anyGroupPartial reports whether some group holds fewer items than its
// range-wide count.
func anyGroupPartial(groups []entity.Group) bool {
	for _, g := range groups {
		if g.ItemCount > len(g.Items) {
			return true
		}
	}
	return false
}

// recordLister is the subset of the repositories the group builder needs.
type recordLister interface {
	List(ctx context.Context, filter adapter.RecordFilter, pagination adapter.RecordPagination) (*entity.RecordPage, error)
	CategoryTotals(ctx context.Context, period entity.ReportPeriod) ([]adapter.CategoryTotal, error)
}

// buildGroups assembles groups from the range-wide category totals plus the
// first page of items for each group. Group Amount and ItemCount come from
// the totals query, never from the loaded page.
func (uc *GetBalanceSheetUseCase) buildGroups(
	ctx context.Context,
	repo recordLister,
	kind entity.RecordKind,
	period entity.ReportPeriod,
	pageSize int,
) ([]entity.Group, error) {
	totals, err := repo.CategoryTotals(ctx, period)
	if err != nil {
		return nil, err
	}

	groups := make([]entity.Group, 0, len(totals))
	for _, total := range totals {
		key := total.Key
		if key == "" {
			key = SentinelFor(kind)
		}

		page, err := repo.List(ctx, adapter.RecordFilter{
			Period:     period,
			Key:        total.Key,
			KeyIsEmpty: total.Key == "",
		}, adapter.RecordPagination{
			Page:     1,
			PageSize: pageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load initial page for group %q: %w", key, err)
		}

		groups = append(groups, entity.Group{
			Key:       key,
			Label:     GroupLabel(kind, key),
			Amount:    total.Amount,
			ItemCount: total.ItemCount,
			Items:     page.Items,
		})
	}

	return groups, nil
}
