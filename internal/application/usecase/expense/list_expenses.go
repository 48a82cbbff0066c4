// Package expense contains expense-related use cases.
package expense

import (
	"context"
	"fmt"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/application/usecase/payment"
	"github.com/studyroom/backend/internal/application/usecase/report"
	"github.com/studyroom/backend/internal/domain/entity"
)

// ListExpensesInput represents the input for listing expenses.
type ListExpensesInput struct {
	Period   entity.ReportPeriod
	Key      string // expense category filter, empty for all
	Page     int
	PageSize int
}

// ListExpensesOutput represents the output of listing expenses.
type ListExpensesOutput struct {
	Items []entity.FinancialRecord
	Total int
}

// ListExpensesUseCase handles listing expenses with period/key filters and
// count-backed pagination.
type ListExpensesUseCase struct {
	expenseRepo adapter.ExpenseRepository
}

// NewListExpensesUseCase creates a new ListExpensesUseCase instance.
func NewListExpensesUseCase(expenseRepo adapter.ExpenseRepository) *ListExpensesUseCase {
	return &ListExpensesUseCase{
		expenseRepo: expenseRepo,
	}
}

// Execute lists one page of expenses matching the filter.
func (uc *ListExpensesUseCase) Execute(
	ctx context.Context,
	input ListExpensesInput,
) (*ListExpensesOutput, error) {
	if err := report.ValidatePeriod(input.Period); err != nil {
		return nil, err
	}

	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize <= 0 {
		input.PageSize = payment.DefaultPageSize
	}
	if input.PageSize > payment.MaxPageSize {
		input.PageSize = payment.MaxPageSize
	}

	// The placeholder key the report assigns to uncategorized expenses maps
	// back to rows whose category column is blank.
	filter := adapter.RecordFilter{Period: input.Period, Key: input.Key}
	if input.Key == report.SentinelExpenseKey {
		filter = adapter.RecordFilter{Period: input.Period, KeyIsEmpty: true}
	}

	page, err := uc.expenseRepo.List(ctx, filter, adapter.RecordPagination{
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	return &ListExpensesOutput{
		Items: page.Items,
		Total: page.Total,
	}, nil
}
