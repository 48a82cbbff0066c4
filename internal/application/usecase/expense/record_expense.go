package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

// RecordExpenseInput represents the input for recording an expense.
type RecordExpenseInput struct {
	Category    string
	Description string
	Amount      decimal.Decimal
	SpentAt     time.Time
}

// RecordExpenseUseCase handles recording a new expense.
type RecordExpenseUseCase struct {
	expenseRepo adapter.ExpenseRepository
	cache       adapter.ReportCache
}

// NewRecordExpenseUseCase creates a new RecordExpenseUseCase instance.
func NewRecordExpenseUseCase(
	expenseRepo adapter.ExpenseRepository,
	cache adapter.ReportCache,
) *RecordExpenseUseCase {
	return &RecordExpenseUseCase{
		expenseRepo: expenseRepo,
		cache:       cache,
	}
}

// Execute validates and persists the expense, invalidating cached summaries.
func (uc *RecordExpenseUseCase) Execute(
	ctx context.Context,
	input RecordExpenseInput,
) (*entity.Expense, error) {
	if input.Category == "" {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeMissingExpenseCategory,
			"expense category is required",
			domainerror.ErrMissingExpenseCategory,
		)
	}
	if input.SpentAt.IsZero() {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeMissingOccurredAt,
			"spent_at is required",
			domainerror.ErrMissingOccurredAt,
		)
	}

	now := time.Now().UTC()
	exp := &entity.Expense{
		ID:          uuid.New(),
		Category:    input.Category,
		Description: input.Description,
		Amount:      input.Amount,
		SpentAt:     input.SpentAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.expenseRepo.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			slog.Warn("Failed to invalidate report cache after expense",
				"error", err,
			)
		}
	}

	return exp, nil
}
