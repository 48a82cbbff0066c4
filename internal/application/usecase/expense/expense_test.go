package expense

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/application/usecase/payment"
	"github.com/studyroom/backend/internal/application/usecase/report"
	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

// fakeExpenseRepo keeps expenses in memory.
type fakeExpenseRepo struct {
	expenses []*entity.Expense

	lastPagination adapter.RecordPagination
}

func (f *fakeExpenseRepo) Create(_ context.Context, expense *entity.Expense) error {
	f.expenses = append(f.expenses, expense)
	return nil
}

func (f *fakeExpenseRepo) List(_ context.Context, filter adapter.RecordFilter, pagination adapter.RecordPagination) (*entity.RecordPage, error) {
	f.lastPagination = pagination

	var matched []entity.FinancialRecord
	for _, e := range f.expenses {
		if filter.KeyIsEmpty {
			if e.Category != "" {
				continue
			}
		} else if filter.Key != "" && e.Category != filter.Key {
			continue
		}
		matched = append(matched, e.Record())
	}

	total := len(matched)
	offset := pagination.Offset()
	if offset > total {
		offset = total
	}
	end := offset + pagination.PageSize
	if end > total {
		end = total
	}

	return &entity.RecordPage{Items: matched[offset:end], Total: total}, nil
}

func (f *fakeExpenseRepo) CategoryTotals(_ context.Context, _ entity.ReportPeriod) ([]adapter.CategoryTotal, error) {
	return nil, nil
}

func (f *fakeExpenseRepo) SumRange(_ context.Context, _, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (f *fakeExpenseRepo) HasBefore(_ context.Context, _ time.Time) (bool, error) {
	return false, nil
}

// fakeCache counts invalidations and can fail on demand.
type fakeCache struct {
	invalidated   int
	invalidateErr error
}

func (f *fakeCache) GetMonthlySummary(_ context.Context, _ string) (*entity.MonthlySummary, error) {
	return nil, nil
}

func (f *fakeCache) SetMonthlySummary(_ context.Context, _ string, _ *entity.MonthlySummary) error {
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context) error {
	f.invalidated++
	return f.invalidateErr
}

func TestListExpensesUseCase_Execute(t *testing.T) {
	spentAt := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	repo := &fakeExpenseRepo{expenses: []*entity.Expense{
		{Category: "rent", Amount: decimal.RequireFromString("900"), SpentAt: spentAt},
		{Category: "supplies", Amount: decimal.RequireFromString("40"), SpentAt: spentAt},
		{Category: "rent", Amount: decimal.RequireFromString("900"), SpentAt: spentAt.AddDate(0, 1, 0)},
	}}
	uc := NewListExpensesUseCase(repo)

	t.Run("filters by category key", func(t *testing.T) {
		output, err := uc.Execute(context.Background(), ListExpensesInput{Key: "rent"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Total != 2 {
			t.Errorf("expected total 2, got %d", output.Total)
		}
	})

	t.Run("placeholder key selects uncategorized expenses", func(t *testing.T) {
		withBlank := &fakeExpenseRepo{expenses: []*entity.Expense{
			{Category: "rent", Amount: decimal.RequireFromString("900"), SpentAt: spentAt},
			{Category: "", Amount: decimal.RequireFromString("25"), SpentAt: spentAt},
		}}
		output, err := NewListExpensesUseCase(withBlank).Execute(context.Background(), ListExpensesInput{Key: report.SentinelExpenseKey})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output.Total != 1 {
			t.Fatalf("expected total 1, got %d", output.Total)
		}
		if !output.Items[0].Amount.Equal(decimal.RequireFromString("25")) {
			t.Errorf("expected the uncategorized expense, got %+v", output.Items[0])
		}
	})

	t.Run("shares the payment page size cap", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), ListExpensesInput{PageSize: payment.MaxPageSize + 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.lastPagination.PageSize != payment.MaxPageSize {
			t.Errorf("expected page size capped at %d, got %d", payment.MaxPageSize, repo.lastPagination.PageSize)
		}
	})
}

func TestRecordExpenseUseCase_Execute(t *testing.T) {
	spentAt := time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC)

	t.Run("persists a valid expense and invalidates the cache", func(t *testing.T) {
		repo := &fakeExpenseRepo{}
		cache := &fakeCache{}
		uc := NewRecordExpenseUseCase(repo, cache)

		created, err := uc.Execute(context.Background(), RecordExpenseInput{
			Category:    "rent",
			Description: "March rent",
			Amount:      decimal.RequireFromString("900"),
			SpentAt:     spentAt,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if created.Category != "rent" {
			t.Errorf("expected category rent, got %q", created.Category)
		}
		if len(repo.expenses) != 1 {
			t.Fatalf("expected 1 persisted expense, got %d", len(repo.expenses))
		}
		if cache.invalidated != 1 {
			t.Errorf("expected 1 cache invalidation, got %d", cache.invalidated)
		}
	})

	t.Run("a failed cache invalidation does not fail the write", func(t *testing.T) {
		repo := &fakeExpenseRepo{}
		cache := &fakeCache{invalidateErr: errors.New("redis down")}
		uc := NewRecordExpenseUseCase(repo, cache)

		_, err := uc.Execute(context.Background(), RecordExpenseInput{
			Category: "rent",
			Amount:   decimal.RequireFromString("900"),
			SpentAt:  spentAt,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.expenses) != 1 {
			t.Errorf("expected the expense persisted, got %d", len(repo.expenses))
		}
	})

	t.Run("rejects an expense without a category", func(t *testing.T) {
		uc := NewRecordExpenseUseCase(&fakeExpenseRepo{}, nil)

		_, err := uc.Execute(context.Background(), RecordExpenseInput{
			Amount:  decimal.RequireFromString("50"),
			SpentAt: spentAt,
		})
		if err == nil {
			t.Fatal("expected error for missing category")
		}

		var recordErr *domainerror.RecordError
		if !errors.As(err, &recordErr) {
			t.Fatalf("expected RecordError, got %T", err)
		}
		if recordErr.Code != domainerror.ErrCodeMissingExpenseCategory {
			t.Errorf("expected code %s, got %s", domainerror.ErrCodeMissingExpenseCategory, recordErr.Code)
		}
	})

	t.Run("rejects an expense without a date", func(t *testing.T) {
		uc := NewRecordExpenseUseCase(&fakeExpenseRepo{}, nil)

		_, err := uc.Execute(context.Background(), RecordExpenseInput{
			Category: "rent",
			Amount:   decimal.RequireFromString("50"),
		})
		if err == nil {
			t.Fatal("expected error for missing date")
		}
	})
}
