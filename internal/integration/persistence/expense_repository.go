package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/domain/entity"
	"github.com/studyroom/backend/internal/integration/persistence/model"
)

// expenseRepository implements the adapter.ExpenseRepository interface.
type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository creates a new expense repository instance.
func NewExpenseRepository(db *gorm.DB) adapter.ExpenseRepository {
	return &expenseRepository{
		db: db,
	}
}

// Create persists a new expense.
func (r *expenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	m := model.ExpenseFromEntity(expense)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// List returns one page of expenses matching the filter plus the
// authoritative total for the filter.
func (r *expenseRepository) List(
	ctx context.Context,
	filter adapter.RecordFilter,
	pagination adapter.RecordPagination,
) (*entity.RecordPage, error) {
	query := r.db.WithContext(ctx).Model(&model.ExpenseModel{})
	query = applyPeriod(query, "spent_at", filter.Period)
	if filter.KeyIsEmpty {
		query = query.Where("category = ''")
	} else if filter.Key != "" {
		query = query.Where("category = ?", filter.Key)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count expenses: %w", err)
	}

	var models []model.ExpenseModel
	err := query.
		Order("spent_at DESC, created_at DESC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	items := make([]entity.FinancialRecord, len(models))
	for i, m := range models {
		items[i] = m.ToEntity().Record()
	}

	return &entity.RecordPage{
		Items: items,
		Total: int(total),
	}, nil
}

// CategoryTotals returns range-wide sums grouped by expense category,
// ordered by each category's first occurrence in the range.
func (r *expenseRepository) CategoryTotals(
	ctx context.Context,
	period entity.ReportPeriod,
) ([]adapter.CategoryTotal, error) {
	var results []struct {
		Key       string          `gorm:"column:key"`
		Amount    decimal.Decimal `gorm:"column:amount"`
		ItemCount int             `gorm:"column:item_count"`
	}

	query := r.db.WithContext(ctx).
		Table("expenses").
		Select("category as key, COALESCE(SUM(amount), 0) as amount, COUNT(*) as item_count")
	query = applyPeriod(query, "spent_at", period)

	err := query.
		Group("category").
		Order("MIN(spent_at), category").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate expense totals: %w", err)
	}

	totals := make([]adapter.CategoryTotal, len(results))
	for i, res := range results {
		totals[i] = adapter.CategoryTotal{
			Key:       res.Key,
			Amount:    res.Amount,
			ItemCount: res.ItemCount,
		}
	}
	return totals, nil
}

// SumRange returns the sum of expense amounts in a window.
func (r *expenseRepository) SumRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal `gorm:"column:total"`
	}

	err := r.db.WithContext(ctx).
		Table("expenses").
		Select("COALESCE(SUM(amount), 0) as total").
		Where("spent_at >= ?", start).
		Where("spent_at <= ?", end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses: %w", err)
	}
	return result.Total, nil
}

// HasBefore reports whether any expense exists before the given time.
func (r *expenseRepository) HasBefore(ctx context.Context, t time.Time) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM expenses WHERE spent_at < ?)", t).
		Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to probe expenses: %w", err)
	}
	return exists, nil
}
