// Package persistence implements repository interfaces for database operations.
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

// paymentRepository implements the adapter.PaymentRepository interface.
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance.
func NewPaymentRepository(db *gorm.DB) adapter.PaymentRepository {
	return &paymentRepository{
		db: db,
	}
}

// Create persists a new payment.
func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	m := model.PaymentFromEntity(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// List returns one page of payments matching the filter plus the
// authoritative total for the filter.
func (r *paymentRepository) List(
	ctx context.Context,
	filter adapter.RecordFilter,
	pagination adapter.RecordPagination,
) (*entity.RecordPage, error) {
	query := r.db.WithContext(ctx).Model(&model.PaymentModel{})
	query = applyPeriod(query, "paid_at", filter.Period)
	if filter.KeyIsEmpty {
		query = query.Where("type = ''")
	} else if filter.Key != "" {
		query = query.Where("type = ?", filter.Key)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var models []model.PaymentModel
	err := query.
		Order("paid_at DESC, created_at DESC").
		Limit(pagination.PageSize).
		Offset(pagination.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
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

// CategoryTotals returns range-wide sums grouped by payment type, ordered by
// each type's first occurrence in the range so repeated calls over the same
// data report groups in the same order.
func (r *paymentRepository) CategoryTotals(
	ctx context.Context,
	period entity.ReportPeriod,
) ([]adapter.CategoryTotal, error) {
	var results []struct {
		Key       string          `gorm:"column:key"`
		Amount    decimal.Decimal `gorm:"column:amount"`
		ItemCount int             `gorm:"column:item_count"`
	}

	query := r.db.WithContext(ctx).
		Table("payments").
		Select("type as key, COALESCE(SUM(amount), 0) as amount, COUNT(*) as item_count")
	query = applyPeriod(query, "paid_at", period)

	err := query.
		Group("type").
		Order("MIN(paid_at), type").
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate payment totals: %w", err)
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

// SumRange returns the signed sum of payment amounts in a window.
func (r *paymentRepository) SumRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal `gorm:"column:total"`
	}

	err := r.db.WithContext(ctx).
		Table("payments").
		Select("COALESCE(SUM(amount), 0) as total").
		Where("paid_at >= ?", start).
		Where("paid_at <= ?", end).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum payments: %w", err)
	}
	return result.Total, nil
}

// HasBefore reports whether any payment exists before the given time.
func (r *paymentRepository) HasBefore(ctx context.Context, t time.Time) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM payments WHERE paid_at < ?)", t).
		Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to probe payments: %w", err)
	}
	return exists, nil
}

// applyPeriod adds the open-ended date range filter on the given column.
func applyPeriod(query *gorm.DB, column string, period entity.ReportPeriod) *gorm.DB {
	if period.StartDate != nil {
		query = query.Where(column+" >= ?", *period.StartDate)
	}
	if period.EndDate != nil {
		query = query.Where(column+" <= ?", *period.EndDate)
	}
	return query
}
