package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

// BucketPeriod selects the calendar bucketing of the overview summary.
type BucketPeriod string

const (
	BucketPeriodMonth BucketPeriod = "month"
	BucketPeriodYear  BucketPeriod = "year"
)

// MaxSummaryBuckets caps how many buckets one request may ask for.
const MaxSummaryBuckets = 60

// GetMonthlySummaryInput represents the input for the bucketed overview.
type GetMonthlySummaryInput struct {
	Months int
	Offset int
	Period BucketPeriod
}

// GetMonthlySummaryUseCase computes the coarse calendar-bucketed summary
// consumed by the overview widget. Results are cached with a short TTL;
// cache failures degrade to a direct computation.
type GetMonthlySummaryUseCase struct {
	paymentRepo adapter.PaymentRepository
	expenseRepo adapter.ExpenseRepository
	cache       adapter.ReportCache
	now         func() time.Time
}

// NewGetMonthlySummaryUseCase creates a new GetMonthlySummaryUseCase instance.
func NewGetMonthlySummaryUseCase(
	paymentRepo adapter.PaymentRepository,
	expenseRepo adapter.ExpenseRepository,
	cache adapter.ReportCache,
) *GetMonthlySummaryUseCase {
	return &GetMonthlySummaryUseCase{
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		cache:       cache,
		now:         time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (uc *GetMonthlySummaryUseCase) WithClock(now func() time.Time) *GetMonthlySummaryUseCase {
	uc.now = now
	return uc
}

// Execute computes (or fetches from cache) the bucketed summary.
func (uc *GetMonthlySummaryUseCase) Execute(
	ctx context.Context,
	input GetMonthlySummaryInput,
) (*entity.MonthlySummary, error) {
	if input.Period != BucketPeriodMonth && input.Period != BucketPeriodYear {
		return nil, domainerror.NewReportError(
			domainerror.ErrCodeInvalidPeriodParam,
			"period must be: month or year",
			domainerror.ErrInvalidPeriodParam,
		)
	}

	if input.Months <= 0 {
		input.Months = 6
	}
	if input.Months > MaxSummaryBuckets {
		input.Months = MaxSummaryBuckets
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	cacheKey := fmt.Sprintf("monthly:%s:%d:%d", input.Period, input.Months, input.Offset)
	if uc.cache != nil {
		cached, err := uc.cache.GetMonthlySummary(ctx, cacheKey)
		if err != nil {
			slog.Warn("Monthly summary cache read failed", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	summary, err := uc.compute(ctx, input)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetMonthlySummary(ctx, cacheKey, summary); err != nil {
			slog.Warn("Monthly summary cache write failed", "error", err)
		}
	}

	return summary, nil
}

func (uc *GetMonthlySummaryUseCase) compute(
	ctx context.Context,
	input GetMonthlySummaryInput,
) (*entity.MonthlySummary, error) {
	now := uc.now().UTC()

	buckets := make([]entity.MonthlyBucket, 0, input.Months)
	var oldestStart time.Time

	// Buckets run newest first, skipping the most recent Offset buckets.
	for i := input.Offset; i < input.Offset+input.Months; i++ {
		start, end, bucket := uc.bucketWindow(now, i, input.Period)

		income, err := uc.paymentRepo.SumRange(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to sum payments for %s: %w", bucket.Label, err)
		}
		expenses, err := uc.expenseRepo.SumRange(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to sum expenses for %s: %w", bucket.Label, err)
		}

		bucket.Income = income
		bucket.Expenses = expenses
		bucket.Net = income.Sub(expenses)
		buckets = append(buckets, bucket)
		oldestStart = start
	}

	hasMore, err := uc.hasRecordsBefore(ctx, oldestStart)
	if err != nil {
		return nil, err
	}

	return &entity.MonthlySummary{
		Buckets: buckets,
		HasMore: hasMore,
	}, nil
}

// bucketWindow returns the [start, end] window and the bucket skeleton for
// the i-th bucket counting back from the current calendar month or year.
func (uc *GetMonthlySummaryUseCase) bucketWindow(
	now time.Time,
	i int,
	period BucketPeriod,
) (time.Time, time.Time, entity.MonthlyBucket) {
	if period == BucketPeriodYear {
		year := now.Year() - i
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
		return start, end, entity.MonthlyBucket{
			Year:  year,
			Label: start.Format("2006"),
		}
	}

	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	month := int(start.Month())
	return start, end, entity.MonthlyBucket{
		Year:  start.Year(),
		Month: &month,
		Label: start.Format("Jan 2006"),
	}
}

func (uc *GetMonthlySummaryUseCase) hasRecordsBefore(ctx context.Context, t time.Time) (bool, error) {
	hasPayments, err := uc.paymentRepo.HasBefore(ctx, t)
	if err != nil {
		return false, fmt.Errorf("failed to probe older payments: %w", err)
	}
	if hasPayments {
		return true, nil
	}

	hasExpenses, err := uc.expenseRepo.HasBefore(ctx, t)
	if err != nil {
		return false, fmt.Errorf("failed to probe older expenses: %w", err)
	}
	return hasExpenses, nil
}
