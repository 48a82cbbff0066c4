// Package payment contains payment-related use cases.
package payment

import (
	"context"
	"fmt"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/application/usecase/report"
	"github.com/studyroom/backend/internal/domain/entity"
)

const (
	// DefaultPageSize is used when the caller gives no page size.
	DefaultPageSize = 50

	// MaxPageSize is the hard cap on one page of records. Fallback
	// aggregation requests this cap as an "unbounded" page; anything beyond
	// it is reported via the total, never streamed.
	MaxPageSize = 10000
)

// ListPaymentsInput represents the input for listing payments.
type ListPaymentsInput struct {
	Period   entity.ReportPeriod
	Key      string // payment type filter, empty for all
	Page     int
	PageSize int
}

// ListPaymentsOutput represents the output of listing payments.
type ListPaymentsOutput struct {
	Items []entity.FinancialRecord
	Total int
}

// ListPaymentsUseCase handles listing payments with period/key filters and
// count-backed pagination.
type ListPaymentsUseCase struct {
	paymentRepo adapter.PaymentRepository
}

// NewListPaymentsUseCase creates a new ListPaymentsUseCase instance.
func NewListPaymentsUseCase(paymentRepo adapter.PaymentRepository) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{
		paymentRepo: paymentRepo,
	}
}

// Execute lists one page of payments matching the filter.
func (uc *ListPaymentsUseCase) Execute(
	ctx context.Context,
	input ListPaymentsInput,
) (*ListPaymentsOutput, error) {
	if err := report.ValidatePeriod(input.Period); err != nil {
		return nil, err
	}

	if input.Page < 1 {
		input.Page = 1
	}
	if input.PageSize <= 0 {
		input.PageSize = DefaultPageSize
	}
	if input.PageSize > MaxPageSize {
		input.PageSize = MaxPageSize
	}

	// The placeholder key the report assigns to untyped payments maps back
	// to rows whose type column is blank.
	filter := adapter.RecordFilter{Period: input.Period, Key: input.Key}
	if input.Key == report.SentinelPaymentKey {
		filter = adapter.RecordFilter{Period: input.Period, KeyIsEmpty: true}
	}

	page, err := uc.paymentRepo.List(ctx, filter, adapter.RecordPagination{
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ListPaymentsOutput{
		Items: page.Items,
		Total: page.Total,
	}, nil
}
