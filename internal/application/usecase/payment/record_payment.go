package payment

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

// RecordPaymentInput represents the input for recording a payment.
type RecordPaymentInput struct {
	StudentID   *uuid.UUID
	StudentName string
	Type        string
	Mode        string
	Amount      decimal.Decimal
	PaidAt      time.Time
}

// RecordPaymentUseCase handles recording a new payment.
type RecordPaymentUseCase struct {
	paymentRepo adapter.PaymentRepository
	cache       adapter.ReportCache
}

// NewRecordPaymentUseCase creates a new RecordPaymentUseCase instance.
func NewRecordPaymentUseCase(
	paymentRepo adapter.PaymentRepository,
	cache adapter.ReportCache,
) *RecordPaymentUseCase {
	return &RecordPaymentUseCase{
		paymentRepo: paymentRepo,
		cache:       cache,
	}
}

// Execute validates and persists the payment, invalidating cached summaries.
func (uc *RecordPaymentUseCase) Execute(
	ctx context.Context,
	input RecordPaymentInput,
) (*entity.Payment, error) {
	if input.Type == "" {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeMissingPaymentType,
			"payment type is required",
			domainerror.ErrMissingPaymentType,
		)
	}
	if input.PaidAt.IsZero() {
		return nil, domainerror.NewRecordError(
			domainerror.ErrCodeMissingOccurredAt,
			"paid_at is required",
			domainerror.ErrMissingOccurredAt,
		)
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		ID:          uuid.New(),
		StudentID:   input.StudentID,
		StudentName: input.StudentName,
		Type:        input.Type,
		Mode:        input.Mode,
		Amount:      input.Amount,
		PaidAt:      input.PaidAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	if uc.cache != nil {
		// Stale overview buckets are acceptable for at most the cache TTL,
		// but a write invalidates them eagerly. A failed invalidation does
		// not fail the write.
		if err := uc.cache.Invalidate(ctx); err != nil {
			slog.Warn("Failed to invalidate report cache after payment",
				"error", err,
			)
		}
	}

	return payment, nil
}
