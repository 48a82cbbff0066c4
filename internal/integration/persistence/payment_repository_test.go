package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studyroom/backend/internal/application/adapter"
	"github.com/studyroom/backend/internal/domain/entity"
	"github.com/studyroom/backend/internal/integration/persistence/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.PaymentModel{}, &model.ExpenseModel{}, &model.UserModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedPayment(t *testing.T, repo adapter.PaymentRepository, paymentType, amount string, paidAt time.Time) *entity.Payment {
	t.Helper()

	p := &entity.Payment{
		ID:        uuid.New(),
		Type:      paymentType,
		Amount:    decimal.RequireFromString(amount),
		PaidAt:    paidAt,
		CreatedAt: paidAt,
		UpdatedAt: paidAt,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("failed to seed payment: %v", err)
	}
	return p
}

func TestPaymentRepository(t *testing.T) {
	march := func(day int) time.Time {
		return time.Date(2025, time.March, day, 12, 0, 0, 0, time.UTC)
	}

	t.Run("List", func(t *testing.T) {
		repo := NewPaymentRepository(newTestDB(t))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1200", march(5))
		seedPayment(t, repo, entity.PaymentTypeDeposit, "300", march(10))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1100", march(15))

		t.Run("returns newest first with the authoritative total", func(t *testing.T) {
			page, err := repo.List(context.Background(), adapter.RecordFilter{}, adapter.RecordPagination{Page: 1, PageSize: 2})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Total != 3 {
				t.Errorf("expected total 3, got %d", page.Total)
			}
			if len(page.Items) != 2 {
				t.Fatalf("expected 2 items, got %d", len(page.Items))
			}
			if !page.Items[0].OccurredAt.After(page.Items[1].OccurredAt) {
				t.Error("expected newest-first ordering")
			}
		})

		t.Run("filters by type key", func(t *testing.T) {
			page, err := repo.List(context.Background(), adapter.RecordFilter{Key: entity.PaymentTypeMonthlyFee}, adapter.RecordPagination{Page: 1, PageSize: 10})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Total != 2 {
				t.Errorf("expected total 2, got %d", page.Total)
			}
		})

		t.Run("empty-key filter matches only blank types", func(t *testing.T) {
			repo := NewPaymentRepository(newTestDB(t))
			seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1200", march(5))
			seedPayment(t, repo, "", "75", march(8))
			seedPayment(t, repo, "other", "50", march(12))

			page, err := repo.List(context.Background(), adapter.RecordFilter{KeyIsEmpty: true}, adapter.RecordPagination{Page: 1, PageSize: 10})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Total != 1 {
				t.Fatalf("expected total 1, got %d", page.Total)
			}
			if !page.Items[0].Amount.Equal(decimal.RequireFromString("75")) {
				t.Errorf("expected the untyped payment, got %+v", page.Items[0])
			}
		})

		t.Run("filters by period", func(t *testing.T) {
			start := march(8)
			page, err := repo.List(context.Background(), adapter.RecordFilter{
				Period: entity.ReportPeriod{StartDate: &start},
			}, adapter.RecordPagination{Page: 1, PageSize: 10})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.Total != 2 {
				t.Errorf("expected total 2, got %d", page.Total)
			}
		})

		t.Run("pages beyond the data are empty", func(t *testing.T) {
			page, err := repo.List(context.Background(), adapter.RecordFilter{}, adapter.RecordPagination{Page: 5, PageSize: 10})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(page.Items) != 0 {
				t.Errorf("expected 0 items, got %d", len(page.Items))
			}
			if page.Total != 3 {
				t.Errorf("expected total 3, got %d", page.Total)
			}
		})
	})

	t.Run("CategoryTotals", func(t *testing.T) {
		repo := NewPaymentRepository(newTestDB(t))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1200", march(5))
		seedPayment(t, repo, entity.PaymentTypeDeposit, "300", march(10))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1100", march(15))
		seedPayment(t, repo, entity.PaymentTypeRefund, "-150", march(20))

		totals, err := repo.CategoryTotals(context.Background(), entity.ReportPeriod{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(totals) != 3 {
			t.Fatalf("expected 3 groups, got %d", len(totals))
		}

		// First-occurrence ordering: monthly_fee (Mar 5), deposit (Mar 10),
		// refund (Mar 20).
		if totals[0].Key != entity.PaymentTypeMonthlyFee || totals[1].Key != entity.PaymentTypeDeposit || totals[2].Key != entity.PaymentTypeRefund {
			t.Errorf("unexpected group order: %s, %s, %s", totals[0].Key, totals[1].Key, totals[2].Key)
		}
		if !totals[0].Amount.Equal(decimal.RequireFromString("2300")) {
			t.Errorf("expected monthly_fee total 2300, got %s", totals[0].Amount)
		}
		if totals[0].ItemCount != 2 {
			t.Errorf("expected monthly_fee count 2, got %d", totals[0].ItemCount)
		}
		if !totals[2].Amount.Equal(decimal.RequireFromString("-150")) {
			t.Errorf("expected refund total -150, got %s", totals[2].Amount)
		}
	})

	t.Run("SumRange", func(t *testing.T) {
		repo := NewPaymentRepository(newTestDB(t))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1200", march(5))
		seedPayment(t, repo, entity.PaymentTypeRefund, "-200", march(10))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "999", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC))

		sum, err := repo.SumRange(context.Background(),
			time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sum.Equal(decimal.RequireFromString("1000")) {
			t.Errorf("expected signed sum 1000, got %s", sum)
		}
	})

	t.Run("SumRange of an empty window is zero", func(t *testing.T) {
		repo := NewPaymentRepository(newTestDB(t))

		sum, err := repo.SumRange(context.Background(),
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !sum.IsZero() {
			t.Errorf("expected zero, got %s", sum)
		}
	})

	t.Run("HasBefore", func(t *testing.T) {
		repo := NewPaymentRepository(newTestDB(t))
		seedPayment(t, repo, entity.PaymentTypeMonthlyFee, "1200", march(5))

		has, err := repo.HasBefore(context.Background(), march(10))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !has {
			t.Error("expected a payment before March 10")
		}

		has, err = repo.HasBefore(context.Background(), march(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if has {
			t.Error("expected no payment before March 1")
		}
	})
}
