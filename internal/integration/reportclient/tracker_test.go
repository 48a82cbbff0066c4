package reportclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

// fakeFetcher serves pages from an in-memory record set and can be made to
// block or fail on demand.
type fakeFetcher struct {
	mu      sync.Mutex
	records map[string][]entity.FinancialRecord
	totals  map[string]int
	err     error
	calls   int

	// block, when set, holds every ListPage call until released.
	block chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		records: make(map[string][]entity.FinancialRecord),
		totals:  make(map[string]int),
	}
}

func (f *fakeFetcher) setGroup(kind entity.RecordKind, key string, records []entity.FinancialRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[stateKey(kind, key)] = records
	f.totals[stateKey(kind, key)] = len(records)
}

func (f *fakeFetcher) ListPage(_ context.Context, kind entity.RecordKind, key string, _ entity.ReportPeriod, page, pageSize int) ([]entity.FinancialRecord, int, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	err := f.err
	all := f.records[stateKey(kind, key)]
	total := f.totals[stateKey(kind, key)]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func trackerRecord(kind entity.RecordKind, key string, amount string) entity.FinancialRecord {
	return entity.FinancialRecord{
		Kind:        kind,
		Amount:      decimal.RequireFromString(amount),
		OccurredAt:  time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		CategoryKey: key,
	}
}

// newTestAggregate builds an aggregate with one payment group holding total
// records, of which the first pageSize shipped with the initial response.
func newTestAggregate(fetcher *fakeFetcher, key string, total, pageSize int) *entity.Aggregate {
	records := make([]entity.FinancialRecord, total)
	sum := decimal.Zero
	for i := range records {
		records[i] = trackerRecord(entity.RecordKindPayment, key, "10")
		sum = sum.Add(records[i].Amount)
	}
	fetcher.setGroup(entity.RecordKindPayment, key, records)

	shipped := pageSize
	if shipped > total {
		shipped = total
	}

	return &entity.Aggregate{
		TotalIncome: sum,
		Net:         sum,
		PaymentGroups: []entity.Group{{
			Key:       key,
			Label:     key,
			Amount:    sum,
			ItemCount: total,
			Items:     records[:shipped],
		}},
	}
}

func TestTracker_LoadMore(t *testing.T) {
	t.Run("appends the next page and advances the cursor", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 12, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		items, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 5 {
			t.Errorf("expected 5 items, got %d", len(items))
		}

		state, ok := tracker.State(entity.RecordKindPayment, "monthly_fee")
		if !ok {
			t.Fatal("expected group state")
		}
		if state.LoadedCount != 10 {
			t.Errorf("expected loaded count 10, got %d", state.LoadedCount)
		}
		if state.Page != 2 {
			t.Errorf("expected page 2, got %d", state.Page)
		}
		if len(tracker.Aggregate().PaymentGroups[0].Items) != 10 {
			t.Errorf("expected 10 items in aggregate, got %d", len(tracker.Aggregate().PaymentGroups[0].Items))
		}
	})

	t.Run("loaded count grows monotonically to exhaustion", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 12, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		previous := 5
		for i := 0; i < 10; i++ {
			if tracker.IsExhausted(entity.RecordKindPayment, "monthly_fee") {
				break
			}
			if _, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
			if state.LoadedCount < previous {
				t.Fatalf("loaded count regressed from %d to %d", previous, state.LoadedCount)
			}
			previous = state.LoadedCount
		}

		if !tracker.IsExhausted(entity.RecordKindPayment, "monthly_fee") {
			t.Error("expected group to be exhausted")
		}
		state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
		if state.LoadedCount != 12 {
			t.Errorf("expected all 12 items loaded, got %d", state.LoadedCount)
		}
	})

	t.Run("exhausted group issues no request", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "deposit", 3, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		if !tracker.IsExhausted(entity.RecordKindPayment, "deposit") {
			t.Fatal("expected group exhausted from the initial page")
		}

		items, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "deposit")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if items != nil {
			t.Errorf("expected no items, got %d", len(items))
		}
		if fetcher.calls != 0 {
			t.Errorf("expected 0 fetches, got %d", fetcher.calls)
		}
	})

	t.Run("at most one request per group is in flight", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 20, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		release := make(chan struct{})
		fetcher.mu.Lock()
		fetcher.block = release
		fetcher.mu.Unlock()

		firstDone := make(chan error, 1)
		go func() {
			_, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
			firstDone <- err
		}()

		// Wait for the first call to take the loading flag.
		deadline := time.Now().Add(2 * time.Second)
		for {
			state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
			if state.Loading {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("first load never entered Loading")
			}
			time.Sleep(time.Millisecond)
		}

		_, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
		if !errors.Is(err, ErrLoadInFlight) {
			t.Errorf("expected ErrLoadInFlight, got %v", err)
		}

		close(release)
		if err := <-firstDone; err != nil {
			t.Fatalf("first load failed: %v", err)
		}
		if fetcher.calls != 1 {
			t.Errorf("expected exactly 1 fetch, got %d", fetcher.calls)
		}
	})

	t.Run("failure reverts the group to idle with an annotation", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 12, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		fetcher.mu.Lock()
		fetcher.err = errors.New("boom")
		fetcher.mu.Unlock()

		_, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
		if err == nil {
			t.Fatal("expected error")
		}
		var reportErr *domainerror.ReportError
		if !errors.As(err, &reportErr) || reportErr.Code != domainerror.ErrCodeGroupLoadFailed {
			t.Errorf("expected GroupLoadFailed, got %v", err)
		}

		state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
		if state.Loading {
			t.Error("expected group back to idle")
		}
		if state.LoadedCount != 5 {
			t.Errorf("expected loaded count unchanged at 5, got %d", state.LoadedCount)
		}
		if tracker.LastError(entity.RecordKindPayment, "monthly_fee") == nil {
			t.Error("expected an error annotation")
		}

		// A successful retry clears the annotation.
		fetcher.mu.Lock()
		fetcher.err = nil
		fetcher.mu.Unlock()

		if _, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee"); err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if tracker.LastError(entity.RecordKindPayment, "monthly_fee") != nil {
			t.Error("expected annotation cleared after successful retry")
		}
	})

	t.Run("adopts a lower server total without regressing loaded count", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 20, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		// Records were deleted server-side; the next page reports total 8.
		fetcher.mu.Lock()
		fetcher.totals[stateKey(entity.RecordKindPayment, "monthly_fee")] = 8
		fetcher.mu.Unlock()

		if _, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
		if state.TotalCount != 8 {
			t.Errorf("expected adopted total 8, got %d", state.TotalCount)
		}
		if state.LoadedCount != 10 {
			t.Errorf("expected loaded count 10, got %d", state.LoadedCount)
		}
		if !tracker.IsExhausted(entity.RecordKindPayment, "monthly_fee") {
			t.Error("expected group exhausted once loaded >= total")
		}
	})

	t.Run("unknown group returns ErrUnknownGroup", func(t *testing.T) {
		fetcher := newFakeFetcher()
		tracker := NewTracker(fetcher, newTestAggregate(fetcher, "monthly_fee", 5, 5), 5)

		_, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "nope")
		if !errors.Is(err, ErrUnknownGroup) {
			t.Errorf("expected ErrUnknownGroup, got %v", err)
		}
	})
}

func TestTracker_Reset(t *testing.T) {
	t.Run("discards responses for the previous period", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 20, 5)
		tracker := NewTracker(fetcher, aggregate, 5)

		release := make(chan struct{})
		fetcher.mu.Lock()
		fetcher.block = release
		fetcher.mu.Unlock()

		done := make(chan struct{})
		var staleItems []entity.FinancialRecord
		var staleErr error
		go func() {
			staleItems, staleErr = tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
			close(done)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for {
			state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
			if state.Loading {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("load never entered Loading")
			}
			time.Sleep(time.Millisecond)
		}

		// The period changes while the request is in flight.
		fresh := newTestAggregate(fetcher, "deposit", 6, 5)
		tracker.Reset(fresh)

		close(release)
		<-done

		if staleErr != nil {
			t.Fatalf("stale load should be discarded silently, got %v", staleErr)
		}
		if staleItems != nil {
			t.Error("stale load should yield no items")
		}

		// Fresh aggregate is untouched by the stale response.
		if len(tracker.Aggregate().PaymentGroups) != 1 || tracker.Aggregate().PaymentGroups[0].Key != "deposit" {
			t.Error("expected the fresh aggregate to be current")
		}
		if _, ok := tracker.State(entity.RecordKindPayment, "monthly_fee"); ok {
			t.Error("expected old group state to be gone")
		}
	})

	t.Run("reindexes paging state from the new aggregate", func(t *testing.T) {
		fetcher := newFakeFetcher()
		tracker := NewTracker(fetcher, newTestAggregate(fetcher, "monthly_fee", 12, 5), 5)

		state, ok := tracker.State(entity.RecordKindPayment, "monthly_fee")
		if !ok {
			t.Fatal("expected group state")
		}
		if state.LoadedCount != 5 || state.TotalCount != 12 || state.Page != 1 {
			t.Errorf("unexpected initial state: %+v", state)
		}

		empty := &entity.Aggregate{PaymentGroups: []entity.Group{{Key: "refund", ItemCount: 4}}}
		tracker.Reset(empty)

		state, ok = tracker.State(entity.RecordKindPayment, "refund")
		if !ok {
			t.Fatal("expected refund group state")
		}
		if state.Page != 0 || state.LoadedCount != 0 {
			t.Errorf("expected zero paging state for a group with no shipped items, got %+v", state)
		}
	})
}

func TestTracker_Watchdog(t *testing.T) {
	t.Run("clears a stuck loading flag", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 20, 5)
		tracker := NewTracker(fetcher, aggregate, 5)
		tracker.SetWatchdogTimeout(20 * time.Millisecond)

		release := make(chan struct{})
		fetcher.mu.Lock()
		fetcher.block = release
		fetcher.mu.Unlock()

		done := make(chan struct{})
		go func() {
			_, _ = tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
			close(done)
		}()

		// The watchdog fires while the fetch hangs.
		deadline := time.Now().Add(2 * time.Second)
		for {
			state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
			if !state.Loading && tracker.LastError(entity.RecordKindPayment, "monthly_fee") != nil {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("watchdog never cleared the loading flag")
			}
			time.Sleep(time.Millisecond)
		}

		err := tracker.LastError(entity.RecordKindPayment, "monthly_fee")
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected a timeout annotation, got %v", err)
		}

		close(release)
		<-done
	})

	t.Run("a response arriving after the watchdog cleared it is discarded", func(t *testing.T) {
		fetcher := newFakeFetcher()
		aggregate := newTestAggregate(fetcher, "monthly_fee", 20, 5)
		tracker := NewTracker(fetcher, aggregate, 5)
		tracker.SetWatchdogTimeout(20 * time.Millisecond)

		release := make(chan struct{})
		fetcher.mu.Lock()
		fetcher.block = release
		fetcher.mu.Unlock()

		done := make(chan struct{})
		go func() {
			_, _ = tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
			close(done)
		}()

		deadline := time.Now().Add(2 * time.Second)
		for {
			state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
			if !state.Loading && tracker.LastError(entity.RecordKindPayment, "monthly_fee") != nil {
				break
			}
			if time.Now().After(deadline) {
				t.Fatal("watchdog never cleared the loading flag")
			}
			time.Sleep(time.Millisecond)
		}

		// A retry after the watchdog cleared the group loads page 2 again.
		fetcher.mu.Lock()
		fetcher.block = nil
		fetcher.mu.Unlock()

		items, err := tracker.LoadMore(context.Background(), entity.RecordKindPayment, "monthly_fee")
		if err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if len(items) != 5 {
			t.Fatalf("expected 5 items from the retry, got %d", len(items))
		}

		// The original request now completes; its page must not be applied
		// on top of the retry's.
		close(release)
		<-done

		state, _ := tracker.State(entity.RecordKindPayment, "monthly_fee")
		if state.LoadedCount != 10 {
			t.Errorf("expected loaded count 10, got %d", state.LoadedCount)
		}
		if state.Page != 2 {
			t.Errorf("expected page 2, got %d", state.Page)
		}
		if got := len(tracker.Aggregate().PaymentGroups[0].Items); got != 10 {
			t.Errorf("expected 10 items in aggregate, got %d", got)
		}
	})
}
