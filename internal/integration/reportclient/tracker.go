package reportclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

// ErrLoadInFlight is returned when a load-more is requested for a group that
// already has a request in flight. Callers treat it as a no-op.
var ErrLoadInFlight = errors.New("a load is already in flight for this group")

// ErrUnknownGroup is returned for a group key the current aggregate does not
// contain.
var ErrUnknownGroup = errors.New("unknown group")

// DefaultWatchdogTimeout bounds how long a group may stay in Loading if the
// underlying request's outcome never arrives.
const DefaultWatchdogTimeout = 30 * time.Second

// PageFetcher fetches one page of a group's items within the report period.
// Implemented by Client.
type PageFetcher interface {
	ListPage(ctx context.Context, kind entity.RecordKind, key string, period entity.ReportPeriod, page, pageSize int) ([]entity.FinancialRecord, int, error)
}

// GroupPageState is a snapshot of one group's paging bookkeeping.
type GroupPageState struct {
	GroupKey    string
	LoadedCount int
	TotalCount  int
	Page        int
	Loading     bool
}

// groupState is the tracked per-group state behind the session lock. The
// attempt counter increments on every load start and on every watchdog
// clear, so a response whose attempt has been superseded is discarded.
type groupState struct {
	kind        entity.RecordKind
	key         string
	loadedCount int
	totalCount  int
	page        int
	loading     bool
	attempt     uint64
	lastErr     error
}

// Tracker owns the report session: the current aggregate and the per-group
// paging state. All mutation goes through LoadMore and Reset; a generation
// counter makes responses that arrive after a Reset discarded rather than
// merged into the new aggregate.
type Tracker struct {
	mu              sync.Mutex
	fetcher         PageFetcher
	pageSize        int
	watchdogTimeout time.Duration

	generation uint64
	aggregate  *entity.Aggregate
	groups     map[string]*groupState
}

// NewTracker creates a tracker for an aggregate whose groups shipped with an
// initial page of pageSize items each.
func NewTracker(fetcher PageFetcher, aggregate *entity.Aggregate, pageSize int) *Tracker {
	t := &Tracker{
		fetcher:         fetcher,
		pageSize:        pageSize,
		watchdogTimeout: DefaultWatchdogTimeout,
	}
	t.Reset(aggregate)
	return t
}

// SetWatchdogTimeout overrides the stuck-Loading bound, used by tests.
func (t *Tracker) SetWatchdogTimeout(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.watchdogTimeout = d
}

// Reset atomically replaces the aggregate and all paging state, bumping the
// generation so in-flight responses for the previous period are discarded.
func (t *Tracker) Reset(aggregate *entity.Aggregate) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
	t.aggregate = aggregate
	t.groups = make(map[string]*groupState)
	if aggregate == nil {
		return
	}

	for i := range aggregate.PaymentGroups {
		t.indexGroup(entity.RecordKindPayment, &aggregate.PaymentGroups[i])
	}
	for i := range aggregate.ExpenseGroups {
		t.indexGroup(entity.RecordKindExpense, &aggregate.ExpenseGroups[i])
	}
}

func (t *Tracker) indexGroup(kind entity.RecordKind, group *entity.Group) {
	page := 0
	if len(group.Items) > 0 {
		page = 1
	}
	t.groups[stateKey(kind, group.Key)] = &groupState{
		kind:        kind,
		key:         group.Key,
		loadedCount: len(group.Items),
		totalCount:  group.ItemCount,
		page:        page,
	}
}

// Aggregate returns the current aggregate. Items grow as pages load; the
// range-wide group totals never change after Reset.
func (t *Tracker) Aggregate() *entity.Aggregate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aggregate
}

// State returns a snapshot of one group's paging state.
func (t *Tracker) State(kind entity.RecordKind, key string) (GroupPageState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.groups[stateKey(kind, key)]
	if !ok {
		return GroupPageState{}, false
	}
	return GroupPageState{
		GroupKey:    st.key,
		LoadedCount: st.loadedCount,
		TotalCount:  st.totalCount,
		Page:        st.page,
		Loading:     st.loading,
	}, true
}

// LastError returns the error annotation left by the group's most recent
// failed load, if any.
func (t *Tracker) LastError(kind entity.RecordKind, key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.groups[stateKey(kind, key)]; ok {
		return st.lastErr
	}
	return nil
}

// IsExhausted reports whether every item of the group has been loaded.
func (t *Tracker) IsExhausted(kind entity.RecordKind, key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.groups[stateKey(kind, key)]
	if !ok {
		return true
	}
	return st.loadedCount >= st.totalCount
}

// LoadMore fetches the next page for a group and appends it to the
// aggregate. At most one request per group is in flight: a call for a group
// already in Loading returns ErrLoadInFlight without issuing a request.
// Failures revert the group to Idle with an error annotation; other groups
// stay untouched.
func (t *Tracker) LoadMore(ctx context.Context, kind entity.RecordKind, key string) ([]entity.FinancialRecord, error) {
	t.mu.Lock()
	st, ok := t.groups[stateKey(kind, key)]
	if !ok {
		t.mu.Unlock()
		return nil, ErrUnknownGroup
	}
	if st.loading {
		t.mu.Unlock()
		return nil, ErrLoadInFlight
	}
	if st.loadedCount >= st.totalCount {
		t.mu.Unlock()
		return nil, nil
	}

	st.loading = true
	st.attempt++
	gen := t.generation
	attempt := st.attempt
	reqPage := st.page + 1
	pageSize := t.pageSize
	period := entity.ReportPeriod{}
	if t.aggregate != nil {
		period = t.aggregate.Period
	}

	// The watchdog clears a stuck Loading flag even if the request outcome
	// never fires, so the group can never become permanently unresponsive.
	watchdog := time.AfterFunc(t.watchdogTimeout, func() {
		t.clearStuckLoading(gen, attempt, kind, key)
	})
	t.mu.Unlock()

	items, total, err := t.fetcher.ListPage(ctx, kind, key, period, reqPage, pageSize)

	t.mu.Lock()
	defer t.mu.Unlock()
	watchdog.Stop()

	if t.generation != gen {
		// The period changed while the request was in flight; the response
		// belongs to a stale aggregate and is discarded.
		return nil, nil
	}
	if st.attempt != attempt {
		// The watchdog already reverted this load and a newer attempt may
		// have started; applying the late response would double-append.
		return nil, nil
	}

	st.loading = false
	if err != nil {
		st.lastErr = domainerror.NewReportError(
			domainerror.ErrCodeGroupLoadFailed,
			"failed to load more items for group "+key,
			err,
		)
		return nil, st.lastErr
	}

	st.lastErr = nil
	st.page = reqPage
	st.loadedCount += len(items)
	if total >= 0 && total != st.totalCount {
		// The server's total is authoritative; adopt it even when lower
		// (records may have been deleted underneath). loadedCount never
		// regresses.
		st.totalCount = total
	}

	t.appendItems(kind, key, items)
	return items, nil
}

// appendItems grows the item list of the matching aggregate group. Called
// with the lock held.
func (t *Tracker) appendItems(kind entity.RecordKind, key string, items []entity.FinancialRecord) {
	if t.aggregate == nil || len(items) == 0 {
		return
	}

	groups := t.aggregate.PaymentGroups
	if kind == entity.RecordKindExpense {
		groups = t.aggregate.ExpenseGroups
	}
	for i := range groups {
		if groups[i].Key == key {
			groups[i].Items = append(groups[i].Items, items...)
			return
		}
	}
}

// clearStuckLoading is the watchdog body: it reverts a still-Loading group
// of the same generation and attempt to Idle with a timeout annotation,
// bumping the attempt so the late response cannot be applied afterwards.
func (t *Tracker) clearStuckLoading(gen, attempt uint64, kind entity.RecordKind, key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.generation != gen {
		return
	}
	st, ok := t.groups[stateKey(kind, key)]
	if !ok || !st.loading || st.attempt != attempt {
		return
	}
	st.loading = false
	st.attempt++
	st.lastErr = domainerror.NewReportError(
		domainerror.ErrCodeGroupLoadFailed,
		"load timed out for group "+key,
		context.DeadlineExceeded,
	)
}

func stateKey(kind entity.RecordKind, key string) string {
	return string(kind) + ":" + key
}
