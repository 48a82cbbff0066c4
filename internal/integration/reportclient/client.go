// Package reportclient is the consumer SDK for the finance report API: it
// obtains (or locally computes) the balance sheet aggregate, pages group
// items in incrementally, and exports the currently loaded state.
package reportclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/studyroom/backend/internal/application/usecase/report"
	"github.com/studyroom/backend/internal/domain/entity"
	domainerror "github.com/studyroom/backend/internal/domain/error"
)

const (
	// DefaultFallbackCap bounds the "unbounded" page the fallback path
	// requests from the list endpoints. Beyond the cap the aggregate is
	// marked truncated rather than assumed complete.
	DefaultFallbackCap = 10000

	// DefaultRequestTimeout bounds every network call issued by the client.
	DefaultRequestTimeout = 15 * time.Second
)

// Client talks to the finance API with a bearer credential.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	fallbackCap int
	timeout     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithFallbackCap overrides the fallback page cap.
func WithFallbackCap(cap int) Option {
	return func(c *Client) { c.fallbackCap = cap }
}

// WithRequestTimeout overrides the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient creates a report client for the API at baseURL.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		token:       token,
		httpClient:  &http.Client{},
		fallbackCap: DefaultFallbackCap,
		timeout:     DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAggregate obtains the balance sheet for a period. The pre-aggregated
// detail endpoint is tried first; when it is unavailable the client fetches
// the raw payment and expense lists and aggregates locally. Invalid periods
// are rejected before any network call.
func (c *Client) FetchAggregate(
	ctx context.Context,
	period entity.ReportPeriod,
	pageSizeHint int,
) (*entity.Aggregate, error) {
	if err := report.ValidatePeriod(period); err != nil {
		return nil, err
	}

	aggregate, primaryErr := c.fetchDetail(ctx, period, pageSizeHint)
	if primaryErr == nil {
		return aggregate, nil
	}

	slog.Warn("Detail endpoint unavailable, falling back to client-side aggregation",
		"error", primaryErr,
	)

	aggregate, fallbackErr := c.fetchFallback(ctx, period)
	if fallbackErr == nil {
		return aggregate, nil
	}

	return nil, domainerror.NewReportError(
		domainerror.ErrCodeReportUnavailable,
		"report data unavailable",
		fmt.Errorf("primary: %v; fallback: %w", primaryErr, fallbackErr),
	)
}

// fetchDetail requests the pre-aggregated detail resource.
func (c *Client) fetchDetail(
	ctx context.Context,
	period entity.ReportPeriod,
	pageSizeHint int,
) (*entity.Aggregate, error) {
	query := url.Values{}
	if period.StartDate != nil {
		query.Set("start_date", period.StartDate.UTC().Format(report.DateLayout))
	}
	if period.EndDate != nil {
		query.Set("end_date", period.EndDate.UTC().Format(report.DateLayout))
	}
	if pageSizeHint > 0 {
		query.Set("page_size", strconv.Itoa(pageSizeHint))
	}

	var resp aggregateResponse
	if err := c.getJSON(ctx, "/api/v1/finance/detail", query, &resp); err != nil {
		return nil, err
	}

	return resp.Data.toEntity(period), nil
}

// fetchFallback issues the two list requests concurrently and aggregates
// the full result sets locally.
func (c *Client) fetchFallback(
	ctx context.Context,
	period entity.ReportPeriod,
) (*entity.Aggregate, error) {
	var payments, expenses []entity.FinancialRecord
	var paymentsTotal, expensesTotal int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		payments, paymentsTotal, err = c.ListPage(gctx, entity.RecordKindPayment, "", period, 1, c.fallbackCap)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, expensesTotal, err = c.ListPage(gctx, entity.RecordKindExpense, "", period, 1, c.fallbackCap)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregate := report.BuildAggregate(period, payments, expenses)
	if paymentsTotal > len(payments) || expensesTotal > len(expenses) {
		aggregate.Truncated = true
		slog.Warn("Fallback aggregation truncated at page cap",
			"cap", c.fallbackCap,
			"payments_total", paymentsTotal,
			"expenses_total", expensesTotal,
		)
	}
	return aggregate, nil
}

// ListPage fetches one page of a record list, scoped to a period and
// optionally filtered to one category key. It returns the items plus the
// server's authoritative total for that scope.
func (c *Client) ListPage(
	ctx context.Context,
	kind entity.RecordKind,
	key string,
	period entity.ReportPeriod,
	page, pageSize int,
) ([]entity.FinancialRecord, int, error) {
	path := "/api/v1/payments"
	if kind == entity.RecordKindExpense {
		path = "/api/v1/expenses"
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))
	if key != "" {
		query.Set("key", key)
	}
	if period.StartDate != nil {
		query.Set("start_date", period.StartDate.UTC().Format(report.DateLayout))
	}
	if period.EndDate != nil {
		query.Set("end_date", period.EndDate.UTC().Format(report.DateLayout))
	}

	var resp listResponse
	if err := c.getJSON(ctx, path, query, &resp); err != nil {
		return nil, 0, err
	}

	items := decodeRecords(resp.Data.Items, kind)
	return items, resp.Data.Total, nil
}

// getJSON performs an authenticated GET and decodes a 2xx JSON body.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}
