// Package supabase provides a read-only client for the Supabase PostgREST API.
// It is the default data backend for members, contributions, expenses,
// settings and the dashboard views.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/infra/observability"
	"github.com/boddenberg/building-fund-bfa/internal/infra/resilience"
	"github.com/boddenberg/building-fund-bfa/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

var _ port.FundStore = (*Client)(nil)

// Client wraps HTTP calls to Supabase PostgREST API.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	cfg            resilience.Config
	metrics        *observability.Metrics
	logger         *zap.Logger
}

// NewClient creates a Supabase client. An empty serviceRoleKey falls back to
// the anon key for the bearer token.
func NewClient(
	httpClient *http.Client,
	baseURL, apiKey, serviceRoleKey string,
	cb *gobreaker.CircuitBreaker,
	cfg resilience.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Client {
	if serviceRoleKey == "" {
		serviceRoleKey = apiKey
	}
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:            cfg,
		metrics:        metrics,
		logger:         logger,
	}
}

// statusError is a non-2xx PostgREST response.
type statusError struct {
	Status int
	Body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("supabase returned status %d: %s", e.Status, e.Body)
}

// doRequest executes an authenticated request to Supabase PostgREST.
// 4xx responses other than 408 and 429 are marked permanent.
func (c *Client) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, resilience.Permanent(err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.serviceRoleKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		serr := &statusError{Status: resp.StatusCode, Body: string(body)}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 &&
			resp.StatusCode != http.StatusRequestTimeout &&
			resp.StatusCode != http.StatusTooManyRequests {
			return nil, resilience.Permanent(serr)
		}
		return nil, serr
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return body, nil
}

// fetch runs a GET through the breaker, bulkhead and retry policy and
// decodes the JSON array response into dst. table labels metrics and errors.
func (c *Client) fetch(ctx context.Context, table string, q *query, dst any) error {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("db.table", q.table), attribute.String("db.query", q.path()))

	c.metrics.IncrStoreRequest(table)

	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.bulkhead.Do(ctx, func() error {
			return resilience.RetryWithBackoff(ctx, c.cfg, func() error {
				body, err := c.doRequest(ctx, http.MethodGet, q.path())
				if err != nil {
					return err
				}
				if len(body) == 0 {
					body = []byte("[]")
				}
				if err := json.Unmarshal(body, dst); err != nil {
					return resilience.Permanent(fmt.Errorf("decode %s: %w", q.table, err))
				}
				return nil
			})
		})
	})
	if err != nil {
		c.metrics.IncrStoreError(table)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("supabase: read failed",
			zap.String("table", q.table),
			zap.Error(err),
		)
		return wrapError(q.table, err)
	}
	return nil
}

// wrapError maps a read failure to the domain error taxonomy.
func wrapError(source string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "supabase/" + source}
	case resilience.IsTimeout(err):
		return &domain.ErrFetchFailure{Source: source, Err: &domain.ErrTimeout{Operation: "supabase/" + source}}
	default:
		return &domain.ErrFetchFailure{Source: source, Err: err}
	}
}

// Ping issues a single cheap read, bypassing retries and the breaker.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Supabase.Ping")
	defer span.End()

	q := newQuery("settings").sel("id").limit(1)
	if _, err := c.doRequest(ctx, http.MethodGet, q.path()); err != nil {
		span.RecordError(err)
		return &domain.ErrFetchFailure{Source: "supabase", Err: err}
	}
	return nil
}
