// Package postgres reads the fund tables directly from the Supabase Postgres
// database over a pgx connection pool. It is the alternative to the
// PostgREST client when DATA_BACKEND=postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/infra/observability"
	"github.com/boddenberg/building-fund-bfa/internal/infra/resilience"
	"github.com/boddenberg/building-fund-bfa/internal/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("postgres")

var _ port.FundStore = (*Store)(nil)

// Store implements port.FundStore over pgxpool.
type Store struct {
	pool    *pgxpool.Pool
	cb      *gobreaker.CircuitBreaker
	cfg     resilience.Config
	metrics *observability.Metrics
	logger  *zap.Logger
}

// New connects to databaseURL and verifies the connection.
func New(ctx context.Context, databaseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, metrics *observability.Metrics, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConcurrency > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConcurrency)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool, cb: cb, cfg: cfg, metrics: metrics, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &domain.ErrFetchFailure{Source: "postgres", Err: err}
	}
	return nil
}

// read runs fn through the breaker and retry policy. Server-reported SQL
// errors are not retried.
func (s *Store) read(ctx context.Context, table string, fn func() error) error {
	s.metrics.IncrStoreRequest(table)

	_, err := s.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.cfg, func() error {
			err := fn()
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) || errors.Is(err, pgx.ErrNoRows) {
				return resilience.Permanent(err)
			}
			return err
		})
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	s.metrics.IncrStoreError(table)
	s.logger.Error("postgres: read failed", zap.String("table", table), zap.Error(err))

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: "postgres/" + table}
	case resilience.IsTimeout(err):
		return &domain.ErrFetchFailure{Source: table, Err: &domain.ErrTimeout{Operation: "postgres/" + table}}
	default:
		return &domain.ErrFetchFailure{Source: table, Err: err}
	}
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ============================================================
// Members
// ============================================================

func (s *Store) ListMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListMembers")
	defer span.End()

	sql, args := membersQuery(activeOnly)
	var members []domain.Member

	err := s.read(ctx, "members", func() error {
		rows, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		members = make([]domain.Member, 0)
		for rows.Next() {
			var r memberRow
			if err := rows.Scan(r.dest()...); err != nil {
				return err
			}
			m := r.toDomain()
			if m == nil {
				continue
			}
			members = append(members, *m)
		}
		return rows.Err()
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return members, nil
}

// ============================================================
// Contributions
// ============================================================

func (s *Store) ListContributions(ctx context.Context, filter port.ContributionFilter) ([]domain.Contribution, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListContributions")
	defer span.End()

	sql, args := contributionsQuery(filter)
	var out []domain.Contribution

	err := s.read(ctx, "contributions", func() error {
		rows, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]domain.Contribution, 0)
		for rows.Next() {
			var r contributionRow
			if err := rows.Scan(r.dest()...); err != nil {
				return err
			}
			c, err := r.toDomain()
			if err != nil {
				return resilience.Permanent(err)
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// ============================================================
// Expenses
// ============================================================

func (s *Store) ListExpenses(ctx context.Context, filter port.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListExpenses")
	defer span.End()

	sql, args := expensesQuery(filter)
	var out []domain.Expense

	err := s.read(ctx, "expenses", func() error {
		rows, err := s.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]domain.Expense, 0)
		for rows.Next() {
			var (
				e           domain.Expense
				typ, amount string
				desc        *string
			)
			if err := rows.Scan(&e.ID, &typ, &desc, &amount, &e.Month, &e.Year, &e.Date, &e.CreatedAt, &e.Metadata); err != nil {
				return err
			}
			if e.Amount, err = parseAmount(amount); err != nil {
				return resilience.Permanent(err)
			}
			e.Type = domain.ExpenseType(typ)
			e.Description = deref(desc)
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// ============================================================
// Settings
// ============================================================

func (s *Store) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListSettings")
	defer span.End()

	var out []domain.Setting
	err := s.read(ctx, "settings", func() error {
		rows, err := s.pool.Query(ctx, settingsQuery)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]domain.Setting, 0)
		for rows.Next() {
			var st domain.Setting
			if err := rows.Scan(&st.ID, &st.Key, &st.Value); err != nil {
				return err
			}
			out = append(out, st)
		}
		return rows.Err()
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

// ============================================================
// Dashboard views
// ============================================================

func (s *Store) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetDashboardSummary")
	defer span.End()

	var sum domain.DashboardSummary
	err := s.read(ctx, "views", func() error {
		var contrib, expenses, pool, required string
		if err := s.pool.QueryRow(ctx, dashboardSummaryQuery).
			Scan(&contrib, &expenses, &pool, &sum.ActiveMembersCount, &required); err != nil {
			return err
		}
		return scanAmounts(
			amountDest{contrib, &sum.TotalContributions},
			amountDest{expenses, &sum.TotalExpenses},
			amountDest{pool, &sum.PoolBalance},
			amountDest{required, &sum.RequiredAmount},
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "dashboard summary"}
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &sum, nil
}

func (s *Store) GetCurrentMonthProgress(ctx context.Context) (*domain.MonthProgress, error) {
	ctx, span := tracer.Start(ctx, "Postgres.GetCurrentMonthProgress")
	defer span.End()

	var p domain.MonthProgress
	err := s.read(ctx, "views", func() error {
		var required, collected, expected string
		if err := s.pool.QueryRow(ctx, currentMonthProgressQuery).
			Scan(&p.Month, &p.Year, &required, &collected, &expected, &p.PaidCount, &p.PartialCount, &p.UnpaidCount); err != nil {
			return err
		}
		return scanAmounts(
			amountDest{required, &p.RequiredAmount},
			amountDest{collected, &p.TotalCollected},
			amountDest{expected, &p.ExpectedTotal},
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.ErrNotFound{Resource: "current month progress"}
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListPendingPayments(ctx context.Context) ([]domain.PendingPayment, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListPendingPayments")
	defer span.End()

	var out []domain.PendingPayment
	err := s.read(ctx, "views", func() error {
		rows, err := s.pool.Query(ctx, pendingPaymentsQuery)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]domain.PendingPayment, 0)
		for rows.Next() {
			var (
				p              domain.PendingPayment
				paid, required string
				status         string
			)
			if err := rows.Scan(&p.MemberID, &p.FullName, &p.RoomID, &p.Month, &p.Year, &paid, &required, &status); err != nil {
				return err
			}
			if err := scanAmounts(amountDest{paid, &p.PaidAmount}, amountDest{required, &p.RequiredAmount}); err != nil {
				return err
			}
			p.Status = domain.PaymentState(status)
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return out, nil
}

type amountDest struct {
	raw string
	dst *decimal.Decimal
}

func scanAmounts(dests ...amountDest) error {
	for _, d := range dests {
		v, err := parseAmount(d.raw)
		if err != nil {
			return resilience.Permanent(err)
		}
		*d.dst = v
	}
	return nil
}
