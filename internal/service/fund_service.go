// Package service assembles the dashboard screens: it fetches records from
// the store concurrently and hands them to the pure aggregation core.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/fund"
	"github.com/boddenberg/building-fund-bfa/internal/infra/observability"
	"github.com/boddenberg/building-fund-bfa/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("service/fund")

// FundService serves every screen of the fund dashboard. It keeps no derived
// state between calls: each call refetches what it aggregates.
type FundService struct {
	store           port.FundStore
	defaultRequired decimal.Decimal
	metrics         *observability.Metrics
	logger          *zap.Logger
}

// NewFundService creates the service. defaultRequired is the monthly dues
// figure used when settings carry none.
func NewFundService(
	store port.FundStore,
	defaultRequired decimal.Decimal,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FundService {
	return &FundService{
		store:           store,
		defaultRequired: defaultRequired,
		metrics:         metrics,
		logger:          logger,
	}
}

// LedgerQuery selects the transactions to merge. Month, Year and MemberID
// narrow the fetch; Filter only narrows what is displayed.
type LedgerQuery struct {
	Month    *int
	Year     *int
	MemberID string
	Filter   fund.TransactionFilter
}

// Ping reports whether the store is reachable.
func (s *FundService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CurrentPeriod is the billing period containing the service clock.
func (s *FundService) CurrentPeriod() domain.Period {
	return domain.CurrentPeriod(time.Now())
}

// ListMembers returns the roster, active members only unless activeOnly is false.
func (s *FundService) ListMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error) {
	ctx, span := tracer.Start(ctx, "FundService.ListMembers")
	defer span.End()

	return s.fetchMembers(ctx, activeOnly)
}

// ListContributions returns the matching contributions and their total.
func (s *FundService) ListContributions(ctx context.Context, filter port.ContributionFilter) (*domain.ContributionList, error) {
	ctx, span := tracer.Start(ctx, "FundService.ListContributions")
	defer span.End()

	rows, err := s.fetchContributions(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ContributionList{
		Contributions: rows,
		Total:         fund.SumContributions(rows),
	}, nil
}

// ListExpenses returns the matching expenses, their total and the
// per-category breakdown.
func (s *FundService) ListExpenses(ctx context.Context, filter port.ExpenseFilter) (*domain.ExpenseList, error) {
	ctx, span := tracer.Start(ctx, "FundService.ListExpenses")
	defer span.End()

	rows, err := s.fetchExpenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &domain.ExpenseList{
		Expenses: rows,
		Total:    fund.SumExpenses(rows),
		ByType:   fund.ExpensesByType(rows),
	}, nil
}

// GetSettings returns the settings rows with the resolved monthly contribution.
func (s *FundService) GetSettings(ctx context.Context) (*domain.SettingsView, error) {
	ctx, span := tracer.Start(ctx, "FundService.GetSettings")
	defer span.End()

	settings, err := s.fetchSettings(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SettingsView{
		Settings:            settings,
		MonthlyContribution: fund.RequiredAmount(settings, s.defaultRequired),
	}, nil
}

// RequiredAmount resolves the monthly dues figure from settings.
func (s *FundService) RequiredAmount(ctx context.Context) (decimal.Decimal, error) {
	settings, err := s.fetchSettings(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return fund.RequiredAmount(settings, s.defaultRequired), nil
}

// PaymentStatus classifies every active member for one period.
func (s *FundService) PaymentStatus(ctx context.Context, period domain.Period) (*domain.PaymentStatusReport, error) {
	ctx, span := tracer.Start(ctx, "FundService.PaymentStatus")
	defer span.End()
	span.SetAttributes(attribute.String("period", period.String()))

	if !period.Valid() {
		return nil, &domain.ErrValidation{Field: "period", Message: "month must be 1..12 and year positive"}
	}

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration(observability.AggPaymentStatus, time.Since(start))
	}()

	var (
		members       []domain.Member
		contributions []domain.Contribution
		settings      []domain.Setting
	)

	month, year := period.Month, period.Year
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = s.fetchMembers(gCtx, true)
		return err
	})
	g.Go(func() (err error) {
		contributions, err = s.fetchContributions(gCtx, port.ContributionFilter{Month: &month, Year: &year})
		return err
	})
	g.Go(func() (err error) {
		settings, err = s.fetchSettings(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	required := fund.RequiredAmount(settings, s.defaultRequired)
	statuses := fund.Classify(members, contributions, required)
	paid, partial, unpaid := fund.Bucket(statuses)
	s.metrics.IncrAggregation(observability.AggPaymentStatus)

	s.logger.Debug("payment status computed",
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int("paid", len(paid)),
		zap.Int("partial", len(partial)),
		zap.Int("unpaid", len(unpaid)),
	)

	return &domain.PaymentStatusReport{
		Month:          month,
		Year:           year,
		RequiredAmount: required,
		Statuses:       statuses,
		Paid:           paid,
		Partial:        partial,
		Unpaid:         unpaid,
		Progress:       fund.Progress(period, required, statuses),
		PreviousPeriod: period.Previous(),
	}, nil
}

// PendingByPeriod scans every period with recorded contributions and lists
// the members still owing, newest period first.
func (s *FundService) PendingByPeriod(ctx context.Context) ([]domain.PeriodPending, error) {
	ctx, span := tracer.Start(ctx, "FundService.PendingByPeriod")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration(observability.AggPending, time.Since(start))
	}()

	var (
		members       []domain.Member
		contributions []domain.Contribution
		settings      []domain.Setting
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		members, err = s.fetchMembers(gCtx, true)
		return err
	})
	g.Go(func() (err error) {
		contributions, err = s.fetchContributions(gCtx, port.ContributionFilter{})
		return err
	})
	g.Go(func() (err error) {
		settings, err = s.fetchSettings(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pending := fund.ScanPending(members, contributions, fund.RequiredAmount(settings, s.defaultRequired))
	s.metrics.IncrAggregation(observability.AggPending)
	return pending, nil
}

// Ledger merges contributions and expenses into one newest-first list.
// Totals are computed before the display filter is applied.
func (s *FundService) Ledger(ctx context.Context, q LedgerQuery) (*domain.Ledger, error) {
	ctx, span := tracer.Start(ctx, "FundService.Ledger")
	defer span.End()
	span.SetAttributes(attribute.String("ledger.filter", string(q.Filter)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration(observability.AggLedger, time.Since(start))
	}()

	var (
		contributions []domain.Contribution
		expenses      []domain.Expense
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		contributions, err = s.fetchContributions(gCtx, port.ContributionFilter{
			Month:    q.Month,
			Year:     q.Year,
			MemberID: q.MemberID,
		})
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.fetchExpenses(gCtx, port.ExpenseFilter{Month: q.Month, Year: q.Year})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := fund.Merge(contributions, expenses)
	s.metrics.IncrAggregation(observability.AggLedger)

	filter := q.Filter
	if filter == "" {
		filter = fund.FilterAll
	}
	return &domain.Ledger{
		Transactions: fund.FilterTransactions(all, filter),
		Totals:       fund.Totals(all),
	}, nil
}

// Dashboard reads the three dashboard views and groups pending rows by period.
func (s *FundService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	ctx, span := tracer.Start(ctx, "FundService.Dashboard")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration(observability.AggDashboard, time.Since(start))
	}()

	var (
		summary  *domain.DashboardSummary
		progress *domain.MonthProgress
		pending  []domain.PendingPayment
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.store.GetDashboardSummary(gCtx)
		if err != nil {
			s.logger.Error("failed to fetch dashboard summary", zap.Error(err))
			return fmt.Errorf("dashboard summary fetch: %w", err)
		}
		summary = v
		return nil
	})
	g.Go(func() error {
		v, err := s.store.GetCurrentMonthProgress(gCtx)
		if err != nil {
			s.logger.Error("failed to fetch current month progress", zap.Error(err))
			return fmt.Errorf("current month progress fetch: %w", err)
		}
		progress = v
		return nil
	})
	g.Go(func() error {
		v, err := s.store.ListPendingPayments(gCtx)
		if err != nil {
			s.logger.Error("failed to fetch pending payments", zap.Error(err))
			return fmt.Errorf("pending payments fetch: %w", err)
		}
		pending = v
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.metrics.IncrAggregation(observability.AggDashboard)
	return &domain.Dashboard{
		Summary:        summary,
		CurrentMonth:   progress,
		PendingByMonth: fund.GroupPending(pending),
	}, nil
}

// PoolBalance computes the all-time fund balance from raw records.
func (s *FundService) PoolBalance(ctx context.Context) (*domain.PoolBalanceView, error) {
	ctx, span := tracer.Start(ctx, "FundService.PoolBalance")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration(observability.AggBalance, time.Since(start))
	}()

	var (
		contributions []domain.Contribution
		expenses      []domain.Expense
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		contributions, err = s.fetchContributions(gCtx, port.ContributionFilter{})
		return err
	})
	g.Go(func() (err error) {
		expenses, err = s.fetchExpenses(gCtx, port.ExpenseFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in := fund.SumContributions(contributions)
	out := fund.SumExpenses(expenses)
	s.metrics.IncrAggregation(observability.AggBalance)

	return &domain.PoolBalanceView{
		TotalContributions: in,
		TotalExpenses:      out,
		Balance:            fund.PoolBalance(in, out),
	}, nil
}

// MetricsSummary returns the service counters.
func (s *FundService) MetricsSummary() *domain.MetricsSummary {
	return s.metrics.Snapshot()
}

// ============================================================
// Fetch helpers
// ============================================================

func (s *FundService) fetchMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error) {
	members, err := s.store.ListMembers(ctx, activeOnly)
	if err != nil {
		s.logger.Error("failed to fetch members", zap.Bool("active_only", activeOnly), zap.Error(err))
		return nil, fmt.Errorf("members fetch: %w", err)
	}
	return members, nil
}

func (s *FundService) fetchContributions(ctx context.Context, filter port.ContributionFilter) ([]domain.Contribution, error) {
	rows, err := s.store.ListContributions(ctx, filter)
	if err != nil {
		s.logger.Error("failed to fetch contributions", periodFields(filter.Month, filter.Year, zap.Error(err))...)
		return nil, fmt.Errorf("contributions fetch: %w", err)
	}
	return rows, nil
}

func (s *FundService) fetchExpenses(ctx context.Context, filter port.ExpenseFilter) ([]domain.Expense, error) {
	rows, err := s.store.ListExpenses(ctx, filter)
	if err != nil {
		s.logger.Error("failed to fetch expenses", periodFields(filter.Month, filter.Year, zap.Error(err))...)
		return nil, fmt.Errorf("expenses fetch: %w", err)
	}
	return rows, nil
}

func (s *FundService) fetchSettings(ctx context.Context) ([]domain.Setting, error) {
	settings, err := s.store.ListSettings(ctx)
	if err != nil {
		s.logger.Error("failed to fetch settings", zap.Error(err))
		return nil, fmt.Errorf("settings fetch: %w", err)
	}
	return settings, nil
}

func periodFields(month, year *int, extra ...zap.Field) []zap.Field {
	fields := make([]zap.Field, 0, 2+len(extra))
	if month != nil {
		fields = append(fields, zap.Int("month", *month))
	}
	if year != nil {
		fields = append(fields, zap.Int("year", *year))
	}
	return append(fields, extra...)
}
