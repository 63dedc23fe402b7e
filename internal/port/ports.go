// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the service layer
// from the concrete data store (Supabase PostgREST or direct Postgres).
package port

import (
	"context"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
)

// ContributionFilter narrows a contributions read. Nil/empty fields are ignored.
type ContributionFilter struct {
	Month    *int
	Year     *int
	MemberID string
}

// ExpenseFilter narrows an expenses read. Nil/empty fields are ignored.
type ExpenseFilter struct {
	Month *int
	Year  *int
	Type  domain.ExpenseType
}

// FundStore is the read-only record-fetching layer behind every screen.
// Implementations return records in the order documented per method.
type FundStore interface {
	// ListMembers returns the roster ordered by room id ascending.
	ListMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error)

	// ListContributions returns contributions joined with their member,
	// newest payment first.
	ListContributions(ctx context.Context, filter ContributionFilter) ([]domain.Contribution, error)

	// ListExpenses returns expenses newest first.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]domain.Expense, error)

	ListSettings(ctx context.Context) ([]domain.Setting, error)

	// Dashboard views. The singleton views return *domain.ErrNotFound when empty.
	GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
	GetCurrentMonthProgress(ctx context.Context) (*domain.MonthProgress, error)
	ListPendingPayments(ctx context.Context) ([]domain.PendingPayment, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}
