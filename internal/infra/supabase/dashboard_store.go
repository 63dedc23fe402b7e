package supabase

import (
	"context"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
)

// ============================================================
// Dashboard views (computed by the database)
// ============================================================

const viewsLabel = "views"

// GetDashboardSummary reads the single row of v_dashboard_summary.
func (c *Client) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetDashboardSummary")
	defer span.End()

	var rows []domain.DashboardSummary
	if err := c.fetch(ctx, viewsLabel, newQuery("v_dashboard_summary").sel("*").limit(1), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "dashboard summary"}
	}
	return &rows[0], nil
}

// GetCurrentMonthProgress reads the single row of v_current_month_progress.
func (c *Client) GetCurrentMonthProgress(ctx context.Context) (*domain.MonthProgress, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCurrentMonthProgress")
	defer span.End()

	var rows []domain.MonthProgress
	if err := c.fetch(ctx, viewsLabel, newQuery("v_current_month_progress").sel("*").limit(1), &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "current month progress"}
	}
	return &rows[0], nil
}

// ListPendingPayments reads v_pending_payments: one row per unpaid or
// partial member and period.
func (c *Client) ListPendingPayments(ctx context.Context) ([]domain.PendingPayment, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPendingPayments")
	defer span.End()

	var rows []domain.PendingPayment
	if err := c.fetch(ctx, viewsLabel, newQuery("v_pending_payments").sel("*"), &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.PendingPayment{}
	}
	return rows, nil
}
