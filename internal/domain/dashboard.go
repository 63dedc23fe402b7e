package domain

import "github.com/shopspring/decimal"

// ============================================================
// Dashboard views
// ============================================================

// DashboardSummary is the single row of the v_dashboard_summary view.
type DashboardSummary struct {
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	PoolBalance        decimal.Decimal `json:"pool_balance"`
	ActiveMembersCount int             `json:"active_members_count"`
	RequiredAmount     decimal.Decimal `json:"required_amount"`
}

// MonthProgress is the collection progress for one period.
type MonthProgress struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	ExpectedTotal  decimal.Decimal `json:"expected_total"`
	PaidCount      int             `json:"paid_count"`
	PartialCount   int             `json:"partial_count"`
	UnpaidCount    int             `json:"unpaid_count"`
}

// CollectionPercent returns collected/expected as a percentage capped at 100.
func (p MonthProgress) CollectionPercent() float64 {
	if !p.ExpectedTotal.IsPositive() {
		return 0
	}
	pct, _ := p.TotalCollected.Div(p.ExpectedTotal).Mul(decimal.NewFromInt(100)).Float64()
	if pct > 100 {
		return 100
	}
	return pct
}

// PendingPayment is one row of the v_pending_payments view.
type PendingPayment struct {
	MemberID       string          `json:"member_id"`
	FullName       string          `json:"full_name"`
	RoomID         string          `json:"room_id"`
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
	Status         PaymentState    `json:"status"`
}

// PeriodPendingView groups pending-view rows of one period.
type PeriodPendingView struct {
	Month   int              `json:"month"`
	Year    int              `json:"year"`
	Unpaid  []PendingPayment `json:"unpaid"`
	Partial []PendingPayment `json:"partial"`
}

// Dashboard is the payload behind the dashboard screen.
type Dashboard struct {
	Summary        *DashboardSummary   `json:"summary"`
	CurrentMonth   *MonthProgress      `json:"current_month"`
	PendingByMonth []PeriodPendingView `json:"pending_by_month"`
}
