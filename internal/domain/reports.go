package domain

import "github.com/shopspring/decimal"

// ============================================================
// Screen payloads assembled by the service layer
// ============================================================

// ContributionList is the contributions screen: rows plus their sum.
type ContributionList struct {
	Contributions []Contribution  `json:"contributions"`
	Total         decimal.Decimal `json:"total"`
}

// ExpenseList is the expenses screen: rows, their sum and a per-category breakdown.
type ExpenseList struct {
	Expenses []Expense                       `json:"expenses"`
	Total    decimal.Decimal                 `json:"total"`
	ByType   map[ExpenseType]decimal.Decimal `json:"by_type"`
}

// SettingsView pairs the raw settings with the resolved dues figure.
type SettingsView struct {
	Settings            []Setting       `json:"settings"`
	MonthlyContribution decimal.Decimal `json:"monthly_contribution"`
}

// PaymentStatusReport is every active member's standing for one period.
type PaymentStatusReport struct {
	Month          int             `json:"month"`
	Year           int             `json:"year"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
	Statuses       []PaymentStatus `json:"statuses"`
	Paid           []PaymentStatus `json:"paid"`
	Partial        []PaymentStatus `json:"partial"`
	Unpaid         []PaymentStatus `json:"unpaid"`
	Progress       MonthProgress   `json:"progress"`

	// PreviousPeriod lets the month pager step back without date math.
	PreviousPeriod Period `json:"previous_period"`
}

// Ledger is the transactions screen. Totals cover every transaction of the
// query, whichever display filter produced Transactions.
type Ledger struct {
	Transactions []Transaction `json:"transactions"`
	Totals       LedgerTotals  `json:"totals"`
}

// PoolBalanceView is the all-time fund position.
type PoolBalanceView struct {
	TotalContributions decimal.Decimal `json:"total_contributions"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	Balance            decimal.Decimal `json:"balance"`
}
