package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Payment status (derived, never persisted)
// ============================================================

// PaymentState classifies how much of the required amount a member paid.
type PaymentState string

const (
	StatePaid    PaymentState = "paid"
	StatePartial PaymentState = "partial"
	StateUnpaid  PaymentState = "unpaid"
)

// PaymentStatus is a member's standing for one period.
type PaymentStatus struct {
	Member         Member          `json:"member"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Status         PaymentState    `json:"status"`
}

// PeriodPending lists the members that have not fully paid a period.
type PeriodPending struct {
	Month   int             `json:"month"`
	Year    int             `json:"year"`
	Unpaid  []PaymentStatus `json:"unpaid"`
	Partial []PaymentStatus `json:"partial"`
}

// ============================================================
// Ledger (derived, never persisted)
// ============================================================

// TransactionKind tells deposits and withdrawals apart.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "deposit"
	KindWithdraw TransactionKind = "withdraw"
)

// Direction is the money flow relative to the fund.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Direction is derived from the kind and never set independently.
func (k TransactionKind) Direction() Direction {
	if k == KindDeposit {
		return DirectionIn
	}
	return DirectionOut
}

// Transaction is the ledger view shared by contributions and expenses.
type Transaction struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	Direction   Direction       `json:"direction"`
	MemberID    string          `json:"member_id,omitempty"`
	MemberName  string          `json:"member_name,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
	Month       *int            `json:"month,omitempty"`
	Year        *int            `json:"year,omitempty"`
	Description string          `json:"description,omitempty"`
}

// LedgerTotals summarises money flow over a ledger.
type LedgerTotals struct {
	MoneyIn  decimal.Decimal `json:"money_in"`
	MoneyOut decimal.Decimal `json:"money_out"`
	Net      decimal.Decimal `json:"net"`
}
