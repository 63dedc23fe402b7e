package fund

import (
	"fmt"
	"sort"

	"github.com/boddenberg/building-fund-bfa/internal/domain"

	"github.com/shopspring/decimal"
)

// UnknownMemberName labels deposits whose member could not be joined.
const UnknownMemberName = "Unknown"

// TransactionFilter selects which ledger entries are displayed.
type TransactionFilter string

const (
	FilterAll      TransactionFilter = "all"
	FilterDeposits TransactionFilter = "deposits"
	FilterExpenses TransactionFilter = "expenses"
)

// ParseTransactionFilter maps a query value to a filter. Empty means all.
func ParseTransactionFilter(s string) (TransactionFilter, error) {
	switch TransactionFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterDeposits, FilterExpenses:
		return TransactionFilter(s), nil
	}
	return "", &domain.ErrValidation{
		Field:   "filter",
		Message: fmt.Sprintf("must be one of all, deposits, expenses (got %q)", s),
	}
}

// Merge maps contributions and expenses onto the ledger shape and orders the
// result newest first. Equal timestamps keep concatenation order, so
// deposits come before withdrawals on ties.
func Merge(contributions []domain.Contribution, expenses []domain.Expense) []domain.Transaction {
	txs := make([]domain.Transaction, 0, len(contributions)+len(expenses))
	for _, c := range contributions {
		txs = append(txs, fromContribution(c))
	}
	for _, e := range expenses {
		txs = append(txs, fromExpense(e))
	}

	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Timestamp.After(txs[j].Timestamp)
	})
	return txs
}

func fromContribution(c domain.Contribution) domain.Transaction {
	name := UnknownMemberName
	if c.Member != nil && c.Member.FullName != "" {
		name = c.Member.FullName
	}
	month, year := c.Month, c.Year
	return domain.Transaction{
		ID:          c.ID,
		Kind:        domain.KindDeposit,
		Direction:   domain.KindDeposit.Direction(),
		MemberID:    c.MemberID,
		MemberName:  name,
		Amount:      c.Amount,
		Timestamp:   c.PaidAt,
		Month:       &month,
		Year:        &year,
		Description: c.Notes,
	}
}

func fromExpense(e domain.Expense) domain.Transaction {
	desc := e.Description
	if desc == "" {
		desc = e.Type.Label()
	}
	return domain.Transaction{
		ID:          e.ID,
		Kind:        domain.KindWithdraw,
		Direction:   domain.KindWithdraw.Direction(),
		Amount:      e.Amount,
		Timestamp:   e.CreatedAt,
		Month:       e.Month,
		Year:        e.Year,
		Description: desc,
	}
}

// FilterTransactions returns the entries matching f as a new slice.
// It never touches txs, so totals computed from txs stay valid.
func FilterTransactions(txs []domain.Transaction, f TransactionFilter) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		switch f {
		case FilterDeposits:
			if t.Direction != domain.DirectionIn {
				continue
			}
		case FilterExpenses:
			if t.Direction != domain.DirectionOut {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Totals sums money in and out. Pass the unfiltered ledger: summary cards
// reflect the whole period whatever display filter is active.
func Totals(txs []domain.Transaction) domain.LedgerTotals {
	var in, out decimal.Decimal
	for _, t := range txs {
		if t.Direction == domain.DirectionIn {
			in = in.Add(t.Amount)
		} else {
			out = out.Add(t.Amount)
		}
	}
	return domain.LedgerTotals{MoneyIn: in, MoneyOut: out, Net: in.Sub(out)}
}
