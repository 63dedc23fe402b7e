package fund

import (
	"encoding/json"
	"sort"

	"github.com/boddenberg/building-fund-bfa/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultMonthlyContribution applies when settings carry no dues figure.
var DefaultMonthlyContribution = decimal.NewFromInt(1000)

// RequiredAmount reads monthly_contribution.amount from settings.
// A missing key or an unreadable amount yields fallback instead of an error.
func RequiredAmount(settings []domain.Setting, fallback decimal.Decimal) decimal.Decimal {
	for _, s := range settings {
		if s.Key != domain.SettingMonthlyContribution {
			continue
		}
		if amount, ok := toDecimal(s.Value["amount"]); ok {
			return amount
		}
		return fallback
	}
	return fallback
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	}
	return decimal.Decimal{}, false
}

// SumContributions totals contribution amounts.
func SumContributions(contributions []domain.Contribution) decimal.Decimal {
	var total decimal.Decimal
	for _, c := range contributions {
		total = total.Add(c.Amount)
	}
	return total
}

// SumExpenses totals expense amounts.
func SumExpenses(expenses []domain.Expense) decimal.Decimal {
	var total decimal.Decimal
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// ExpensesByType groups expense amounts per category.
// Only categories that occur are present.
func ExpensesByType(expenses []domain.Expense) map[domain.ExpenseType]decimal.Decimal {
	byType := make(map[domain.ExpenseType]decimal.Decimal)
	for _, e := range expenses {
		byType[e.Type] = byType[e.Type].Add(e.Amount)
	}
	return byType
}

// PoolBalance is all-time money in minus all-time money out.
func PoolBalance(totalIn, totalOut decimal.Decimal) decimal.Decimal {
	return totalIn.Sub(totalOut)
}

// Progress derives collection progress for a period from its statuses.
func Progress(p domain.Period, required decimal.Decimal, statuses []domain.PaymentStatus) domain.MonthProgress {
	progress := domain.MonthProgress{
		Month:          p.Month,
		Year:           p.Year,
		RequiredAmount: required,
		ExpectedTotal:  required.Mul(decimal.NewFromInt(int64(len(statuses)))),
	}
	for _, s := range statuses {
		progress.TotalCollected = progress.TotalCollected.Add(s.PaidAmount)
		switch s.Status {
		case domain.StatePaid:
			progress.PaidCount++
		case domain.StatePartial:
			progress.PartialCount++
		default:
			progress.UnpaidCount++
		}
	}
	return progress
}

// GroupPending groups rows of the pending-payments view by period, newest
// first. Row order inside a period is kept.
func GroupPending(rows []domain.PendingPayment) []domain.PeriodPendingView {
	index := make(map[domain.Period]int)
	groups := make([]domain.PeriodPendingView, 0)

	for _, row := range rows {
		p := domain.Period{Month: row.Month, Year: row.Year}
		i, ok := index[p]
		if !ok {
			i = len(groups)
			index[p] = i
			groups = append(groups, domain.PeriodPendingView{
				Month:   row.Month,
				Year:    row.Year,
				Unpaid:  []domain.PendingPayment{},
				Partial: []domain.PendingPayment{},
			})
		}
		if row.Status == domain.StateUnpaid {
			groups[i].Unpaid = append(groups[i].Unpaid, row)
		} else {
			groups[i].Partial = append(groups[i].Partial, row)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a := domain.Period{Month: groups[i].Month, Year: groups[i].Year}
		b := domain.Period{Month: groups[j].Month, Year: groups[j].Year}
		return a.After(b)
	})
	return groups
}
