// Package fund holds the pure aggregation rules of the building fund:
// payment status classification, the multi-period pending scan and the
// merged transaction ledger. Nothing here performs I/O or keeps state
// between calls; callers pass freshly fetched records every time.
package fund

import (
	"sort"

	"github.com/boddenberg/building-fund-bfa/internal/domain"

	"github.com/shopspring/decimal"
)

// StatusFor is the one place the paid/partial/unpaid boundary is decided.
// paid >= required is paid, any positive amount below required is partial,
// anything else is unpaid. A zero requirement therefore makes everyone paid.
func StatusFor(paid, required decimal.Decimal) domain.PaymentState {
	switch {
	case paid.GreaterThanOrEqual(required):
		return domain.StatePaid
	case paid.IsPositive():
		return domain.StatePartial
	default:
		return domain.StateUnpaid
	}
}

// Classify returns one status per member, in roster order.
// contributions must already be scoped to a single period.
func Classify(members []domain.Member, contributions []domain.Contribution, required decimal.Decimal) []domain.PaymentStatus {
	paidByMember := sumByMember(contributions)

	statuses := make([]domain.PaymentStatus, 0, len(members))
	for _, m := range members {
		paid := paidByMember[m.ID] // zero value when the member has no rows
		statuses = append(statuses, domain.PaymentStatus{
			Member:         m,
			RequiredAmount: required,
			PaidAmount:     paid,
			Status:         StatusFor(paid, required),
		})
	}
	return statuses
}

// ScanPending classifies every period that has at least one contribution
// row and keeps only the members who are not fully paid. Periods are
// returned newest first; periods where everyone paid are dropped.
//
// A period in which nobody paid at all has no rows and is never surfaced.
func ScanPending(members []domain.Member, contributions []domain.Contribution, required decimal.Decimal) []domain.PeriodPending {
	byPeriod := make(map[domain.Period][]domain.Contribution)
	for _, c := range contributions {
		p := c.Period()
		byPeriod[p] = append(byPeriod[p], c)
	}

	periods := make([]domain.Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].After(periods[j])
	})

	result := []domain.PeriodPending{}
	for _, p := range periods {
		pending := domain.PeriodPending{
			Month:   p.Month,
			Year:    p.Year,
			Unpaid:  []domain.PaymentStatus{},
			Partial: []domain.PaymentStatus{},
		}
		for _, s := range Classify(members, byPeriod[p], required) {
			switch s.Status {
			case domain.StateUnpaid:
				pending.Unpaid = append(pending.Unpaid, s)
			case domain.StatePartial:
				pending.Partial = append(pending.Partial, s)
			}
		}
		if len(pending.Unpaid) == 0 && len(pending.Partial) == 0 {
			continue
		}
		result = append(result, pending)
	}
	return result
}

// Bucket splits statuses by state, preserving order inside each bucket.
func Bucket(statuses []domain.PaymentStatus) (paid, partial, unpaid []domain.PaymentStatus) {
	paid = []domain.PaymentStatus{}
	partial = []domain.PaymentStatus{}
	unpaid = []domain.PaymentStatus{}
	for _, s := range statuses {
		switch s.Status {
		case domain.StatePaid:
			paid = append(paid, s)
		case domain.StatePartial:
			partial = append(partial, s)
		default:
			unpaid = append(unpaid, s)
		}
	}
	return paid, partial, unpaid
}

func sumByMember(contributions []domain.Contribution) map[string]decimal.Decimal {
	sums := make(map[string]decimal.Decimal, len(contributions))
	for _, c := range contributions {
		sums[c.MemberID] = sums[c.MemberID].Add(c.Amount)
	}
	return sums
}
