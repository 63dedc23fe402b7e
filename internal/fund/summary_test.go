package fund_test

import (
	"encoding/json"
	"testing"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/fund"

	"github.com/shopspring/decimal"
)

func TestRequiredAmount(t *testing.T) {
	fallback := dec(1000)
	cases := []struct {
		name     string
		settings []domain.Setting
		want     decimal.Decimal
	}{
		{"no settings", nil, fallback},
		{"other keys only", []domain.Setting{{Key: "currency", Value: map[string]any{"code": "ETB"}}}, fallback},
		{"float amount", []domain.Setting{{Key: "monthly_contribution", Value: map[string]any{"amount": float64(1500)}}}, dec(1500)},
		{"json number", []domain.Setting{{Key: "monthly_contribution", Value: map[string]any{"amount": json.Number("750.50")}}}, decimal.RequireFromString("750.50")},
		{"string amount", []domain.Setting{{Key: "monthly_contribution", Value: map[string]any{"amount": "1200"}}}, dec(1200)},
		{"missing amount", []domain.Setting{{Key: "monthly_contribution", Value: map[string]any{}}}, fallback},
		{"garbage amount", []domain.Setting{{Key: "monthly_contribution", Value: map[string]any{"amount": true}}}, fallback},
		{"zero amount", []domain.Setting{{Key: "monthly_contribution", Value: map[string]any{"amount": float64(0)}}}, dec(0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := fund.RequiredAmount(tc.settings, fallback); !got.Equal(tc.want) {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestSumsAndGrouping(t *testing.T) {
	contribs := []domain.Contribution{{Amount: decimal.RequireFromString("100.25")}, {Amount: dec(200)}}
	expenses := []domain.Expense{
		{Type: domain.ExpenseWater, Amount: dec(40)},
		{Type: domain.ExpenseWater, Amount: dec(60)},
		{Type: domain.ExpenseJanitorSalary, Amount: dec(300)},
	}

	if got := fund.SumContributions(contribs); !got.Equal(decimal.RequireFromString("300.25")) {
		t.Errorf("expected contributions 300.25, got %s", got)
	}
	if got := fund.SumExpenses(expenses); !got.Equal(dec(400)) {
		t.Errorf("expected expenses 400, got %s", got)
	}

	byType := fund.ExpensesByType(expenses)
	if len(byType) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(byType))
	}
	if !byType[domain.ExpenseWater].Equal(dec(100)) {
		t.Errorf("expected water 100, got %s", byType[domain.ExpenseWater])
	}
	if _, ok := byType[domain.ExpenseGuardSalary]; ok {
		t.Error("expected absent category to be omitted")
	}

	if got := fund.PoolBalance(dec(5000), dec(1200)); !got.Equal(dec(3800)) {
		t.Errorf("expected pool balance 3800, got %s", got)
	}
}

func TestProgress(t *testing.T) {
	members := []domain.Member{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	contribs := []domain.Contribution{contribution("1", 1000, 6, 2024), contribution("2", 250, 6, 2024)}
	statuses := fund.Classify(members, contribs, dec(1000))

	p := fund.Progress(domain.Period{Month: 6, Year: 2024}, dec(1000), statuses)

	if p.PaidCount != 1 || p.PartialCount != 1 || p.UnpaidCount != 1 {
		t.Errorf("unexpected counts %d/%d/%d", p.PaidCount, p.PartialCount, p.UnpaidCount)
	}
	if !p.TotalCollected.Equal(dec(1250)) || !p.ExpectedTotal.Equal(dec(3000)) {
		t.Errorf("unexpected totals collected=%s expected=%s", p.TotalCollected, p.ExpectedTotal)
	}
	if pct := p.CollectionPercent(); pct < 41.6 || pct > 41.7 {
		t.Errorf("expected ~41.67%%, got %f", pct)
	}
}

func TestGroupPending(t *testing.T) {
	rows := []domain.PendingPayment{
		{MemberID: "1", Month: 1, Year: 2024, Status: domain.StateUnpaid},
		{MemberID: "2", Month: 3, Year: 2024, Status: domain.StatePartial},
		{MemberID: "3", Month: 1, Year: 2024, Status: domain.StatePartial},
		{MemberID: "4", Month: 12, Year: 2023, Status: domain.StateUnpaid},
		{MemberID: "5", Month: 1, Year: 2024, Status: domain.StateUnpaid},
	}

	groups := fund.GroupPending(rows)

	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Month != 3 || groups[1].Month != 1 || groups[2].Year != 2023 {
		t.Errorf("groups not newest first: %+v", groups)
	}
	jan := groups[1]
	if len(jan.Unpaid) != 2 || jan.Unpaid[0].MemberID != "1" || jan.Unpaid[1].MemberID != "5" {
		t.Errorf("unexpected january unpaid %+v", jan.Unpaid)
	}
	if len(jan.Partial) != 1 || jan.Partial[0].MemberID != "3" {
		t.Errorf("unexpected january partial %+v", jan.Partial)
	}
}
