package fund_test

import (
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/fund"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMerge_ScenarioD_NewestFirst(t *testing.T) {
	contribs := []domain.Contribution{{ID: "c1", MemberID: "1", Amount: dec(100), PaidAt: day("2024-01-05")}}
	expenses := []domain.Expense{{ID: "e1", Type: domain.ExpenseWater, Amount: dec(50), CreatedAt: day("2024-01-03")}}

	txs := fund.Merge(contribs, expenses)

	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Kind != domain.KindDeposit || txs[0].Direction != domain.DirectionIn || !txs[0].Amount.Equal(dec(100)) {
		t.Errorf("expected deposit(100, in) first, got %+v", txs[0])
	}
	if txs[1].Kind != domain.KindWithdraw || txs[1].Direction != domain.DirectionOut || !txs[1].Amount.Equal(dec(50)) {
		t.Errorf("expected withdraw(50, out) second, got %+v", txs[1])
	}
}

func TestMerge_MapsFields(t *testing.T) {
	member := &domain.Member{ID: "m-1", FullName: "Abebe Kebede"}
	contribs := []domain.Contribution{
		{ID: "c1", MemberID: "m-1", Member: member, Amount: dec(1000), Month: 2, Year: 2024, PaidAt: day("2024-02-02"), Notes: "cash"},
		{ID: "c2", MemberID: "m-2", Amount: dec(300), Month: 2, Year: 2024, PaidAt: day("2024-02-01")},
	}
	expenses := []domain.Expense{
		{ID: "e1", Type: domain.ExpenseGuardSalary, Amount: dec(400), CreatedAt: day("2024-02-03")},
		{ID: "e2", Type: domain.ExpenseOther, Description: "Lightbulbs", Amount: dec(20), CreatedAt: day("2024-01-30")},
	}

	txs := fund.Merge(contribs, expenses)
	byID := make(map[string]domain.Transaction)
	for _, tx := range txs {
		byID[tx.ID] = tx
	}

	if got := byID["c1"]; got.MemberName != "Abebe Kebede" || got.MemberID != "m-1" || got.Description != "cash" {
		t.Errorf("unexpected deposit mapping: %+v", got)
	}
	if got := byID["c2"]; got.MemberName != fund.UnknownMemberName {
		t.Errorf("expected fallback member name, got %q", got.MemberName)
	}
	if got := byID["c1"]; got.Month == nil || *got.Month != 2 || got.Year == nil || *got.Year != 2024 {
		t.Errorf("expected deposit period 2/2024, got %+v", got)
	}
	if got := byID["e1"]; got.Description != "Guard Salary" || got.MemberID != "" || got.MemberName != "" {
		t.Errorf("expected category label and no member on withdraw, got %+v", got)
	}
	if got := byID["e2"]; got.Description != "Lightbulbs" {
		t.Errorf("expected explicit description, got %q", got.Description)
	}
}

func TestMerge_Properties(t *testing.T) {
	base := day("2024-03-01")
	var contribs []domain.Contribution
	var expenses []domain.Expense
	for i := 0; i < 7; i++ {
		contribs = append(contribs, domain.Contribution{ID: "c", Amount: dec(int64(i + 1)), PaidAt: base.Add(time.Duration(i*5) * time.Hour)})
	}
	for i := 0; i < 5; i++ {
		expenses = append(expenses, domain.Expense{ID: "e", Type: domain.ExpenseWater, Amount: dec(int64(i + 1)), CreatedAt: base.Add(time.Duration(i*7) * time.Hour)})
	}

	txs := fund.Merge(contribs, expenses)

	if len(txs) != len(contribs)+len(expenses) {
		t.Fatalf("expected %d transactions, got %d", len(contribs)+len(expenses), len(txs))
	}
	for i, tx := range txs {
		if tx.Direction != tx.Kind.Direction() {
			t.Errorf("transaction %d: direction %s does not match kind %s", i, tx.Direction, tx.Kind)
		}
		if i > 0 && tx.Timestamp.After(txs[i-1].Timestamp) {
			t.Errorf("transaction %d newer than its predecessor", i)
		}
	}
}

func TestMerge_EqualTimestampsKeepDepositsFirst(t *testing.T) {
	ts := day("2024-04-10")
	contribs := []domain.Contribution{{ID: "c1", PaidAt: ts}, {ID: "c2", PaidAt: ts}}
	expenses := []domain.Expense{{ID: "e1", CreatedAt: ts}}

	txs := fund.Merge(contribs, expenses)

	want := []string{"c1", "c2", "e1"}
	for i, id := range want {
		if txs[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, txs[i].ID)
		}
	}
}

func TestFilterTransactions_DoesNotChangeTotals(t *testing.T) {
	contribs := []domain.Contribution{
		{ID: "c1", Amount: dec(1000), PaidAt: day("2024-05-02")},
		{ID: "c2", Amount: dec(500), PaidAt: day("2024-05-04")},
	}
	expenses := []domain.Expense{{ID: "e1", Type: domain.ExpenseWater, Amount: dec(300), CreatedAt: day("2024-05-03")}}

	txs := fund.Merge(contribs, expenses)
	before := fund.Totals(txs)

	deposits := fund.FilterTransactions(txs, fund.FilterDeposits)
	outgoing := fund.FilterTransactions(txs, fund.FilterExpenses)
	all := fund.FilterTransactions(txs, fund.FilterAll)
	after := fund.Totals(txs)

	if len(deposits) != 2 || len(outgoing) != 1 || len(all) != 3 {
		t.Fatalf("unexpected filter sizes: deposits=%d expenses=%d all=%d", len(deposits), len(outgoing), len(all))
	}
	for _, tx := range deposits {
		if tx.Direction != domain.DirectionIn {
			t.Errorf("deposit filter leaked %+v", tx)
		}
	}
	if !before.MoneyIn.Equal(after.MoneyIn) || !before.MoneyOut.Equal(after.MoneyOut) {
		t.Errorf("totals changed by filtering: %+v -> %+v", before, after)
	}
	if !after.MoneyIn.Equal(dec(1500)) || !after.MoneyOut.Equal(dec(300)) || !after.Net.Equal(dec(1200)) {
		t.Errorf("unexpected totals %+v", after)
	}
	if len(txs) != 3 {
		t.Errorf("source ledger mutated, now %d entries", len(txs))
	}
}

func TestParseTransactionFilter(t *testing.T) {
	for _, in := range []string{"", "all", "deposits", "expenses"} {
		if _, err := fund.ParseTransactionFilter(in); err != nil {
			t.Errorf("%q: unexpected error %v", in, err)
		}
	}

	_, err := fund.ParseTransactionFilter("refunds")
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if validation.Field != "filter" {
		t.Errorf("expected field 'filter', got %q", validation.Field)
	}
}
