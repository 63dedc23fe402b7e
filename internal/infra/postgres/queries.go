package postgres

import (
	"fmt"
	"strings"

	"github.com/boddenberg/building-fund-bfa/internal/port"
)

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	clauses []string
	args    []any
}

// add appends a predicate. expr must contain exactly one %d for the placeholder index.
func (w *where) add(expr string, arg any) {
	w.args = append(w.args, arg)
	w.clauses = append(w.clauses, fmt.Sprintf(expr, len(w.args)))
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// memberColumns lists the member columns in memberRow scan order, qualified
// by alias when one is given.
func memberColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return fmt.Sprintf(`%[1]sid::text, %[1]sfull_name, %[1]sroom_id, %[1]swater_bill_id, %[1]swater_bill_registration_name,
	COALESCE(%[1]swater_bill_payers, '{}'), %[1]sphone, %[1]sjoined_at, %[1]sis_active, %[1]screated_at`, p)
}

func membersQuery(activeOnly bool) (string, []any) {
	var w where
	if activeOnly {
		w.add("is_active = $%d", true)
	}
	return "SELECT " + memberColumns("") + " FROM members" + w.sql() + " ORDER BY room_id ASC", w.args
}

func contributionsQuery(f port.ContributionFilter) (string, []any) {
	var w where
	if f.Month != nil {
		w.add("c.month = $%d", *f.Month)
	}
	if f.Year != nil {
		w.add("c.year = $%d", *f.Year)
	}
	if f.MemberID != "" {
		w.add("c.member_id = $%d::uuid", f.MemberID)
	}
	q := `SELECT c.id::text, c.member_id::text, c.amount::text, c.month, c.year, c.paid_at, c.notes, c.created_at,
	` + memberColumns("m") + `
FROM contributions c
LEFT JOIN members m ON m.id = c.member_id` + w.sql() + `
ORDER BY c.paid_at DESC`
	return q, w.args
}

func expensesQuery(f port.ExpenseFilter) (string, []any) {
	var w where
	if f.Month != nil {
		w.add("month = $%d", *f.Month)
	}
	if f.Year != nil {
		w.add("year = $%d", *f.Year)
	}
	if f.Type != "" {
		w.add("type = $%d", string(f.Type))
	}
	q := `SELECT id::text, type, description, amount::text, month, year, date, created_at, metadata
FROM expenses` + w.sql() + `
ORDER BY created_at DESC`
	return q, w.args
}

const settingsQuery = `SELECT id::text, key, value FROM settings`

const dashboardSummaryQuery = `SELECT total_contributions::text, total_expenses::text, pool_balance::text,
	active_members_count, required_amount::text
FROM v_dashboard_summary LIMIT 1`

const currentMonthProgressQuery = `SELECT month, year, required_amount::text, total_collected::text,
	expected_total::text, paid_count, partial_count, unpaid_count
FROM v_current_month_progress LIMIT 1`

const pendingPaymentsQuery = `SELECT member_id::text, full_name, room_id, month, year,
	paid_amount::text, required_amount::text, status
FROM v_pending_payments`
