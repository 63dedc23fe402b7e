// Package domain defines the core entities of the building fund.
// These models are independent of the data store and represent the
// canonical records the BFA reads, aggregates and serves.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Members
// ============================================================

// Member is a resident on the fund roster. Active members owe the
// monthly contribution.
type Member struct {
	ID                        string    `json:"id"`
	FullName                  string    `json:"full_name"`
	RoomID                    string    `json:"room_id"`
	IsActive                  bool      `json:"is_active"`
	JoinedAt                  time.Time `json:"joined_at"`
	Phone                     string    `json:"phone,omitempty"`
	WaterBillID               string    `json:"water_bill_id,omitempty"`
	WaterBillRegistrationName string    `json:"water_bill_registration_name,omitempty"`
	WaterBillPayers           []string  `json:"water_bill_payers,omitempty"`
	CreatedAt                 time.Time `json:"created_at"`
}

// ============================================================
// Contributions
// ============================================================

// Contribution is a single payment by a member towards one period.
// Several contributions for the same member and period accumulate.
type Contribution struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	PaidAt    time.Time       `json:"paid_at"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`

	// Member is populated when the store joins the members table.
	Member *Member `json:"member,omitempty"`
}

// Period returns the billing period the contribution applies to.
func (c Contribution) Period() Period {
	return Period{Month: c.Month, Year: c.Year}
}

// ============================================================
// Expenses
// ============================================================

// ExpenseType is the fixed category of a fund expense.
type ExpenseType string

const (
	ExpenseWater          ExpenseType = "water"
	ExpenseElectricShared ExpenseType = "electric_shared"
	ExpenseGuardSalary    ExpenseType = "guard_salary"
	ExpenseJanitorSalary  ExpenseType = "janitor_salary"
	ExpenseOther          ExpenseType = "other"
)

// ExpenseTypes lists every category in display order.
var ExpenseTypes = []ExpenseType{
	ExpenseWater,
	ExpenseElectricShared,
	ExpenseGuardSalary,
	ExpenseJanitorSalary,
	ExpenseOther,
}

var expenseLabels = map[ExpenseType]string{
	ExpenseWater:          "Water",
	ExpenseElectricShared: "Electricity",
	ExpenseGuardSalary:    "Guard Salary",
	ExpenseJanitorSalary:  "Janitor Salary",
	ExpenseOther:          "Other",
}

// Valid reports whether t is one of the known categories.
func (t ExpenseType) Valid() bool {
	_, ok := expenseLabels[t]
	return ok
}

// Label returns the human readable category name.
// Unknown categories fall back to their raw value.
func (t ExpenseType) Label() string {
	if l, ok := expenseLabels[t]; ok {
		return l
	}
	return string(t)
}

// Expense is an outgoing payment from the fund. Expenses are fund-level
// and never attributed to a member.
type Expense struct {
	ID          string          `json:"id"`
	Type        ExpenseType     `json:"type"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Month       *int            `json:"month,omitempty"`
	Year        *int            `json:"year,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
}

// ============================================================
// Settings
// ============================================================

// SettingMonthlyContribution is the settings key holding the dues figure.
const SettingMonthlyContribution = "monthly_contribution"

// Setting is a key/value row from the settings table.
type Setting struct {
	ID    string         `json:"id"`
	Key   string         `json:"key"`
	Value map[string]any `json:"value"`
}
