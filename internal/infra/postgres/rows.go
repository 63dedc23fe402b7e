package postgres

import (
	"time"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
)

// memberRow is one scanned member. Every column is nullable so the same
// row serves the LEFT JOIN from contributions.
type memberRow struct {
	ID                        *string
	FullName                  *string
	RoomID                    *string
	WaterBillID               *string
	WaterBillRegistrationName *string
	WaterBillPayers           []string
	Phone                     *string
	JoinedAt                  *time.Time
	IsActive                  *bool
	CreatedAt                 *time.Time
}

// dest returns scan targets in memberColumns order.
func (r *memberRow) dest() []any {
	return []any{
		&r.ID, &r.FullName, &r.RoomID, &r.WaterBillID, &r.WaterBillRegistrationName,
		&r.WaterBillPayers, &r.Phone, &r.JoinedAt, &r.IsActive, &r.CreatedAt,
	}
}

// toDomain returns nil when the join matched no member.
func (r memberRow) toDomain() *domain.Member {
	if r.ID == nil {
		return nil
	}
	m := &domain.Member{
		ID:                        *r.ID,
		FullName:                  deref(r.FullName),
		RoomID:                    deref(r.RoomID),
		WaterBillID:               deref(r.WaterBillID),
		WaterBillRegistrationName: deref(r.WaterBillRegistrationName),
		Phone:                     deref(r.Phone),
		IsActive:                  r.IsActive != nil && *r.IsActive,
	}
	if len(r.WaterBillPayers) > 0 {
		m.WaterBillPayers = r.WaterBillPayers
	}
	if r.JoinedAt != nil {
		m.JoinedAt = *r.JoinedAt
	}
	if r.CreatedAt != nil {
		m.CreatedAt = *r.CreatedAt
	}
	return m
}

// contributionRow is one row of contributionsQuery, member columns last.
type contributionRow struct {
	ID        string
	MemberID  string
	Amount    string
	Month     int
	Year      int
	PaidAt    time.Time
	Notes     *string
	CreatedAt time.Time
	Member    memberRow
}

func (r *contributionRow) dest() []any {
	return append([]any{
		&r.ID, &r.MemberID, &r.Amount, &r.Month, &r.Year, &r.PaidAt, &r.Notes, &r.CreatedAt,
	}, r.Member.dest()...)
}

func (r contributionRow) toDomain() (domain.Contribution, error) {
	amount, err := parseAmount(r.Amount)
	if err != nil {
		return domain.Contribution{}, err
	}
	return domain.Contribution{
		ID:        r.ID,
		MemberID:  r.MemberID,
		Amount:    amount,
		Month:     r.Month,
		Year:      r.Year,
		PaidAt:    r.PaidAt,
		Notes:     deref(r.Notes),
		CreatedAt: r.CreatedAt,
		Member:    r.Member.toDomain(),
	}, nil
}
