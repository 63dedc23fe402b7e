package supabase

import (
	"context"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Contributions (joined with members)
// ============================================================

type contributionRow struct {
	ID        string          `json:"id"`
	MemberID  string          `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Month     int             `json:"month"`
	Year      int             `json:"year"`
	PaidAt    string          `json:"paid_at"`
	Notes     *string         `json:"notes"`
	CreatedAt string          `json:"created_at"`
	Member    *memberRow      `json:"member"`
}

func (r contributionRow) toDomain() domain.Contribution {
	c := domain.Contribution{
		ID:        r.ID,
		MemberID:  r.MemberID,
		Amount:    r.Amount,
		Month:     r.Month,
		Year:      r.Year,
		PaidAt:    parseTimestamp(r.PaidAt),
		Notes:     deref(r.Notes),
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
	if r.Member != nil {
		m := r.Member.toDomain()
		c.Member = &m
	}
	return c
}

// ListContributions returns contributions with their member embedded,
// newest payment first.
func (c *Client) ListContributions(ctx context.Context, filter port.ContributionFilter) ([]domain.Contribution, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListContributions")
	defer span.End()
	if filter.MemberID != "" {
		span.SetAttributes(attribute.String("member.id", filter.MemberID))
	}

	q := newQuery("contributions").
		sel("*,member:members(*)").
		eqInt("month", filter.Month).
		eqInt("year", filter.Year).
		order("paid_at", true)
	if filter.MemberID != "" {
		q.eq("member_id", filter.MemberID)
	}

	var rows []contributionRow
	if err := c.fetch(ctx, "contributions", q, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Contribution, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
