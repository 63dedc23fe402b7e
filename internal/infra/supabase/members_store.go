package supabase

import (
	"context"

	"github.com/boddenberg/building-fund-bfa/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Members
// ============================================================

// memberRow maps the members table columns. Nullable text columns are pointers.
type memberRow struct {
	ID                        string   `json:"id"`
	FullName                  string   `json:"full_name"`
	RoomID                    string   `json:"room_id"`
	WaterBillID               *string  `json:"water_bill_id"`
	WaterBillRegistrationName *string  `json:"water_bill_registration_name"`
	WaterBillPayers           []string `json:"water_bill_payers"`
	Phone                     *string  `json:"phone"`
	JoinedAt                  string   `json:"joined_at"`
	IsActive                  bool     `json:"is_active"`
	CreatedAt                 string   `json:"created_at"`
}

func (r memberRow) toDomain() domain.Member {
	return domain.Member{
		ID:                        r.ID,
		FullName:                  r.FullName,
		RoomID:                    r.RoomID,
		IsActive:                  r.IsActive,
		JoinedAt:                  parseTimestamp(r.JoinedAt),
		Phone:                     deref(r.Phone),
		WaterBillID:               deref(r.WaterBillID),
		WaterBillRegistrationName: deref(r.WaterBillRegistrationName),
		WaterBillPayers:           r.WaterBillPayers,
		CreatedAt:                 parseTimestamp(r.CreatedAt),
	}
}

// ListMembers returns the roster ordered by room id.
func (c *Client) ListMembers(ctx context.Context, activeOnly bool) ([]domain.Member, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListMembers")
	defer span.End()
	span.SetAttributes(attribute.Bool("members.active_only", activeOnly))

	q := newQuery("members").sel("*").order("room_id", false)
	if activeOnly {
		q.eq("is_active", "true")
	}

	var rows []memberRow
	if err := c.fetch(ctx, "members", q, &rows); err != nil {
		return nil, err
	}

	members := make([]domain.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, r.toDomain())
	}
	return members, nil
}
