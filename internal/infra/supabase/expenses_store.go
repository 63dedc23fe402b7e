package supabase

import (
	"context"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/port"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type expenseRow struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description *string         `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Month       *int            `json:"month"`
	Year        *int            `json:"year"`
	Date        *string         `json:"date"`
	CreatedAt   string          `json:"created_at"`
	Metadata    map[string]any  `json:"metadata"`
}

func (r expenseRow) toDomain() domain.Expense {
	return domain.Expense{
		ID:          r.ID,
		Type:        domain.ExpenseType(r.Type),
		Description: deref(r.Description),
		Amount:      r.Amount,
		Month:       r.Month,
		Year:        r.Year,
		Date:        parseOptionalTimestamp(r.Date),
		CreatedAt:   parseTimestamp(r.CreatedAt),
		Metadata:    r.Metadata,
	}
}

// ListExpenses returns expenses newest first. An empty type reads every category.
func (c *Client) ListExpenses(ctx context.Context, filter port.ExpenseFilter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExpenses")
	defer span.End()

	q := newQuery("expenses").
		sel("*").
		eqInt("month", filter.Month).
		eqInt("year", filter.Year).
		order("created_at", true)
	if filter.Type != "" {
		span.SetAttributes(attribute.String("expense.type", string(filter.Type)))
		q.eq("type", string(filter.Type))
	}

	var rows []expenseRow
	if err := c.fetch(ctx, "expenses", q, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Expense, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
