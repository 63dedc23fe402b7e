package supabase

import (
	"context"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
)

// ListSettings returns every key/value row of the settings table.
func (c *Client) ListSettings(ctx context.Context) ([]domain.Setting, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSettings")
	defer span.End()

	var rows []domain.Setting
	if err := c.fetch(ctx, "settings", newQuery("settings").sel("*"), &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.Setting{}
	}
	return rows, nil
}
