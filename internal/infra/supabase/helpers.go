package supabase

import (
	"net/url"
	"strconv"
	"time"
)

// ============================================================
// PostgREST query builder
// ============================================================

// query renders a PostgREST read path such as
// "members?is_active=eq.true&order=room_id.asc&select=%2A".
type query struct {
	table  string
	params url.Values
}

func newQuery(table string) *query {
	return &query{table: table, params: url.Values{}}
}

func (q *query) sel(columns string) *query {
	q.params.Set("select", columns)
	return q
}

func (q *query) eq(column, value string) *query {
	q.params.Add(column, "eq."+value)
	return q
}

func (q *query) eqInt(column string, value *int) *query {
	if value == nil {
		return q
	}
	return q.eq(column, strconv.Itoa(*value))
}

func (q *query) order(column string, desc bool) *query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.params.Add("order", column+"."+dir)
	return q
}

func (q *query) limit(n int) *query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

func (q *query) path() string {
	if len(q.params) == 0 {
		return q.table
	}
	return q.table + "?" + q.params.Encode()
}

// ============================================================
// Column parsing
// ============================================================

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02",
}

// parseTimestamp accepts timestamptz, timestamp and date columns.
// Unparseable or empty values yield the zero time.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseOptionalTimestamp(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseTimestamp(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
