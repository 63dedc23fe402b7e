package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/fund"
	"github.com/boddenberg/building-fund-bfa/internal/handler"
	"github.com/boddenberg/building-fund-bfa/internal/infra/observability"
	"github.com/boddenberg/building-fund-bfa/internal/port"
	"github.com/boddenberg/building-fund-bfa/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Mocks ---

type mockFundStore struct {
	members       []domain.Member
	contributions []domain.Contribution
	expenses      []domain.Expense
	settings      []domain.Setting
	err           error
	pingErr       error

	lastContributionFilter port.ContributionFilter
	lastExpenseFilter      port.ExpenseFilter
}

func (m *mockFundStore) ListMembers(_ context.Context, _ bool) ([]domain.Member, error) {
	return m.members, m.err
}

func (m *mockFundStore) ListContributions(_ context.Context, f port.ContributionFilter) ([]domain.Contribution, error) {
	m.lastContributionFilter = f
	return m.contributions, m.err
}

func (m *mockFundStore) ListExpenses(_ context.Context, f port.ExpenseFilter) ([]domain.Expense, error) {
	m.lastExpenseFilter = f
	return m.expenses, m.err
}

func (m *mockFundStore) ListSettings(_ context.Context) ([]domain.Setting, error) {
	return m.settings, m.err
}

func (m *mockFundStore) GetDashboardSummary(_ context.Context) (*domain.DashboardSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DashboardSummary{ActiveMembersCount: len(m.members)}, nil
}

func (m *mockFundStore) GetCurrentMonthProgress(_ context.Context) (*domain.MonthProgress, error) {
	return nil, &domain.ErrNotFound{Resource: "current month progress"}
}

func (m *mockFundStore) ListPendingPayments(_ context.Context) ([]domain.PendingPayment, error) {
	return []domain.PendingPayment{}, m.err
}

func (m *mockFundStore) Ping(_ context.Context) error {
	return m.pingErr
}

// --- Fixtures ---

const aliceID = "0b8f3c2e-8a7d-4b7e-9d61-3f1c2a4b5c6d"

func newMockStore() *mockFundStore {
	alice := domain.Member{ID: aliceID, FullName: "Alice", RoomID: "101", IsActive: true}
	bob := domain.Member{ID: "2c1d9e8f-1a2b-4c3d-8e9f-0a1b2c3d4e5f", FullName: "Bob", RoomID: "102", IsActive: true}
	month, year := 3, 2025
	return &mockFundStore{
		members: []domain.Member{alice, bob},
		contributions: []domain.Contribution{
			{ID: "c1", MemberID: alice.ID, Amount: decimal.NewFromInt(1000), Month: 3, Year: 2025,
				PaidAt: time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC), Member: &alice},
		},
		expenses: []domain.Expense{
			{ID: "e1", Type: domain.ExpenseElectricShared, Amount: decimal.NewFromInt(250), Month: &month, Year: &year,
				CreatedAt: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)},
		},
		settings: []domain.Setting{},
	}
}

func newTestRouter(store port.FundStore) http.Handler {
	metrics := observability.NewMetrics()
	svc := service.NewFundService(store, fund.DefaultMonthlyContribution, metrics, zap.NewNop())
	return handler.NewRouter(svc, metrics, nil, zap.NewNop())
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// --- Operational ---

func TestHealthz(t *testing.T) {
	router := handler.NewRouter(nil, observability.NewMetrics(), nil, zap.NewNop())

	rec := get(t, router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHealthz_DegradedStore(t *testing.T) {
	store := newMockStore()
	store.pingErr = errors.New("connection refused")
	router := newTestRouter(store)

	rec := get(t, router, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var health domain.HealthStatus
	decodeBody(t, rec, &health)
	if health.Status != "degraded" {
		t.Errorf("expected degraded, got %s", health.Status)
	}
	if len(health.Services) != 2 || health.Services[1].Error == "" {
		t.Errorf("expected data-store entry with error, got %+v", health.Services)
	}
}

func TestReadyz(t *testing.T) {
	router := handler.NewRouter(nil, observability.NewMetrics(), nil, zap.NewNop())

	rec := get(t, router, "/readyz")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := handler.NewRouter(nil, observability.NewMetrics(), nil, zap.NewNop())

	rec := get(t, router, "/metrics")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("expected runtime metrics in exposition")
	}
}

func TestPing(t *testing.T) {
	router := handler.NewRouter(nil, observability.NewMetrics(), nil, zap.NewNop())

	rec := get(t, router, "/ping")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := handler.NewRouter(nil, observability.NewMetrics(), []string{"https://fund.example.org"}, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/v1/members", nil)
	req.Header.Set("Origin", "https://fund.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://fund.example.org" {
		t.Errorf("expected allowed origin header, got %q", got)
	}
}

// --- Records ---

func TestListMembers(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/members")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Members []domain.Member `json:"members"`
	}
	decodeBody(t, rec, &body)
	if len(body.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(body.Members))
	}
}

func TestListContributions_PassesFilters(t *testing.T) {
	store := newMockStore()
	router := newTestRouter(store)

	rec := get(t, router, "/v1/contributions?month=3&year=2025&member_id="+aliceID)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	f := store.lastContributionFilter
	if f.Month == nil || *f.Month != 3 || f.Year == nil || *f.Year != 2025 || f.MemberID != aliceID {
		t.Errorf("unexpected filter %+v", f)
	}

	var body struct {
		Total string `json:"total"`
	}
	decodeBody(t, rec, &body)
	if body.Total != "1000" {
		t.Errorf("expected total 1000, got %s", body.Total)
	}
}

func TestListExpenses_AllTypeMeansNoFilter(t *testing.T) {
	store := newMockStore()
	router := newTestRouter(store)

	rec := get(t, router, "/v1/expenses?type=all")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if store.lastExpenseFilter.Type != "" {
		t.Errorf("expected no type filter, got %q", store.lastExpenseFilter.Type)
	}

	var body struct {
		Total  string            `json:"total"`
		ByType map[string]string `json:"by_type"`
	}
	decodeBody(t, rec, &body)
	if body.ByType["electric_shared"] != "250" {
		t.Errorf("expected electric_shared 250, got %v", body.ByType)
	}
}

func TestSettings_DefaultMonthlyContribution(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/settings")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		MonthlyContribution string `json:"monthly_contribution"`
	}
	decodeBody(t, rec, &body)
	if body.MonthlyContribution != "1000" {
		t.Errorf("expected default 1000, got %s", body.MonthlyContribution)
	}
}

// --- Validation ---

func TestQueryValidation(t *testing.T) {
	router := newTestRouter(newMockStore())

	tests := []struct {
		name   string
		target string
	}{
		{"month too high", "/v1/contributions?month=13"},
		{"month zero", "/v1/payment-status?month=0"},
		{"month not a number", "/v1/expenses?month=march"},
		{"year negative", "/v1/transactions?year=-1"},
		{"member id not uuid", "/v1/contributions?member_id=alice"},
		{"unknown expense type", "/v1/expenses?type=gardening"},
		{"unknown filter", "/v1/transactions?filter=refunds"},
		{"active not bool", "/v1/members?active=maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["error"] == "" {
				t.Error("expected error message")
			}
		})
	}
}

// --- Aggregations ---

func TestPaymentStatus(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/payment-status?month=3&year=2025")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var report domain.PaymentStatusReport
	decodeBody(t, rec, &report)
	if report.Month != 3 || report.Year != 2025 {
		t.Errorf("expected 3/2025, got %d/%d", report.Month, report.Year)
	}
	if report.PreviousPeriod.Month != 2 || report.PreviousPeriod.Year != 2025 {
		t.Errorf("expected previous period 2/2025, got %+v", report.PreviousPeriod)
	}
	if len(report.Paid) != 1 || len(report.Unpaid) != 1 || len(report.Partial) != 0 {
		t.Errorf("unexpected buckets paid=%d partial=%d unpaid=%d", len(report.Paid), len(report.Partial), len(report.Unpaid))
	}
}

func TestPaymentStatus_DefaultsToCurrentPeriod(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/payment-status")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var report domain.PaymentStatusReport
	decodeBody(t, rec, &report)
	now := domain.CurrentPeriod(time.Now())
	if report.Month != now.Month || report.Year != now.Year {
		t.Errorf("expected current period %s, got %d/%d", now, report.Month, report.Year)
	}
}

func TestTransactions_FilterAndTotals(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/transactions?filter=expenses")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Transactions []domain.Transaction `json:"transactions"`
		Totals       struct {
			MoneyIn  string `json:"money_in"`
			MoneyOut string `json:"money_out"`
			Net      string `json:"net"`
		} `json:"totals"`
	}
	decodeBody(t, rec, &body)
	if len(body.Transactions) != 1 || body.Transactions[0].Direction != domain.DirectionOut {
		t.Errorf("expected one withdrawal, got %+v", body.Transactions)
	}
	if body.Transactions[0].Description != "Electricity" {
		t.Errorf("expected category label, got %q", body.Transactions[0].Description)
	}
	if body.Totals.MoneyIn != "1000" || body.Totals.MoneyOut != "250" || body.Totals.Net != "750" {
		t.Errorf("unexpected totals %+v", body.Totals)
	}
}

func TestPendingPayments(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/payment-status/pending")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Periods []domain.PeriodPending `json:"periods"`
	}
	decodeBody(t, rec, &body)
	if len(body.Periods) != 1 || len(body.Periods[0].Unpaid) != 1 {
		t.Errorf("expected Bob unpaid for 3/2025, got %+v", body.Periods)
	}
}

func TestBalance(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/balance")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["balance"] != "750" {
		t.Errorf("expected balance 750, got %v", body)
	}
}

func TestDashboard_MissingViewIs404(t *testing.T) {
	router := newTestRouter(newMockStore())

	rec := get(t, router, "/v1/dashboard")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// --- Error mapping ---

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"fetch failure", &domain.ErrFetchFailure{Source: "members", Err: errors.New("boom")}, http.StatusBadGateway},
		{"timeout", &domain.ErrFetchFailure{Source: "members", Err: &domain.ErrTimeout{Operation: "supabase/members"}}, http.StatusGatewayTimeout},
		{"circuit open", &domain.ErrCircuitOpen{Service: "supabase/members"}, http.StatusServiceUnavailable},
		{"not found", &domain.ErrNotFound{Resource: "dashboard summary"}, http.StatusNotFound},
		{"unknown", errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			store.err = tt.err
			router := newTestRouter(store)

			rec := get(t, router, "/v1/members")
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestMetricsSummary(t *testing.T) {
	router := newTestRouter(newMockStore())

	get(t, router, "/v1/balance")
	rec := get(t, router, "/v1/metrics/summary")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary domain.MetricsSummary
	decodeBody(t, rec, &summary)
	if summary.Aggregations[observability.AggBalance] != 1 {
		t.Errorf("expected 1 balance aggregation, got %v", summary.Aggregations)
	}
}
