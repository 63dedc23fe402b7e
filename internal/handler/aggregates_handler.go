package handler

import (
	"net/http"

	"github.com/boddenberg/building-fund-bfa/internal/domain"
	"github.com/boddenberg/building-fund-bfa/internal/fund"
	"github.com/boddenberg/building-fund-bfa/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// GET /v1/payment-status?month=&year=
// Missing month or year defaults to the current period.
// ============================================================

func paymentStatusHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/payment-status")
		defer span.End()

		month, year, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		period := svc.CurrentPeriod()
		if month != nil {
			period.Month = *month
		}
		if year != nil {
			period.Year = *year
		}
		span.SetAttributes(attribute.String("period", period.String()))

		report, err := svc.PaymentStatus(ctx, period)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

// ============================================================
// GET /v1/payment-status/pending
// ============================================================

func pendingPaymentsHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/payment-status/pending")
		defer span.End()

		pending, err := svc.PendingByPeriod(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string][]domain.PeriodPending{"periods": pending})
	}
}

// ============================================================
// GET /v1/transactions?month=&year=&filter=&member_id=
// ============================================================

func transactionsHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		month, year, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		filter, err := fund.ParseTransactionFilter(r.URL.Query().Get("filter"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		memberID, err := parseMemberID(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ledger, err := svc.Ledger(ctx, service.LedgerQuery{
			Month:    month,
			Year:     year,
			MemberID: memberID,
			Filter:   filter,
		})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ledger)
	}
}

// ============================================================
// GET /v1/dashboard
// ============================================================

// dashboardResponse adds the derived collection percentage to the raw views.
type dashboardResponse struct {
	*domain.Dashboard
	CollectionPercent float64 `json:"collection_percent"`
}

func dashboardHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		d, err := svc.Dashboard(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		resp := dashboardResponse{Dashboard: d}
		if d.CurrentMonth != nil {
			resp.CollectionPercent = d.CurrentMonth.CollectionPercent()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// GET /v1/balance
// ============================================================

func balanceHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/balance")
		defer span.End()

		bal, err := svc.PoolBalance(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, bal)
	}
}
