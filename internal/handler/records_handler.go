package handler

import (
	"net/http"

	"github.com/boddenberg/building-fund-bfa/internal/port"
	"github.com/boddenberg/building-fund-bfa/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// GET /v1/members?active=
// ============================================================

func listMembersHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/members")
		defer span.End()

		active, err := parseActive(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		members, err := svc.ListMembers(ctx, active)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"members": members})
	}
}

// ============================================================
// GET /v1/contributions?month=&year=&member_id=
// ============================================================

func listContributionsHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/contributions")
		defer span.End()

		month, year, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		memberID, err := parseMemberID(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if memberID != "" {
			span.SetAttributes(attribute.String("member.id", memberID))
		}

		list, err := svc.ListContributions(ctx, port.ContributionFilter{Month: month, Year: year, MemberID: memberID})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ============================================================
// GET /v1/expenses?month=&year=&type=
// ============================================================

func listExpensesHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/expenses")
		defer span.End()

		month, year, err := parsePeriodQuery(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		expenseType, err := parseExpenseType(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		list, err := svc.ListExpenses(ctx, port.ExpenseFilter{Month: month, Year: year, Type: expenseType})
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ============================================================
// GET /v1/settings
// ============================================================

func getSettingsHandler(svc *service.FundService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/settings")
		defer span.End()

		view, err := svc.GetSettings(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}
