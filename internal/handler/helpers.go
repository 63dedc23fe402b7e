package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/boddenberg/building-fund-bfa/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var notFound *domain.ErrNotFound
	var circuitOpen *domain.ErrCircuitOpen
	var timeout *domain.ErrTimeout
	var validation *domain.ErrValidation
	var fetchFailure *domain.ErrFetchFailure

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &circuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &timeout):
		logger.Error("request timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &fetchFailure):
		logger.Error("data store fetch failed", zap.String("source", fetchFailure.Source), zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ============================================================
// Query parsing
// ============================================================

func queryInt(r *http.Request, key string) (*int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, &domain.ErrValidation{Field: key, Message: "must be an integer"}
	}
	return &n, nil
}

// parsePeriodQuery reads the optional month and year query values.
func parsePeriodQuery(r *http.Request) (month, year *int, err error) {
	if month, err = queryInt(r, "month"); err != nil {
		return nil, nil, err
	}
	if month != nil && (*month < 1 || *month > 12) {
		return nil, nil, &domain.ErrValidation{Field: "month", Message: "must be between 1 and 12"}
	}
	if year, err = queryInt(r, "year"); err != nil {
		return nil, nil, err
	}
	if year != nil && *year < 1 {
		return nil, nil, &domain.ErrValidation{Field: "year", Message: "must be positive"}
	}
	return month, year, nil
}

func parseMemberID(r *http.Request) (string, error) {
	v := r.URL.Query().Get("member_id")
	if v == "" {
		return "", nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return "", &domain.ErrValidation{Field: "member_id", Message: "must be a UUID"}
	}
	return v, nil
}

// parseExpenseType maps "" and "all" to no filter.
func parseExpenseType(r *http.Request) (domain.ExpenseType, error) {
	v := r.URL.Query().Get("type")
	if v == "" || v == "all" {
		return "", nil
	}
	t := domain.ExpenseType(v)
	if !t.Valid() {
		return "", &domain.ErrValidation{Field: "type", Message: "unknown expense type " + strconv.Quote(v)}
	}
	return t, nil
}

func parseActive(r *http.Request) (bool, error) {
	v := r.URL.Query().Get("active")
	if v == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &domain.ErrValidation{Field: "active", Message: "must be true or false"}
	}
	return b, nil
}
