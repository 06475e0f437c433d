package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finsight/internal/core"
)

// DefaultTenant keeps single-user deployments working without a tenant
// parameter, mirroring the demo account of the original system.
const DefaultTenant = "demo@user.com"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// parseTenant extracts the tenant key from the query, falling back to the
// default tenant.
func parseTenant(query url.Values) string {
	if tenant := strings.TrimSpace(query.Get("tenant")); tenant != "" {
		return tenant
	}
	return DefaultTenant
}

// parsePeriodQuery reads year and month from the query. Both absent means
// the current period; exactly one supplied is an incomplete period; garbage
// is an invalid period. Range validation happens in core.NewPeriod.
func parsePeriodQuery(query url.Values) (year, month int, err error) {
	rawYear := strings.TrimSpace(query.Get("year"))
	rawMonth := strings.TrimSpace(query.Get("month"))

	if rawYear == "" && rawMonth == "" {
		now := time.Now()
		return now.Year(), int(now.Month()), nil
	}
	if rawYear == "" || rawMonth == "" {
		return 0, 0, core.ErrIncompletePeriod
	}

	year, err = strconv.Atoi(rawYear)
	if err != nil {
		return 0, 0, core.ErrInvalidPeriod
	}
	month, err = strconv.Atoi(rawMonth)
	if err != nil {
		return 0, 0, core.ErrInvalidPeriod
	}
	return year, month, nil
}

// statusForError maps domain errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidPeriod), errors.Is(err, core.ErrIncompletePeriod),
		errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrEmptyDescription):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoBudget):
		return http.StatusNotFound
	case errors.Is(err, core.ErrComputationTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
