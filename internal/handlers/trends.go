package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/courtsight/picks-api/internal/models"
)

// GetTrends returns streak and recent-form trends for a slate
// @Summary Get Trends
// @Tags Trends
// @Produce json
// @Param date query string true "Slate date (YYYY-MM-DD)"
// @Param models query string true "Comma-separated model ids"
// @Param stat query string false "Statistic key, default all"
// @Param window query string false "Time window token (L5/L10/L20/L50/All)"
// @Param min_streak query int false "Minimum consecutive hits"
// @Success 200 {array} models.Trend
// @Failure 400 {object} map[string]string
// @Router /trends [get]
func (h *Handler) GetTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD")
		return
	}

	modelIDs := splitCSV(q.Get("models"))
	if len(modelIDs) == 0 {
		h.errorResponse(w, http.StatusBadRequest, "At least one model id is required")
		return
	}

	filters := models.DefaultFilters()
	if stat := q.Get("stat"); stat != "" {
		filters.StatType = stat
	}
	if window := q.Get("window"); window != "" {
		filters.TimeWindow = models.TimeWindow(window)
	}
	if ms := q.Get("min_streak"); ms != "" {
		if n, err := strconv.Atoi(ms); err == nil && n > 0 {
			filters.ConsecutiveEnabled = true
			filters.ConsecutiveHits = n
		}
	}

	trends, err := h.trends.FindTrends(r.Context(), date, filters, modelIDs)
	if err != nil {
		h.logger.Errorw("trend scan failed", "date", q.Get("date"), "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to compute trends")
		return
	}
	if trends == nil {
		trends = []models.Trend{}
	}
	h.jsonResponse(w, http.StatusOK, trends)
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
