package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courtsight/picks-api/internal/engine"
	"github.com/courtsight/picks-api/internal/models"
)

// GetPlayerGameLog returns a player's historical game rows with the context
// filter pipeline applied from query parameters. This is the same pipeline
// the pick finder uses, exposed for the player detail pane.
// @Summary Get Player Game Log
// @Tags Players
// @Produce json
// @Param playerId path string true "Player ID"
// @Param window query string false "Time window token"
// @Param min_minutes query number false "Minimum minutes played"
// @Param exclude_dnp query bool false "Drop games with zero minutes"
// @Param opponent query string false "Keep only games against this opponent abbr"
// @Param season query string false "Keep only games in this season"
// @Success 200 {array} models.HistoricalGame
// @Failure 400 {object} map[string]string
// @Router /players/{playerId}/games [get]
func (h *Handler) GetPlayerGameLog(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	if playerID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Player ID is required")
		return
	}

	q := r.URL.Query()
	asOf := time.Now().UTC()
	if d := q.Get("as_of"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "Invalid as_of date")
			return
		}
		asOf = parsed
	}

	limit := 50
	if l := q.Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	games, err := h.gameLogs.GameLogs(r.Context(), playerID, asOf, limit)
	if err != nil {
		h.logger.Errorw("game log fetch failed", "player", playerID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to fetch game log")
		return
	}

	opts := engine.FilterOptions{Window: models.WindowAll}
	cx := models.GameContext{}
	if q.Get("exclude_dnp") == "true" {
		opts.ExcludeDNP = true
	}
	if mm := q.Get("min_minutes"); mm != "" {
		if v, err := strconv.ParseFloat(mm, 64); err == nil && v > 0 {
			opts.MinMinutes = v
		}
	}
	if opp := q.Get("opponent"); opp != "" {
		opts.H2HOnly = true
		cx.OpponentAbbr = opp
	}
	if season := q.Get("season"); season != "" {
		opts.ThisSeasonOnly = true
		cx.Season = season
	}
	if window := models.TimeWindow(q.Get("window")); window.Valid() {
		opts.Window = window
	}

	h.jsonResponse(w, http.StatusOK, engine.ApplyFilters(games, opts, cx))
}
