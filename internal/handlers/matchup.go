package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courtsight/picks-api/internal/models"
)

// GetMatchupReport returns every signal aggregator output for one player
// against one upcoming game. The same signals gate the pick finder; here they
// are exposed raw, insufficient-data flags included, for the player detail
// pane.
// @Summary Get Matchup Report
// @Tags Players
// @Produce json
// @Param playerId path string true "Player ID"
// @Param stat query string true "Statistic key"
// @Param date query string true "Game date (YYYY-MM-DD)"
// @Param team query string true "Player's team id"
// @Param opponent query string true "Opponent team id"
// @Param season query string true "Season id"
// @Param position query string false "Player position for positional defense"
// @Param game_type query string false "regular_season or playoff"
// @Success 200 {object} models.MatchupReport
// @Failure 400 {object} map[string]string
// @Router /players/{playerId}/matchup [get]
func (h *Handler) GetMatchupReport(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerId")
	q := r.URL.Query()

	stat := q.Get("stat")
	if !models.IsValidStat(stat) {
		h.errorResponse(w, http.StatusBadRequest, "Unknown stat")
		return
	}
	date, err := time.Parse("2006-01-02", q.Get("date"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD")
		return
	}
	cx := models.GameContext{
		Date:       date,
		Season:     q.Get("season"),
		GameType:   models.GameTypeRegular,
		TeamID:     q.Get("team"),
		OpponentID: q.Get("opponent"),
	}
	if cx.TeamID == "" || cx.OpponentID == "" || cx.Season == "" {
		h.errorResponse(w, http.StatusBadRequest, "team, opponent and season are required")
		return
	}
	if gt := q.Get("game_type"); gt == models.GameTypePlayoff {
		cx.GameType = models.GameTypePlayoff
	}

	games, err := h.gameLogs.GameLogs(r.Context(), playerID, date, 50)
	if err != nil {
		h.logger.Errorw("game log fetch failed", "player", playerID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to fetch game log")
		return
	}

	ctx := r.Context()
	report := models.MatchupReport{
		PlayerID: playerID,
		StatName: stat,
		Game:     cx,
		Defense:  h.signals.OpponentDefense(ctx, stat, q.Get("position"), cx.Season, cx.OpponentID),
		Absence:  h.signals.StarAbsence(ctx, playerID, stat, cx, games),
		Rest:     h.signals.RestDays(ctx, cx),
		Playoff:  h.signals.PlayoffExperience(stat, cx, games),
		Pace:     h.signals.Pace(ctx, cx),
	}
	h.jsonResponse(w, http.StatusOK, report)
}
