package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/courtsight/picks-api/internal/cache"
	"github.com/courtsight/picks-api/internal/models"
)

// StartPickSearch launches an asynchronous pick scan
// @Summary Start Pick Search
// @Tags PickFinder
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Search configuration"
// @Success 202 {object} models.StartScanResponse
// @Failure 400 {object} map[string]string
// @Router /pickfinder/search [post]
func (h *Handler) StartPickSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid date, want YYYY-MM-DD")
		return
	}

	filters := models.DefaultFilters()
	if req.Filters != nil {
		filters = req.Filters.Normalize()
	}

	cacheKey := ""
	if !req.NoCache {
		cacheKey = cache.Key(date, req.ModelIDs)
	}

	scan := h.scans.Start(date, filters, req.ModelIDs, cacheKey)
	h.logger.Infow("pick search started", "scan", scan.ID, "date", req.Date, "models", req.ModelIDs)

	h.jsonResponse(w, http.StatusAccepted, models.StartScanResponse{
		ScanID: scan.ID,
		State:  scan.State,
	})
}

// GetScan polls a scan's progress and, once finished, its ranked results
// @Summary Get Scan Status
// @Tags PickFinder
// @Produce json
// @Param scanId path string true "Scan ID"
// @Success 200 {object} worker.Scan
// @Failure 404 {object} map[string]string
// @Router /pickfinder/scans/{scanId} [get]
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scanId")
	scan, ok := h.scans.Get(id)
	if !ok {
		h.errorResponse(w, http.StatusNotFound, "Unknown scan")
		return
	}
	h.jsonResponse(w, http.StatusOK, scan)
}

// CancelScan cancels a running scan or discards a finished one
// @Summary Cancel Scan
// @Tags PickFinder
// @Produce json
// @Param scanId path string true "Scan ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /pickfinder/scans/{scanId} [delete]
func (h *Handler) CancelScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "scanId")
	if !h.scans.Cancel(id) {
		h.errorResponse(w, http.StatusNotFound, "Unknown scan")
		return
	}
	h.scans.Drop(id)
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "canceled"})
}
