package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/courtsight/picks-api/internal/models"
)

// ListPresets returns every saved filter preset
// @Summary List Filter Presets
// @Tags Presets
// @Produce json
// @Success 200 {array} repository.Preset
// @Router /presets [get]
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := h.presets.List(r.Context())
	if err != nil {
		h.logger.Errorw("failed to list presets", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}
	h.jsonResponse(w, http.StatusOK, presets)
}

// GetPreset loads one preset, merged over current defaults
// @Summary Get Filter Preset
// @Tags Presets
// @Produce json
// @Param name path string true "Preset name"
// @Success 200 {object} repository.Preset
// @Failure 404 {object} map[string]string
// @Router /presets/{name} [get]
func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	preset, err := h.presets.Load(r.Context(), name)
	if err != nil {
		h.errorResponse(w, http.StatusNotFound, "Preset not found")
		return
	}
	h.jsonResponse(w, http.StatusOK, preset)
}

// SavePreset upserts a named filter configuration
// @Summary Save Filter Preset
// @Tags Presets
// @Accept json
// @Produce json
// @Param request body models.SavePresetRequest true "Preset"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Router /presets [put]
func (h *Handler) SavePreset(w http.ResponseWriter, r *http.Request) {
	var req models.SavePresetRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := h.presets.Save(r.Context(), req.Name, req.Filters.Normalize()); err != nil {
		h.logger.Errorw("failed to save preset", "name", req.Name, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to save preset")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "saved"})
}

// DeletePreset removes a preset
// @Summary Delete Filter Preset
// @Tags Presets
// @Produce json
// @Param name path string true "Preset name"
// @Success 200 {object} map[string]string
// @Router /presets/{name} [delete]
func (h *Handler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.presets.Delete(r.Context(), name); err != nil {
		h.logger.Errorw("failed to delete preset", "name", name, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}
	h.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}
