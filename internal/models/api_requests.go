package models

// SearchRequest starts a pick scan.
type SearchRequest struct {
	Date     string             `json:"date" validate:"required,datetime=2006-01-02"`
	ModelIDs []string           `json:"model_ids" validate:"required,min=1,dive,required"`
	Filters  *PickFinderFilters `json:"filters"`
	NoCache  bool               `json:"no_cache"` // force a fresh scan
}

// StartScanResponse acknowledges a started scan.
type StartScanResponse struct {
	ScanID string `json:"scan_id"`
	State  string `json:"state"`
}

// SavePresetRequest persists a named filter configuration.
type SavePresetRequest struct {
	Name    string            `json:"name" validate:"required,max=64"`
	Filters PickFinderFilters `json:"filters"`
}
