package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"geoquery/models"
)

// UIActionRequest selects one display-flag mutation
type UIActionRequest struct {
	Action   string          `json:"action"`
	Mode     string          `json:"mode,omitempty"`
	Visible  *bool           `json:"visible,omitempty"`
	Awaiting *bool           `json:"awaiting,omitempty"`
	Feature  *models.Feature `json:"feature,omitempty"`
}

// HistoryHandler returns the session transcript
func (c *Controller) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": mux.Vars(r)["id"],
		"transcript": store.Transcript(),
	})
}

// StateHandler returns a consistent snapshot of the session state
func (c *Controller) StateHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	c.writeJSON(w, http.StatusOK, store.GetSnapshot())
}

// ViewStateHandler merges a partial camera update onto the session view state
func (c *Controller) ViewStateHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var patch models.ViewStatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		c.writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	store.UpdateViewState(patch)
	c.writeJSON(w, http.StatusOK, store.ViewState())
}

// UIStateHandler applies one display-flag mutation
func (c *Controller) UIStateHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	var req UIActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	switch req.Action {
	case "set_view_mode":
		switch req.Mode {
		case models.ViewModeMarkers, models.ViewModeHeatmap, models.ViewMode3D:
			store.SetViewMode(req.Mode)
		default:
			c.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view mode %q", req.Mode))
			return
		}
	case "toggle_privacy":
		store.TogglePrivacyMode()
	case "set_focus":
		if req.Feature == nil {
			c.writeError(w, http.StatusBadRequest, "set_focus requires a feature")
			return
		}
		store.SetFocusedFeature(req.Feature)
	case "clear_focus":
		store.ClearFocus()
	case "set_map_panel":
		if req.Visible == nil {
			c.writeError(w, http.StatusBadRequest, "set_map_panel requires visible")
			return
		}
		store.SetMapPanelVisible(*req.Visible)
	case "set_system_info":
		if req.Visible == nil {
			c.writeError(w, http.StatusBadRequest, "set_system_info requires visible")
			return
		}
		store.SetSystemInfoVisible(*req.Visible)
	case "set_awaiting_map_decision":
		if req.Awaiting == nil {
			c.writeError(w, http.StatusBadRequest, "set_awaiting_map_decision requires awaiting")
			return
		}
		store.SetAwaitingMapDecision(*req.Awaiting)
	default:
		c.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown action %q", req.Action))
		return
	}

	c.writeJSON(w, http.StatusOK, store.UIState())
}

// ResetHandler restores the view state and display flags to their defaults.
// The transcript is preserved.
func (c *Controller) ResetHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	store.ResetToDefault()
	c.writeJSON(w, http.StatusOK, store.GetSnapshot())
}
