package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"geoquery/models"
)

// transcriptContextLimit bounds the conversation context sent with a query
const transcriptContextLimit = 5

// QueryHandler processes natural-language geospatial queries. The flow
// mirrors the chat submit path: append the user message, mark the session
// loading, dispatch, record the assistant reply, store the result. Dispatch
// never fails, so neither does this flow once validation passes.
func (c *Controller) QueryHandler(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.writeError(w, http.StatusBadRequest, "Query cannot be empty")
		return
	}

	store, sessionID := c.sessions.GetOrCreate(req.SessionID)

	// One query at a time per session; the submit control is disabled while
	// loading, so a concurrent submit is a client error
	if !store.TryBeginQuery() {
		c.writeError(w, http.StatusConflict, "A query is already in flight for this session")
		return
	}

	// Context reflects the conversation before this turn
	history := store.History(transcriptContextLimit)
	store.AppendMessage(models.RoleUser, query, nil)

	result := c.dispatcher.Dispatch(r.Context(), query, history)

	summary := fmt.Sprintf(
		"I found %d geospatial results for %q. The visualization has been updated on the map panel.",
		len(result.Features), query)
	if result.Metadata != nil && result.Metadata.Count > 0 {
		summary += fmt.Sprintf(" Analyzed %d data points.", result.Metadata.Count)
	}

	store.AppendMessage(models.RoleAssistant, summary, result)
	store.CompleteQuery(result)

	// A fresh result with the map panel hidden asks the user whether to show it
	if !store.UIState().ShowMapPanel {
		store.SetAwaitingMapDecision(true)
	}

	c.logger.Infow("Query handled", "session_id", sessionID, "query", query, "features", len(result.Features))

	c.writeJSON(w, http.StatusOK, models.QueryResponse{
		SessionID: sessionID,
		Message:   summary,
		Result:    result,
		Status:    models.StatusSuccess,
		Timestamp: time.Now().UTC(),
	})
}
