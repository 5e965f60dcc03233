package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoquery/models"
	"geoquery/services"
)

func newTestController() (*Controller, *services.SessionManager) {
	logger := zap.NewNop().Sugar()
	dispatcher := services.NewDispatcher(nil, time.Second, logger) // no endpoints: synthetic only
	sessions := services.NewSessionManager(time.Minute, logger)
	return NewController(dispatcher, sessions, logger), sessions
}

func newTestRouter(c *Controller) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/query", c.QueryHandler).Methods("POST")
	r.HandleFunc("/health", c.HealthHandler).Methods("GET")
	r.HandleFunc("/sessions/{id}/history", c.HistoryHandler).Methods("GET")
	r.HandleFunc("/sessions/{id}/state", c.StateHandler).Methods("GET")
	r.HandleFunc("/sessions/{id}/view", c.ViewStateHandler).Methods("PATCH")
	r.HandleFunc("/sessions/{id}/ui", c.UIStateHandler).Methods("POST")
	r.HandleFunc("/sessions/{id}/reset", c.ResetHandler).Methods("POST")
	r.HandleFunc("/sessions/{id}/export/csv", c.ExportCSVHandler).Methods("GET")
	r.HandleFunc("/sessions/{id}/export/geojson", c.ExportGeoJSONHandler).Methods("GET")
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestQueryHandlerRejectsEmptyQuery(t *testing.T) {
	c, _ := newTestController()
	router := newTestRouter(c)

	rec := doJSON(t, router, "POST", "/query", models.QueryRequest{Query: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest("POST", "/query", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryHandlerSyntheticFlow(t *testing.T) {
	c, sessions := newTestController()
	router := newTestRouter(c)

	rec := doJSON(t, router, "POST", "/query", models.QueryRequest{
		Query: "hospitals near CP with emergency services",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.Result.Features, 7)
	assert.True(t, resp.Result.Metadata.Structured)

	// The transcript carries the user turn and the assistant reply
	store, found := sessions.Get(resp.SessionID)
	require.True(t, found)
	transcript := store.Transcript()
	require.Len(t, transcript, 3) // welcome + user + assistant
	assert.Equal(t, models.RoleUser, transcript[1].Role)
	assert.Equal(t, "hospitals near CP with emergency services", transcript[1].Content)
	assert.Equal(t, models.RoleAssistant, transcript[2].Role)
	require.NotNil(t, transcript[2].Data)

	// Loading cleared, result stored, and with the map panel hidden the
	// session now awaits a display decision
	ui := store.UIState()
	assert.False(t, ui.IsLoading)
	assert.True(t, ui.AwaitingMapDecision)
	assert.Equal(t, resp.Result, store.QueryResults())
}

func TestQueryHandlerRejectsConcurrentQuery(t *testing.T) {
	c, sessions := newTestController()
	router := newTestRouter(c)

	store, id := sessions.GetOrCreate("busy-session")
	store.BeginQuery()

	rec := doJSON(t, router, "POST", "/query", models.QueryRequest{Query: "parks", SessionID: id})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestQueryHandlerReusesSession(t *testing.T) {
	c, sessions := newTestController()
	router := newTestRouter(c)

	_, id := sessions.GetOrCreate("")

	rec := doJSON(t, router, "POST", "/query", models.QueryRequest{Query: "first", SessionID: id})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, "POST", "/query", models.QueryRequest{Query: "second", SessionID: id})
	require.Equal(t, http.StatusOK, rec.Code)

	store, _ := sessions.Get(id)
	assert.Len(t, store.Transcript(), 5) // welcome + 2 turns each way
}

func TestUnknownSessionReturns404(t *testing.T) {
	c, _ := newTestController()
	router := newTestRouter(c)

	for _, path := range []string{
		"/sessions/ghost/history",
		"/sessions/ghost/state",
		"/sessions/ghost/export/csv",
	} {
		rec := doJSON(t, router, "GET", path, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestHealthHandler(t *testing.T) {
	c, _ := newTestController()
	router := newTestRouter(c)

	rec := doJSON(t, router, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Contains(t, health, "dispatcher")
	assert.Contains(t, health, "sessions")
	assert.Contains(t, health, "discord")
}
