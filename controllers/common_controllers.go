package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"geoquery/models"
	"geoquery/services"
)

// Controller wires the HTTP layer to the dispatcher and session stores
type Controller struct {
	dispatcher *services.Dispatcher
	sessions   *services.SessionManager
	discord    *services.DiscordService
	logger     *zap.SugaredLogger
}

// NewController creates a controller instance
func NewController(dispatcher *services.Dispatcher, sessions *services.SessionManager, logger *zap.SugaredLogger) *Controller {
	discord := services.NewDiscordService(dispatcher, sessions, logger)

	return &Controller{
		dispatcher: dispatcher,
		sessions:   sessions,
		discord:    discord,
		logger:     logger,
	}
}

// StartServices starts background services (the Discord bot)
func (c *Controller) StartServices(enableDiscord bool) error {
	if enableDiscord && c.discord.IsEnabled() {
		if err := c.discord.Start(); err != nil {
			c.logger.Errorw("Failed to start Discord service", "error", err)
			return err
		}
	} else if enableDiscord {
		c.logger.Infow("Discord service requested but not configured (missing DISCORD_BOT_TOKEN)")
	}
	return nil
}

// StopServices stops background services
func (c *Controller) StopServices() error {
	if c.discord != nil {
		return c.discord.Stop()
	}
	return nil
}

// IndexHandler serves a small index page describing the API
func (c *Controller) IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>geoquery</title></head>
<body>
	<h1>geoquery</h1>
	<p>Natural-language geospatial query service.</p>
	<ul>
		<li><strong>POST /query</strong> - run a query ({"query": "...", "session_id": "..."})</li>
		<li><strong>GET /sessions/{id}/history</strong> - conversation transcript</li>
		<li><strong>GET /sessions/{id}/state</strong> - view state, UI flags and latest result</li>
		<li><strong>PATCH /sessions/{id}/view</strong> - merge a camera update</li>
		<li><strong>POST /sessions/{id}/ui</strong> - set a display flag</li>
		<li><strong>POST /sessions/{id}/reset</strong> - reset view to default</li>
		<li><strong>GET /sessions/{id}/export/csv</strong> - export results as CSV</li>
		<li><strong>GET /sessions/{id}/export/geojson</strong> - export results as GeoJSON</li>
		<li><strong>GET /health</strong> - service health</li>
	</ul>
</body>
</html>`)
}

// HealthHandler provides the health check endpoint. Backend connectivity is
// reported for information only; queries work either way.
func (c *Controller) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":     "healthy",
		"service":    "geoquery",
		"dispatcher": c.dispatcher.GetStatus(r.Context()),
		"sessions":   c.sessions.GetStatus(),
		"discord":    c.discord.GetStatus(),
	}

	c.writeJSON(w, http.StatusOK, health)
}

// writeJSON writes a JSON response with the given status code
func (c *Controller) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Errorw("Failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response
func (c *Controller) writeError(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, models.NewErrorResponse(message))
}

// sessionStore resolves the session from the request path, replying 404 when
// it does not exist
func (c *Controller) sessionStore(w http.ResponseWriter, sessionID string) (*services.Store, bool) {
	store, found := c.sessions.Get(sessionID)
	if !found {
		c.writeError(w, http.StatusNotFound, fmt.Sprintf("unknown session %q", sessionID))
		return nil, false
	}
	return store, true
}
