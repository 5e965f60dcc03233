package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"geoquery/models"
)

// historyLimit bounds how much conversation context is forwarded to a backend
const historyLimit = 5

// DefaultAttemptTimeout bounds each individual endpoint attempt
const DefaultAttemptTimeout = 30 * time.Second

// Dispatcher turns free-text queries into FeatureCollections. It tries each
// configured remote endpoint in priority order and, when every attempt fails,
// synthesizes a plausible result locally. Dispatch is total: transport
// failures are never surfaced to the caller.
type Dispatcher struct {
	endpoints  []string
	timeout    time.Duration
	httpClient *http.Client
	synth      *Synthesizer
	logger     *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher for the given endpoint base URLs,
// tried in the order given
func NewDispatcher(endpoints []string, timeout time.Duration, logger *zap.SugaredLogger) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultAttemptTimeout
	}

	return &Dispatcher{
		endpoints: endpoints,
		timeout:   timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		synth:  NewSynthesizer(logger),
		logger: logger,
	}
}

// Dispatch resolves a query into a FeatureCollection. The most recent
// history entries (at most 5) are forwarded as context; they are not
// interpreted locally. The first endpoint returning a well-formed payload
// wins and its payload is returned unmodified. There is no failure mode:
// when every endpoint fails the synthesizer answers instead.
func (d *Dispatcher) Dispatch(ctx context.Context, query string, history []models.HistoryEntry) *models.FeatureCollection {
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	body, err := json.Marshal(models.RemoteQueryRequest{Query: query, History: history})
	if err != nil {
		// Marshaling plain structs cannot realistically fail; treat it like
		// any other transport problem and fall through to the synthesizer
		d.logger.Errorw("Failed to marshal query request", "error", err)
		return d.synth.Synthesize(query)
	}

	for _, endpoint := range d.endpoints {
		result, err := d.attempt(ctx, endpoint, body)
		if err != nil {
			d.logger.Warnw("Query endpoint failed, trying next", "endpoint", endpoint, "error", err)
			continue
		}
		d.logger.Infow("Query answered by remote backend", "endpoint", endpoint, "features", len(result.Features))
		return result
	}

	d.logger.Infow("All query endpoints failed, using synthetic data", "endpoints", len(d.endpoints), "query", query)
	return d.synth.Synthesize(query)
}

// attempt posts the query to a single endpoint with a bounded timeout
func (d *Dispatcher) attempt(ctx context.Context, endpoint string, body []byte) (*models.FeatureCollection, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("endpoint returned status %d", resp.StatusCode)
	}

	var result models.FeatureCollection
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if !result.WellFormed() {
		return nil, fmt.Errorf("malformed response (type %q)", result.Type)
	}

	return &result, nil
}

// HealthCheck reports whether any configured endpoint answers its /health
// endpoint. Connectivity status only; querying never depends on it.
func (d *Dispatcher) HealthCheck(ctx context.Context) bool {
	for _, endpoint := range d.endpoints {
		if d.endpointHealthy(ctx, endpoint) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) endpointHealthy(ctx context.Context, endpoint string) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		return false
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// GetStatus returns the current status of the dispatcher
func (d *Dispatcher) GetStatus(ctx context.Context) map[string]interface{} {
	status := map[string]interface{}{
		"endpoints":       d.endpoints,
		"attempt_timeout": d.timeout.String(),
	}

	if d.HealthCheck(ctx) {
		status["backend"] = "reachable"
	} else {
		status["backend"] = "unreachable"
		status["note"] = "queries are answered with synthetic data"
	}

	return status
}
