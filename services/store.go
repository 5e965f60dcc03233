package services

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"geoquery/models"
)

const welcomeMessage = "Welcome to the geospatial query service. Ask about locations, " +
	"demographics, or spatial patterns and I will render the results for you."

// Snapshot is a consistent read of the whole session state
type Snapshot struct {
	ViewState    models.ViewState          `json:"view_state"`
	UIState      models.UIState            `json:"ui_state"`
	QueryResults *models.FeatureCollection `json:"query_results,omitempty"`
	Transcript   []models.Message          `json:"transcript"`
}

// Store holds the authoritative state of one chat session: camera pose,
// display flags, the latest query result and the conversation transcript.
// Every mutation is total and atomic; readers only ever see fully-applied
// states. The original single-page app mutated this from a single UI thread;
// HTTP handlers are concurrent, so the store locks internally instead.
type Store struct {
	mu           sync.Mutex
	viewState    models.ViewState
	uiState      models.UIState
	queryResults *models.FeatureCollection
	transcript   []models.Message
}

// NewStore creates a session store at the default view with a welcome
// message already in the transcript
func NewStore() *Store {
	s := &Store{
		viewState: models.DefaultViewState(),
		uiState:   models.DefaultUIState(),
	}
	s.transcript = append(s.transcript, newMessage(models.RoleAssistant, welcomeMessage, nil))
	return s
}

// newMessage builds a transcript entry. ULIDs give ids that are unique and
// sort in creation order.
func newMessage(role, content string, data *models.FeatureCollection) models.Message {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return models.Message{
		ID:        ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// UpdateViewState shallow-merges the patch onto the current camera pose
func (s *Store) UpdateViewState(patch models.ViewStatePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Longitude != nil {
		s.viewState.Longitude = *patch.Longitude
	}
	if patch.Latitude != nil {
		s.viewState.Latitude = *patch.Latitude
	}
	if patch.Zoom != nil {
		s.viewState.Zoom = *patch.Zoom
	}
	if patch.Pitch != nil {
		s.viewState.Pitch = *patch.Pitch
	}
	if patch.Bearing != nil {
		s.viewState.Bearing = *patch.Bearing
	}
	if patch.TransitionDuration != nil {
		s.viewState.TransitionDuration = *patch.TransitionDuration
	}
	if patch.TransitionEasing != nil {
		s.viewState.TransitionEasing = *patch.TransitionEasing
	}
}

// BeginQuery marks a query in flight. Idempotent if one already is.
func (s *Store) BeginQuery() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.IsLoading = true
}

// TryBeginQuery marks a query in flight only if none is. Returns false when
// a query is already loading; handlers use this to enforce the one-query-at-
// a-time policy atomically.
func (s *Store) TryBeginQuery() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uiState.IsLoading {
		return false
	}
	s.uiState.IsLoading = true
	return true
}

// CompleteQuery stores the result (a nil result is preserved as nil, not an
// empty collection) and clears the loading flag. Must be called exactly once
// per BeginQuery so loading never sticks.
func (s *Store) CompleteQuery(result *models.FeatureCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queryResults = result
	s.uiState.IsLoading = false
}

// SetViewMode switches the visualization mode
func (s *Store) SetViewMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.ViewMode = mode
}

// TogglePrivacyMode flips the privacy display flag
func (s *Store) TogglePrivacyMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.IsPrivacyMode = !s.uiState.IsPrivacyMode
}

// SetFocusedFeature focuses one result feature
func (s *Store) SetFocusedFeature(feature *models.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.FocusedFeature = feature
}

// ClearFocus drops the focused feature
func (s *Store) ClearFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.FocusedFeature = nil
}

// SetMapPanelVisible shows or hides the map panel. Either way the
// awaiting-decision flag is cleared: the decision has been made.
func (s *Store) SetMapPanelVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.ShowMapPanel = visible
	s.uiState.AwaitingMapDecision = false
}

// SetSystemInfoVisible shows or hides the system info modal
func (s *Store) SetSystemInfoVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.ShowSystemInfo = visible
}

// SetAwaitingMapDecision marks that a result is waiting for the user to
// decide whether to open the map panel
func (s *Store) SetAwaitingMapDecision(awaiting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uiState.AwaitingMapDecision = awaiting
}

// AppendMessage adds a conversation turn to the end of the transcript and
// returns it. Existing messages are never touched.
func (s *Store) AppendMessage(role, content string, data *models.FeatureCollection) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := newMessage(role, content, data)
	s.transcript = append(s.transcript, msg)
	return msg
}

// ResetToDefault restores the view state and all display flags to their
// initial values in one atomic step. The transcript and the stored query
// results are preserved.
func (s *Store) ResetToDefault() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewState = models.DefaultViewState()
	s.uiState = models.DefaultUIState()
}

// ViewState returns the current camera pose
func (s *Store) ViewState() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewState
}

// UIState returns the current display flags
func (s *Store) UIState() models.UIState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uiState
}

// QueryResults returns the latest stored result (possibly nil)
func (s *Store) QueryResults() *models.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryResults
}

// Transcript returns a copy of the conversation so far
func (s *Store) Transcript() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.transcript...)
}

// History converts the most recent transcript entries into the wire shape
// forwarded to remote backends
func (s *Store) History(limit int) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := 0
	if limit > 0 && len(s.transcript) > limit {
		start = len(s.transcript) - limit
	}

	history := make([]models.HistoryEntry, 0, len(s.transcript)-start)
	for _, msg := range s.transcript[start:] {
		history = append(history, models.HistoryEntry{Type: msg.Role, Content: msg.Content})
	}
	return history
}

// GetSnapshot returns a consistent copy of the whole session state
func (s *Store) GetSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ViewState:    s.viewState,
		UIState:      s.uiState,
		QueryResults: s.queryResults,
		Transcript:   append([]models.Message(nil), s.transcript...),
	}
}
