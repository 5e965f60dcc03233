package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoquery/models"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()

	assert.Equal(t, models.DefaultViewState(), s.ViewState())
	assert.Equal(t, models.DefaultUIState(), s.UIState())
	assert.Nil(t, s.QueryResults())

	// The transcript opens with the assistant welcome message
	transcript := s.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, models.RoleAssistant, transcript[0].Role)
}

func TestLoadingLifecycle(t *testing.T) {
	s := NewStore()
	assert.False(t, s.UIState().IsLoading)

	s.BeginQuery()
	assert.True(t, s.UIState().IsLoading)

	// Idempotent while already loading
	s.BeginQuery()
	assert.True(t, s.UIState().IsLoading)

	result := &models.FeatureCollection{Type: models.FeatureCollectionType, Features: []models.Feature{}}
	s.CompleteQuery(result)
	assert.False(t, s.UIState().IsLoading)
	assert.Equal(t, result, s.QueryResults())
}

func TestTryBeginQuery(t *testing.T) {
	s := NewStore()

	assert.True(t, s.TryBeginQuery())
	assert.False(t, s.TryBeginQuery(), "second begin must be rejected while loading")

	s.CompleteQuery(nil)
	assert.True(t, s.TryBeginQuery())
}

func TestCompleteQueryPreservesNil(t *testing.T) {
	s := NewStore()

	s.BeginQuery()
	s.CompleteQuery(nil)

	assert.False(t, s.UIState().IsLoading)
	assert.Nil(t, s.QueryResults(), "an explicit nil result stays nil, not an empty collection")
}

func TestMapPanelClearsAwaitingDecision(t *testing.T) {
	s := NewStore()

	s.SetAwaitingMapDecision(true)
	require.True(t, s.UIState().AwaitingMapDecision)

	s.SetMapPanelVisible(true)
	assert.True(t, s.UIState().ShowMapPanel)
	assert.False(t, s.UIState().AwaitingMapDecision)

	// Hiding the panel is also a decision
	s.SetAwaitingMapDecision(true)
	s.SetMapPanelVisible(false)
	assert.False(t, s.UIState().AwaitingMapDecision)
}

func TestAppendMessageOrderAndUniqueness(t *testing.T) {
	s := NewStore()

	const n = 200
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		s.AppendMessage(role, fmt.Sprintf("message %d", i), nil)
	}

	transcript := s.Transcript()
	require.Len(t, transcript, n+1) // + welcome message

	seen := make(map[string]bool, len(transcript))
	for i, msg := range transcript {
		assert.False(t, seen[msg.ID], "duplicate message id %s", msg.ID)
		seen[msg.ID] = true

		if i > 0 {
			assert.Equal(t, fmt.Sprintf("message %d", i-1), msg.Content, "append order must be preserved")
		}
	}
}

func TestResetToDefault(t *testing.T) {
	s := NewStore()

	zoom := 15.0
	mode := "3D"
	s.UpdateViewState(models.ViewStatePatch{Zoom: &zoom})
	s.SetViewMode(mode)
	s.TogglePrivacyMode()
	s.SetMapPanelVisible(true)
	s.SetFocusedFeature(&models.Feature{Type: "Feature"})

	s.ResetToDefault()

	assert.Equal(t, models.DefaultViewState(), s.ViewState())
	assert.Equal(t, models.DefaultUIState(), s.UIState())
}

func TestResetToDefaultIsIdempotent(t *testing.T) {
	s := NewStore()

	s.TogglePrivacyMode()
	s.ResetToDefault()
	first := s.GetSnapshot()

	s.ResetToDefault()
	second := s.GetSnapshot()

	assert.Equal(t, first.ViewState, second.ViewState)
	assert.Equal(t, first.UIState, second.UIState)
	assert.Equal(t, len(first.Transcript), len(second.Transcript))
}

func TestResetPreservesTranscriptAndResults(t *testing.T) {
	s := NewStore()

	s.AppendMessage(models.RoleUser, "one", nil)
	s.AppendMessage(models.RoleAssistant, "two", nil)
	s.AppendMessage(models.RoleUser, "three", nil)
	result := &models.FeatureCollection{Type: models.FeatureCollectionType, Features: []models.Feature{}}
	s.CompleteQuery(result)

	s.ResetToDefault()

	assert.Len(t, s.Transcript(), 4, "reset only touches view state and UI flags")
	assert.Equal(t, result, s.QueryResults())
}

func TestUpdateViewStateMergesPartially(t *testing.T) {
	s := NewStore()
	initial := s.ViewState()

	zoom := 14.5
	bearing := 90.0
	s.UpdateViewState(models.ViewStatePatch{Zoom: &zoom, Bearing: &bearing})

	got := s.ViewState()
	assert.Equal(t, 14.5, got.Zoom)
	assert.Equal(t, 90.0, got.Bearing)
	assert.Equal(t, initial.Longitude, got.Longitude)
	assert.Equal(t, initial.Latitude, got.Latitude)
	assert.Equal(t, initial.Pitch, got.Pitch)
}

func TestFocusLifecycle(t *testing.T) {
	s := NewStore()

	f := &models.Feature{Type: "Feature", Properties: models.Properties{"name": models.StringValue("x")}}
	s.SetFocusedFeature(f)
	require.NotNil(t, s.UIState().FocusedFeature)
	assert.Equal(t, "x", s.UIState().FocusedFeature.Name())

	s.ClearFocus()
	assert.Nil(t, s.UIState().FocusedFeature)
}

func TestHistoryConversion(t *testing.T) {
	s := NewStore()
	for i := 0; i < 8; i++ {
		s.AppendMessage(models.RoleUser, fmt.Sprintf("m%d", i), nil)
	}

	history := s.History(5)
	require.Len(t, history, 5)
	assert.Equal(t, "m3", history[0].Content)
	assert.Equal(t, "m7", history[4].Content)
	assert.Equal(t, models.RoleUser, history[0].Type)

	all := s.History(0)
	assert.Len(t, all, 9) // welcome + 8
}
