package models

// View modes for the result visualization
const (
	ViewModeMarkers = "markers"
	ViewModeHeatmap = "heatmap"
	ViewMode3D      = "3D"
)

// ViewState is the current map/globe camera pose. A component changing it
// must replace the whole structure or merge onto it, never leave it partially
// written.
type ViewState struct {
	Longitude          float64 `json:"longitude"`
	Latitude           float64 `json:"latitude"`
	Zoom               float64 `json:"zoom"`
	Pitch              float64 `json:"pitch"`
	Bearing            float64 `json:"bearing"`
	TransitionDuration int     `json:"transition_duration,omitempty"` // milliseconds
	TransitionEasing   string  `json:"transition_easing,omitempty"`
}

// ViewStatePatch carries a partial camera update; nil fields are left as-is
type ViewStatePatch struct {
	Longitude          *float64 `json:"longitude,omitempty"`
	Latitude           *float64 `json:"latitude,omitempty"`
	Zoom               *float64 `json:"zoom,omitempty"`
	Pitch              *float64 `json:"pitch,omitempty"`
	Bearing            *float64 `json:"bearing,omitempty"`
	TransitionDuration *int     `json:"transition_duration,omitempty"`
	TransitionEasing   *string  `json:"transition_easing,omitempty"`
}

// UIState holds the session display flags
type UIState struct {
	IsLoading           bool     `json:"is_loading"`
	ViewMode            string   `json:"view_mode"`
	IsPrivacyMode       bool     `json:"is_privacy_mode"`
	FocusedFeature      *Feature `json:"focused_feature,omitempty"`
	ShowMapPanel        bool     `json:"show_map_panel"`
	ShowSystemInfo      bool     `json:"show_system_info"`
	AwaitingMapDecision bool     `json:"awaiting_map_decision"`
}

// DefaultViewState returns the fixed initial camera pose over Delhi
func DefaultViewState() ViewState {
	return ViewState{
		Longitude:          77.2090,
		Latitude:           28.6139,
		Zoom:               10,
		Pitch:              45,
		Bearing:            0,
		TransitionDuration: 2000,
		TransitionEasing:   "fly-to",
	}
}

// DefaultUIState returns the fixed initial display flags
func DefaultUIState() UIState {
	return UIState{
		IsLoading:           false,
		ViewMode:            ViewModeMarkers,
		IsPrivacyMode:       false,
		FocusedFeature:      nil,
		ShowMapPanel:        false,
		ShowSystemInfo:      false,
		AwaitingMapDecision: false,
	}
}
