package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Geometry type constants (GeoJSON)
const (
	GeometryPoint      = "Point"
	GeometryPolygon    = "Polygon"
	GeometryLineString = "LineString"
)

// FeatureCollectionType is the GeoJSON type tag every query result carries
const FeatureCollectionType = "FeatureCollection"

// ValueKind identifies which variant a property Value holds
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // anything else (arrays, nested objects) kept verbatim
)

// Value is a property value on a Feature. Result properties are freeform and
// heterogeneous (hospitals, banks and transit stops all carry different keys),
// so instead of a dynamically-typed map we keep a small tagged union covering
// the JSON scalar types. Payloads from remote backends may still contain
// nested structures; those are preserved byte-for-byte via KindRaw so a
// response can pass through unmodified.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Raw  json.RawMessage
}

// StringValue creates a string property value
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue creates a numeric property value
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// BoolValue creates a boolean property value
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// MarshalJSON encodes the active variant
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		// Integral numbers render without a trailing ".0" to match the
		// payloads the original backends emit
		if v.Num == float64(int64(v.Num)) {
			return []byte(strconv.FormatInt(int64(v.Num), 10)), nil
		}
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindRaw:
		return v.Raw, nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON decodes into the matching variant, falling back to KindRaw
// for arrays and nested objects
func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty property value")
	}

	switch data[0] {
	case '"':
		v.Kind = KindString
		return json.Unmarshal(data, &v.Str)
	case 't', 'f':
		v.Kind = KindBool
		return json.Unmarshal(data, &v.Bool)
	case 'n':
		*v = Value{Kind: KindNull}
		return nil
	case '[', '{':
		v.Kind = KindRaw
		v.Raw = append(json.RawMessage(nil), data...)
		return nil
	default:
		v.Kind = KindNumber
		return json.Unmarshal(data, &v.Num)
	}
}

// String renders the value for display and CSV export
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		if v.Num == float64(int64(v.Num)) {
			return strconv.FormatInt(int64(v.Num), 10)
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindRaw:
		return string(v.Raw)
	default:
		return ""
	}
}

// Properties maps freeform property names to values
type Properties map[string]Value

// Geometry represents a feature geometry. Coordinates stay as raw JSON so a
// remote payload round-trips unmodified; coordinate order is [lng, lat]
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// NewPoint creates a Point geometry at the given longitude/latitude
func NewPoint(lng, lat float64) Geometry {
	coords, _ := json.Marshal([2]float64{lng, lat})
	return Geometry{Type: GeometryPoint, Coordinates: coords}
}

// PointCoordinates extracts [lng, lat] from a Point geometry
func (g Geometry) PointCoordinates() (lng, lat float64, err error) {
	if g.Type != GeometryPoint {
		return 0, 0, fmt.Errorf("geometry is %q, not a Point", g.Type)
	}
	var coords [2]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return 0, 0, fmt.Errorf("failed to decode point coordinates: %w", err)
	}
	return coords[0], coords[1], nil
}

// Feature is one geospatial result item
type Feature struct {
	Type       string     `json:"type"`
	Geometry   Geometry   `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Name returns the display name property, if present
func (f Feature) Name() string {
	if v, ok := f.Properties["name"]; ok {
		return v.String()
	}
	return ""
}

// CategoryGroup is a named subset of a collection's features
type CategoryGroup struct {
	Name  string    `json:"name"`
	Items []Feature `json:"items"`
}

// Metadata describes a FeatureCollection
type Metadata struct {
	Query      string          `json:"query"`
	Timestamp  string          `json:"timestamp"`
	Count      int             `json:"count"`
	Structured bool            `json:"structured,omitempty"`
	Categories []CategoryGroup `json:"categories,omitempty"`
}

// FeatureCollection is the full answer to one query
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// WellFormed reports whether a decoded payload looks like a usable result.
// The dispatcher treats anything else as a failed attempt.
func (fc *FeatureCollection) WellFormed() bool {
	return fc != nil && fc.Type == FeatureCollectionType && fc.Features != nil
}

// Validate checks the collection invariants: the type tag, that metadata.count
// matches the feature list, and that any category grouping partitions the
// features exactly (nothing omitted, nothing duplicated)
func (fc *FeatureCollection) Validate() error {
	if fc.Type != FeatureCollectionType {
		return fmt.Errorf("unexpected collection type %q", fc.Type)
	}
	if fc.Metadata == nil {
		return nil
	}
	if fc.Metadata.Count != len(fc.Features) {
		return fmt.Errorf("metadata count %d does not match %d features",
			fc.Metadata.Count, len(fc.Features))
	}
	if len(fc.Metadata.Categories) == 0 {
		return nil
	}

	// Multiset comparison on the encoded features: the union of all groups
	// must reconstruct the feature list
	counts := make(map[string]int, len(fc.Features))
	for _, f := range fc.Features {
		key, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("failed to encode feature: %w", err)
		}
		counts[string(key)]++
	}

	grouped := 0
	for _, group := range fc.Metadata.Categories {
		for _, f := range group.Items {
			key, err := json.Marshal(f)
			if err != nil {
				return fmt.Errorf("failed to encode grouped feature: %w", err)
			}
			counts[string(key)]--
			if counts[string(key)] < 0 {
				return fmt.Errorf("category %q contains a feature not in the collection (or duplicated)", group.Name)
			}
			grouped++
		}
	}

	if grouped != len(fc.Features) {
		return fmt.Errorf("categories cover %d of %d features", grouped, len(fc.Features))
	}
	return nil
}
