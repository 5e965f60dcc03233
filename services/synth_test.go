package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"geoquery/models"
)

func newTestSynthesizer() *Synthesizer {
	return NewSynthesizer(zap.NewNop().Sugar())
}

func TestSynthesizeHospitalsNearCP(t *testing.T) {
	s := newTestSynthesizer()

	result := s.Synthesize("hospitals near CP with emergency services")
	require.NotNil(t, result)
	require.NoError(t, result.Validate())

	assert.Len(t, result.Features, 7)
	require.NotNil(t, result.Metadata)
	assert.True(t, result.Metadata.Structured)
	assert.Equal(t, 7, result.Metadata.Count)

	require.Len(t, result.Metadata.Categories, 2)
	assert.Equal(t, "Public Hospitals", result.Metadata.Categories[0].Name)
	assert.Len(t, result.Metadata.Categories[0].Items, 4)
	assert.Equal(t, "Private & Super-Speciality Hospitals", result.Metadata.Categories[1].Name)
	assert.Len(t, result.Metadata.Categories[1].Items, 3)
}

func TestSynthesizeCuratedIsDeterministic(t *testing.T) {
	s := newTestSynthesizer()

	first := s.Synthesize("hospitals near connaught place")
	second := s.Synthesize("any hospital in central delhi please")

	require.Len(t, first.Features, 7)
	require.Len(t, second.Features, 7)
	for i := range first.Features {
		assert.Equal(t, first.Features[i].Name(), second.Features[i].Name())
	}
}

func TestSynthesizeCuratedRules(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"education", "schools around connaught place"},
		{"dining", "best restaurants near CP"},
		{"banking", "ATMs in central delhi"},
		{"transit", "metro stations near connaught place"},
	}

	s := newTestSynthesizer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Synthesize(tt.query)
			require.NoError(t, result.Validate())
			require.NotNil(t, result.Metadata)
			assert.True(t, result.Metadata.Structured)
			assert.NotEmpty(t, result.Metadata.Categories)
			assert.NotEmpty(t, result.Features)
		})
	}
}

func TestDomainKeywordWithoutLocalityFallsThrough(t *testing.T) {
	s := newTestSynthesizer()

	// "hospital" alone is not curated; it goes through the generic generator
	result := s.Synthesize("hospitals everywhere")
	require.NoError(t, result.Validate())
	require.NotNil(t, result.Metadata)
	assert.False(t, result.Metadata.Structured)
	assert.GreaterOrEqual(t, len(result.Features), 50)
	assert.LessOrEqual(t, len(result.Features), 149)
}

func TestSynthesizePopulationQuery(t *testing.T) {
	s := newTestSynthesizer()

	result := s.Synthesize("show population density")
	require.NoError(t, result.Validate())
	require.NotEmpty(t, result.Features)

	for _, f := range result.Features {
		for _, key := range []string{"population", "density", "age_median"} {
			v, ok := f.Properties[key]
			require.True(t, ok, "missing %s", key)
			assert.Equal(t, models.KindNumber, v.Kind)
		}

		category := f.Properties["category"].String()
		assert.Contains(t, []string{"residential", "commercial", "transport"}, category)
	}
}

func TestSynthesizeGeneratedBatch(t *testing.T) {
	s := newTestSynthesizer()

	result := s.Synthesize("anything at all")
	require.NoError(t, result.Validate())
	require.NotNil(t, result.Metadata)
	assert.Equal(t, len(result.Features), result.Metadata.Count)
	assert.GreaterOrEqual(t, len(result.Features), 50)
	assert.LessOrEqual(t, len(result.Features), 149)

	for _, f := range result.Features {
		lng, lat, err := f.Geometry.PointCoordinates()
		require.NoError(t, err)
		assert.InDelta(t, centerLng, lng, scatterSpread/2)
		assert.InDelta(t, centerLat, lat, scatterSpread/2)

		intensity := f.Properties["intensity"].Num
		assert.GreaterOrEqual(t, intensity, 0.0)
		assert.Less(t, intensity, 1.0)

		value := f.Properties["value"].Num
		assert.GreaterOrEqual(t, value, 100.0)

		elevation := f.Properties["elevation"].Num
		assert.GreaterOrEqual(t, elevation, 10.0)

		// No population/commercial/transport terms in the query
		assert.Equal(t, "residential", f.Properties["category"].String())
	}
}

func TestAttributeGroupsAccumulate(t *testing.T) {
	s := newTestSynthesizer()

	// One query can trigger several attribute groups at once
	result := s.Synthesize("population of people using bus transport near commercial shops")
	require.NoError(t, result.Validate())
	require.NotEmpty(t, result.Features)

	f := result.Features[0]
	assert.Equal(t, "commercial", f.Properties["category"].String())

	for _, key := range []string{
		"population", "density", "age_median",
		"business_type", "revenue", "employees",
		"transport_type", "capacity", "frequency",
	} {
		_, ok := f.Properties[key]
		assert.True(t, ok, "missing %s", key)
	}
}

func TestSynthesizeAlwaysCountsCorrectly(t *testing.T) {
	s := newTestSynthesizer()

	queries := []string{
		"", "x", "hospitals near cp", "population", "transport hubs", "random words here",
	}
	for _, q := range queries {
		result := s.Synthesize(q)
		require.NotNil(t, result, "query %q", q)
		require.NotNil(t, result.Metadata, "query %q", q)
		assert.Equal(t, len(result.Features), result.Metadata.Count, "query %q", q)
		assert.NotEmpty(t, result.Features, "query %q", q)
	}
}
