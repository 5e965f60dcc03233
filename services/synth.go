package services

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"geoquery/models"
)

// Default city center (Delhi) and scatter for generated points
const (
	centerLat     = 28.6139
	centerLng     = 77.2090
	scatterSpread = 0.5
)

// localityKeywords gate the curated responses: a domain keyword alone is not
// enough, the query must also reference the Connaught Place area
var localityKeywords = []string{"cp", "connaught", "central delhi"}

// synthRule pairs a query predicate with a fixed response builder. Rules are
// evaluated in order, first match wins; the generic generator is the
// fall-through.
type synthRule struct {
	name  string
	match func(query string) bool
	build func(query string) *models.FeatureCollection
}

// Synthesizer produces plausible geospatial results locally when no remote
// backend is reachable. It is stateless apart from its rule table; callers
// get a fresh FeatureCollection per invocation.
type Synthesizer struct {
	rules  []synthRule
	logger *zap.SugaredLogger
}

// NewSynthesizer creates a synthesizer with the built-in curated rules
func NewSynthesizer(logger *zap.SugaredLogger) *Synthesizer {
	s := &Synthesizer{logger: logger}

	s.rules = []synthRule{
		{"hospitals", matchLocalDomain("hospital"), buildHospitals},
		{"education", matchLocalDomain("school", "college"), buildEducation},
		{"dining", matchLocalDomain("restaurant", "food", "cafe"), buildDining},
		{"banking", matchLocalDomain("bank", "atm"), buildBanking},
		{"transit", matchLocalDomain("metro", "station"), buildTransit},
	}

	return s
}

// Synthesize builds a FeatureCollection for the query. Curated rules run
// first; anything unmatched falls through to the generic random generator.
// The result always satisfies metadata.count == len(features).
func (s *Synthesizer) Synthesize(query string) *models.FeatureCollection {
	q := strings.ToLower(query)

	for _, rule := range s.rules {
		if rule.match(q) {
			s.logger.Infow("Synthesizing curated response", "rule", rule.name, "query", query)
			return rule.build(query)
		}
	}

	s.logger.Infow("Synthesizing generated response", "query", query)
	return s.generate(query, q)
}

// matchLocalDomain builds a predicate for "domain keyword + locality keyword"
func matchLocalDomain(domainKeywords ...string) func(string) bool {
	return func(q string) bool {
		return containsAny(q, domainKeywords...) && containsAny(q, localityKeywords...)
	}
}

// containsAny reports whether the query mentions any of the keywords
func containsAny(q string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// generate creates a pseudo-random batch of 50-149 points scattered around
// the default city center, with attribute groups layered on by keyword.
// Attribute groups trigger independently: a query can accumulate more than
// one group onto the same batch.
func (s *Synthesizer) generate(query, q string) *models.FeatureCollection {
	isPopulation := containsAny(q, "population", "people", "density", "demographic")
	isCommercial := containsAny(q, "business", "shop", "commercial")
	isTransport := containsAny(q, "transport", "metro", "bus")

	category := "residential"
	if isCommercial {
		category = "commercial"
	} else if isTransport {
		category = "transport"
	}

	pointCount := rand.Intn(100) + 50

	businessTypes := []string{"retail", "restaurant", "office", "service"}
	transportTypes := []string{"metro", "bus", "auto"}

	features := make([]models.Feature, 0, pointCount)
	for i := 0; i < pointCount; i++ {
		lng := centerLng + (rand.Float64()-0.5)*scatterSpread
		lat := centerLat + (rand.Float64()-0.5)*scatterSpread

		props := models.Properties{
			"id":        models.NumberValue(float64(i)),
			"name":      models.StringValue(fmt.Sprintf("Location %d", i+1)),
			"value":     models.NumberValue(float64(rand.Intn(1000) + 100)),
			"category":  models.StringValue(category),
			"intensity": models.NumberValue(rand.Float64()),
			"elevation": models.NumberValue(rand.Float64()*100 + 10),
		}

		if isPopulation {
			props["population"] = models.NumberValue(float64(rand.Intn(50000) + 1000))
			props["density"] = models.NumberValue(float64(rand.Intn(10000) + 500))
			props["age_median"] = models.NumberValue(float64(rand.Intn(30) + 25))
		}

		if isCommercial {
			props["business_type"] = models.StringValue(businessTypes[rand.Intn(len(businessTypes))])
			props["revenue"] = models.NumberValue(float64(rand.Intn(1000000) + 50000))
			props["employees"] = models.NumberValue(float64(rand.Intn(100) + 5))
		}

		if isTransport {
			props["transport_type"] = models.StringValue(transportTypes[rand.Intn(len(transportTypes))])
			props["capacity"] = models.NumberValue(float64(rand.Intn(1000) + 100))
			props["frequency"] = models.NumberValue(float64(rand.Intn(60) + 5))
		}

		features = append(features, models.Feature{
			Type:       "Feature",
			Geometry:   models.NewPoint(lng, lat),
			Properties: props,
		})
	}

	return &models.FeatureCollection{
		Type:     models.FeatureCollectionType,
		Features: features,
		Metadata: newMetadata(query, len(features)),
	}
}

// newMetadata stamps standard collection metadata
func newMetadata(query string, count int) *models.Metadata {
	return &models.Metadata{
		Query:     query,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Count:     count,
	}
}
