package services

import (
	"strings"

	"geoquery/models"
)

// Hand-authored feature sets for the Connaught Place area. Content is
// deterministic: the same query family always yields the same places.

// place builds a curated point feature
func place(name, category string, lng, lat float64, extra models.Properties) models.Feature {
	props := models.Properties{
		"name":     models.StringValue(name),
		"category": models.StringValue(category),
	}
	for k, v := range extra {
		props[k] = v
	}
	return models.Feature{
		Type:       "Feature",
		Geometry:   models.NewPoint(lng, lat),
		Properties: props,
	}
}

// buildCuratedCollection flattens category groups into a structured collection
func buildCuratedCollection(query string, groups []models.CategoryGroup) *models.FeatureCollection {
	var features []models.Feature
	for _, g := range groups {
		features = append(features, g.Items...)
	}

	md := newMetadata(query, len(features))
	md.Structured = true
	md.Categories = groups

	return &models.FeatureCollection{
		Type:     models.FeatureCollectionType,
		Features: features,
		Metadata: md,
	}
}

func hospital(name string, lng, lat float64, beds int, emergency bool) models.Feature {
	return place(name, "hospital", lng, lat, models.Properties{
		"beds":      models.NumberValue(float64(beds)),
		"emergency": models.BoolValue(emergency),
	})
}

func buildHospitals(query string) *models.FeatureCollection {
	return buildCuratedCollection(query, []models.CategoryGroup{
		{
			Name: "Public Hospitals",
			Items: []models.Feature{
				hospital("Ram Manohar Lohia Hospital", 77.2005, 28.6259, 1400, true),
				hospital("Lady Hardinge Medical College & Hospital", 77.2108, 28.6386, 877, true),
				hospital("Sucheta Kriplani Hospital", 77.2115, 28.6391, 750, true),
				hospital("Kalawati Saran Children's Hospital", 77.2099, 28.6379, 370, true),
			},
		},
		{
			Name: "Private & Super-Speciality Hospitals",
			Items: []models.Feature{
				hospital("Sir Ganga Ram Hospital", 77.1896, 28.6387, 675, true),
				hospital("BLK-Max Super Speciality Hospital", 77.1802, 28.6436, 650, true),
				hospital("Apollo Spectra Hospital Karol Bagh", 77.1936, 28.6519, 60, false),
			},
		},
	})
}

func school(name string, lng, lat float64, board string) models.Feature {
	return place(name, "education", lng, lat, models.Properties{
		"board": models.StringValue(board),
	})
}

func buildEducation(query string) *models.FeatureCollection {
	return buildCuratedCollection(query, []models.CategoryGroup{
		{
			Name: "Schools",
			Items: []models.Feature{
				school("Modern School Barakhamba Road", 77.2300, 28.6280, "CBSE"),
				school("St. Columba's School", 77.2039, 28.6270, "CBSE"),
				school("Convent of Jesus and Mary", 77.2060, 28.6230, "CBSE"),
			},
		},
		{
			Name: "Colleges & Institutes",
			Items: []models.Feature{
				school("YMCA Institute for Career Studies", 77.2180, 28.6290, "University"),
				school("Bharatiya Vidya Bhavan", 77.2245, 28.6246, "University"),
			},
		},
	})
}

func eatery(name string, lng, lat float64, cuisine string, rating float64) models.Feature {
	return place(name, "dining", lng, lat, models.Properties{
		"cuisine": models.StringValue(cuisine),
		"rating":  models.NumberValue(rating),
	})
}

func buildDining(query string) *models.FeatureCollection {
	return buildCuratedCollection(query, []models.CategoryGroup{
		{
			Name: "Fine Dining",
			Items: []models.Feature{
				eatery("United Coffee House", 77.2214, 28.6334, "Continental", 4.3),
				eatery("Kwality Restaurant", 77.2191, 28.6322, "North Indian", 4.1),
			},
		},
		{
			Name: "Cafes & Quick Bites",
			Items: []models.Feature{
				eatery("Saravana Bhavan", 77.2176, 28.6335, "South Indian", 4.4),
				eatery("Wenger's Deli", 77.2183, 28.6341, "Bakery", 4.5),
				eatery("Indian Coffee House", 77.2189, 28.6350, "Cafe", 4.0),
			},
		},
	})
}

func bank(name string, lng, lat float64, hasATM bool) models.Feature {
	return place(name, "banking", lng, lat, models.Properties{
		"atm": models.BoolValue(hasATM),
	})
}

func buildBanking(query string) *models.FeatureCollection {
	return buildCuratedCollection(query, []models.CategoryGroup{
		{
			Name: "Public Sector Banks",
			Items: []models.Feature{
				bank("State Bank of India, Parliament Street", 77.2121, 28.6238, true),
				bank("Punjab National Bank, Connaught Place", 77.2205, 28.6330, true),
				bank("Bank of Baroda, Connaught Circus", 77.2198, 28.6317, true),
			},
		},
		{
			Name: "Private Banks",
			Items: []models.Feature{
				bank("HDFC Bank, Connaught Place", 77.2212, 28.6326, true),
				bank("ICICI Bank, Connaught Place", 77.2224, 28.6338, true),
			},
		},
	})
}

func station(name string, lng, lat float64, lines []string) models.Feature {
	// Lines stay a joined string so the property remains a scalar value
	return place(name, "transit", lng, lat, models.Properties{
		"lines":       models.StringValue(strings.Join(lines, ", ")),
		"interchange": models.BoolValue(len(lines) > 1),
	})
}

func buildTransit(query string) *models.FeatureCollection {
	return buildCuratedCollection(query, []models.CategoryGroup{
		{
			Name: "Interchange Stations",
			Items: []models.Feature{
				station("Rajiv Chowk Metro Station", 77.2195, 28.6327, []string{"Blue", "Yellow"}),
				station("New Delhi Metro Station", 77.2220, 28.6430, []string{"Yellow", "Airport Express"}),
			},
		},
		{
			Name: "Regular Stations",
			Items: []models.Feature{
				station("Barakhamba Road Metro Station", 77.2250, 28.6297, []string{"Blue"}),
				station("Janpath Metro Station", 77.2190, 28.6253, []string{"Violet"}),
				station("Patel Chowk Metro Station", 77.2146, 28.6225, []string{"Yellow"}),
				station("Shivaji Stadium Metro Station", 77.2113, 28.6292, []string{"Airport Express"}),
			},
		},
	})
}
