package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"

	"geoquery/models"
)

// ExportGeoJSON renders a result collection as indented GeoJSON
func ExportGeoJSON(fc *models.FeatureCollection) ([]byte, error) {
	if fc == nil {
		return nil, fmt.Errorf("no query results to export")
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return data, nil
}

// ExportCSV flattens a result collection into CSV. Point coordinates become
// longitude/latitude columns; the remaining columns are the sorted union of
// all property keys across the batch, since result schemas are heterogeneous
// by design.
func ExportCSV(fc *models.FeatureCollection) ([]byte, error) {
	if fc == nil {
		return nil, fmt.Errorf("no query results to export")
	}

	keys := map[string]bool{}
	for _, f := range fc.Features {
		for k := range f.Properties {
			keys[k] = true
		}
	}

	columns := make([]string, 0, len(keys))
	for k := range keys {
		columns = append(columns, k)
	}
	sort.Strings(columns)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := append([]string{"longitude", "latitude"}, columns...)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, f := range fc.Features {
		row := make([]string, 0, len(header))

		lng, lat, err := f.Geometry.PointCoordinates()
		if err != nil {
			// Non-point geometries export with empty coordinate cells
			row = append(row, "", "")
		} else {
			row = append(row,
				fmt.Sprintf("%.6f", lng),
				fmt.Sprintf("%.6f", lat))
		}

		for _, col := range columns {
			if v, ok := f.Properties[col]; ok {
				row = append(row, v.String())
			} else {
				row = append(row, "")
			}
		}

		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}
