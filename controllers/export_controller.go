package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"geoquery/services"
)

// ExportCSVHandler downloads the session's current results as CSV
func (c *Controller) ExportCSVHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	data, err := services.ExportCSV(store.QueryResults())
	if err != nil {
		c.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="query-results.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportGeoJSONHandler downloads the session's current results as GeoJSON
func (c *Controller) ExportGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	store, ok := c.sessionStore(w, mux.Vars(r)["id"])
	if !ok {
		return
	}

	data, err := services.ExportGeoJSON(store.QueryResults())
	if err != nil {
		c.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("Content-Disposition", `attachment; filename="query-results.geojson"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
