package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/property"
	"github.com/meghashyamc/roomradar/services/catalog"
	"github.com/meghashyamc/roomradar/services/filter"
	"github.com/meghashyamc/roomradar/services/geocode"
	"github.com/meghashyamc/roomradar/services/history"
	"github.com/meghashyamc/roomradar/services/search"
	"github.com/meghashyamc/roomradar/validation"
)

const defaultResultsPerPage = 20

// DeviceRequest carries the client's own location fix, if it has one.
type DeviceRequest struct {
	DeviceID  string   `json:"device_id" validate:"max=128"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,min=-180,max=180"`
	Geohash   string   `json:"geohash" validate:"valid_geohash"`
	Denied    bool     `json:"denied"`
}

func (r *DeviceRequest) report(client string) geocode.DeviceReport {
	report := geocode.DeviceReport{
		DeviceID: r.DeviceID,
		Client:   client,
		Geohash:  r.Geohash,
		Denied:   r.Denied,
	}
	if r.Latitude != nil && r.Longitude != nil {
		report.Coordinate = &geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return report
}

type SearchRequest struct {
	Query   string               `json:"query" validate:"max=200"`
	Filters filter.Specification `json:"filters"`
	Device  *DeviceRequest       `json:"device"`
	UserID  string               `json:"user_id" validate:"omitempty,valid_user_id,max=128"`
	PerPage int                  `json:"per_page" validate:"min=0,max=100"`
	Page    int                  `json:"page" validate:"min=0,max=100000"`
}

func (r *SearchRequest) setDefaults() {
	if r.PerPage == 0 {
		r.PerPage = defaultResultsPerPage
	}

	if r.Page == 0 {
		r.Page = 1
	}
}

type SearchResponse struct {
	Context       search.Context    `json:"context"`
	ActiveFilters []string          `json:"active_filters"`
	Results       []property.Record `json:"results"`
	PageDetails   PageDetails       `json:"page_details"`
	SavedSearchID string            `json:"saved_search_id,omitempty"`
}

func SetupSearch(router *gin.Engine, logger logger.Logger, searchService *search.Service, catalogService *catalog.Service, historyService *history.Service, validator *validation.Validator) {
	router.POST("/search", handleSearch(searchService, catalogService, historyService, filter.Pipeline{}, logger, validator))

}

func handleSearch(searchService *search.Service, catalogService *catalog.Service, historyService *history.Service, pipeline filter.Pipeline, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SearchRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}
		request.setDefaults()

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		ctx := c.Request.Context()
		if request.Device != nil {
			ctx = geocode.WithDeviceReport(ctx, request.Device.report(c.ClientIP()))
		}

		resolved := searchService.Search(ctx, request.Query, request.Filters)

		var candidates []property.Record
		var err error
		if spec := resolved.Filters; spec.Coordinates != nil && spec.RadiusKm != nil {
			candidates, err = catalogService.CandidatesNear(ctx, *spec.Coordinates, *spec.RadiusKm)
		} else {
			candidates, err = catalogService.Candidates(ctx)
		}
		if err != nil {
			logger.Error("could not load search candidates", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		matches := pipeline.Apply(candidates, resolved.Filters)

		resultsPage := page{number: request.Page, size: request.PerPage}
		searchResponse := SearchResponse{
			Context:       resolved,
			ActiveFilters: pipeline.ActiveStages(resolved.Filters),
			Results:       pageOf(matches, resultsPage),
			PageDetails:   resultsPage.details(len(matches)),
		}
		if searchResponse.ActiveFilters == nil {
			searchResponse.ActiveFilters = []string{}
		}

		if request.UserID != "" {
			record, err := historyService.Save(ctx, request.UserID, resolved.Query, resolved.Filters)
			if err != nil {
				// The search itself succeeded
				logger.Error("could not save search history", "user_id", request.UserID, "err", err.Error())
			} else {
				searchResponse.SavedSearchID = record.ID
			}
		}

		writeResponse(c, searchResponse, http.StatusOK, nil)
	}
}
