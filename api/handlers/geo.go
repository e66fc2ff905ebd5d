package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/geocode"
	"github.com/meghashyamc/roomradar/services/search"
	"github.com/meghashyamc/roomradar/validation"
)

type DistanceRequest struct {
	FromLatitude  *float64 `form:"from_lat" validate:"required,min=-90,max=90"`
	FromLongitude *float64 `form:"from_lon" validate:"required,min=-180,max=180"`
	ToLatitude    *float64 `form:"to_lat" validate:"required,min=-90,max=90"`
	ToLongitude   *float64 `form:"to_lon" validate:"required,min=-180,max=180"`
}

type DistanceResponse struct {
	DistanceKm float64 `json:"distance_km"`
}

type GeocodeRequest struct {
	Query string `form:"query" validate:"required,valid_query,max=200"`
}

func SetupGeo(router *gin.Engine, logger logger.Logger, geocoder search.Geocoder, validator *validation.Validator) {
	router.GET("/distance", handleDistance(logger, validator))
	router.GET("/geocode", handleGeocode(geocoder, logger, validator))

}

func handleDistance(logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := DistanceRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from distance request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate distance request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		from := geo.Coordinate{Latitude: *request.FromLatitude, Longitude: *request.FromLongitude}
		to := geo.Coordinate{Latitude: *request.ToLatitude, Longitude: *request.ToLongitude}
		writeResponse(c, DistanceResponse{DistanceKm: geo.DistanceKm(from, to)}, http.StatusOK, nil)
	}
}

func handleGeocode(geocoder search.Geocoder, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := GeocodeRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from geocode request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate geocode request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		place, err := geocoder.Geocode(c.Request.Context(), request.Query)
		if err != nil {
			if errors.Is(err, geocode.ErrNoMatch) {
				c.Abort()
				writeResponse(c, nil, http.StatusNotFound, []string{err.Error()})
				return
			}
			logger.Error("geocoding failed", "query", request.Query, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusBadGateway, []string{"geocoding service unavailable"})
			return
		}

		writeResponse(c, place, http.StatusOK, nil)
	}
}
