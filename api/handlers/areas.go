package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/areas"
	"github.com/meghashyamc/roomradar/services/catalog"
	"github.com/meghashyamc/roomradar/validation"
)

type AreasRequest struct {
	Limit int `form:"limit" validate:"min=0,max=100"`
}

type AreasResponse struct {
	Areas []areas.AreaCount `json:"areas"`
}

func SetupAreas(router *gin.Engine, logger logger.Logger, catalogService *catalog.Service, validator *validation.Validator) {
	router.GET("/areas", handleAreas(catalogService, logger, validator))

}

func handleAreas(catalogService *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := AreasRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from areas request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate areas request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		candidates, err := catalogService.Candidates(c.Request.Context())
		if err != nil {
			logger.Error("could not load candidates for areas", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, AreasResponse{Areas: areas.TopAreas(candidates, request.Limit)}, http.StatusOK, nil)
	}
}
