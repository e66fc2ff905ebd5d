package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/suggest"
	"github.com/meghashyamc/roomradar/validation"
)

type SuggestionsRequest struct {
	Query string `form:"query" validate:"max=200"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func SetupSuggestions(router *gin.Engine, logger logger.Logger, engine *suggest.Engine, validator *validation.Validator) {
	router.GET("/suggestions", handleSuggestions(engine, logger, validator))

}

func handleSuggestions(engine *suggest.Engine, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := SuggestionsRequest{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from suggestions request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate suggestions request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		writeResponse(c, SuggestionsResponse{Suggestions: engine.Suggest(request.Query)}, http.StatusOK, nil)
	}
}
