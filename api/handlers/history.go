package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/filter"
	"github.com/meghashyamc/roomradar/services/history"
	"github.com/meghashyamc/roomradar/validation"
)

type UserRequest struct {
	UserID string `uri:"user_id" validate:"required,valid_user_id,max=128"`
}

type SaveSearchRequest struct {
	Query   string               `json:"query" validate:"max=200"`
	Filters filter.Specification `json:"filters"`
}

type SavedSearchesResponse struct {
	Searches []history.Record `json:"searches"`
}

func SetupHistory(router *gin.Engine, logger logger.Logger, historyService *history.Service, validator *validation.Validator) {
	router.POST("/users/:user_id/searches", handleSaveSearch(historyService, logger, validator))
	router.GET("/users/:user_id/searches", handleListSearches(historyService, logger, validator))

}

func bindUser(c *gin.Context, logger logger.Logger, validator *validation.Validator) (UserRequest, bool) {
	user := UserRequest{}
	if err := c.ShouldBindUri(&user); err != nil {
		logger.Warn("could not extract user id from path", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request path parameters"})
		return user, false
	}

	if err := validator.Validate(user); err != nil {
		logger.Warn("could not validate user id", "err", err.Error())
		c.Abort()
		writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
		return user, false
	}
	return user, true
}

func handleSaveSearch(historyService *history.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := bindUser(c, logger, validator)
		if !ok {
			return
		}

		request := SaveSearchRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from save search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate save search request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		record, err := historyService.Save(c.Request.Context(), user.UserID, request.Query, request.Filters)
		if err != nil {
			logger.Error("could not save search", "user_id", user.UserID, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, record, http.StatusCreated, nil)
	}
}

func handleListSearches(historyService *history.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := bindUser(c, logger, validator)
		if !ok {
			return
		}

		records, err := historyService.List(c.Request.Context(), user.UserID)
		if err != nil {
			logger.Error("could not list saved searches", "user_id", user.UserID, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, SavedSearchesResponse{Searches: records}, http.StatusOK, nil)
	}
}
