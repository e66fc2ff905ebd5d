package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/roomradar/db/kvdb"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/property"
	"github.com/meghashyamc/roomradar/services/catalog"
	"github.com/meghashyamc/roomradar/validation"
)

type ImportRequest struct {
	Properties []property.Record `json:"properties" validate:"required,max=10000,dive"`
}

type ImportResponse struct {
	RequestID string `json:"request_id"`
}

type ImportStatusRequest struct {
	RequestID string `uri:"request_id" validate:"required,max=64"`
}

type ImportStatusResponse struct {
	RequestID string `json:"request_id"`
	Progress  int    `json:"progress"`
}

type DeletePropertyRequest struct {
	PropertyID string `uri:"property_id" validate:"required,max=128"`
}

func SetupProperties(router *gin.Engine, logger logger.Logger, catalogService *catalog.Service, validator *validation.Validator) {
	router.POST("/properties", handleImport(catalogService, logger, validator))
	router.GET("/properties/import/:request_id", handleImportStatus(catalogService, logger, validator))
	router.DELETE("/properties/:property_id", handleDeleteProperty(catalogService, logger, validator))

}

func handleImport(catalogService *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ImportRequest{}
		if err := c.ShouldBindJSON(&request); err != nil {
			logger.Warn("could not extract expected params from import request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate import request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		requestID := uuid.New().String()
		if err := catalogService.Import(request.Properties, requestID); err != nil {
			if errors.Is(err, catalog.ErrImportInProgress) {
				c.Abort()
				writeResponse(c, nil, http.StatusConflict, []string{err.Error()})
				return
			}
			logger.Error("could not start import", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, ImportResponse{RequestID: requestID}, http.StatusAccepted, nil)
	}
}

func handleImportStatus(catalogService *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := ImportStatusRequest{}
		if err := c.ShouldBindUri(&request); err != nil {
			logger.Warn("could not extract request id from path", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request path parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate import status request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		progress, err := catalogService.GetStatus(request.RequestID)
		if err != nil {
			if errors.Is(err, kvdb.ErrNotFound) {
				c.Abort()
				writeResponse(c, nil, http.StatusNotFound, []string{"import request not found"})
				return
			}
			logger.Error("could not get import status", "request_id", request.RequestID, "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, ImportStatusResponse{RequestID: request.RequestID, Progress: progress}, http.StatusOK, nil)
	}
}

func handleDeleteProperty(catalogService *catalog.Service, logger logger.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := DeletePropertyRequest{}
		if err := c.ShouldBindUri(&request); err != nil {
			logger.Warn("could not extract property id from path", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request path parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			logger.Warn("could not validate delete property request", "err", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if err := catalogService.Delete([]string{request.PropertyID}); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusInternalServerError, []string{err.Error()})
			return
		}

		writeResponse(c, nil, http.StatusNoContent, nil)
	}
}
