package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/api/handlers"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/catalog"
	"github.com/meghashyamc/roomradar/services/history"
	"github.com/meghashyamc/roomradar/services/search"
	"github.com/meghashyamc/roomradar/services/suggest"
	"github.com/meghashyamc/roomradar/validation"
)

type services struct {
	search   *search.Service
	geocoder search.Geocoder
	catalog  *catalog.Service
	history  *history.Service
	suggest  *suggest.Engine
}

func setupRoutes(router *gin.Engine, logger logger.Logger, services services, validator *validation.Validator) {
	router.GET("/health", health())

	handlers.SetupSearch(router, logger, services.search, services.catalog, services.history, validator)
	handlers.SetupSuggestions(router, logger, services.suggest, validator)
	handlers.SetupAreas(router, logger, services.catalog, validator)
	handlers.SetupGeo(router, logger, services.geocoder, validator)
	handlers.SetupHistory(router, logger, services.history, validator)
	handlers.SetupProperties(router, logger, services.catalog, validator)

}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
