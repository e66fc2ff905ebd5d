package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/meghashyamc/roomradar/config"
	"github.com/meghashyamc/roomradar/db/kvdb"
	"github.com/meghashyamc/roomradar/db/searchdb"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/catalog"
	"github.com/meghashyamc/roomradar/services/geocode"
	"github.com/meghashyamc/roomradar/services/history"
	"github.com/meghashyamc/roomradar/services/search"
	"github.com/meghashyamc/roomradar/services/suggest"
	"github.com/meghashyamc/roomradar/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg           *config.Config
	router        *gin.Engine
	httpServer    *http.Server
	kvdb          kvdb.DB
	searchdb      searchdb.DB
	validator     *validation.Validator
	services      services
	stopRetention func()
	logger        logger.Logger
}

func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)

	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetEnv()),
	}
	if err := s.setupDependencies(ctx); err != nil {
		return err
	}
	if err := s.loadSeedCatalog(); err != nil {
		return err
	}
	s.setupRouter()
	errC := s.setupHTTPServer()

	return s.waitForShutdown(ctx, errC)
}

func (s *server) setupDependencies(ctx context.Context) error {
	var err error
	s.kvdb, err = kvdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchdb, err = searchdb.New(s.logger, s.cfg)
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		return err
	}
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	geocoder := geocode.NewNominatim(s.logger, geocode.NominatimOptions{
		BaseURL:   s.cfg.GetGeocoderURL(),
		UserAgent: s.cfg.GetGeocoderUserAgent(),
		Timeout:   s.cfg.GetGeocoderTimeout(),
	})
	locator := geocode.NewCachedLocator(geocode.ReportedLocator{}, s.cfg.GetLocationTimeout(), s.cfg.GetLocationMaxAge())

	historyService := history.New(s.logger, s.kvdb)
	s.stopRetention, err = historyService.StartRetention(s.cfg.GetHistoryPruneSchedule(), s.cfg.GetHistoryRetention())
	if err != nil {
		s.logger.Error("error starting search history retention", "err", err.Error())
		return err
	}

	s.services = services{
		search:   search.New(s.logger, geocoder, locator),
		geocoder: geocoder,
		catalog:  catalog.New(ctx, s.logger, s.searchdb, s.kvdb),
		history:  historyService,
		suggest:  suggest.New(),
	}

	return nil

}

// loadSeedCatalog queues the configured seed file for import, if any.
func (s *server) loadSeedCatalog() error {
	path := s.cfg.GetCatalogSeedPath()
	if path == "" {
		return nil
	}

	records, err := catalog.LoadFile(path)
	if err != nil {
		s.logger.Error("error loading seed catalog", "path", path, "err", err.Error())
		return err
	}

	requestID := uuid.New().String()
	if err := s.services.catalog.Import(records, requestID); err != nil {
		s.logger.Error("error importing seed catalog", "path", path, "err", err.Error())
		return err
	}
	s.logger.Info("importing seed catalog", "path", path, "properties", len(records), "request_id", requestID)
	return nil
}

func (s *server) setupRouter() {
	router := newRouter()

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.services, s.validator)

	s.router = router
}

func (s *server) setupHTTPServer() <-chan error {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errC <- fmt.Errorf("listen: %w", err)
		}
		close(errC)
	}()
	return errC
}

func (s *server) waitForShutdown(ctx context.Context, errC <-chan error) error {
	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errC:
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
	}
	s.stopRetention()
	if err := s.kvdb.Close(); err != nil {
		s.logger.Error("error closing kvDB", "err", err.Error())
	}
	if err := s.searchdb.Close(); err != nil {
		s.logger.Error("error closing searchDB", "err", err.Error())
	}
	s.logger.Info("shut down http server successfully")

	return serveErr
}
