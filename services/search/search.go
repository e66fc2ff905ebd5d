package search

import (
	"context"
	"strings"

	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/filter"
)

// Queries at or below this length are not geocoded.
const minGeocodeQueryLength = 2

type LocationSource string

const (
	LocationSourceNone     LocationSource = "none"
	LocationSourceProvided LocationSource = "provided"
	LocationSourceGeocoded LocationSource = "geocoded"
	LocationSourceDevice   LocationSource = "device"
)

type Geocoder interface {
	Geocode(ctx context.Context, locationText string) (*geo.Place, error)
}

type Locator interface {
	CurrentLocation(ctx context.Context) (geo.Coordinate, error)
}

// Context is a filter specification with its location resolved.
type Context struct {
	Query          string               `json:"query"`
	Coordinates    *geo.Coordinate      `json:"coordinates,omitempty"`
	DisplayName    string               `json:"display_name,omitempty"`
	LocationSource LocationSource       `json:"location_source"`
	Filters        filter.Specification `json:"filters"`
}

type Service struct {
	logger   logger.Logger
	geocoder Geocoder
	locator  Locator
}

func New(logger logger.Logger, geocoder Geocoder, locator Locator) *Service {
	return &Service{
		logger:   logger,
		geocoder: geocoder,
		locator:  locator,
	}
}

// Search resolves coordinates for queryText and merges them into spec. Resolution
// is best effort: geocoding and device location failures leave the coordinates
// unchanged and are never returned.
func (s *Service) Search(ctx context.Context, queryText string, spec filter.Specification) Context {
	query := strings.TrimSpace(queryText)
	resolved := Context{
		Query:          query,
		Coordinates:    spec.Coordinates,
		LocationSource: LocationSourceNone,
	}
	if spec.Coordinates != nil {
		resolved.LocationSource = LocationSourceProvided
	}

	switch {
	case len([]rune(query)) > minGeocodeQueryLength:
		if place := s.geocode(ctx, query); place != nil {
			coordinate := place.Coordinate
			resolved.Coordinates = &coordinate
			resolved.DisplayName = place.DisplayName
			resolved.LocationSource = LocationSourceGeocoded
		}
	case query == "" && spec.UseCurrentLocation:
		if coordinate, ok := s.currentLocation(ctx); ok {
			resolved.Coordinates = &coordinate
			resolved.LocationSource = LocationSourceDevice
		}
	}

	resolved.Filters = spec.WithCoordinates(resolved.Coordinates)
	if resolved.Filters.LocationQuery == "" {
		resolved.Filters.LocationQuery = query
	}

	return resolved
}

func (s *Service) geocode(ctx context.Context, query string) *geo.Place {
	if s.geocoder == nil {
		return nil
	}
	place, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.logger.Info("could not geocode search query, continuing without coordinates", "query", query, "err", err.Error())
		return nil
	}
	return place
}

func (s *Service) currentLocation(ctx context.Context) (geo.Coordinate, bool) {
	if s.locator == nil {
		s.logger.Info("no device locator configured, continuing without coordinates")
		return geo.Coordinate{}, false
	}
	coordinate, err := s.locator.CurrentLocation(ctx)
	if err != nil {
		s.logger.Warn("could not get current location, continuing without coordinates", "err", err.Error())
		return geo.Coordinate{}, false
	}
	return coordinate, true
}
