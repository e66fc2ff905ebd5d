package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/logger"
)

var ErrNoMatch = errors.New("no geocoding match")

const defaultGeocodeTimeout = 5 * time.Second

type NominatimOptions struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Nominatim resolves free text through the /search endpoint of a
// Nominatim-compatible geocoding service.
type Nominatim struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     logger.Logger
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatim(logger logger.Logger, opts NominatimOptions) *Nominatim {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultGeocodeTimeout
	}
	return &Nominatim{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Geocode returns the best match for locationText, or ErrNoMatch.
func (n *Nominatim) Geocode(ctx context.Context, locationText string) (*geo.Place, error) {
	params := url.Values{}
	params.Set("q", locationText)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build geocoding request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("geocoding request failed", "query", locationText, "err", err.Error())
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.Warn("geocoding service returned unexpected status", "query", locationText, "status", resp.StatusCode)
		return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		n.logger.Warn("could not decode geocoding response", "query", locationText, "err", err.Error())
		return nil, fmt.Errorf("could not decode geocoding response: %w", err)
	}
	if len(places) == 0 {
		return nil, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q in geocoding response: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q in geocoding response: %w", places[0].Lon, err)
	}

	return &geo.Place{
		Coordinate:  geo.Coordinate{Latitude: lat, Longitude: lon},
		DisplayName: places[0].DisplayName,
	}, nil
}
