// Common test helpers
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/roomradar/config"
	"github.com/meghashyamc/roomradar/db/kvdb"
	"github.com/meghashyamc/roomradar/db/searchdb"
	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/logger"
	"github.com/meghashyamc/roomradar/services/catalog"
	"github.com/meghashyamc/roomradar/services/geocode"
	"github.com/meghashyamc/roomradar/services/history"
	"github.com/meghashyamc/roomradar/services/search"
	"github.com/meghashyamc/roomradar/services/suggest"
	"github.com/meghashyamc/roomradar/validation"
	"github.com/stretchr/testify/require"
)

var defaultTestRequestHeaders = map[string]string{"Content-Type": "application/json"}

// Koramangala sits about 3 km from HSR Layout; Whitefield is about 14 km away.
var testProperties = []map[string]any{
	{
		"id": "p1", "title": "Koramangala PG", "status": "live", "property_type": "pg", "occupancy_type": "double",
		"price": 9000, "gender_preference": "female", "furnishing": "furnished", "amenities": []string{"wifi", "ac"},
		"coordinate": map[string]any{"latitude": 12.9352, "longitude": 77.6245}, "area": "Koramangala", "city": "Bengaluru",
	},
	{
		"id": "p2", "title": "HSR flat", "status": "live", "property_type": "flat", "occupancy_type": "single",
		"price": 22000, "gender_preference": "any", "furnishing": "semi-furnished", "amenities": []string{"wifi", "parking"},
		"coordinate": map[string]any{"latitude": 12.9116, "longitude": 77.6474}, "area": "HSR Layout", "city": "Bengaluru",
	},
	{
		"id": "p3", "title": "Whitefield hostel", "status": "live", "property_type": "hostel", "occupancy_type": "triple",
		"price": 6000, "gender_preference": "male", "amenities": []string{"wifi"},
		"coordinate": map[string]any{"latitude": 12.9698, "longitude": 77.75}, "area": "Koramangala", "city": "Bengaluru",
	},
	{
		"id": "p4", "title": "Draft listing", "status": "draft", "property_type": "pg", "price": 100, "area": "HSR Layout",
	},
	{
		"id": "p5", "title": "Pune flat", "status": "live", "property_type": "flat", "price": 15000, "city": "Pune",
	},
}

var testPlaces = map[string]geo.Place{
	"Koramangala": {Coordinate: geo.Coordinate{Latitude: 12.9352, Longitude: 77.6245}, DisplayName: "Koramangala, Bengaluru"},
}

type testCase struct {
	name             string
	requestHeaders   map[string]string
	requestBody      map[string]any
	queryParams      map[string]string
	expectedStatus   int
	expectedResponse map[string]any
}

type testServer struct {
	router   *gin.Engine
	catalog  *catalog.Service
	history  *history.Service
	geocoder *fakeGeocoder
}

type fakeGeocoder struct {
	places map[string]geo.Place
	err    error
}

func (f *fakeGeocoder) Geocode(ctx context.Context, locationText string) (*geo.Place, error) {
	if f.err != nil {
		return nil, f.err
	}
	place, ok := f.places[locationText]
	if !ok {
		return nil, geocode.ErrNoMatch
	}
	return &place, nil
}

func newTestLogger() logger.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestServer(t *testing.T, assert *require.Assertions) *testServer {

	storagePath := t.TempDir()
	t.Setenv("STORAGE_PATH", storagePath)
	t.Setenv("KVDB_PATH", filepath.Join(storagePath, "handlers_test.db"))

	cfg, err := config.Load("test")
	assert.NoError(err, "could not load config")

	testLogger := newTestLogger()

	searchDB, err := searchdb.New(testLogger, cfg)
	assert.NoError(err, "could not create search database")

	kvDB, err := kvdb.New(testLogger, cfg)
	assert.NoError(err, "could not create kv database")
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	ctx, cancel := context.WithCancel(context.Background())
	geocoder := &fakeGeocoder{places: testPlaces}
	locator := geocode.NewCachedLocator(geocode.ReportedLocator{}, cfg.GetLocationTimeout(), cfg.GetLocationMaxAge())
	catalogService := catalog.New(ctx, testLogger, searchDB, kvDB)
	historyService := history.New(testLogger, kvDB)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	SetupSearch(router, testLogger, search.New(testLogger, geocoder, locator), catalogService, historyService, validator)
	SetupSuggestions(router, testLogger, suggest.New(), validator)
	SetupAreas(router, testLogger, catalogService, validator)
	SetupGeo(router, testLogger, geocoder, validator)
	SetupHistory(router, testLogger, historyService, validator)
	SetupProperties(router, testLogger, catalogService, validator)

	t.Cleanup(func() {
		cancel()
		assert.NoError(searchDB.Close(), "could not close search database")
		assert.NoError(kvDB.Close(), "could not close kv database")
	})

	return &testServer{router: router, catalog: catalogService, history: historyService, geocoder: geocoder}
}

// importTestProperties loads testProperties through the API and waits for
// the import to finish.
func importTestProperties(assert *require.Assertions, server *testServer) {
	w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/properties", defaultTestRequestHeaders, map[string]any{"properties": testProperties}, nil)
	assert.Equal(http.StatusAccepted, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))

	requestID := decodeResponse(assert, w.Body.Bytes())["data"].(map[string]any)["request_id"].(string)
	assertImportCompletes(assert, server, requestID)
}

func assertImportCompletes(assert *require.Assertions, server *testServer, requestID string) {
	assert.Eventually(func() bool {
		w := makeTestHTTPRequest(server.router, assert, http.MethodGet, "/properties/import/"+requestID, nil, nil, nil)
		if w.Code != http.StatusOK {
			return false
		}
		progress := decodeResponse(assert, w.Body.Bytes())["data"].(map[string]any)["progress"].(float64)
		return int(progress) == catalog.ProgressStatusComplete
	}, 5*time.Second, 20*time.Millisecond, "import did not complete")
}

func decodeResponse(assert *require.Assertions, responseBytes []byte) map[string]any {
	var responseMap map[string]any
	assert.NoError(json.Unmarshal(responseBytes, &responseMap), "response is not json: %s", string(responseBytes))
	return responseMap
}

func runTestCases(t *testing.T, router *gin.Engine, method string, endpoint string, testCases []testCase) {
	for _, testCase := range testCases {

		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(router, assert, method, endpoint, testCase.requestHeaders, testCase.requestBody, testCase.queryParams)
			responseBytes := w.Body.Bytes()
			assert.Equal(testCase.expectedStatus, w.Code, fmt.Sprintf("response gotten was %s", string(responseBytes)))
			if testCase.expectedResponse != nil {
				assert.Equal(testCase.expectedResponse, decodeResponse(assert, responseBytes))
			}
		})
	}
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, headers map[string]string, requestBodyMap map[string]interface{}, queryParams map[string]string) *httptest.ResponseRecorder {

	var err error
	w := httptest.NewRecorder()

	if len(queryParams) > 0 {
		values := url.Values{}
		for key, value := range queryParams {
			values.Set(key, value)
		}
		endpoint = endpoint + "?" + values.Encode()
	}
	var jsonBody []byte
	var req *http.Request
	if requestBodyMap != nil {
		jsonBody, err = json.Marshal(requestBodyMap)
		assert.NoError(err)
	}

	if len(jsonBody) > 0 {
		req, err = http.NewRequest(method, endpoint, bytes.NewBuffer(jsonBody))
	} else {
		req, err = http.NewRequest(method, endpoint, strings.NewReader(""))
	}
	assert.NoError(err)

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)

	return w
}
