package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func resultIDs(assert *require.Assertions, responseMap map[string]any) []string {
	results := responseMap["data"].(map[string]any)["results"].([]any)
	ids := make([]string, 0, len(results))
	for _, result := range results {
		ids = append(ids, result.(map[string]any)["id"].(string))
	}
	return ids
}

func TestHandleSearchValidation(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)

	runTestCases(t, server.router, http.MethodPost, "/search", []testCase{
		{
			name:           "NoRequestBody",
			requestHeaders: defaultTestRequestHeaders,
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "QueryTooLong",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"query": strings.Repeat("a", 201)},
			expectedStatus: http.StatusNotAcceptable,
		},
		{
			name:           "PriceMinAboveMax",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"filters": map[string]any{"price_range": map[string]any{"min": 10000, "max": 5000}}},
			expectedStatus: http.StatusNotAcceptable,
			expectedResponse: map[string]any{
				"data":   nil,
				"errors": []any{"field 'min' must not be greater than 'max'"},
			},
		},
		{
			name:           "UnknownPropertyType",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"filters": map[string]any{"property_type": []string{"castle"}}},
			expectedStatus: http.StatusNotAcceptable,
		},
		{
			name:           "NonPositiveRadius",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"filters": map[string]any{"radius_km": -1}},
			expectedStatus: http.StatusNotAcceptable,
		},
		{
			name:           "InvalidDeviceGeohash",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"device": map[string]any{"geohash": "not-a-geohash"}},
			expectedStatus: http.StatusNotAcceptable,
		},
		{
			name:           "InvalidUserID",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"user_id": "a/b"},
			expectedStatus: http.StatusNotAcceptable,
		},
		{
			name:           "PageTooLarge",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"page": 92233720368547760, "per_page": 100},
			expectedStatus: http.StatusNotAcceptable,
		},
		{
			name:           "PerPageTooLarge",
			requestHeaders: defaultTestRequestHeaders,
			requestBody:    map[string]any{"per_page": 101},
			expectedStatus: http.StatusNotAcceptable,
		},
	})
}

func TestHandleSearch(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	importTestProperties(assert, server)

	tests := []struct {
		name               string
		requestBody        map[string]any
		wantIDs            []string
		wantLocationSource string
		wantTotal          int
	}{
		{
			name:               "NoConstraints",
			requestBody:        map[string]any{},
			wantIDs:            []string{"p1", "p2", "p3", "p5"},
			wantLocationSource: "none",
			wantTotal:          4,
		},
		{
			name:               "GeocodedQueryWithRadius",
			requestBody:        map[string]any{"query": "Koramangala", "filters": map[string]any{"radius_km": 5}},
			wantIDs:            []string{"p1", "p2"},
			wantLocationSource: "geocoded",
			wantTotal:          2,
		},
		{
			name:               "UnknownPlaceIgnoresRadius",
			requestBody:        map[string]any{"query": "Atlantis", "filters": map[string]any{"radius_km": 5}},
			wantIDs:            []string{"p1", "p2", "p3", "p5"},
			wantLocationSource: "none",
			wantTotal:          4,
		},
		{
			name: "ProvidedCoordinates",
			requestBody: map[string]any{"filters": map[string]any{
				"coordinates": map[string]any{"latitude": 12.9698, "longitude": 77.75},
				"radius_km":   1,
			}},
			wantIDs:            []string{"p3"},
			wantLocationSource: "provided",
			wantTotal:          1,
		},
		{
			name: "DeviceLocation",
			requestBody: map[string]any{
				"filters": map[string]any{"use_current_location": true, "radius_km": 1},
				"device":  map[string]any{"device_id": "phone-1", "latitude": 12.9116, "longitude": 77.6474},
			},
			wantIDs:            []string{"p2"},
			wantLocationSource: "device",
			wantTotal:          1,
		},
		{
			name: "DeviceLocationFromGeohash",
			requestBody: map[string]any{
				"filters": map[string]any{"use_current_location": true, "radius_km": 1},
				"device":  map[string]any{"geohash": "tdr1w6u"},
			},
			wantIDs:            []string{"p1"},
			wantLocationSource: "device",
			wantTotal:          1,
		},
		{
			name: "DeviceLocationDenied",
			requestBody: map[string]any{
				"filters": map[string]any{"use_current_location": true, "radius_km": 1},
				"device":  map[string]any{"device_id": "phone-1", "denied": true},
			},
			wantIDs:            []string{"p1", "p2", "p3", "p5"},
			wantLocationSource: "none",
			wantTotal:          4,
		},
		{
			name: "AttributeFilters",
			requestBody: map[string]any{"filters": map[string]any{
				"property_type": []string{"pg", "hostel"},
				"price_range":   map[string]any{"min": 5000, "max": 10000},
			}},
			wantIDs:            []string{"p1", "p3"},
			wantLocationSource: "none",
			wantTotal:          2,
		},
		{
			name: "AmenitiesAndGender",
			requestBody: map[string]any{"filters": map[string]any{
				"amenities":         []string{"wifi", "ac"},
				"gender_preference": "female",
			}},
			wantIDs:            []string{"p1"},
			wantLocationSource: "none",
			wantTotal:          1,
		},
		{
			name:               "SecondPage",
			requestBody:        map[string]any{"per_page": 3, "page": 2},
			wantIDs:            []string{"p5"},
			wantLocationSource: "none",
			wantTotal:          4,
		},
		{
			name:               "PageBeyondResults",
			requestBody:        map[string]any{"per_page": 3, "page": 5},
			wantIDs:            []string{},
			wantLocationSource: "none",
			wantTotal:          4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)
			w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/search", defaultTestRequestHeaders, tt.requestBody, nil)
			assert.Equal(http.StatusOK, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))

			responseMap := decodeResponse(assert, w.Body.Bytes())
			assert.Equal(tt.wantIDs, resultIDs(assert, responseMap))

			data := responseMap["data"].(map[string]any)
			assert.Equal(tt.wantLocationSource, data["context"].(map[string]any)["location_source"])
			assert.Equal(float64(tt.wantTotal), data["page_details"].(map[string]any)["total_results"])
			assert.NotContains(data, "saved_search_id")
		})
	}
}

func TestHandleSearchSavesHistory(t *testing.T) {
	assert := require.New(t)
	server := setupTestServer(t, assert)
	importTestProperties(assert, server)

	requestBody := map[string]any{"query": "Koramangala", "user_id": "user-1", "filters": map[string]any{"radius_km": 5}}
	w := makeTestHTTPRequest(server.router, assert, http.MethodPost, "/search", defaultTestRequestHeaders, requestBody, nil)
	assert.Equal(http.StatusOK, w.Code, fmt.Sprintf("response gotten was %s", w.Body.String()))

	savedSearchID := decodeResponse(assert, w.Body.Bytes())["data"].(map[string]any)["saved_search_id"]
	assert.NotEmpty(savedSearchID)

	w = makeTestHTTPRequest(server.router, assert, http.MethodGet, "/users/user-1/searches", nil, nil, nil)
	assert.Equal(http.StatusOK, w.Code)

	searches := decodeResponse(assert, w.Body.Bytes())["data"].(map[string]any)["searches"].([]any)
	assert.Len(searches, 1)
	saved := searches[0].(map[string]any)
	assert.Equal(savedSearchID, saved["id"])
	assert.Equal("Koramangala", saved["query"])

	coordinates := saved["filters"].(map[string]any)["coordinates"].(map[string]any)
	assert.Equal(12.9352, coordinates["latitude"], "the resolved location is saved with the search")
}

func TestPageOf(t *testing.T) {
	items := []string{"a", "b", "c", "d", "e"}

	tests := []struct {
		name string
		page page
		want []string
	}{
		{name: "first page", page: page{number: 1, size: 2}, want: []string{"a", "b"}},
		{name: "partial last page", page: page{number: 3, size: 2}, want: []string{"e"}},
		{name: "beyond the end", page: page{number: 6, size: 2}, want: []string{}},
		{name: "page zero", page: page{number: 0, size: 2}, want: []string{}},
		{name: "overflowing start", page: page{number: 4611686018427387904, size: 4}, want: []string{}},
		{name: "zero size", page: page{number: 1, size: 0}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(tt.want, pageOf(items, tt.page))
		})
	}
}

func TestPageDetails(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  page
		want  PageDetails
	}{
		{
			name: "no results", total: 0, page: page{number: 1, size: 20},
			want: PageDetails{CurrentPage: 1, PageSize: 20, TotalPages: 1, TotalResults: 0},
		},
		{
			name: "first of three pages", total: 45, page: page{number: 1, size: 20},
			want: PageDetails{CurrentPage: 1, PageSize: 20, TotalPages: 3, HasNextPage: true, TotalResults: 45},
		},
		{
			name: "last page", total: 45, page: page{number: 3, size: 20},
			want: PageDetails{CurrentPage: 3, PageSize: 20, TotalPages: 3, HasPrevPage: true, TotalResults: 45},
		},
		{
			name: "past the last page", total: 5, page: page{number: 4, size: 2},
			want: PageDetails{CurrentPage: 4, PageSize: 2, TotalPages: 3, HasPrevPage: true, TotalResults: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(tt.want, tt.page.details(tt.total))
		})
	}
}
