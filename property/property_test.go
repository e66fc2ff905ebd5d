package property

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var areaKeyTestCases = []struct {
	name        string
	record      Record
	expectedKey string
	expectedOK  bool
}{
	{name: "AreaWins", record: Record{Area: "Koramangala", Locality: "5th Block", City: "Bangalore"}, expectedKey: "Koramangala", expectedOK: true},
	{name: "LocalityFallback", record: Record{Locality: "5th Block", City: "Bangalore"}, expectedKey: "5th Block", expectedOK: true},
	{name: "CityFallback", record: Record{City: "Bangalore"}, expectedKey: "Bangalore", expectedOK: true},
	{name: "NoKey", record: Record{ID: "p1"}, expectedKey: "", expectedOK: false},
}

func TestAreaKey(t *testing.T) {
	for _, testCase := range areaKeyTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			key, ok := testCase.record.AreaKey()
			assert.Equal(testCase.expectedKey, key)
			assert.Equal(testCase.expectedOK, ok)
		})
	}
}

func TestHasAll(t *testing.T) {
	assert := require.New(t)
	assert.True(HasAll(nil, nil))
	assert.True(HasAll([]string{"wifi"}, []string{"wifi"}))
	assert.True(HasAll([]string{"wifi", "parking", "ac"}, []string{"parking", "wifi"}))
	assert.False(HasAll([]string{"wifi"}, []string{"wifi", "parking"}))
	assert.False(HasAll(nil, []string{"wifi"}))
}

func TestDateJSON(t *testing.T) {
	assert := require.New(t)

	var short Date
	assert.NoError(json.Unmarshal([]byte(`"2025-07-01"`), &short))
	assert.Equal(NewDate(2025, time.July, 1).Time, short.Time)

	var long Date
	assert.NoError(json.Unmarshal([]byte(`"2025-07-01T18:30:00Z"`), &long))
	assert.Equal(NewDate(2025, time.July, 1).Time, long.Time)

	var invalid Date
	assert.Error(json.Unmarshal([]byte(`"01/07/2025"`), &invalid))

	encoded, err := json.Marshal(NewDate(2025, time.July, 1))
	assert.NoError(err)
	assert.Equal(`"2025-07-01"`, string(encoded))
}

func TestDateOnOrBefore(t *testing.T) {
	assert := require.New(t)
	june := NewDate(2025, time.June, 1)
	july := NewDate(2025, time.July, 1)
	assert.True(june.OnOrBefore(july))
	assert.True(july.OnOrBefore(july))
	assert.False(july.OnOrBefore(june))
}
