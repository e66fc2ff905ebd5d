package areas

import (
	"slices"

	"github.com/meghashyamc/roomradar/property"
)

const DefaultLimit = 10

type AreaCount struct {
	Area  string `json:"area"`
	Count int    `json:"count"`
}

// TopAreas counts candidates per area key and returns the limit most frequent
// areas. Ties keep the order in which areas were first seen. A non-positive
// limit means DefaultLimit.
func TopAreas(candidates []property.Record, limit int) []AreaCount {
	if limit <= 0 {
		limit = DefaultLimit
	}

	counts := []AreaCount{}
	positions := make(map[string]int)
	for _, candidate := range candidates {
		key, ok := candidate.AreaKey()
		if !ok {
			continue
		}
		if position, seen := positions[key]; seen {
			counts[position].Count++
			continue
		}
		positions[key] = len(counts)
		counts = append(counts, AreaCount{Area: key, Count: 1})
	}

	slices.SortStableFunc(counts, func(a, b AreaCount) int {
		return b.Count - a.Count
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}
	return counts
}
