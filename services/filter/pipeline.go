package filter

import (
	"slices"
	"time"

	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/property"
)

// Pipeline applies every active dimension of a Specification in turn. The
// zero value is ready to use and reads the current year from the wall clock.
type Pipeline struct {
	Now func() time.Time
}

type stage struct {
	name   string
	active func(spec Specification) bool
	keep   func(spec Specification, candidate property.Record) bool
}

var defaultPipeline Pipeline

// Apply filters candidates with the wall-clock pipeline.
func Apply(candidates []property.Record, spec Specification) []property.Record {
	return defaultPipeline.Apply(candidates, spec)
}

// Apply returns the candidates that pass every active stage, in input order.
// candidates is never modified.
func (p Pipeline) Apply(candidates []property.Record, spec Specification) []property.Record {
	survivors := slices.Clone(candidates)
	if survivors == nil {
		survivors = []property.Record{}
	}

	for _, stage := range p.stages() {
		if len(survivors) == 0 {
			break
		}
		if !stage.active(spec) {
			continue
		}
		survivors = slices.DeleteFunc(survivors, func(candidate property.Record) bool {
			return !stage.keep(spec, candidate)
		})
	}

	return survivors
}

// ActiveStages names the stages spec turns on, in evaluation order.
func (p Pipeline) ActiveStages(spec Specification) []string {
	var names []string
	for _, stage := range p.stages() {
		if stage.active(spec) {
			names = append(names, stage.name)
		}
	}
	return names
}

func (p Pipeline) currentYear() int {
	if p.Now != nil {
		return p.Now().Year()
	}
	return time.Now().Year()
}

func (p Pipeline) stages() []stage {
	return []stage{
		{
			name:   "radius",
			active: func(spec Specification) bool { return spec.Coordinates != nil && spec.RadiusKm != nil },
			keep: func(spec Specification, candidate property.Record) bool {
				if candidate.Coordinate == nil {
					return false
				}
				return geo.DistanceKm(*spec.Coordinates, *candidate.Coordinate) <= *spec.RadiusKm
			},
		},
		{
			name:   "property_type",
			active: func(spec Specification) bool { return len(spec.PropertyTypes) > 0 },
			keep: func(spec Specification, candidate property.Record) bool {
				return slices.Contains(spec.PropertyTypes, candidate.Type)
			},
		},
		{
			name:   "occupancy_type",
			active: func(spec Specification) bool { return len(spec.OccupancyTypes) > 0 },
			keep: func(spec Specification, candidate property.Record) bool {
				return slices.Contains(spec.OccupancyTypes, candidate.Occupancy)
			},
		},
		{
			name:   "price_range",
			active: func(spec Specification) bool { return spec.PriceRange != nil },
			keep: func(spec Specification, candidate property.Record) bool {
				return spec.PriceRange.Min <= candidate.Price && candidate.Price <= spec.PriceRange.Max
			},
		},
		{
			name:   "gender_preference",
			active: func(spec Specification) bool { return spec.GenderPreference != property.GenderUnspecified },
			keep: func(spec Specification, candidate property.Record) bool {
				return candidate.GenderPreference == spec.GenderPreference || candidate.GenderPreference == property.GenderAny
			},
		},
		{
			name:   "furnishing",
			active: func(spec Specification) bool { return spec.Furnished != property.FurnishingUnspecified },
			keep: func(spec Specification, candidate property.Record) bool {
				return candidate.Furnishing == spec.Furnished
			},
		},
		{
			name:   "amenities",
			active: func(spec Specification) bool { return len(spec.Amenities) > 0 },
			keep: func(spec Specification, candidate property.Record) bool {
				return property.HasAll(candidate.Amenities, spec.Amenities)
			},
		},
		{
			name:   "rules",
			active: func(spec Specification) bool { return len(spec.Rules) > 0 },
			keep: func(spec Specification, candidate property.Record) bool {
				return property.HasAll(candidate.Rules, spec.Rules)
			},
		},
		{
			name:   "age_of_property",
			active: func(spec Specification) bool { return spec.AgeOfProperty != "" },
			keep: func(spec Specification, candidate property.Record) bool {
				if candidate.YearBuilt == nil {
					return true
				}
				return classifyAge(p.currentYear()-*candidate.YearBuilt) == spec.AgeOfProperty
			},
		},
		{
			name:   "availability",
			active: func(spec Specification) bool { return spec.AvailableFrom != nil },
			keep: func(spec Specification, candidate property.Record) bool {
				if candidate.AvailableFrom == nil {
					return true
				}
				return candidate.AvailableFrom.OnOrBefore(*spec.AvailableFrom)
			},
		},
	}
}
