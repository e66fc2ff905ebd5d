package filter

import (
	"github.com/meghashyamc/roomradar/geo"
	"github.com/meghashyamc/roomradar/property"
)

// AgeBucket classifies a property by years since it was built.
type AgeBucket string

const (
	AgeNew    AgeBucket = "new"
	AgeRecent AgeBucket = "recent"
	AgeOld    AgeBucket = "old"
)

const (
	maxAgeNew    = 2
	maxAgeRecent = 5
)

// PriceRange bounds are both inclusive.
type PriceRange struct {
	Min float64 `json:"min" validate:"min=0,ltefield=Max"`
	Max float64 `json:"max" validate:"min=0"`
}

// Specification describes the constraints a candidate must satisfy. A zero
// field imposes no constraint.
type Specification struct {
	LocationQuery      string               `json:"location_query,omitempty" validate:"max=200"`
	Coordinates        *geo.Coordinate      `json:"coordinates,omitempty"`
	RadiusKm           *float64             `json:"radius_km,omitempty" validate:"omitempty,gt=0"`
	PropertyTypes      []property.Type      `json:"property_type,omitempty" validate:"omitempty,dive,oneof=pg flat house hostel shared"`
	OccupancyTypes     []property.Occupancy `json:"occupancy_type,omitempty" validate:"omitempty,dive,oneof=single double triple four"`
	PriceRange         *PriceRange          `json:"price_range,omitempty"`
	GenderPreference   property.Gender      `json:"gender_preference,omitempty" validate:"omitempty,oneof=male female any"`
	Furnished          property.Furnishing  `json:"furnished,omitempty" validate:"omitempty,oneof=furnished semi-furnished unfurnished"`
	Amenities          []string             `json:"amenities,omitempty" validate:"omitempty,dive,min=1,max=64"`
	Rules              []string             `json:"rules,omitempty" validate:"omitempty,dive,min=1,max=64"`
	AgeOfProperty      AgeBucket            `json:"age_of_property,omitempty" validate:"omitempty,oneof=new recent old"`
	AvailableFrom      *property.Date       `json:"available_from,omitempty"`
	UseCurrentLocation bool                 `json:"use_current_location,omitempty"`
}

// WithCoordinates returns a copy of s located at c.
func (s Specification) WithCoordinates(c *geo.Coordinate) Specification {
	s.Coordinates = c
	return s
}

func classifyAge(age int) AgeBucket {
	switch {
	case age <= maxAgeNew:
		return AgeNew
	case age <= maxAgeRecent:
		return AgeRecent
	default:
		return AgeOld
	}
}
