package property

import (
	"github.com/meghashyamc/roomradar/geo"
)

type Type string

const (
	TypePG     Type = "pg"
	TypeFlat   Type = "flat"
	TypeHouse  Type = "house"
	TypeHostel Type = "hostel"
	TypeShared Type = "shared"
)

type Occupancy string

const (
	OccupancySingle Occupancy = "single"
	OccupancyDouble Occupancy = "double"
	OccupancyTriple Occupancy = "triple"
	OccupancyFour   Occupancy = "four"
)

// Gender is the tenant gender a listing accepts. The zero value is unspecified.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
	GenderAny         Gender = "any"
)

// Furnishing is the furnishing level of a listing. The zero value is unspecified.
type Furnishing string

const (
	FurnishingUnspecified Furnishing = ""
	Furnished             Furnishing = "furnished"
	SemiFurnished         Furnishing = "semi-furnished"
	Unfurnished           Furnishing = "unfurnished"
)

// StatusLive marks a listing that is visible to searches.
const StatusLive = "live"

// Record is a property listing as seen by search. Optional fields are
// pointers or empty strings/slices when absent.
type Record struct {
	ID               string          `json:"id" validate:"required,max=128"`
	Title            string          `json:"title,omitempty" validate:"max=300"`
	Status           string          `json:"status,omitempty"`
	Coordinate       *geo.Coordinate `json:"coordinate,omitempty"`
	Type             Type            `json:"property_type,omitempty" validate:"omitempty,oneof=pg flat house hostel shared"`
	Occupancy        Occupancy       `json:"occupancy_type,omitempty" validate:"omitempty,oneof=single double triple four"`
	Price            float64         `json:"price" validate:"min=0"`
	GenderPreference Gender          `json:"gender_preference,omitempty" validate:"omitempty,oneof=male female any"`
	Furnishing       Furnishing      `json:"furnishing,omitempty" validate:"omitempty,oneof=furnished semi-furnished unfurnished"`
	Amenities        []string        `json:"amenities,omitempty"`
	Rules            []string        `json:"rules,omitempty"`
	YearBuilt        *int            `json:"year_built,omitempty"`
	AvailableFrom    *Date           `json:"available_from,omitempty"`
	Locality         string          `json:"locality,omitempty"`
	Area             string          `json:"area,omitempty"`
	City             string          `json:"city,omitempty"`
}

// IsLive reports whether the record should be offered as a search candidate.
func (r Record) IsLive() bool {
	return r.Status == StatusLive
}

// AreaKey returns the first non-empty of area, locality and city.
func (r Record) AreaKey() (string, bool) {
	for _, key := range []string{r.Area, r.Locality, r.City} {
		if key != "" {
			return key, true
		}
	}
	return "", false
}

func HasAll(have []string, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, tag := range have {
		set[tag] = struct{}{}
	}
	for _, tag := range want {
		if _, ok := set[tag]; !ok {
			return false
		}
	}
	return true
}
