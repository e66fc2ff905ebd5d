package catalog

import (
	"math"

	"github.com/meghashyamc/roomradar/geo"
	"github.com/mmcloughlin/geohash"
)

const (
	kmPerDegree = 6371.0 * math.Pi / 180

	// Cells must be a little wider than the radius, since along a parallel
	// the great-circle distance is shorter than the longitude arc.
	coverSlack = 1.1

	// Above this latitude the cover falls back to a full scan.
	maxCoverLatitude = 80.0
)

// coveringCells returns geohash cells whose union contains every point within
// radiusKm of center: the cell holding center and its eight neighbours, at the
// finest precision whose cells are at least radiusKm across. It returns nil
// when no such cover exists, near the poles or the antimeridian, or when the
// radius outgrows the coarsest cell.
func coveringCells(center geo.Coordinate, radiusKm float64) []string {
	if math.IsNaN(radiusKm) || radiusKm < 0 {
		return nil
	}

	for precision := uint(geohashPrecision); precision >= 1; precision-- {
		cell := geohash.EncodeWithPrecision(center.Latitude, center.Longitude, precision)
		box := geohash.BoundingBox(cell)
		latDelta := box.MaxLat - box.MinLat
		lngDelta := box.MaxLng - box.MinLng

		south, north := box.MinLat-latDelta, box.MaxLat+latDelta
		if south < -maxCoverLatitude || north > maxCoverLatitude {
			return nil
		}
		if box.MinLng-lngDelta < -180 || box.MaxLng+lngDelta > 180 {
			return nil
		}

		widestLatitude := math.Max(math.Abs(south), math.Abs(north))
		heightKm := latDelta * kmPerDegree
		widthKm := lngDelta * kmPerDegree * math.Cos(widestLatitude*math.Pi/180)
		if math.Min(heightKm, widthKm) >= radiusKm*coverSlack {
			return append([]string{cell}, geohash.Neighbors(cell)...)
		}
	}

	return nil
}
