// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package geo

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/tomtom215/sidequest/internal/models"
)

// Travel speeds in metres per minute and per-mode floors in minutes.
const (
	WalkingMetersPerMin = 80.0
	DrivingMetersPerMin = 500.0
	TransitMetersPerMin = 250.0

	minWalkingMin = 3
	minDrivingMin = 3
	minTransitMin = 5
)

// Point converts coordinates to an orb point (lng, lat order).
func Point(c models.Coordinates) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

// Distance returns the great-circle distance between a and b in metres.
func Distance(a, b models.Coordinates) float64 {
	return orbgeo.DistanceHaversine(Point(a), Point(b))
}

// DistanceMeters is Distance rounded to whole metres.
func DistanceMeters(a, b models.Coordinates) int {
	return int(math.Round(Distance(a, b)))
}

// EstimateTravel converts a distance into per-mode travel minutes.
func EstimateTravel(meters int) models.TravelTimes {
	d := float64(meters)
	return models.TravelTimes{
		WalkingMin: maxInt(minWalkingMin, int(math.Round(d/WalkingMetersPerMin))),
		DrivingMin: maxInt(minDrivingMin, int(math.Round(d/DrivingMetersPerMin))),
		TransitMin: maxInt(minTransitMin, int(math.Round(d/TransitMetersPerMin))),
	}
}

// Within reports whether b lies within radius metres of a.
func Within(a, b models.Coordinates, radius float64) bool {
	return Distance(a, b) <= radius
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
