// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package models

// Category is the closed set of activity categories.
type Category string

const (
	CategoryCafe       Category = "cafe"
	CategoryPark       Category = "park"
	CategoryViewpoint  Category = "viewpoint"
	CategoryMarket     Category = "market"
	CategoryMuseum     Category = "museum"
	CategoryShopping   Category = "shopping"
	CategoryRestaurant Category = "restaurant"
	CategoryLandmark   Category = "landmark"
	CategoryOther      Category = "other"
)

// CategoryProfile holds the per-category defaults used when a provider
// record carries no better information.
type CategoryProfile struct {
	WaitMin       int
	DurationMin   int
	Setting       IndoorOutdoor
	Themes        []Theme
	DefaultTravel TravelTimes
	Label         string
}

// unknownTravel is the travel estimate used when neither coordinates nor a
// known neighbourhood are available.
var unknownTravel = TravelTimes{WalkingMin: 25, DrivingMin: 8, TransitMin: 15}

var categoryProfiles = map[Category]CategoryProfile{
	CategoryCafe:       {WaitMin: 5, DurationMin: 20, Setting: Indoor, Themes: []Theme{ThemeRelax}, DefaultTravel: unknownTravel, Label: "Cafe"},
	CategoryPark:       {WaitMin: 0, DurationMin: 15, Setting: Outdoor, Themes: []Theme{ThemeRelax}, DefaultTravel: unknownTravel, Label: "Park"},
	CategoryViewpoint:  {WaitMin: 0, DurationMin: 10, Setting: Mixed, Themes: []Theme{ThemeActivity}, DefaultTravel: unknownTravel, Label: "Viewpoint"},
	CategoryMarket:     {WaitMin: 3, DurationMin: 15, Setting: Mixed, Themes: []Theme{ThemeShopping}, DefaultTravel: unknownTravel, Label: "Market"},
	CategoryMuseum:     {WaitMin: 15, DurationMin: 60, Setting: Indoor, Themes: []Theme{ThemeActivity}, DefaultTravel: unknownTravel, Label: "Museum"},
	CategoryShopping:   {WaitMin: 0, DurationMin: 20, Setting: Indoor, Themes: []Theme{ThemeShopping}, DefaultTravel: unknownTravel, Label: "Shopping"},
	CategoryRestaurant: {WaitMin: 10, DurationMin: 45, Setting: Indoor, Themes: []Theme{ThemeFood}, DefaultTravel: unknownTravel, Label: "Restaurant"},
	CategoryLandmark:   {WaitMin: 3, DurationMin: 15, Setting: Mixed, Themes: []Theme{ThemeActivity}, DefaultTravel: unknownTravel, Label: "Landmark"},
	CategoryOther:      {WaitMin: 3, DurationMin: 15, Setting: SettingUnknown, DefaultTravel: unknownTravel, Label: "Place"},
}

// Valid reports whether c belongs to the closed category set.
func (c Category) Valid() bool {
	_, ok := categoryProfiles[c]
	return ok
}

// Profile returns the defaults for c. Unknown categories get the "other" profile.
func (c Category) Profile() CategoryProfile {
	if p, ok := categoryProfiles[c]; ok {
		return p
	}
	return categoryProfiles[CategoryOther]
}
