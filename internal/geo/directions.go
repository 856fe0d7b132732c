// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package geo

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/sidequest/internal/models"
)

const (
	mapsDirectionsURL = "https://www.google.com/maps/dir/?api=1"
	mapsSearchURL     = "https://www.google.com/maps/search/?api=1&query="
)

// DirectionsLink returns a walking-directions link from origin to dest, or
// a text search for "name city" when dest is unknown. The coordinates are
// written with the shortest exact representation.
func DirectionsLink(origin models.Coordinates, dest *models.Coordinates, name, city string) string {
	if dest == nil {
		q := strings.TrimSpace(name + " " + city)
		return mapsSearchURL + url.QueryEscape(q)
	}
	return mapsDirectionsURL +
		"&origin=" + formatPair(origin) +
		"&destination=" + formatPair(*dest)
}

func formatPair(c models.Coordinates) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lng, 'f', -1, 64)
}
