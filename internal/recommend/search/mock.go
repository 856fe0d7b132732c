// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"sort"

	"github.com/tomtom215/sidequest/internal/cache"
	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// Mock serves canned Barcelona results chosen by keywords in the query.
// It is deterministic and needs no network, so development and tests
// run without API keys.
type Mock struct {
	triggers *cache.KeywordMatcher
}

type mockSet int

const (
	mockCafes mockSet = iota
	mockParks
	mockShopping
	mockFood
	mockActivity
	mockDefault
)

var mockTriggers = []struct {
	set   mockSet
	words []string
}{
	{mockCafes, []string{"cafe", "coffee", "acogedor", "acollidor", "cozy", "relax"}},
	{mockParks, []string{"parque", "park", "tranquil", "quiet", "mirador", "viewpoint"}},
	{mockShopping, []string{"mercado", "mercat", "market", "tienda", "botiga", "vintage", "shop", "papeleria", "stationery"}},
	{mockFood, []string{"comida", "menjar", "tapas", "tapes", "eats", "food", "panaderia", "bakery"}},
	{mockActivity, []string{"museo", "museu", "museum", "galeria", "gallery", "espectaculo", "performance"}},
}

// NewMock creates the mock provider.
func NewMock() *Mock {
	m := cache.NewKeywordMatcher(geo.Fold)
	for _, row := range mockTriggers {
		for _, w := range row.words {
			m.Add(w, row.set)
		}
	}
	m.AddWord("parc", mockParks)
	return &Mock{triggers: m.Build()}
}

// Name implements Provider.
func (m *Mock) Name() string { return string(models.SourceMock) }

// Target implements Provider.
func (m *Mock) Target() recommend.SearchTarget { return recommend.TargetMaps }

// Search implements Provider. Results for every matched keyword group are
// returned in group order; a query matching nothing gets the default set.
func (m *Mock) Search(ctx context.Context, q Query) ([]Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var sets []mockSet
	seen := make(map[mockSet]bool)
	for _, hit := range m.triggers.All(q.Text) {
		s := hit.Data.(mockSet)
		if !seen[s] {
			seen[s] = true
			sets = append(sets, s)
		}
	}
	if len(sets) == 0 {
		sets = []mockSet{mockDefault}
	}
	// All reports text order; serve groups in table order instead.
	sort.Slice(sets, func(i, j int) bool { return sets[i] < sets[j] })

	var out []Place
	for _, s := range sets {
		for _, p := range mockPlaces[s] {
			p.Source = models.SourceMock
			out = append(out, p)
		}
	}
	if len(out) > serpMaxResults {
		out = out[:serpMaxResults]
	}
	return out, nil
}

func fptr(v float64) *float64 { return &v }

func gps(lat, lng float64) *models.Coordinates {
	return &models.Coordinates{Lat: lat, Lng: lng}
}

// mockPlaces exercises every coordinate slot and the gazetteer. The
// Diagonal Mar and Poblenou entries sit close to the default anchor so
// short time buckets have candidates.
var mockPlaces = map[mockSet][]Place{
	mockCafes: {
		{Title: "Café Central Barcelona", Type: "Coffee shop", Rating: fptr(4.2), Reviews: "156", PriceText: "€",
			Address: "Carrer del Pi, 13", GPS: gps(41.3851, 2.1734), PlaceID: "mock-cafe-central", OpenState: "Open now"},
		{Title: "Federal Café Sant Antoni", Type: "Café", Rating: fptr(4.5), Reviews: "289", PriceText: "€€",
			Address: "Carrer del Parlament, 39", GPS: gps(41.3756, 2.1665), PlaceID: "mock-federal", OpenState: "Open now"},
		{Title: "Cafeteria Fòrum", Type: "Coffee shop", Rating: fptr(4.4), Reviews: "212 reviews", PriceText: "€",
			Address: "Rambla del Prim, 2", Lat: fptr(41.4102), Lng: fptr(2.2165), PlaceID: "mock-cafeteria-forum", OpenState: "Open now"},
		{Title: "Starbucks Diagonal Mar", Type: "Coffee shop", Rating: fptr(3.9), Reviews: "840", PriceText: "€€",
			Address: "Avinguda Diagonal, 3", Position: gps(41.4106, 2.2160), PlaceID: "mock-starbucks-dm", OpenState: "Open now"},
	},
	mockParks: {
		{Title: "Parc Diagonal Mar", Type: "Park", Rating: fptr(4.4), Reviews: "5,120",
			Description: "Quiet lakeside park with sculptures", PlaceID: "mock-parc-dm", OpenState: "Always open"},
		{Title: "Parc Lineal Garcia Fària", Type: "Park", Rating: fptr(4.5), Reviews: "1,050",
			GPS: gps(41.4046, 2.2137), PlaceID: "mock-garcia-faria", OpenState: "Always open"},
		{Title: "Parc del Centre del Poblenou", Type: "Park", Rating: fptr(4.3), Reviews: "3,004",
			GPS: gps(41.4069, 2.2014), PlaceID: "mock-centre-poblenou", OpenState: "Always open"},
	},
	mockShopping: {
		{Title: "Mercat de Sant Josep de la Boqueria", Type: "Market", Rating: fptr(4.1), Reviews: "2,431",
			Address: "La Rambla, 91", GPS: gps(41.3816, 2.1722), PlaceID: "mock-boqueria", OpenState: "Open now"},
		{Title: "Mercat del Poblenou", Type: "Market", Rating: fptr(4.3), Reviews: "980",
			Address: "Carrer de Puigcerdà, 212", PlaceID: "mock-mercat-poblenou", OpenState: "Closed · Opens 8 AM"},
		{Title: "Centre Comercial Diagonal Mar", Type: "Shopping mall", Rating: fptr(4.2), Reviews: "21,870", PriceText: "€€",
			Address: "Avinguda Diagonal, 3", GPS: gps(41.4106, 2.2169), PlaceID: "mock-cc-diagonal-mar", OpenState: "Open now"},
	},
	mockFood: {
		{Title: "Cal Pep", Type: "Tapas restaurant", Rating: fptr(4.3), Reviews: "187", PriceText: "€€",
			Address: "Plaça de les Olles, 8", GPS: gps(41.3839, 2.1823), PlaceID: "mock-cal-pep", OpenState: "Open now"},
		{Title: "Xiringuito Escribà", Type: "Seafood restaurant", Rating: fptr(4.2), Reviews: "4,310", PriceText: "€€€",
			Address: "Litoral Mar, 42", GPS: gps(41.3946, 2.2079), PlaceID: "mock-escriba", OpenState: "Open now"},
	},
	mockActivity: {
		{Title: "Museu Blau", Type: "Natural history museum", Rating: fptr(4.5), Reviews: "6,912", PriceText: "€€",
			Address: "Plaça Leonardo da Vinci, 4-5", GPS: gps(41.4111, 2.2213), PlaceID: "mock-museu-blau", OpenState: "Open now"},
	},
	mockDefault: {
		{Title: "Plaça Reial", Type: "Public square", Rating: fptr(4.0), Reviews: "1,024",
			PlaceID: "mock-placa-reial", OpenState: "Always open"},
		{Title: "Museu Blau", Type: "Natural history museum", Rating: fptr(4.5), Reviews: "6,912", PriceText: "€€",
			Address: "Plaça Leonardo da Vinci, 4-5", GPS: gps(41.4111, 2.2213), PlaceID: "mock-museu-blau", OpenState: "Open now"},
	},
}
