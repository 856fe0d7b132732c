// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"reflect"
	"testing"

	"github.com/tomtom215/sidequest/internal/models"
)

func TestClassifierCategory(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	tests := []struct {
		text string
		want models.Category
	}{
		{"Café Central Barcelona Coffee shop", models.CategoryCafe},
		{"Bar Celta Pulperia", models.CategoryRestaurant},
		{"Barcelona Design Store", models.CategoryOther},
		{"Parc de la Ciutadella", models.CategoryPark},
		{"Plaça Reial Public square", models.CategoryPark},
		{"Mirador de Montjuïc", models.CategoryViewpoint},
		{"Mercat de Santa Caterina", models.CategoryMarket},
		{"Los Feliz Vintage", models.CategoryShopping},
		{"Museu Picasso", models.CategoryMuseum},
		{"Catedral de Barcelona", models.CategoryLandmark},
		{"Cal Pep Tapas restaurant", models.CategoryRestaurant},
		{"Cafe in the park", models.CategoryCafe},
		{"", models.CategoryOther},
	}

	for _, tt := range tests {
		if got := c.Category(tt.text); got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestClassifierChain(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	tests := []struct {
		name string
		want string
	}{
		{"Starbucks Diagonal Mar", "starbucks"},
		{"McDonald's Rambla", "mcdonald"},
		{"H&M Portal de l'Àngel", "h&m"},
		{"100 Montaditos Born", "100 montaditos"},
		{"Café Cometa", ""},
	}
	for _, tt := range tests {
		if got := c.Chain(tt.name); got != tt.want {
			t.Errorf("Chain(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassifierThemes(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	tests := []struct {
		text     string
		category models.Category
		want     []models.Theme
	}{
		{"Quiet cafe", models.CategoryCafe, []models.Theme{models.ThemeRelax, models.ThemeFood}},
		{"Museu Blau", models.CategoryMuseum, []models.Theme{models.ThemeActivity}},
		{"Mercat del Poblenou", models.CategoryMarket, []models.Theme{models.ThemeShopping}},
		{"Somewhere", models.CategoryOther, []models.Theme{}},
	}
	for _, tt := range tests {
		if got := c.Themes(tt.text, tt.category); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Themes(%q, %s) = %v, want %v", tt.text, tt.category, got, tt.want)
		}
	}
}

func TestClassifierPrice(t *testing.T) {
	t.Parallel()

	c := NewClassifier()
	tests := []struct {
		price, desc string
		want        models.PriceLevel
	}{
		{"€", "", models.PriceLow},
		{"€€", "", models.PriceMid},
		{"$$$", "", models.PriceHigh},
		{"€€€€", "", models.PriceHigh},
		{"", "cheap eats by the beach", models.PriceLow},
		{"", "Moderate prices", models.PriceMid},
		{"", "upscale tasting menu", models.PriceHigh},
		{"€", "upscale", models.PriceLow},
		{"", "", models.PriceUnknown},
	}
	for _, tt := range tests {
		if got := c.Price(tt.price, tt.desc); got != tt.want {
			t.Errorf("Price(%q, %q) = %q, want %q", tt.price, tt.desc, got, tt.want)
		}
	}
}

func TestReviewCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text   string
		want   int
		wantOK bool
	}{
		{"156", 156, true},
		{"2,431", 2431, true},
		{"(1.024)", 1024, true},
		{"212 reviews", 212, true},
		{"no reviews", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ReviewCount(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ReviewCount(%q) = %d, %v; want %d, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestOpenNow(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	tests := []struct {
		state string
		want  *bool
	}{
		{"Open now", &yes},
		{"Always open", &yes},
		{"Abierto 24 horas", &yes},
		{"Closed · Opens 9 AM", &no},
		{"Cerrado", &no},
		{"Temporarily unavailable", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := OpenNow(tt.state)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("OpenNow(%q) = %v, want nil", tt.state, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("OpenNow(%q) = %v, want %v", tt.state, got, *tt.want)
		}
	}
}
