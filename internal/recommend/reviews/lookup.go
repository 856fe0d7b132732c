// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package reviews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tomtom215/sidequest/internal/breaker"
	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/search"
)

const (
	// minSnippetRunes drops one-word reviews such as "Great!".
	minSnippetRunes = 10
	maxPhotos       = 3
)

// PlaceQuery identifies the place to look up.
type PlaceQuery struct {
	Name     string
	Address  string
	Category models.Category
	Location string
	Language string

	// PlaceID skips the maps search when it is a Google place id.
	PlaceID string
}

// Lookup is what a PlaceLookup found. A nil error with no Reviews means
// the place exists but has nothing usable.
type Lookup struct {
	PlaceID string
	Coords  *models.Coordinates
	Photos  []string
	Reviews []string
}

// PlaceLookup finds review snippets for a place.
type PlaceLookup interface {
	FindReviews(ctx context.Context, q PlaceQuery) (*Lookup, error)
}

// SerpAPIConfig configures SerpAPILookup.
type SerpAPIConfig struct {
	BaseURL        string
	APIKey         string
	MaxSnippets    int
	BreakerTimeout time.Duration
}

// SerpAPILookup implements PlaceLookup with the google_maps and
// google_maps_reviews engines of serpapi.com.
type SerpAPILookup struct {
	baseURL     string
	apiKey      string
	maxSnippets int
	client      *http.Client
	breaker     *breaker.Breaker
}

// NewSerpAPILookup creates a lookup client. A nil client uses
// http.DefaultClient; deadlines come from the caller's context.
func NewSerpAPILookup(cfg SerpAPIConfig, client *http.Client) (*SerpAPILookup, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("serpapi key is required for review lookup")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid serpapi base url: %w", err)
	}
	if cfg.MaxSnippets <= 0 {
		cfg.MaxSnippets = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SerpAPILookup{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		maxSnippets: cfg.MaxSnippets,
		client:      client,
		breaker: breaker.New(breaker.Settings{
			Name:    "place_lookup",
			Timeout: cfg.BreakerTimeout,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
	}, nil
}

// FindReviews implements PlaceLookup.
func (s *SerpAPILookup) FindReviews(ctx context.Context, q PlaceQuery) (*Lookup, error) {
	lookup, err := breaker.Do(s.breaker, func() (*Lookup, error) {
		return s.find(ctx, &q)
	})
	if errors.Is(err, breaker.ErrOpen) {
		return nil, recommend.Errorf(recommend.CodeProviderError, "reviews.lookup", "%w", err)
	}
	return lookup, err
}

func (s *SerpAPILookup) find(ctx context.Context, q *PlaceQuery) (*Lookup, error) {
	lookup := &Lookup{PlaceID: q.PlaceID}
	reviewKey := "place_id"

	if lookup.PlaceID == "" {
		params := url.Values{}
		params.Set("engine", "google_maps")
		params.Set("type", "search")
		params.Set("q", SearchText(q))
		s.setCommon(params, q.Language)

		var resp serpPlaceSearch
		if err := search.GetJSON(ctx, s.client, s.baseURL+"/search.json?"+params.Encode(), nil, "reviews.place_search", &resp); err != nil {
			return nil, err
		}
		// SerpAPI reports "no results" as an error field on a 200.
		if resp.Error != "" {
			return lookup, nil
		}
		candidates := resp.LocalResults
		if len(candidates) == 0 && resp.PlaceResults != nil {
			candidates = []serpPlace{*resp.PlaceResults}
		}
		match := bestMatch(q.Name, candidates)
		if match == nil {
			return lookup, nil
		}

		lookup.Coords = match.GPSCoordinates.coordinates()
		lookup.Photos = match.photos()
		switch {
		case match.PlaceID != "":
			lookup.PlaceID = match.PlaceID
		case match.DataID != "":
			lookup.PlaceID = match.DataID
			reviewKey = "data_id"
		default:
			return lookup, nil
		}
	}

	params := url.Values{}
	params.Set("engine", "google_maps_reviews")
	params.Set(reviewKey, lookup.PlaceID)
	params.Set("sort_by", "qualityScore")
	s.setCommon(params, q.Language)

	var resp serpReviews
	if err := search.GetJSON(ctx, s.client, s.baseURL+"/search.json?"+params.Encode(), nil, "reviews.fetch", &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return lookup, nil
	}
	for _, r := range resp.Reviews {
		snippet := strings.TrimSpace(r.Snippet)
		if snippet == "" {
			snippet = strings.TrimSpace(r.ExtractedSnippet.Original)
		}
		if utf8.RuneCountInString(snippet) <= minSnippetRunes {
			continue
		}
		lookup.Reviews = append(lookup.Reviews, snippet)
		if len(lookup.Reviews) == s.maxSnippets {
			break
		}
	}
	return lookup, nil
}

func (s *SerpAPILookup) setCommon(params url.Values, language string) {
	if language != "" {
		params.Set("hl", language)
	}
	params.Set("api_key", s.apiKey)
}

// SearchText builds the maps query for q: the quoted name plus the most
// specific locator available.
func SearchText(q *PlaceQuery) string {
	quoted := `"` + strings.TrimSpace(q.Name) + `"`
	switch {
	case q.Address != "":
		return quoted + " " + q.Address
	case q.Category != "" && q.Category != models.CategoryOther:
		return strings.TrimSpace(quoted + " " + string(q.Category) + " " + q.Location)
	default:
		return strings.TrimSpace(quoted + " " + q.Location)
	}
}

// bestMatch prefers a title that contains the name (or is contained by
// it), then a title sharing a significant word, then the first result.
func bestMatch(name string, places []serpPlace) *serpPlace {
	if len(places) == 0 {
		return nil
	}
	want := geo.Fold(name)
	words := strings.Fields(want)

	var partial *serpPlace
	for i := range places {
		title := geo.Fold(places[i].Title)
		if title == "" {
			continue
		}
		if strings.Contains(title, want) || strings.Contains(want, title) {
			return &places[i]
		}
		if partial == nil {
			for _, w := range words {
				if utf8.RuneCountInString(w) > 3 && strings.Contains(title, w) {
					partial = &places[i]
					break
				}
			}
		}
	}
	if partial != nil {
		return partial
	}
	return &places[0]
}

type serpPlaceSearch struct {
	Error        string      `json:"error"`
	LocalResults []serpPlace `json:"local_results"`
	PlaceResults *serpPlace  `json:"place_results"`
}

type serpPlace struct {
	Title            string   `json:"title"`
	PlaceID          string   `json:"place_id"`
	DataID           string   `json:"data_id"`
	GPSCoordinates   *serpGPS `json:"gps_coordinates"`
	Thumbnail        string   `json:"thumbnail"`
	SerpAPIThumbnail string   `json:"serpapi_thumbnail"`
	Images           []struct {
		Thumbnail string `json:"thumbnail"`
	} `json:"images"`
}

type serpGPS struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (g *serpGPS) coordinates() *models.Coordinates {
	if g == nil || g.Latitude == nil || g.Longitude == nil {
		return nil
	}
	return &models.Coordinates{Lat: *g.Latitude, Lng: *g.Longitude}
}

func (p *serpPlace) photos() []string {
	var out []string
	for _, img := range p.Images {
		if img.Thumbnail == "" {
			continue
		}
		out = append(out, img.Thumbnail)
		if len(out) == maxPhotos {
			return out
		}
	}
	if len(out) > 0 {
		return out
	}
	if p.Thumbnail != "" {
		return []string{p.Thumbnail}
	}
	if p.SerpAPIThumbnail != "" {
		return []string{p.SerpAPIThumbnail}
	}
	return nil
}

type serpReviews struct {
	Error   string `json:"error"`
	Reviews []struct {
		Snippet          string `json:"snippet"`
		ExtractedSnippet struct {
			Original string `json:"original"`
		} `json:"extracted_snippet"`
	} `json:"reviews"`
}
