// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// serpMaxResults caps local results taken from one response.
const serpMaxResults = 10

// maxResponseBytes bounds provider response bodies.
const maxResponseBytes = 4 << 20

// SerpAPI queries the google_maps engine of serpapi.com.
type SerpAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewSerpAPI creates a SerpAPI provider. A nil client gets a default one;
// per-call deadlines come from the caller's context.
func NewSerpAPI(baseURL, apiKey string, client *http.Client) *SerpAPI {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SerpAPI{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Name implements Provider.
func (s *SerpAPI) Name() string { return string(models.SourceSerpAPI) }

// Target implements Provider.
func (s *SerpAPI) Target() recommend.SearchTarget { return recommend.TargetMaps }

// Search implements Provider.
func (s *SerpAPI) Search(ctx context.Context, q Query) ([]Place, error) {
	params := url.Values{}
	params.Set("engine", "google_maps")
	params.Set("type", "search")
	params.Set("q", strings.TrimSpace(q.Text+" "+q.Location))
	params.Set("ll", fmt.Sprintf("@%s,%s,%dz",
		strconv.FormatFloat(q.Anchor.Lat, 'f', 6, 64),
		strconv.FormatFloat(q.Anchor.Lng, 'f', 6, 64),
		ZoomForRadius(q.RadiusM)))
	if lang, _, _ := strings.Cut(q.Locale, "-"); lang != "" {
		params.Set("hl", lang)
	}
	params.Set("api_key", s.apiKey)

	var resp serpMapsResponse
	if err := GetJSON(ctx, s.client, s.baseURL+"/search.json?"+params.Encode(), nil, "serpapi.search", &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, recommend.Errorf(recommend.CodeProviderError, "serpapi.search", "%s", resp.Error)
	}

	results := resp.LocalResults
	if len(results) > serpMaxResults {
		results = results[:serpMaxResults]
	}
	places := make([]Place, 0, len(results))
	for i := range results {
		places = append(places, results[i].place())
	}
	return places, nil
}

// ZoomForRadius picks a map zoom level that roughly frames radius metres.
func ZoomForRadius(radius int) int {
	switch {
	case radius <= 800:
		return 16
	case radius <= 1500:
		return 15
	case radius <= 3000:
		return 14
	default:
		return 13
	}
}

type serpMapsResponse struct {
	Error        string            `json:"error"`
	LocalResults []serpLocalResult `json:"local_results"`
}

type serpLocalResult struct {
	Title          string     `json:"title"`
	Type           string     `json:"type"`
	Description    string     `json:"description"`
	Address        string     `json:"address"`
	Rating         *flexFloat `json:"rating"`
	Reviews        flexString `json:"reviews"`
	Price          string     `json:"price"`
	OpenState      string     `json:"open_state"`
	Thumbnail      string     `json:"thumbnail"`
	Website        string     `json:"website"`
	GPSCoordinates *serpGPS   `json:"gps_coordinates"`
	Position       *serpGPS   `json:"position"`
	Lat            *flexFloat `json:"latitude"`
	Lng            *flexFloat `json:"longitude"`
	PlaceID        string     `json:"place_id"`
	DataID         string     `json:"data_id"`
	DataCID        flexString `json:"data_cid"`
}

// serpGPS accepts both latitude/longitude and lat/lng spellings.
type serpGPS struct {
	Latitude  *flexFloat `json:"latitude"`
	Longitude *flexFloat `json:"longitude"`
	Lat       *flexFloat `json:"lat"`
	Lng       *flexFloat `json:"lng"`
}

func (g *serpGPS) coordinates() *models.Coordinates {
	if g == nil {
		return nil
	}
	lat, lng := g.Latitude, g.Longitude
	if lat == nil || lng == nil {
		lat, lng = g.Lat, g.Lng
	}
	if lat == nil || lng == nil {
		return nil
	}
	return &models.Coordinates{Lat: float64(*lat), Lng: float64(*lng)}
}

func (r *serpLocalResult) place() Place {
	p := Place{
		Source:      models.SourceSerpAPI,
		Title:       r.Title,
		Type:        r.Type,
		Description: r.Description,
		Address:     r.Address,
		Reviews:     string(r.Reviews),
		PriceText:   r.Price,
		OpenState:   r.OpenState,
		Thumbnail:   r.Thumbnail,
		URL:         r.Website,
		GPS:         r.GPSCoordinates.coordinates(),
		Position:    r.Position.coordinates(),
		PlaceID:     r.PlaceID,
		DataID:      r.DataID,
		DataCID:     string(r.DataCID),
	}
	if r.Rating != nil {
		v := float64(*r.Rating)
		p.Rating = &v
	}
	if r.Lat != nil && r.Lng != nil {
		lat, lng := float64(*r.Lat), float64(*r.Lng)
		p.Lat, p.Lng = &lat, &lng
	}
	return p
}

// flexFloat decodes a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return fmt.Errorf("flexFloat: %w", err)
	}
	*f = flexFloat(v)
	return nil
}

// flexString decodes a JSON string or number into its text form.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// GetJSON performs a GET and decodes a JSON body into out. Non-2xx answers
// are provider errors; transport deadlines keep their context error so
// callers can classify them as timeouts.
func GetJSON(ctx context.Context, client *http.Client, reqURL string, header http.Header, op string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return recommend.Errorf(recommend.CodeInternal, op, "failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return recommend.Wrap(op, ctx.Err())
		}
		// url.Error repeats the request URL, which may carry a key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return recommend.Errorf(recommend.CodeProviderError, op, "request to %s failed: %w", logging.RedactURL(reqURL), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return recommend.Wrap(op, ctx.Err())
		}
		return recommend.Errorf(recommend.CodeProviderError, op, "failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return recommend.Errorf(recommend.CodeProviderError, op, "unexpected status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return recommend.Errorf(recommend.CodeProviderError, op, "failed to decode response: %w", err)
	}
	return nil
}
