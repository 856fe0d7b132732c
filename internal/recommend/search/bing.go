// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

const (
	bingMaxResults = 10
	bingMarket     = "es-ES"
)

// Bing queries the Bing Web Search v7 API. Web pages carry no position;
// place entities in the same answer carry a geo point.
type Bing struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBing creates a Bing provider.
func NewBing(baseURL, apiKey string, client *http.Client) *Bing {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Bing{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Name implements Provider.
func (b *Bing) Name() string { return string(models.SourceBing) }

// Target implements Provider.
func (b *Bing) Target() recommend.SearchTarget { return recommend.TargetWeb }

// Search implements Provider.
func (b *Bing) Search(ctx context.Context, q Query) ([]Place, error) {
	params := url.Values{}
	params.Set("q", strings.TrimSpace(q.Text+" "+q.Location))
	params.Set("count", strconv.Itoa(bingMaxResults))
	params.Set("mkt", bingMarket)
	if lang, _, _ := strings.Cut(q.Locale, "-"); lang != "" {
		params.Set("setLang", lang)
	}

	header := http.Header{}
	header.Set("Ocp-Apim-Subscription-Key", b.apiKey)

	var resp bingResponse
	if err := GetJSON(ctx, b.client, b.baseURL+"/v7.0/search?"+params.Encode(), header, "bing.search", &resp); err != nil {
		return nil, err
	}

	places := make([]Place, 0, bingMaxResults)
	for i := range resp.Places.Value {
		if len(places) == bingMaxResults {
			break
		}
		places = append(places, resp.Places.Value[i].place())
	}
	for _, page := range resp.WebPages.Value {
		if len(places) == bingMaxResults {
			break
		}
		places = append(places, Place{
			Source:      models.SourceBing,
			Title:       page.Name,
			URL:         page.URL,
			Snippet:     page.Snippet,
			Description: page.Snippet,
		})
	}
	return places, nil
}

type bingResponse struct {
	WebPages struct {
		Value []bingWebPage `json:"value"`
	} `json:"webPages"`
	Places struct {
		Value []bingPlace `json:"value"`
	} `json:"places"`
}

type bingWebPage struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type bingPlace struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Address struct {
		StreetAddress   string `json:"streetAddress"`
		AddressLocality string `json:"addressLocality"`
	} `json:"address"`
	Geo *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geo"`
	EntityPresentationInfo struct {
		EntityTypeHints []string `json:"entityTypeHints"`
	} `json:"entityPresentationInfo"`
}

func (p *bingPlace) place() Place {
	out := Place{
		Source: models.SourceBing,
		Title:  p.Name,
		URL:    p.URL,
		Type:   strings.Join(p.EntityPresentationInfo.EntityTypeHints, " "),
	}
	addr := strings.TrimSpace(p.Address.StreetAddress)
	if p.Address.AddressLocality != "" {
		addr = strings.TrimSpace(addr + ", " + p.Address.AddressLocality)
		addr = strings.TrimPrefix(addr, ", ")
	}
	out.Address = addr
	if p.Geo != nil {
		out.Position = &models.Coordinates{Lat: p.Geo.Latitude, Lng: p.Geo.Longitude}
	}
	return out
}
