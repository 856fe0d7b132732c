// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

const ddgMaxResults = 10

// DuckDuckGo scrapes the keyless HTML endpoint. It is the web provider
// of last resort when no Bing key is configured.
type DuckDuckGo struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo provider.
func NewDuckDuckGo(baseURL, userAgent string, client *http.Client) *DuckDuckGo {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &DuckDuckGo{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: userAgent,
		client:    client,
	}
}

// Name implements Provider.
func (d *DuckDuckGo) Name() string { return string(models.SourceDuckDuckGo) }

// Target implements Provider.
func (d *DuckDuckGo) Target() recommend.SearchTarget { return recommend.TargetWeb }

// Search implements Provider.
func (d *DuckDuckGo) Search(ctx context.Context, q Query) ([]Place, error) {
	const op = "duckduckgo.search"

	params := url.Values{}
	params.Set("q", strings.TrimSpace(q.Text+" "+q.Location))
	params.Set("kl", "es-es")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/html/?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, recommend.Errorf(recommend.CodeInternal, op, "failed to create request: %w", err)
	}
	if d.userAgent != "" {
		req.Header.Set("User-Agent", d.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, recommend.Wrap(op, ctx.Err())
		}
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, recommend.Errorf(recommend.CodeProviderError, op, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, recommend.Errorf(recommend.CodeProviderError, op, "unexpected status %d", resp.StatusCode)
	}

	places, err := parseDuckDuckGo(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, recommend.Wrap(op, ctx.Err())
		}
		return nil, recommend.Errorf(recommend.CodeProviderError, op, "%w", err)
	}
	return places, nil
}

// parseDuckDuckGo extracts organic results, skipping ads.
func parseDuckDuckGo(r io.Reader) ([]Place, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var places []Place
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.HasClass("result--ad") {
			return true
		}
		link := sel.Find(".result__a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return true
		}
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(sel.Find(".result__snippet").First().Text())

		places = append(places, Place{
			Source:      models.SourceDuckDuckGo,
			Title:       title,
			URL:         resolveDuckDuckGoLink(href),
			Snippet:     snippet,
			Description: snippet,
		})
		return len(places) < ddgMaxResults
	})
	return places, nil
}

// resolveDuckDuckGoLink unwraps the /l/?uddg= redirect used in results.
func resolveDuckDuckGoLink(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
