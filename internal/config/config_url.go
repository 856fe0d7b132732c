// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

var (
	httpSchemes = []string{"http", "https"}
	natsSchemes = []string{"nats", "tls", "ws", "wss"}
)

// validateHTTPURL checks an upstream base URL. Provider clients append
// their own paths and query, so only a trailing slash is allowed after the
// host.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := parseServiceURL(rawURL, httpSchemes)
	if err != nil {
		return fmt.Errorf("%s: %w", fieldName, err)
	}
	if strings.Trim(u.Path, "/") != "" {
		return fmt.Errorf("%s should be a base URL, remove path %q", fieldName, u.Path)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove ?%s", fieldName, u.RawQuery)
	}
	return nil
}

// validateNATSURL checks the event bus server URL, e.g. nats://nats:4222.
func validateNATSURL(rawURL string) error {
	_, err := parseServiceURL(rawURL, natsSchemes)
	return err
}

func parseServiceURL(rawURL string, schemes []string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return nil, fmt.Errorf("scheme must be one of %s, got %q", strings.Join(schemes, ", "), u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	return u, nil
}
