// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID returns "session_YYYYmmdd_HHMMSS_<8 hex>" for t.
func NewSessionID(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return "session_" + t.UTC().Format("20060102_150405") + "_" + suffix
}
