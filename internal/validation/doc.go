// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once with WithRequiredStructEnabled,
// reports field names from json tags, and registers the enum tags used by
// request models:
//
//	timebucket  ≤30 | 30-60 | 60-120 | >120 (and the "<=30" alias)
//	pricelevel  low | mid | high
//	theme       relax | shopping | food | activity
//	travelmode  walking | driving | transit | fastest, or empty
//
// ValidateStruct returns a *RequestValidationError whose ToAPIError produces
// the VALIDATION_ERROR response body used by the API handlers:
//
//	var req models.RecommendRequest
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
