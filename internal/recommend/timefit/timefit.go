// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

// Package timefit estimates how long each candidate takes and scores how
// well that fits the traveler's time bucket.
//
// The score is soft: items are annotated, never removed. The ranker
// applies the hard exclusion for the strict bucket using Exceeds.
package timefit

import (
	"context"

	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

// StageName is the pipeline name of the classifier.
const StageName = "timefit"

const (
	// MaxScore is awarded when the total time fits the bucket.
	MaxScore = 20.0

	// PenaltyPerMinute is subtracted per minute of overage.
	PenaltyPerMinute = 2.0

	// StrictOverage is how far past the strict bound an item may run
	// before the linear penalty gives way to StrictScore.
	StrictOverage = 10

	// StrictScore is the near-zero score for items far over the strict bound.
	StrictScore = 2.0
)

// TotalMinutes returns travel + wait + stay for item using mode's travel
// estimate. Walking is used when mode is empty.
func TotalMinutes(item *models.ActivityItem, mode models.TravelMode) (travel, total int) {
	travel = item.Travel.For(mode)
	return travel, travel + item.ExpectedWaitMin + item.ExpectedDurationMin
}

// Score rates total minutes against bucket in [0, MaxScore].
func Score(total int, bucket models.TimeBucket) float64 {
	bound, ok := bucket.Bound()
	if !ok || total <= bound {
		return MaxScore
	}
	over := total - bound
	if bucket.IsStrict() && over > StrictOverage {
		return StrictScore
	}
	score := MaxScore - PenaltyPerMinute*float64(over)
	if score < 0 {
		return 0
	}
	return score
}

// Exceeds reports whether item must be hard-excluded: only the strict
// bucket excludes, and it does so for any overage.
func Exceeds(item *models.ActivityItem, bucket models.TimeBucket) bool {
	if !bucket.IsStrict() {
		return false
	}
	bound, _ := bucket.Bound()
	return item.TotalTimeMin > bound
}

// Annotate writes the time fields and the fitness score onto item.
func Annotate(item *models.ActivityItem, bucket models.TimeBucket, mode models.TravelMode) {
	travel, total := TotalMinutes(item, mode)
	item.TravelTimeMin = travel
	item.TotalTimeMin = total
	item.TimeFitnessScore = Score(total, bucket)
}

// Classifier is the time-fitness stage.
type Classifier struct{}

// NewClassifier returns the stage.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Name implements recommend.Stage.
func (c *Classifier) Name() string { return StageName }

// Run implements recommend.Stage.
func (c *Classifier) Run(_ context.Context, st *recommend.State) error {
	for i := range st.Items {
		Annotate(&st.Items[i], st.Prefs.TimeBucket, st.Prefs.TravelMode)
	}
	return nil
}
