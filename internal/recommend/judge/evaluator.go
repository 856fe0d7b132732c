// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package judge

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/recommend/timefit"
)

// StageName is the pipeline name of the evaluator.
const StageName = "evaluate"

// Evaluator is the optional judge re-ranking stage. Register it with
// RegisterOptionalStage: its errors leave the ranker's selection in place.
type Evaluator struct {
	judge   Judge
	timeout time.Duration
	logger  zerolog.Logger
}

// NewEvaluator creates the stage. A nil judge disables it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEvaluator(j Judge, timeout time.Duration, logger zerolog.Logger) *Evaluator {
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Evaluator{
		judge:   j,
		timeout: timeout,
		logger:  logger.With().Str("component", "evaluator").Logger(),
	}
}

// Name implements recommend.Stage.
func (e *Evaluator) Name() string { return StageName }

// Enabled reports whether a judge is configured.
func (e *Evaluator) Enabled() bool { return e.judge != nil }

// Run asks the judge to choose from st.Pool. State is only modified once
// a valid evaluation has been received.
func (e *Evaluator) Run(ctx context.Context, st *recommend.State) error {
	if e.judge == nil {
		metrics.RecordJudge("evaluate", "disabled", 0)
		return nil
	}
	if len(st.Pool) == 0 {
		return nil
	}

	n := st.TopN
	if n > len(st.Pool) {
		n = len(st.Pool)
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	eval, err := e.judge.Evaluate(callCtx, CandidatesFrom(st.Pool), ConstraintsFrom(st, n))
	if err != nil {
		return recommend.Wrap("judge.evaluate", err)
	}
	if err := eval.Validate(len(st.Pool), n); err != nil {
		metrics.RecordJudge("evaluate", "malformed", 0)
		return recommend.Errorf(recommend.CodeProviderError, "judge.evaluate", "%w", err)
	}

	results, dropped := Apply(st, eval, st.TopN)
	st.Results = results
	st.LLMEvaluated = true
	st.LLMEvaluation = eval.Summary

	e.logger.Debug().
		Str("request_id", st.RequestID).
		Int("selected", len(eval.Selections)).
		Int("dropped", dropped).
		Msg("judge evaluation applied")
	return nil
}

// Apply turns a validated evaluation into the final selection: judge
// picks sorted by judge score, minus any that break the strict time
// filter, backfilled in ranker order from st.Candidates up to target items.
// It returns the selection and the number of dropped picks.
func Apply(st *recommend.State, eval *Evaluation, target int) ([]models.ActivityItem, int) {
	picked := make([]models.ActivityItem, 0, target)
	ids := make(map[string]bool, target)
	dropped := 0

	for _, sel := range eval.Selections {
		if sel.Index < 0 || sel.Index >= len(st.Pool) {
			dropped++
			continue
		}
		item := st.Pool[sel.Index].Clone()
		if timefit.Exceeds(&item, st.Prefs.TimeBucket) {
			dropped++
			continue
		}
		score := sel.Score
		item.LLMScore = &score
		item.LLMReason = sel.Reason
		if sel.Pitch != "" {
			item.ReasonText = sel.Pitch
		}
		picked = append(picked, item)
		ids[item.ID] = true
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return *picked[i].LLMScore > *picked[j].LLMScore
	})

	for i := range st.Candidates {
		if len(picked) >= target {
			break
		}
		c := &st.Candidates[i]
		if ids[c.ID] || timefit.Exceeds(c, st.Prefs.TimeBucket) {
			continue
		}
		ids[c.ID] = true
		picked = append(picked, c.Clone())
	}
	return picked, dropped
}
