// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/geo"
	"github.com/tomtom215/sidequest/internal/logging"
	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/validation"
)

// Stage is one step of the recommendation pipeline. Run reads and updates
// the shared State; it must honour ctx and return once it is done.
type Stage interface {
	Name() string
	Run(ctx context.Context, st *State) error
}

type registeredStage struct {
	stage    Stage
	optional bool
}

// Engine runs the registered stages in order for each request.
// It is safe for concurrent use once stages are registered.
type Engine struct {
	config   *Config
	contexts *ContextProvider
	logger   zerolog.Logger

	stages  []registeredStage
	stageMu sync.RWMutex
}

// NewEngine creates an engine with no stages.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, contexts *ContextProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if contexts == nil {
		return nil, fmt.Errorf("context provider is required")
	}

	return &Engine{
		config:   cfg,
		contexts: contexts,
		logger:   logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// RegisterStage appends a stage whose failure fails the request.
func (e *Engine) RegisterStage(s Stage) {
	e.register(s, false)
}

// RegisterOptionalStage appends a stage whose failure is logged and
// absorbed; the pipeline continues with the state as the stage left it.
func (e *Engine) RegisterOptionalStage(s Stage) {
	e.register(s, true)
}

func (e *Engine) register(s Stage, optional bool) {
	e.stageMu.Lock()
	defer e.stageMu.Unlock()

	e.stages = append(e.stages, registeredStage{stage: s, optional: optional})
	e.logger.Info().
		Str("stage", s.Name()).
		Bool("optional", optional).
		Msg("registered stage")
}

// StageNames lists registered stages in execution order.
func (e *Engine) StageNames() []string {
	e.stageMu.RLock()
	defer e.stageMu.RUnlock()

	names := make([]string, len(e.stages))
	for i, rs := range e.stages {
		names[i] = rs.stage.Name()
	}
	return names
}

// TopN returns the configured result size.
func (e *Engine) TopN() int {
	return e.config.TopN
}

// DefaultContext returns the anchor used when a request has no override.
func (e *Engine) DefaultContext() models.Context {
	return e.contexts.Default()
}

// Options carries per-request identifiers.
type Options struct {
	RequestID string
	SessionID string
}

// Recommend validates req, runs every stage and assembles the response.
// Invalid input is rejected before any stage runs.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req models.RecommendRequest, opts Options) (*models.RecommendResponse, error) {
	prefs, err := e.prepare(&req)
	if err != nil {
		metrics.PipelineRequests.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	if opts.SessionID == "" {
		opts.SessionID = NewSessionID(time.Now())
	}
	if opts.RequestID == "" {
		opts.RequestID = logging.RequestIDFromContext(ctx)
	}

	st := NewState(opts.RequestID, opts.SessionID, e.contexts.Build(req.ContextOverride), prefs, e.config.TopN)
	ctx = logging.ContextWithSessionID(ctx, st.SessionID)
	logger := e.logger.With().
		Str("request_id", st.RequestID).
		Str("session_id", st.SessionID).
		Str("time_bucket", string(prefs.TimeBucket)).
		Logger()
	logger.Debug().Msg("processing recommendation request")

	if err := e.runStages(ctx, st, logger); err != nil {
		metrics.PipelineRequests.WithLabelValues("internal_error").Inc()
		return nil, err
	}

	e.finalize(st)
	resp := e.buildResponse(st)
	metrics.PipelineRequests.WithLabelValues("ok").Inc()

	logger.Info().
		Int("items", len(resp.Items)).
		Bool("fallback_used", resp.Meta.FallbackUsed).
		Bool("llm_evaluated", resp.Meta.LLMEvaluated).
		Int64("latency_ms", resp.Meta.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepare validates the request and canonicalises preferences.
func (e *Engine) prepare(req *models.RecommendRequest) (models.Preferences, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return models.Preferences{}, &Error{Code: CodeInvalidInput, Op: "recommend.validate", Err: verr}
	}

	prefs := req.Preferences
	bucket, err := models.ParseTimeBucket(string(prefs.TimeBucket))
	if err != nil {
		return models.Preferences{}, &Error{Code: CodeInvalidInput, Op: "recommend.validate", Err: err}
	}
	prefs.TimeBucket = bucket
	if prefs.TravelMode == "" {
		prefs.TravelMode = models.TravelWalking
	}
	prefs.Themes = dedupeThemes(prefs.Themes)
	return prefs, nil
}

func dedupeThemes(in []models.Theme) []models.Theme {
	out := make([]models.Theme, 0, len(in))
	seen := make(map[models.Theme]bool, len(in))
	for _, t := range in {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *Engine) runStages(ctx context.Context, st *State, logger zerolog.Logger) error {
	e.stageMu.RLock()
	stages := e.stages
	e.stageMu.RUnlock()

	for _, rs := range stages {
		name := rs.stage.Name()
		start := time.Now()

		stageCtx, cancel := context.WithTimeout(ctx, e.config.StageTimeout)
		err := rs.stage.Run(stageCtx, st)
		cancel()
		metrics.RecordStage(name, time.Since(start))

		if err == nil {
			continue
		}
		if rs.optional {
			logger.Warn().Err(err).Str("stage", name).Str("code", string(CodeOf(err))).Msg("optional stage failed, continuing")
			continue
		}
		logger.Error().Err(err).Str("stage", name).Msg("stage failed")
		return Wrap(name, err)
	}
	return nil
}

// finalize enforces the response invariants: at most TopN items, each
// with a category, budget hint, direction link and reason.
func (e *Engine) finalize(st *State) {
	if len(st.Results) > st.TopN {
		st.Results = st.Results[:st.TopN]
	}
	for i := range st.Results {
		it := &st.Results[i]
		if !it.Category.Valid() {
			it.Category = models.CategoryOther
		}
		if it.PriceLevel == "" {
			it.PriceLevel = models.PriceUnknown
		}
		if it.BudgetHint == "" {
			it.BudgetHint = it.PriceLevel
		}
		if it.DirectionsLink == "" {
			it.DirectionsLink = geo.DirectionsLink(st.Context.Coords, it.Coords, it.Name, e.config.City)
		}
		if it.ReasonText == "" {
			it.ReasonText = it.Category.Profile().Label
		}
	}
}

func (e *Engine) buildResponse(st *State) *models.RecommendResponse {
	items := st.Results
	if items == nil {
		items = []models.ActivityItem{}
	}
	return &models.RecommendResponse{
		SessionID: st.SessionID,
		Context:   st.Context,
		Items:     items,
		Meta: models.RecommendMeta{
			LatencyMS:     time.Since(st.Started).Milliseconds(),
			SourceStats:   st.SourceStats,
			FallbackUsed:  st.FallbackUsed,
			LLMEvaluated:  st.LLMEvaluated,
			LLMEvaluation: st.LLMEvaluation,
			ProviderError: st.ProviderFailed,
		},
	}
}
