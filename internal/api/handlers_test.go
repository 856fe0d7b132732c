// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/events"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
	"github.com/tomtom215/sidequest/internal/session"
	"github.com/tomtom215/sidequest/internal/validation"
)

// =====================================================
// Test doubles
// =====================================================

type fakeRecommender struct {
	mu       sync.Mutex
	err      error
	requests []models.RecommendRequest
	opts     []recommend.Options
}

func (f *fakeRecommender) Recommend(_ context.Context, req models.RecommendRequest, opts recommend.Options) (*models.RecommendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "session_20261016_101500_3f2a9c1d"
	}
	return &models.RecommendResponse{
		SessionID: sessionID,
		Context:   testContext(),
		Items: []models.ActivityItem{
			{ID: "serpapi:1", Name: "Cafe del Mar", Category: models.CategoryCafe, Source: models.SourceSerpAPI},
		},
		Meta: models.RecommendMeta{SourceStats: map[string]int{"serpapi": 1}},
	}, nil
}

func (f *fakeRecommender) DefaultContext() models.Context {
	return testContext()
}

func (f *fakeRecommender) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*events.RecommendationServed
}

func (p *fakePublisher) PublishAsync(_ context.Context, ev *events.RecommendationServed) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *fakePublisher) published() []*events.RecommendationServed {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*events.RecommendationServed(nil), p.events...)
}

type fakeBreaker struct {
	name, state string
}

func (b fakeBreaker) Name() string         { return b.name }
func (b fakeBreaker) BreakerState() string { return b.state }

func testContext() models.Context {
	return models.Context{
		LocationLabel: "CCIB",
		Coords:        models.Coordinates{Lat: 41.4095, Lng: 2.2184},
		Weather:       models.Weather{Condition: "sunny", TempC: 24},
		Language:      "en",
	}
}

type testServer struct {
	handler     http.Handler
	recommender *fakeRecommender
	publisher   *fakePublisher
}

func newTestServer(t *testing.T, mwCfg *ChiMiddlewareConfig, breakers ...BreakerReporter) *testServer {
	t.Helper()
	store := session.NewMemoryStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	ts := &testServer{recommender: &fakeRecommender{}, publisher: &fakePublisher{}}
	h := NewHandler(HandlerConfig{
		Recommender:    ts.recommender,
		Sessions:       session.NewService(store, zerolog.Nop()),
		Events:         ts.publisher,
		Breakers:       breakers,
		Providers:      []string{"serpapi", "duckduckgo"},
		JudgeEnabled:   true,
		Version:        "test",
		RequestTimeout: 5 * time.Second,
	})
	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitDisabled = true
	}
	ts.handler = NewRouter(h, NewChiMiddleware(mwCfg)).SetupChi()
	return ts
}

type envelope struct {
	Status   string           `json:"status"`
	Data     json.RawMessage  `json:"data"`
	Metadata models.Metadata  `json:"metadata"`
	Error    *models.APIError `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
		}
	}
	return w, env
}

const validRecommendBody = `{"preferences":{"time_bucket":"30-60","budget_level":"low","themes":["food"]}}`

// =====================================================
// Recommend
// =====================================================

func TestRecommend_Success(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	w, env := ts.do(t, http.MethodPost, "/api/v1/recommend", validRecommendBody, "X-Request-ID", "req-abc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if env.Status != "success" || env.Error != nil {
		t.Errorf("envelope = %+v", env)
	}
	if w.Header().Get("X-Request-ID") != "req-abc" || env.Metadata.RequestID != "req-abc" {
		t.Errorf("request id header %q metadata %q", w.Header().Get("X-Request-ID"), env.Metadata.RequestID)
	}
	if w.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}

	var resp models.RecommendResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 1 || resp.Items[0].ID != "serpapi:1" {
		t.Errorf("items = %+v", resp.Items)
	}

	if ts.recommender.opts[0].RequestID != "req-abc" || ts.recommender.opts[0].SessionID != "" {
		t.Errorf("options = %+v", ts.recommender.opts[0])
	}
	if got := ts.recommender.requests[0].Preferences.Themes; len(got) != 1 || got[0] != models.ThemeFood {
		t.Errorf("themes = %v", got)
	}

	published := ts.publisher.published()
	if len(published) != 1 || published[0].RequestID != "req-abc" || published[0].SessionID != resp.SessionID {
		t.Errorf("published = %+v", published)
	}
}

func TestRecommend_BadBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"empty", ""},
		{"not json", "time_bucket=30-60"},
		{"unknown field", `{"preferences":{"time_bucket":"30-60"},"user":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil)
			w, env := ts.do(t, http.MethodPost, "/api/v1/recommend", tt.body)
			if w.Code != http.StatusBadRequest || env.Error == nil || env.Error.Code != ErrCodeInvalidInput {
				t.Errorf("status = %d error = %+v", w.Code, env.Error)
			}
			if ts.recommender.calls() != 0 {
				t.Error("recommender called for a bad body")
			}
		})
	}
}

func TestRecommend_ErrorMapping(t *testing.T) {
	t.Parallel()

	verr := validation.ValidateStruct(&models.RecommendRequest{})
	if verr == nil {
		t.Fatal("empty request unexpectedly valid")
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &recommend.Error{Code: recommend.CodeInvalidInput, Op: "recommend.validate", Err: verr}, http.StatusBadRequest, ErrCodeValidation},
		{"invalid input", recommend.Errorf(recommend.CodeInvalidInput, "recommend.validate", "bad"), http.StatusBadRequest, ErrCodeInvalidInput},
		{"timeout", recommend.Errorf(recommend.CodeUpstreamTimeout, "serpapi.search", "deadline"), http.StatusGatewayTimeout, ErrCodeUpstreamTimeout},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeUpstreamTimeout},
		{"provider", recommend.Errorf(recommend.CodeProviderError, "serpapi.search", "502"), http.StatusBadGateway, ErrCodeProviderError},
		{"internal", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil)
			ts.recommender.err = tt.err

			w, env := ts.do(t, http.MethodPost, "/api/v1/recommend", validRecommendBody)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Fatalf("envelope = %+v", env)
			}
			if len(ts.publisher.published()) != 0 {
				t.Error("failed recommendation was published")
			}
		})
	}
}

func TestRecommend_ValidationDetails(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)
	ts.recommender.err = &recommend.Error{
		Code: recommend.CodeInvalidInput,
		Op:   "recommend.validate",
		Err:  validation.ValidateStruct(&models.RecommendRequest{}),
	}

	_, env := ts.do(t, http.MethodPost, "/api/v1/recommend", validRecommendBody)
	if env.Error == nil || len(env.Error.Details) == 0 {
		t.Errorf("validation error without details: %+v", env.Error)
	}
}

// =====================================================
// Health and context
// =====================================================

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		breakers   []BreakerReporter
		wantStatus string
	}{
		{"no breakers", nil, "healthy"},
		{"closed", []BreakerReporter{fakeBreaker{"serpapi", "closed"}}, "healthy"},
		{"one open", []BreakerReporter{fakeBreaker{"serpapi", "closed"}, fakeBreaker{"bing", "open"}}, "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, nil, tt.breakers...)
			w, env := ts.do(t, http.MethodGet, "/api/v1/health", "")
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d", w.Code)
			}
			var health models.HealthResponse
			if err := json.Unmarshal(env.Data, &health); err != nil {
				t.Fatal(err)
			}
			if health.Status != tt.wantStatus || health.Version != "test" || !health.Judge {
				t.Errorf("health = %+v", health)
			}
			if len(health.Breakers) != len(tt.breakers) || len(health.Providers) != 2 {
				t.Errorf("breakers = %v providers = %v", health.Breakers, health.Providers)
			}
		})
	}
}

func TestContext(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	_, env := ts.do(t, http.MethodGet, "/api/v1/context", "")
	var got models.Context
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.LocationLabel != "CCIB" || got.Weather.Condition != "sunny" {
		t.Errorf("context = %+v", got)
	}
}

// =====================================================
// Question sessions
// =====================================================

func decodeView(t *testing.T, env envelope) session.View {
	t.Helper()
	var v session.View
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	return v
}

func answerBody(sessionID, questionID, answer string) string {
	b, _ := json.Marshal(AnswerRequest{SessionID: sessionID, QuestionID: questionID, Answer: answer})
	return string(b)
}

func TestQuestionFlow(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	w, env := ts.do(t, http.MethodPost, "/api/v1/questions/start", `{"budget_level":"low"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", w.Code, w.Body.String())
	}
	view := decodeView(t, env)
	if view.SessionID == "" || view.CurrentQuestion == nil || view.Progress != 0 || view.CanGoBack {
		t.Fatalf("start view = %+v", view)
	}
	id := view.SessionID

	// Answer, step back, answer again.
	first := view.CurrentQuestion.ID
	_, env = ts.do(t, http.MethodPost, "/api/v1/questions/answer", answerBody(id, first, "something quiet"))
	if v := decodeView(t, env); !v.CanGoBack || v.Progress == 0 {
		t.Fatalf("after first answer = %+v", v)
	}
	_, env = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/back", "")
	if v := decodeView(t, env); v.CurrentQuestion == nil || v.CurrentQuestion.ID != first {
		t.Fatalf("after back = %+v", v)
	}

	answers := []string{"tapas and coffee", "about two hours", "by metro please"}
	view = decodeView(t, env)
	for i := 0; !view.IsCompleted; i++ {
		if i >= len(answers) {
			t.Fatalf("session not completed after %d answers", len(answers))
		}
		w, env = ts.do(t, http.MethodPost, "/api/v1/questions/answer", answerBody(id, view.CurrentQuestion.ID, answers[i]))
		if w.Code != http.StatusOK {
			t.Fatalf("answer %d status = %d, body %s", i, w.Code, w.Body.String())
		}
		view = decodeView(t, env)
	}
	if view.Progress != 100 || view.CurrentQuestion != nil {
		t.Errorf("completed view = %+v", view)
	}

	_, env = ts.do(t, http.MethodGet, "/api/v1/questions/"+id, "")
	if v := decodeView(t, env); !v.IsCompleted {
		t.Errorf("GET view = %+v", v)
	}

	w, _ = ts.do(t, http.MethodPost, "/api/v1/questions/"+id+"/recommend",
		`{"context_override":{"location_label":"Sagrada Familia"}}`, "X-Request-ID", "req-q")
	if w.Code != http.StatusOK {
		t.Fatalf("recommend status = %d, body %s", w.Code, w.Body.String())
	}

	req := ts.recommender.requests[0]
	prefs := req.Preferences
	if prefs.BudgetLevel != models.PriceLow || prefs.TimeBucket != models.TimeBucket60To120 || prefs.TravelMode != models.TravelTransit {
		t.Errorf("prefs = %+v", prefs)
	}
	if len(prefs.Themes) == 0 || prefs.Themes[0] != models.ThemeFood {
		t.Errorf("themes = %v", prefs.Themes)
	}
	if !strings.Contains(prefs.NaturalInput, "A: tapas and coffee") {
		t.Errorf("natural input = %q", prefs.NaturalInput)
	}
	if req.ContextOverride == nil || req.ContextOverride.LocationLabel != "Sagrada Familia" {
		t.Errorf("context override = %+v", req.ContextOverride)
	}
	if opts := ts.recommender.opts[0]; opts.SessionID != id || opts.RequestID != "req-q" {
		t.Errorf("options = %+v", opts)
	}
	if published := ts.publisher.published(); len(published) != 1 || published[0].SessionID != id {
		t.Errorf("published = %+v", published)
	}
}

func TestQuestionErrors(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	_, env := ts.do(t, http.MethodPost, "/api/v1/questions/start", "")
	started := decodeView(t, env)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"invalid seed", http.MethodPost, "/api/v1/questions/start", `{"time_bucket":"45"}`, http.StatusBadRequest, ErrCodeValidation},
		{"unknown seed field", http.MethodPost, "/api/v1/questions/start", `{"mood":"happy"}`, http.StatusBadRequest, ErrCodeInvalidInput},
		{"unknown session", http.MethodGet, "/api/v1/questions/nope", "", http.StatusNotFound, ErrCodeNotFound},
		{"back unknown session", http.MethodPost, "/api/v1/questions/nope/back", "", http.StatusNotFound, ErrCodeNotFound},
		{"missing ids", http.MethodPost, "/api/v1/questions/answer", `{"answer":"x"}`, http.StatusBadRequest, ErrCodeInvalidInput},
		{"wrong question", http.MethodPost, "/api/v1/questions/answer", answerBody(started.SessionID, "other", "x"), http.StatusBadRequest, ErrCodeInvalidInput},
		{"empty answer", http.MethodPost, "/api/v1/questions/answer", answerBody(started.SessionID, started.CurrentQuestion.ID, "  "), http.StatusBadRequest, ErrCodeInvalidInput},
		{"recommend before completion", http.MethodPost, "/api/v1/questions/" + started.SessionID + "/recommend", "", http.StatusBadRequest, ErrCodeInvalidInput},
		{"recommend unknown session", http.MethodPost, "/api/v1/questions/nope/recommend", "", http.StatusNotFound, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := ts.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}

	if ts.recommender.calls() != 0 {
		t.Error("recommender called for an incomplete session")
	}
}
