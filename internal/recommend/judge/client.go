// Sidequest - Nearby Activity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sidequest

package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sidequest/internal/breaker"
	"github.com/tomtom215/sidequest/internal/metrics"
	"github.com/tomtom215/sidequest/internal/models"
	"github.com/tomtom215/sidequest/internal/recommend"
)

const (
	chatPath             = "/v1/chat/completions"
	evaluateMaxTokens    = 1500
	summarizeMaxTokens   = 200
	maxChatResponseBytes = 1 << 20
)

// ClientConfig configures an OpenAI-compatible chat client.
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float64
	BreakerTimeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client calls a chat completions endpoint. It implements Judge and
// Summarizer and is safe for concurrent use.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	http        *http.Client
	breaker     *breaker.Breaker
	logger      zerolog.Logger
}

// NewClient creates a judge client. A nil httpClient uses http.DefaultClient;
// per-call deadlines come from the caller's context.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewClient(cfg ClientConfig, httpClient *http.Client, logger zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("judge api key is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("judge model is required")
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid judge base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	return &Client{
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + chatPath,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		http:        httpClient,
		breaker: breaker.New(breaker.Settings{
			Name:    "judge",
			Timeout: cfg.BreakerTimeout,
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
		}),
		logger: logger.With().Str("component", "judge").Logger(),
	}, nil
}

// Evaluate asks the model to pick cons.N candidates.
//
//nolint:gocritic // hugeParam: Constraints passed by value to satisfy Judge
func (c *Client) Evaluate(ctx context.Context, candidates []Candidate, cons Constraints) (*Evaluation, error) {
	start := time.Now()

	eval, err := c.evaluate(ctx, candidates, &cons)
	metrics.RecordJudge("evaluate", outcome(err), time.Since(start))
	return eval, err
}

func (c *Client) evaluate(ctx context.Context, candidates []Candidate, cons *Constraints) (*Evaluation, error) {
	const op = "judge.evaluate"

	prompt, err := evaluationPrompt(candidates, cons)
	if err != nil {
		return nil, recommend.Wrap(op, err)
	}
	content, err := c.complete(ctx, op, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: evaluateSystem},
			{Role: "user", Content: prompt},
		},
		MaxTokens:      evaluateMaxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	eval, err := ParseEvaluation(content, len(candidates), cons.N)
	if err != nil {
		return nil, recommend.Errorf(recommend.CodeProviderError, op, "%w", err)
	}
	return eval, nil
}

// Summarize condenses reviews for place.
func (c *Client) Summarize(ctx context.Context, place string, reviews []string, naturalInput string) (Summary, error) {
	start := time.Now()

	sum, err := c.summarize(ctx, place, reviews, naturalInput)
	metrics.RecordJudge("summarize", outcome(err), time.Since(start))
	return sum, err
}

func (c *Client) summarize(ctx context.Context, place string, reviews []string, naturalInput string) (Summary, error) {
	const op = "judge.summarize"

	if len(reviews) == 0 {
		return Summary{PriceLevel: models.PriceUnknown}, nil
	}
	content, err := c.complete(ctx, op, chatRequest{
		Messages: []chatMessage{
			{Role: "system", Content: summarizeSystem},
			{Role: "user", Content: summaryPrompt(place, reviews, naturalInput)},
		},
		MaxTokens: summarizeMaxTokens,
	})
	if err != nil {
		return Summary{}, err
	}
	sum, err := ParseSummary(content)
	if err != nil {
		return Summary{}, recommend.Errorf(recommend.CodeProviderError, op, "%w", err)
	}
	return sum, nil
}

// complete sends one chat request through the breaker and returns the
// first choice's content.
//
//nolint:gocritic // hugeParam: request is built per call
func (c *Client) complete(ctx context.Context, op string, req chatRequest) (string, error) {
	req.Model = c.model
	req.Temperature = c.temperature

	content, err := breaker.Do(c.breaker, func() (string, error) {
		return c.post(ctx, op, &req)
	})
	if errors.Is(err, breaker.ErrOpen) {
		return "", recommend.Errorf(recommend.CodeProviderError, op, "%w", err)
	}
	if err != nil {
		c.logger.Debug().Err(err).Str("op", op).Msg("judge call failed")
	}
	return content, err
}

func (c *Client) post(ctx context.Context, op string, payload *chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", recommend.Errorf(recommend.CodeInternal, op, "failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", recommend.Errorf(recommend.CodeInternal, op, "failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", recommend.Wrap(op, ctx.Err())
		}
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", recommend.Errorf(recommend.CodeProviderError, op, "request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxChatResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return "", recommend.Wrap(op, ctx.Err())
		}
		return "", recommend.Errorf(recommend.CodeProviderError, op, "failed to read response: %w", err)
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)
	if resp.StatusCode != http.StatusOK {
		if decodeErr == nil && out.Error != nil {
			return "", recommend.Errorf(recommend.CodeProviderError, op, "status %d: %s", resp.StatusCode, out.Error.Type)
		}
		return "", recommend.Errorf(recommend.CodeProviderError, op, "unexpected status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return "", recommend.Errorf(recommend.CodeProviderError, op, "failed to decode response: %w", decodeErr)
	}
	if len(out.Choices) == 0 {
		return "", recommend.Errorf(recommend.CodeProviderError, op, "%w: no choices", ErrMalformed)
	}
	return out.Choices[0].Message.Content, nil
}
