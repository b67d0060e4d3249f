// Package llm is the centralized generative-model client: one place that
// talks to the OpenAI-compatible completion API and accounts for every token
// spent doing it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"sectracker/internal/llm/metrics"
	dErrors "sectracker/pkg/domain-errors"
)

const tracerName = "sectracker/internal/llm"

// Request is a single-turn completion request.
type Request struct {
	Prompt       string
	SystemPrompt string
	Model        string // empty uses the client default
	MaxTokens    int
	Metadata     map[string]string
}

// Response carries the completion plus full usage accounting.
type Response struct {
	RequestID    string            `json:"request_id"`
	Model        string            `json:"model"`
	Content      string            `json:"content"`
	InputTokens  int               `json:"input_tokens"`
	OutputTokens int               `json:"output_tokens"`
	TotalTokens  int               `json:"total_tokens"`
	CostUSD      float64           `json:"cost_usd"`
	LatencyMS    float64           `json:"latency_ms"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Stats aggregates session usage across all requests.
type Stats struct {
	Requests     int     `json:"requests"`
	TotalTokens  int     `json:"total_tokens"`
	TotalCostUSD float64 `json:"total_cost_usd"`
}

// Client calls an OpenAI-compatible chat-completions endpoint. Safe for
// concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	http         *http.Client
	logger       *slog.Logger
	metrics      *metrics.Metrics

	mu  sync.Mutex
	log []Response
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient builds a completion client.
func NewClient(baseURL, apiKey, defaultModel string, opts ...Option) *Client {
	c := &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		defaultModel: defaultModel,
		http:         &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete sends one completion request with full tracking. Transport and
// provider failures surface as CodeUnavailable errors; they are never folded
// into an empty answer.
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	requestID := uuid.NewString()[:8]
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, "llm.Client.Complete")
	span.SetAttributes(
		attribute.String("llm.model", model),
		attribute.String("llm.request_id", requestID),
		attribute.Int("llm.prompt_len", len(req.Prompt)),
	)
	defer span.End()

	if c.logger != nil {
		c.logger.InfoContext(ctx, "llm request",
			"request_id", requestID,
			"model", model,
			"prompt_len", len(req.Prompt),
			"metadata", req.Metadata,
		)
	}

	var messages []chatMessage
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload, err := json.Marshal(chatRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("encode completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.ObserveRequest(model, "error", 0, 0, 0, elapsed)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "completion provider unreachable")
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		err := dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("completion provider returned status %d", httpResp.StatusCode))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.metrics.ObserveRequest(model, "error", 0, 0, 0, elapsed)
		return nil, err
	}

	var body chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&body); err != nil {
		c.metrics.ObserveRequest(model, "error", 0, 0, 0, elapsed)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "completion provider returned malformed response")
	}
	var content string
	if len(body.Choices) > 0 {
		content = body.Choices[0].Message.Content
	}

	cost := estimateCost(model, body.Usage.PromptTokens, body.Usage.CompletionTokens)
	resp := &Response{
		RequestID:    requestID,
		Model:        model,
		Content:      content,
		InputTokens:  body.Usage.PromptTokens,
		OutputTokens: body.Usage.CompletionTokens,
		TotalTokens:  body.Usage.PromptTokens + body.Usage.CompletionTokens,
		CostUSD:      cost,
		LatencyMS:    float64(elapsed.Milliseconds()),
		Metadata:     req.Metadata,
	}

	c.mu.Lock()
	c.log = append(c.log, *resp)
	c.mu.Unlock()

	c.metrics.ObserveRequest(model, "ok", resp.InputTokens, resp.OutputTokens, cost, elapsed)
	span.SetAttributes(
		attribute.Int("llm.total_tokens", resp.TotalTokens),
		attribute.Float64("llm.cost_usd", cost),
	)

	if c.logger != nil {
		c.logger.InfoContext(ctx, "llm response",
			"request_id", requestID,
			"total_tokens", resp.TotalTokens,
			"cost_usd", cost,
			"latency_ms", resp.LatencyMS,
		)
	}
	return resp, nil
}

// Stats returns aggregate session usage.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Stats
	s.Requests = len(c.log)
	for _, r := range c.log {
		s.TotalTokens += r.TotalTokens
		s.TotalCostUSD += r.CostUSD
	}
	return s
}

// Log returns a copy of the per-request usage log.
func (c *Client) Log() []Response {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Response, len(c.log))
	copy(out, c.log)
	return out
}
