package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "sectracker/pkg/domain-errors"
)

// =============================================================================
// LLM Client Test Suite
// =============================================================================

type fakeCompletion struct {
	content      string
	status       int
	promptTokens int
	outputTokens int
	lastBody     map[string]any
}

func (f *fakeCompletion) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)
		if f.status != 0 && f.status != http.StatusOK {
			w.WriteHeader(f.status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]any{"content": f.content}},
			},
			"usage": map[string]any{
				"prompt_tokens":     f.promptTokens,
				"completion_tokens": f.outputTokens,
			},
		})
	})
}

type LLMClientSuite struct {
	suite.Suite
	upstream *fakeCompletion
	server   *httptest.Server
	client   *Client
}

func TestLLMClientSuite(t *testing.T) {
	suite.Run(t, new(LLMClientSuite))
}

func (s *LLMClientSuite) SetupTest() {
	s.upstream = &fakeCompletion{
		content:      "Meta Platforms, Inc.",
		promptTokens: 120,
		outputTokens: 8,
	}
	s.server = httptest.NewServer(s.upstream.handler())
	s.T().Cleanup(s.server.Close)
	s.client = NewClient(s.server.URL, "test-key", "anthropic/claude-3-haiku",
		WithHTTPClient(s.server.Client()))
}

func (s *LLMClientSuite) TestCompleteTracksUsage() {
	resp, err := s.client.Complete(context.Background(), Request{Prompt: "who files as WhatsApp?"})
	s.Require().NoError(err)

	s.Equal("Meta Platforms, Inc.", resp.Content)
	s.Equal(128, resp.TotalTokens)
	s.Equal("anthropic/claude-3-haiku", resp.Model)
	s.Len(resp.RequestID, 8)
	// haiku: 120/1e6*0.25 + 8/1e6*1.25
	s.InDelta(0.00004, resp.CostUSD, 1e-9)

	stats := s.client.Stats()
	s.Equal(1, stats.Requests)
	s.Equal(128, stats.TotalTokens)
}

func (s *LLMClientSuite) TestSystemPromptIsSent() {
	_, err := s.client.Complete(context.Background(), Request{
		Prompt:       "extract",
		SystemPrompt: "you extract JSON",
	})
	s.Require().NoError(err)

	messages := s.upstream.lastBody["messages"].([]any)
	s.Require().Len(messages, 2)
	s.Equal("system", messages[0].(map[string]any)["role"])
}

func (s *LLMClientSuite) TestProviderOutagePropagates() {
	s.upstream.status = http.StatusTooManyRequests
	_, err := s.client.Complete(context.Background(), Request{Prompt: "x"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Zero(s.client.Stats().Requests, "failed requests are not logged as usage")
}

// =============================================================================
// IdentifyCompany Tests
// =============================================================================

func (s *LLMClientSuite) TestIdentifyCompanyReturnsGuess() {
	name, err := s.client.IdentifyCompany(context.Background(), "whatsapp")
	s.Require().NoError(err)
	s.Equal("Meta Platforms, Inc.", name)
}

func (s *LLMClientSuite) TestIdentifyCompanyUnknownIsMiss() {
	for _, answer := range []string{"UNKNOWN", "unknown", "  Unknown  ", ""} {
		s.upstream.content = answer
		name, err := s.client.IdentifyCompany(context.Background(), "zzz")
		s.Require().NoError(err)
		s.Empty(name, "answer %q must be a miss", answer)
	}
}

func TestEstimateCost(t *testing.T) {
	if got := estimateCost("nonexistent/model", 1000, 1000); got != 0 {
		t.Fatalf("unknown model must cost zero, got %f", got)
	}
	got := estimateCost("openai/gpt-4o", 1_000_000, 0)
	if got != 2.5 {
		t.Fatalf("expected 2.5, got %f", got)
	}
}
