package llm

import (
	"context"
	"fmt"
	"strings"
)

// unknownEscape is the sentinel the model is told to answer when it cannot
// name the company. It must be treated as a miss, never as a low-confidence
// name.
const unknownEscape = "UNKNOWN"

const identifyPrompt = `The user is searching for a publicly traded US company: %q

What is the official legal name of the company they're looking for, as it would appear in SEC filings?

Consider:
- Brand names vs parent companies (Google -> Alphabet Inc., Facebook/Instagram -> Meta Platforms, Inc.)
- Common abbreviations (AWS -> Amazon.com, Inc.)
- Typos and misspellings
- The company must be publicly traded on a US exchange

Respond with ONLY the company's official SEC filing name, nothing else.
If you cannot determine the company, respond with "UNKNOWN".`

// identifyMaxTokens caps the answer; a filing name fits comfortably.
const identifyMaxTokens = 50

// IdentifyCompany asks the model for the official filing name matching the
// query. Returns "" when the model declines. The answer is a guess: callers
// must verify it against the ticker directory before using it.
func (c *Client) IdentifyCompany(ctx context.Context, query string) (string, error) {
	resp, err := c.Complete(ctx, Request{
		Prompt:    fmt.Sprintf(identifyPrompt, query),
		MaxTokens: identifyMaxTokens,
		Metadata:  map[string]string{"task": "ticker_lookup"},
	})
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(resp.Content)
	if name == "" || strings.EqualFold(name, unknownEscape) {
		return "", nil
	}
	return name, nil
}
