package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	dErrors "sectracker/pkg/domain-errors"
)

const extractPromptFormat = `%s

Output valid JSON matching this schema:
%s

Text to analyze:
%s

Respond with ONLY valid JSON, no other text.`

// ExtractJSON asks the model to pull structured data out of text following a
// JSON schema sketch. The model response is stripped of code fences before
// parsing; an unparsable answer is an internal error carrying the usage
// response so callers can still account for the spend.
func (c *Client) ExtractJSON(ctx context.Context, text, schema, instructions string, metadata map[string]string) (json.RawMessage, *Response, error) {
	md := map[string]string{"extraction_type": "json"}
	for k, v := range metadata {
		md[k] = v
	}

	response, err := c.Complete(ctx, Request{
		Prompt:   fmt.Sprintf(extractPromptFormat, instructions, schema, text),
		Metadata: md,
	})
	if err != nil {
		return nil, nil, err
	}

	raw := stripCodeFence(response.Content)
	if !json.Valid([]byte(raw)) {
		return nil, response, dErrors.New(dErrors.CodeInternal, "model returned unparsable JSON")
	}
	return json.RawMessage(raw), response, nil
}

// stripCodeFence unwraps a ```json ... ``` fenced answer.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	parts := strings.SplitN(content, "```", 3)
	if len(parts) < 2 {
		return content
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}
