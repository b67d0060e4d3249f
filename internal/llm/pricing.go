package llm

import "math"

// modelPricing is USD per 1M tokens. Update as providers reprice.
type modelPricing struct {
	Input  float64
	Output float64
}

var pricing = map[string]modelPricing{
	"anthropic/claude-3.5-sonnet":            {Input: 3.00, Output: 15.00},
	"anthropic/claude-3-haiku":               {Input: 0.25, Output: 1.25},
	"anthropic/claude-3-opus":                {Input: 15.00, Output: 75.00},
	"openai/gpt-4o":                          {Input: 2.50, Output: 10.00},
	"openai/gpt-4o-mini":                     {Input: 0.15, Output: 0.60},
	"google/gemini-2.0-flash-001":            {Input: 0.10, Output: 0.40},
	"google/gemini-2.0-flash-lite-001":       {Input: 0.075, Output: 0.30},
	"meta-llama/llama-3.3-70b-instruct:free": {Input: 0, Output: 0},
}

// estimateCost computes the USD cost of a request, rounded to micro-dollars.
// Unknown models cost zero rather than failing the request.
func estimateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := pricing[model]
	if !ok {
		return 0
	}
	cost := float64(inputTokens)/1e6*p.Input + float64(outputTokens)/1e6*p.Output
	return math.Round(cost*1e6) / 1e6
}
