package parser

import "strings"

// ModelPricing is the USD cost per million tokens for one model.
type ModelPricing struct {
	Input  float64 `toml:"input"`
	Output float64 `toml:"output"`
	// CachedInput applies to cache reads and cache writes. Zero falls back
	// to Input.
	CachedInput float64 `toml:"cached_input,omitempty"`
}

// Cost prices u at these rates.
func (p ModelPricing) Cost(u Usage) float64 {
	cached := p.CachedInput
	if cached == 0 {
		cached = p.Input
	}
	return (float64(u.InputTokens)*p.Input +
		float64(u.OutputTokens)*p.Output +
		float64(u.CacheReadTokens+u.CacheCreationTokens)*cached) / 1_000_000
}

// modelFamilies are matched as substrings of a model id, in this order.
var modelFamilies = []string{"opus", "sonnet", "haiku"}

// Pricing resolves a model id to its rates.
type Pricing struct {
	Models  map[string]ModelPricing
	Default ModelPricing
}

// DefaultPricing returns the built-in rates. Unknown models are priced as
// Opus.
func DefaultPricing() Pricing {
	opus := ModelPricing{Input: 15, Output: 75, CachedInput: 1.5}
	return Pricing{
		Models: map[string]ModelPricing{
			"opus":   opus,
			"sonnet": {Input: 3, Output: 15, CachedInput: 0.3},
			"haiku":  {Input: 0.8, Output: 4, CachedInput: 0.08},
		},
		Default: ModelPricing{Input: opus.Input, Output: opus.Output},
	}
}

// With returns a copy of p with overrides layered on top. A nil def keeps
// the current default.
func (p Pricing) With(overrides map[string]ModelPricing, def *ModelPricing) Pricing {
	out := Pricing{Models: make(map[string]ModelPricing, len(p.Models)+len(overrides)), Default: p.Default}
	for k, v := range p.Models {
		out.Models[k] = v
	}
	for k, v := range overrides {
		out.Models[strings.ToLower(k)] = v
	}
	if def != nil {
		out.Default = *def
	}
	return out
}

// For returns the rates for model: an exact match, then the first family
// named in the id, then the default.
func (p Pricing) For(model string) ModelPricing {
	id := strings.ToLower(model)
	if mp, ok := p.Models[id]; ok {
		return mp
	}
	for _, family := range modelFamilies {
		if !strings.Contains(id, family) {
			continue
		}
		if mp, ok := p.Models[family]; ok {
			return mp
		}
	}
	return p.Default
}

// Cost prices u for model.
func (p Pricing) Cost(model string, u Usage) float64 {
	return p.For(model).Cost(u)
}
