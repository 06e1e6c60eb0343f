package provider

import "golang.org/x/time/rate"

// OpenAIFactory builds OpenAI-compatible providers sharing one rate limiter,
// so reconnect-rebuilt sessions cannot multiply the request budget.
type OpenAIFactory struct {
	name        string
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	limiter     *rate.Limiter
}

func NewOpenAIFactory(name, endpoint, apiKey, model string, temperature, rateLimit float64, rateBurst int) *OpenAIFactory {
	var limiter *rate.Limiter
	if rateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(rateLimit), rateBurst)
	}
	return &OpenAIFactory{
		name:        name,
		endpoint:    endpoint,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		limiter:     limiter,
	}
}

func (f *OpenAIFactory) Name() string { return f.name }

func (f *OpenAIFactory) Create() Provider {
	return NewOpenAI(f.name, f.endpoint, f.apiKey, f.model, f.temperature, f.limiter)
}
