package provider

import (
	"context"
	"sync"
)

// MockProvider is a test provider that returns predefined responses.
type MockProvider struct {
	mu       sync.Mutex
	name     string
	response string
	err      error
	prompts  []string
}

// NewMock creates a new mock provider.
func NewMock(name, response string) *MockProvider {
	return &MockProvider{
		name:     name,
		response: response,
	}
}

// WithError sets an error to return from Complete.
func (p *MockProvider) WithError(err error) *MockProvider {
	p.err = err
	return p
}

// Name returns the provider identifier.
func (p *MockProvider) Name() string {
	return p.name
}

// Complete records the prompt and returns the predefined response or error.
func (p *MockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

// Prompts returns the prompts seen so far.
func (p *MockProvider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.prompts))
	copy(out, p.prompts)
	return out
}

// MockFactory builds mock providers.
type MockFactory struct {
	name     string
	response string
}

func NewMockFactory(name, response string) *MockFactory {
	return &MockFactory{name: name, response: response}
}

func (f *MockFactory) Name() string { return f.name }

func (f *MockFactory) Create() Provider {
	return NewMock(f.name, f.response)
}
