// Package model defines the optional narrative generator agents may use to
// enrich their reports. Provider adapters live in the openai and anthropic
// subpackages; agents fall back to canned analysis text when no generator is
// configured, so the fleet runs fully offline by default.
package model

import (
	"context"
	"fmt"
)

// Info contains metadata about a generator implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Generator produces a single narrative completion for a prompt. It is the
// minimal surface agents need; no streaming, no tool calling.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Info returns information about the generator implementation.
	Info() Info
}

// MockGenerator is a lightweight in-memory Generator useful for tests and
// examples.
type MockGenerator struct {
	info      Info
	responses map[string]string
}

// NewMockGenerator constructs a MockGenerator.
func NewMockGenerator(name string) *MockGenerator {
	return &MockGenerator{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockGenerator) AddResponse(prompt, response string) { m.responses[prompt] = response }

// GenerateText implements Generator.
func (m *MockGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	if resp, ok := m.responses[prompt]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock narrative for: %s", prompt), nil
}

// Info implements Generator.
func (m *MockGenerator) Info() Info { return m.info }
