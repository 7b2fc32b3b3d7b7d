// Package gemini adapts the Google Gemini API to the ADK model.LLM
// interface so agents can run against it through the standard runner.
package gemini

import (
	"context"
	"fmt"
	"iter"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Config for the Gemini model adapter.
type Config struct {
	APIKey string
	Model  string
}

// Model wraps the genai client behind the ADK model.LLM interface.
type Model struct {
	config Config
	client *genai.Client
}

func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Model{config: cfg, client: client}, nil
}

func (m *Model) Name() string {
	return m.config.Model
}

// GenerateContent forwards the ADK request to the Gemini API. Streaming is
// not used here; the full response is yielded once.
func (m *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.generate(ctx, req)
		yield(resp, err)
	}
}

func (m *Model) generate(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	var cfg *genai.GenerateContentConfig
	if req != nil {
		cfg = req.Config
	}
	var contents []*genai.Content
	if req != nil {
		contents = req.Contents
	}

	resp, err := m.client.Models.GenerateContent(ctx, m.config.Model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini api error: empty candidates")
	}

	return &model.LLMResponse{
		Content: resp.Candidates[0].Content,
	}, nil
}
