package api

import (
	"context"
	"sync"

	"github.com/diogo/geminichat/internal/models"
)

// MockGeminiClient is a mock implementation of GeminiClientInterface for testing
type MockGeminiClient struct {
	// Mock return values
	Model              models.Model
	GenerateContentVal *models.GenerateOutput
	GenerateContentErr error

	// Release, when set, holds every call until it is closed or receives a value.
	// Calls also return early with ctx.Err() when their context ends.
	Release chan struct{}
	// Started receives one value per call once the call is in flight
	Started chan string

	mu      sync.Mutex
	closed  bool
	prompts []string
}

var _ GeminiClientInterface = (*MockGeminiClient)(nil)

// NewMockGeminiClient returns a mock answering every prompt with text
func NewMockGeminiClient(text string) *MockGeminiClient {
	return &MockGeminiClient{
		Model:              models.DefaultModel,
		GenerateContentVal: &models.GenerateOutput{Text: text, Candidates: 1},
	}
}

// NewFailingMockGeminiClient returns a mock failing every prompt with err
func NewFailingMockGeminiClient(err error) *MockGeminiClient {
	return &MockGeminiClient{
		Model:              models.DefaultModel,
		GenerateContentErr: err,
	}
}

func (m *MockGeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	output, err := m.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}
	return output.Text, nil
}

func (m *MockGeminiClient) GenerateContent(ctx context.Context, prompt string) (*models.GenerateOutput, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	release := m.Release
	started := m.Started
	m.mu.Unlock()

	if started != nil {
		started <- prompt
	}

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.GenerateContentErr != nil {
		return nil, m.GenerateContentErr
	}
	if m.GenerateContentVal == nil {
		return &models.GenerateOutput{}, nil
	}
	out := *m.GenerateContentVal
	return &out, nil
}

// Prompts returns the prompts received so far
func (m *MockGeminiClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// Calls returns the number of generate calls received
func (m *MockGeminiClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *MockGeminiClient) GetModel() models.Model {
	return m.Model
}

func (m *MockGeminiClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *MockGeminiClient) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
