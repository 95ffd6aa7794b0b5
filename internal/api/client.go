package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/geminichat/internal/models"
)

// HTTPDoer is the subset of tls_client.HttpClient the client needs
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Generator produces the text answer for a single prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiClientInterface is implemented by GeminiClient and MockGeminiClient.
// Commands own the client and close it when they shut down.
type GeminiClientInterface interface {
	Generator
	GenerateContent(ctx context.Context, prompt string) (*models.GenerateOutput, error)
	GetModel() models.Model
	Close()
	IsClosed() bool
}

// GeminiClient calls the generateContent endpoint with an API key
type GeminiClient struct {
	httpClient HTTPDoer
	apiKey     string
	baseURL    string
	model      models.Model
	timeout    time.Duration
	mu         sync.RWMutex
	closed     bool
}

var _ GeminiClientInterface = (*GeminiClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the model used for generation
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithBaseURL points the client at a different API host
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GeminiClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout bounds each generate call
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *GeminiClient) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHTTPClient replaces the TLS client, mainly for tests
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = doer
	}
}

// NewClient creates a new GeminiClient. The API key is not validated;
// an empty or wrong key makes the remote service reject each call.
func NewClient(apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	client := &GeminiClient{
		apiKey:  apiKey,
		baseURL: models.DefaultBaseURL,
		model:   models.DefaultModel,
		timeout: 60 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close marks the client closed; later calls fail immediately
func (c *GeminiClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *GeminiClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// GetModel returns the model used for generation
func (c *GeminiClient) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// Endpoint returns the generate URL for the current model, without the key
func (c *GeminiClient) Endpoint() string {
	return models.GenerateEndpoint(c.baseURL, c.GetModel())
}
