package llm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/metrics"
	"resumebot-ai/internal/models"

	"github.com/rs/zerolog/log"
)

type Manager struct {
	clients map[string]Client
	mu      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]Client),
	}
}

func (m *Manager) RegisterClient(name string, config Config) error {
	var client Client
	var err error

	switch config.Provider {
	case constants.OpenAI:
		client, err = NewOpenAIClient(config)
	case constants.Gemini:
		client, err = NewGeminiClient(config)
	default:
		return fmt.Errorf("unsupported LLM provider: %s", config.Provider)
	}

	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}

	m.SetClient(name, client)
	return nil
}

// SetClient registers an already constructed client under name, wrapped with latency metrics.
func (m *Manager) SetClient(name string, client Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[name] = &instrumentedClient{inner: client}
	log.Info().Str("name", name).Str("provider", client.GetModelInfo().Provider).
		Str("model", client.GetModelInfo().Name).Msg("Registered LLM client")
}

func (m *Manager) GetClient(name string) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[name]
	if !exists {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}

	return client, nil
}

type instrumentedClient struct {
	inner Client
}

func (c *instrumentedClient) GenerateResponse(ctx context.Context, messages []*models.Message, tools []ToolDefinition) (*models.Message, error) {
	start := time.Now()
	reply, err := c.inner.GenerateResponse(ctx, messages, tools)
	metrics.RecordGeneration(c.inner.GetModelInfo().Provider, err, time.Since(start).Seconds())
	return reply, err
}

func (c *instrumentedClient) GetModelInfo() ModelInfo {
	return c.inner.GetModelInfo()
}
