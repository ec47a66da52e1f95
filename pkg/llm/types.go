package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/models"
)

// Client is the generation capability. A reply is an assistant message carrying either visible
// text or tool calls; a broken structured call is reported through the finish_reason metadata,
// not as an error. Errors wrap apperrors.ErrGenerationFailure.
type Client interface {
	GenerateResponse(ctx context.Context, messages []*models.Message, tools []ToolDefinition) (*models.Message, error)
	GetModelInfo() ModelInfo
}

// ModelInfo contains information about the LLM model
type ModelInfo struct {
	Name                string
	Provider            string
	MaxCompletionTokens int
}

// Config holds configuration for LLM clients
type Config struct {
	Provider            string
	Model               string
	APIKey              string
	MaxCompletionTokens int
	Temperature         float64
}

// ToolDefinition describes a tool the model may invoke. All parameters are required strings.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []ToolParameter
}

type ToolParameter struct {
	Name        string
	Description string
}

// ErrEmptyResponse marks a reply without visible text.
var ErrEmptyResponse = errors.New("empty response")

// GenerateText sends a single prompt without tools and returns the reply text.
// An empty reply is a generation failure.
func GenerateText(ctx context.Context, client Client, prompt string) (string, error) {
	reply, err := client.GenerateResponse(ctx, []*models.Message{models.NewUserMessage(prompt)}, nil)
	if err != nil {
		return "", err
	}
	if reply == nil || strings.TrimSpace(reply.Content) == "" {
		return "", fmt.Errorf("%w: %w from %s", apperrors.ErrGenerationFailure, ErrEmptyResponse, client.GetModelInfo().Provider)
	}
	return reply.Content, nil
}
