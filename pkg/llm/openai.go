package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client              *openai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
}

func NewOpenAIClient(config Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	client := openai.NewClient(config.APIKey)
	model := config.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIClient{
		client:              client,
		model:               model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
	}, nil
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, messages []*models.Message, tools []ToolDefinition) (*models.Message, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req := openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            toOpenAIMessages(messages),
		MaxCompletionTokens: c.maxCompletionTokens,
		Temperature:         float32(c.temperature),
		Tools:               toOpenAITools(tools),
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("OpenAI API error")
		return nil, fmt.Errorf("%w: OpenAI API error: %v", apperrors.ErrGenerationFailure, err)
	}

	reply, err := fromOpenAIResponse(resp)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", c.model).Int("tool_calls", len(reply.ToolCalls)).
		Interface("finish_reason", reply.Metadata[constants.MetadataKeyFinishReason]).Msg("OpenAI reply")
	return reply, nil
}

func (c *OpenAIClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            constants.OpenAI,
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}

// toOpenAIMessages maps the log onto chat messages. The API rejects tool calls without a
// matching tool message and vice versa, so unpaired halves are dropped or sent as plain text.
func toOpenAIMessages(messages []*models.Message) []openai.ChatCompletionMessage {
	answered := make(map[string]bool)
	issued := make(map[string]bool)
	for _, msg := range messages {
		switch msg.Role {
		case constants.MessageRoleToolResult:
			if msg.ToolCallID != "" {
				answered[msg.ToolCallID] = true
			}
		case constants.MessageRoleAssistant:
			for _, tc := range msg.ToolCalls {
				issued[tc.ID] = true
			}
		}
	}

	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case constants.MessageRoleSystemContext:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: msg.Content})
		case constants.MessageRoleUser:
			out = append(out, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: msg.Content})
		case constants.MessageRoleAssistant:
			m := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: msg.Content}
			for _, tc := range msg.ToolCalls {
				if !answered[tc.ID] {
					continue
				}
				args, _ := json.Marshal(tc.Arguments)
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:       tc.ID,
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: tc.Name, Arguments: string(args)},
				})
			}
			if m.Content == "" && len(m.ToolCalls) == 0 {
				continue
			}
			out = append(out, m)
		case constants.MessageRoleToolResult:
			if msg.ToolCallID == "" || !issued[msg.ToolCallID] {
				out = append(out, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleUser,
					Content: fmt.Sprintf("Result of %s:\n%s", msg.ToolName, msg.Content),
				})
				continue
			}
			out = append(out, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    msg.Content,
				Name:       msg.ToolName,
				ToolCallID: msg.ToolCallID,
			})
		}
	}
	return out
}

func toOpenAITools(tools []ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		props := make(map[string]interface{}, len(t.Parameters))
		required := make([]string, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			props[p.Name] = map[string]interface{}{"type": "string", "description": p.Description}
			required = append(required, p.Name)
		}
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters: map[string]interface{}{
					"type":       "object",
					"properties": props,
					"required":   required,
				},
			},
		})
	}
	return out
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) (*models.Message, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from OpenAI", apperrors.ErrGenerationFailure)
	}
	choice := resp.Choices[0]

	reply := models.NewAssistantMessage(choice.Message.Content)
	reply.Metadata[constants.MetadataKeyFinishReason] = openAIFinishReason(choice.FinishReason)

	malformed := false
	for _, tc := range choice.Message.ToolCalls {
		args, ok := parseArguments(tc.Function.Arguments)
		if !ok || tc.Function.Name == "" {
			malformed = true
			continue
		}
		reply.ToolCalls = append(reply.ToolCalls, models.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}

	if fc := choice.Message.FunctionCall; fc != nil {
		args, ok := parseArguments(fc.Arguments)
		if ok && fc.Name != "" {
			reply.Metadata[constants.MetadataKeyFunctionCall] = map[string]interface{}{
				"name":      fc.Name,
				"arguments": args,
			}
		} else {
			malformed = true
		}
	}

	if malformed {
		reply.ToolCalls = nil
		delete(reply.Metadata, constants.MetadataKeyFunctionCall)
		reply.Metadata[constants.MetadataKeyFinishReason] = constants.FinishReasonMalformedFunctionCall
	}
	return reply, nil
}

func parseArguments(raw string) (map[string]interface{}, bool) {
	if strings.TrimSpace(raw) == "" {
		return map[string]interface{}{}, true
	}
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, false
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	return args, true
}

func openAIFinishReason(reason openai.FinishReason) string {
	switch reason {
	case openai.FinishReasonStop:
		return constants.FinishReasonStop
	case openai.FinishReasonToolCalls, openai.FinishReasonFunctionCall:
		return constants.FinishReasonToolCalls
	case openai.FinishReasonLength:
		return constants.FinishReasonMaxTokens
	case openai.FinishReasonContentFilter:
		return constants.FinishReasonSafety
	default:
		return constants.FinishReasonOther
	}
}
