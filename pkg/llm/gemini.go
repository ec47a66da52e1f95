package llm

import (
	"context"
	"fmt"
	"strings"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// The SDK has no named constant for this finish reason yet.
const finishReasonMalformedFunctionCall genai.FinishReason = 10

type GeminiClient struct {
	client              *genai.Client
	model               string
	maxCompletionTokens int
	temperature         float64
}

func NewGeminiClient(config Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:              client,
		model:               config.Model,
		maxCompletionTokens: config.MaxCompletionTokens,
		temperature:         config.Temperature,
	}, nil
}

func (c *GeminiClient) GenerateResponse(ctx context.Context, messages []*models.Message, tools []ToolDefinition) (*models.Message, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	systemInstruction, history := toGeminiContents(messages)
	if len(history) == 0 {
		return nil, fmt.Errorf("%w: no conversational messages to send", apperrors.ErrGenerationFailure)
	}

	// A model handle per call keeps concurrent turns from sharing tool or instruction state.
	model := c.client.GenerativeModel(c.model)
	maxTokens := int32(c.maxCompletionTokens)
	model.MaxOutputTokens = &maxTokens
	model.SetTemperature(float32(c.temperature))
	model.SystemInstruction = systemInstruction
	model.Tools = toGeminiTools(tools)
	model.SafetySettings = []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockNone,
		},
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockNone,
		},
	}

	last := history[len(history)-1]
	session := model.StartChat()
	session.History = history[:len(history)-1]

	result, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		log.Error().Err(err).Str("model", c.model).Msg("Gemini API error")
		return nil, fmt.Errorf("%w: gemini API error: %v", apperrors.ErrGenerationFailure, err)
	}

	reply, err := fromGeminiResponse(result)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("model", c.model).Int("tool_calls", len(reply.ToolCalls)).
		Interface("finish_reason", reply.Metadata[constants.MetadataKeyFinishReason]).Msg("Gemini reply")
	return reply, nil
}

func (c *GeminiClient) GetModelInfo() ModelInfo {
	return ModelInfo{
		Name:                c.model,
		Provider:            constants.Gemini,
		MaxCompletionTokens: c.maxCompletionTokens,
	}
}

// toGeminiContents folds system-context messages into the system instruction and maps the rest
// onto user/model turns. Tool results travel as function responses.
func toGeminiContents(messages []*models.Message) (*genai.Content, []*genai.Content) {
	var systemParts []genai.Part
	history := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case constants.MessageRoleSystemContext:
			if msg.Content != "" {
				systemParts = append(systemParts, genai.Text(msg.Content))
			}
		case constants.MessageRoleUser:
			if msg.Content == "" {
				continue
			}
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		case constants.MessageRoleAssistant:
			parts := make([]genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: tc.Arguments})
			}
			if len(parts) == 0 {
				continue
			}
			history = append(history, &genai.Content{Role: "model", Parts: parts})
		case constants.MessageRoleToolResult:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{
				genai.FunctionResponse{
					Name:     msg.ToolName,
					Response: map[string]any{"result": msg.Content},
				},
			}})
		}
	}

	if len(systemParts) == 0 {
		return nil, history
	}
	return &genai.Content{Parts: systemParts}, history
}

func toGeminiTools(tools []ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		props := make(map[string]*genai.Schema, len(t.Parameters))
		required := make([]string, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			props[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
			required = append(required, p.Name)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

func fromGeminiResponse(resp *genai.GenerateContentResponse) (*models.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates from Gemini", apperrors.ErrGenerationFailure)
	}
	cand := resp.Candidates[0]

	reply := models.NewAssistantMessage("")
	reply.Metadata[constants.MetadataKeyFinishReason] = geminiFinishReason(cand.FinishReason)
	if cand.Content == nil {
		return reply, nil
	}

	var text strings.Builder
	for _, part := range cand.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			reply.ToolCalls = append(reply.ToolCalls, geminiToolCall(p))
		case *genai.FunctionCall:
			reply.ToolCalls = append(reply.ToolCalls, geminiToolCall(*p))
		}
	}
	reply.Content = text.String()
	return reply, nil
}

func geminiToolCall(fc genai.FunctionCall) models.ToolCall {
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	return models.ToolCall{ID: "call_" + uuid.NewString(), Name: fc.Name, Arguments: args}
}

func geminiFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return constants.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return constants.FinishReasonMaxTokens
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return constants.FinishReasonSafety
	case finishReasonMalformedFunctionCall:
		return constants.FinishReasonMalformedFunctionCall
	default:
		return constants.FinishReasonOther
	}
}
