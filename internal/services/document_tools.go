package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/metrics"
	"resumebot-ai/internal/models"
	"resumebot-ai/pkg/llm"

	"github.com/rs/zerolog/log"
)

const emptyResumeRevisionError = "Error: Unable to update resume. Please try again with different instructions."

// ToolResult is the outcome of one document tool run. Failures are carried as text in Content.
type ToolResult struct {
	ToolName     string
	DocumentType string
	Content      string
	Failed       bool
}

// DocumentTools revises documents through the generation capability. None of its methods return
// errors: a failed revision yields a ToolResult with Failed set and a readable description.
type DocumentTools interface {
	Definitions() []llm.ToolDefinition
	ReviseResume(ctx context.Context, currentResume, feedback string) ToolResult
	ReviseCoverLetter(ctx context.Context, currentCoverLetter, feedback string) ToolResult
	// Execute runs the tool named by call against state. Missing arguments default to the
	// current document and the user's message. ok is false when the tool cannot be identified.
	Execute(ctx context.Context, call *models.ToolCall, state *models.ConversationState, userMessage string) (result ToolResult, ok bool)
}

type documentTools struct {
	llmClient llm.Client
}

func NewDocumentTools(llmClient llm.Client) DocumentTools {
	return &documentTools{llmClient: llmClient}
}

func (t *documentTools) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		{
			Name:        constants.ToolUpdateResume,
			Description: constants.UpdateResumeToolDescription,
			Parameters: []llm.ToolParameter{
				{Name: constants.ToolArgResume, Description: constants.ResumeArgDescription},
				{Name: constants.ToolArgFeedback, Description: constants.FeedbackArgDescription},
			},
		},
		{
			Name:        constants.ToolUpdateCoverLetter,
			Description: constants.UpdateCoverLetterToolDescription,
			Parameters: []llm.ToolParameter{
				{Name: constants.ToolArgCoverLetter, Description: constants.CoverLetterArgDescription},
				{Name: constants.ToolArgFeedback, Description: constants.FeedbackArgDescription},
			},
		},
	}
}

func (t *documentTools) ReviseResume(ctx context.Context, currentResume, feedback string) ToolResult {
	result := ToolResult{ToolName: constants.ToolUpdateResume, DocumentType: constants.DocumentTypeResume}

	text, err := llm.GenerateText(ctx, t.llmClient, fmt.Sprintf(constants.ReviseResumePrompt, currentResume, feedback))
	if err != nil && !errors.Is(err, llm.ErrEmptyResponse) {
		log.Error().Err(err).Msg("Resume revision failed")
		result.Content = fmt.Sprintf("Error updating resume: %v", err)
		result.Failed = true
		return t.record(result)
	}

	result.Content = trimQuoting(text)
	if result.Content == "" {
		log.Warn().Msg("Resume revision returned empty content")
		result.Content = emptyResumeRevisionError
		result.Failed = true
	}
	return t.record(result)
}

func (t *documentTools) ReviseCoverLetter(ctx context.Context, currentCoverLetter, feedback string) ToolResult {
	result := ToolResult{ToolName: constants.ToolUpdateCoverLetter, DocumentType: constants.DocumentTypeCoverLetter}

	text, err := llm.GenerateText(ctx, t.llmClient, fmt.Sprintf(constants.ReviseCoverLetterPrompt, currentCoverLetter, feedback))
	if err == nil && trimQuoting(text) == "" {
		err = llm.ErrEmptyResponse
	}
	if err != nil {
		log.Error().Err(err).Msg("Cover letter revision failed")
		result.Content = fmt.Sprintf("Error updating cover letter: %v", err)
		result.Failed = true
		return t.record(result)
	}

	result.Content = trimQuoting(text)
	return t.record(result)
}

func (t *documentTools) Execute(ctx context.Context, call *models.ToolCall, state *models.ConversationState, userMessage string) (ToolResult, bool) {
	if call == nil {
		return ToolResult{}, false
	}
	kind, ok := documentTypeForTool(call.Name)
	if !ok {
		return ToolResult{ToolName: call.Name}, false
	}

	argName := constants.ToolArgResume
	if kind == constants.DocumentTypeCoverLetter {
		argName = constants.ToolArgCoverLetter
	}
	current, ok := call.StringArg(argName)
	if !ok {
		current = state.Document(kind)
	}
	feedback, ok := call.StringArg(constants.ToolArgFeedback)
	if !ok {
		feedback = userMessage
	}

	if kind == constants.DocumentTypeCoverLetter {
		return t.ReviseCoverLetter(ctx, current, feedback), true
	}
	return t.ReviseResume(ctx, current, feedback), true
}

func (t *documentTools) record(result ToolResult) ToolResult {
	metrics.RecordToolInvocation(result.ToolName, result.Failed)
	return result
}

// documentTypeForTool maps a tool name onto the document it edits. Names are matched by
// substring so provider-decorated names still resolve.
func documentTypeForTool(name string) (string, bool) {
	switch {
	case strings.Contains(name, constants.DocumentTypeCoverLetter):
		return constants.DocumentTypeCoverLetter, true
	case strings.Contains(name, constants.DocumentTypeResume):
		return constants.DocumentTypeResume, true
	default:
		return "", false
	}
}

func trimQuoting(text string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(text), "`"))
}
