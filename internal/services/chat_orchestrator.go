package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/metrics"
	"resumebot-ai/internal/models"
	"resumebot-ai/pkg/llm"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type TurnStage string

const (
	StageAwaitingModel  TurnStage = "awaiting_model"
	StageToolExecuting  TurnStage = "tool_executing"
	StageApplyingResult TurnStage = "applying_result"
	StageExplaining     TurnStage = "explaining"
	StageDone           TurnStage = "done"
)

type TurnOutcome string

const (
	OutcomeReplied     TurnOutcome = "replied"
	OutcomeToolApplied TurnOutcome = "tool_applied"
	OutcomeToolFailed  TurnOutcome = "tool_failed"
	OutcomeFallback    TurnOutcome = "fallback"
)

// TurnResult is what one orchestrator turn produced. State is a new copy; the input state is
// never modified.
type TurnResult struct {
	State    *models.ConversationState
	Response string
	ToolName string
	Outcome  TurnOutcome
	Stages   []TurnStage
}

// ChatOrchestrator runs one conversation turn. Callers must not run two turns for the same
// conversation at once; different conversations are independent.
type ChatOrchestrator interface {
	RunTurn(ctx context.Context, state *models.ConversationState, userMessage string) (*TurnResult, error)
}

type chatOrchestrator struct {
	llmClient llm.Client
	tools     DocumentTools
}

func NewChatOrchestrator(llmClient llm.Client, tools DocumentTools) ChatOrchestrator {
	return &chatOrchestrator{llmClient: llmClient, tools: tools}
}

// turn carries the working data between stages.
type turn struct {
	state       *models.ConversationState
	userMessage string
	call        *models.ToolCall
	kind        string
	before      string
	result      ToolResult
	retried     bool
	response    string
	outcome     TurnOutcome
	stages      []TurnStage
}

func (o *chatOrchestrator) RunTurn(ctx context.Context, state *models.ConversationState, userMessage string) (*TurnResult, error) {
	t := &turn{state: state.Clone(), userMessage: userMessage}
	t.state.Append(models.NewUserMessage(userMessage))

	stage := StageAwaitingModel
	for stage != StageDone {
		t.stages = append(t.stages, stage)
		var err error
		switch stage {
		case StageAwaitingModel:
			stage, err = o.awaitModel(ctx, t)
		case StageToolExecuting:
			stage = o.executeTool(ctx, t)
		case StageApplyingResult:
			stage = o.applyResult(t)
		case StageExplaining:
			stage = o.explain(ctx, t)
		default:
			err = fmt.Errorf("unknown turn stage %q", stage)
		}
		if err != nil {
			return nil, err
		}
	}
	t.stages = append(t.stages, StageDone)

	metrics.RecordTurn(string(t.outcome))
	log.Info().
		Str("conversation_id", t.state.ID).
		Str("outcome", string(t.outcome)).
		Str("tool", toolName(t.call)).
		Bool("retried", t.retried).
		Msg("Chat turn finished")

	return &TurnResult{
		State:    t.state,
		Response: t.response,
		ToolName: toolName(t.call),
		Outcome:  t.outcome,
		Stages:   t.stages,
	}, nil
}

func (o *chatOrchestrator) awaitModel(ctx context.Context, t *turn) (TurnStage, error) {
	reply, err := o.generate(ctx, t)
	if err != nil {
		return StageDone, err
	}

	if reply.IsMalformedCall() {
		log.Warn().Str("conversation_id", t.state.ID).Msg("Malformed tool call from model, retrying once")
		metrics.RecordMalformedRetry()
		t.retried = true
		if reply, err = o.generate(ctx, t); err != nil {
			return StageDone, err
		}
		if reply.IsMalformedCall() {
			t.fallback(constants.MalformedCallFallbackReply)
			return StageDone, nil
		}
	}

	if reply.WantsTool() {
		call := reply.RequestedToolCall()
		if call == nil {
			log.Warn().Str("conversation_id", t.state.ID).Interface("metadata", reply.Metadata).
				Msg("Reply looked like a tool request but carried no tool call")
			t.fallback(t.noReplyText())
			return StageDone, nil
		}
		kind, ok := documentTypeForTool(call.Name)
		if !ok {
			log.Warn().Str("conversation_id", t.state.ID).Str("tool", call.Name).
				Msg("Model requested an unknown tool, no document changed")
			t.fallback(t.noReplyText())
			return StageDone, nil
		}

		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}
		// Only one tool runs per turn; the logged reply carries exactly the dispatched call.
		reply.ToolCalls = []models.ToolCall{*call}
		delete(reply.Metadata, constants.MetadataKeyFunctionCall)
		delete(reply.Metadata, constants.MetadataKeyToolCalls)

		t.state.Append(reply)
		t.call = call
		t.kind = kind
		return StageToolExecuting, nil
	}

	if strings.TrimSpace(reply.Content) == "" {
		t.fallback(t.noReplyText())
		return StageDone, nil
	}

	t.state.Append(reply)
	t.response = reply.Content
	t.outcome = OutcomeReplied
	return StageDone, nil
}

func (o *chatOrchestrator) generate(ctx context.Context, t *turn) (*models.Message, error) {
	contextMessage := models.NewSystemContextMessage(fmt.Sprintf(constants.ConversationContextPrompt,
		t.state.JobDescription,
		t.state.SourceResume,
		t.state.PersonalSummary,
		t.state.OptimizedResume,
		t.state.CoverLetter,
		t.userMessage,
	))
	input := make([]*models.Message, 0, len(t.state.Messages)+1)
	input = append(input, contextMessage)
	input = append(input, t.state.Messages...)

	reply, err := o.llmClient.GenerateResponse(ctx, input, o.tools.Definitions())
	if err != nil {
		if !errors.Is(err, apperrors.ErrGenerationFailure) {
			err = fmt.Errorf("%w: %w", apperrors.ErrGenerationFailure, err)
		}
		return nil, fmt.Errorf("conversation %s: %w", t.state.ID, err)
	}
	if reply == nil {
		return nil, fmt.Errorf("conversation %s: %w: nil reply", t.state.ID, apperrors.ErrGenerationFailure)
	}
	return reply, nil
}

func (o *chatOrchestrator) executeTool(ctx context.Context, t *turn) TurnStage {
	t.before = t.state.Document(t.kind)
	result, ok := o.tools.Execute(ctx, t.call, t.state, t.userMessage)
	if !ok {
		log.Warn().Str("conversation_id", t.state.ID).Str("tool", t.call.Name).Msg("Tool could not be dispatched")
		t.fallback(t.noReplyText())
		return StageDone
	}

	t.result = result
	t.state.Append(models.NewToolResultMessage(t.call.ID, t.call.Name, result.Content))
	return StageApplyingResult
}

// applyResult overwrites exactly the document the tool targets with the tool's text, including
// the error text of a failed run.
func (o *chatOrchestrator) applyResult(t *turn) TurnStage {
	if t.result.Failed {
		log.Warn().Str("conversation_id", t.state.ID).Str("tool", t.call.Name).Str("result", t.result.Content).
			Msg("Tool failed, its error text replaces the document")
	}
	t.state.SetDocument(t.kind, t.result.Content)
	return StageExplaining
}

func (o *chatOrchestrator) explain(ctx context.Context, t *turn) TurnStage {
	prompt := fmt.Sprintf(constants.ExplainChangePrompt,
		t.userMessage,
		t.call.Name,
		constants.DocumentTypeTitle(t.kind),
		t.before,
		t.result.Content,
	)

	text, err := llm.GenerateText(ctx, o.llmClient, prompt)
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		log.Warn().Err(err).Str("conversation_id", t.state.ID).Msg("Explanation failed, using generic confirmation")
		text = constants.GenericUpdateConfirmation
	}

	t.state.Append(models.NewAssistantMessage(text))
	t.response = text
	t.outcome = OutcomeToolApplied
	if t.result.Failed {
		t.outcome = OutcomeToolFailed
	}
	return StageDone
}

func (t *turn) fallback(text string) {
	t.state.Append(models.NewAssistantMessage(text))
	t.response = text
	t.outcome = OutcomeFallback
}

func (t *turn) noReplyText() string {
	if t.retried {
		return constants.MalformedCallFallbackReply
	}
	return constants.UnusableReplyFallback
}

func toolName(call *models.ToolCall) string {
	if call == nil {
		return ""
	}
	return call.Name
}
