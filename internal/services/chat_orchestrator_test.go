package services

import (
	"context"
	"testing"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTurn(t *testing.T, client *scriptedClient, state *models.ConversationState, message string) *TurnResult {
	t.Helper()
	orchestrator := NewChatOrchestrator(client, NewDocumentTools(client))
	result, err := orchestrator.RunTurn(context.Background(), state, message)
	require.NoError(t, err)
	return result
}

func TestRunTurnPlainReply(t *testing.T) {
	client := newScriptedClient(textStep("Sure, tell me more."))
	state := sampleState()

	result := runTurn(t, client, state, "Can you help?")

	assert.Equal(t, OutcomeReplied, result.Outcome)
	assert.Equal(t, "Sure, tell me more.", result.Response)
	assert.Equal(t, []TurnStage{StageAwaitingModel, StageDone}, result.Stages)
	require.Len(t, result.State.Messages, 4)
	assert.Equal(t, constants.MessageRoleUser, result.State.Messages[2].Role)
	assert.Equal(t, "Can you help?", result.State.Messages[2].Content)
	assert.Equal(t, "Resume v1", result.State.OptimizedResume)

	// caller's state is untouched
	assert.Len(t, state.Messages, 2)
}

func TestRunTurnSendsContextAndTools(t *testing.T) {
	client := newScriptedClient(textStep("ok"))
	runTurn(t, client, sampleState(), "hello")

	require.Equal(t, 1, client.callCount())
	call := client.calls[0]
	require.NotEmpty(t, call.messages)
	assert.Equal(t, constants.MessageRoleSystemContext, call.messages[0].Role)
	assert.Contains(t, call.messages[0].Content, "Platform engineer")
	assert.Contains(t, call.messages[0].Content, "Resume v1")
	assert.Equal(t, "hello", call.messages[len(call.messages)-1].Content)
	require.Len(t, call.tools, 2)
	assert.Equal(t, constants.ToolUpdateResume, call.tools[0].Name)
	assert.Equal(t, constants.ToolUpdateCoverLetter, call.tools[1].Name)
}

func TestRunTurnResumeToolApplied(t *testing.T) {
	client := newScriptedClient(
		toolStep(constants.ToolUpdateResume, map[string]interface{}{
			"resume":   "Resume v1",
			"feedback": "make it concise",
		}),
		textStep("```Resume v2```"),
		textStep("I tightened the wording."),
	)

	result := runTurn(t, client, sampleState(), "make the resume more concise")

	assert.Equal(t, OutcomeToolApplied, result.Outcome)
	assert.Equal(t, constants.ToolUpdateResume, result.ToolName)
	assert.Equal(t, "Resume v2", result.State.OptimizedResume)
	assert.Equal(t, "Letter v1", result.State.CoverLetter)
	assert.Equal(t, "I tightened the wording.", result.Response)
	assert.Equal(t, []TurnStage{
		StageAwaitingModel, StageToolExecuting, StageApplyingResult, StageExplaining, StageDone,
	}, result.Stages)

	msgs := result.State.Messages
	require.Len(t, msgs, 6)
	assert.Len(t, msgs[3].ToolCalls, 1)
	assert.Equal(t, constants.MessageRoleToolResult, msgs[4].Role)
	assert.Equal(t, msgs[3].ToolCalls[0].ID, msgs[4].ToolCallID)
	assert.Equal(t, "Resume v2", msgs[4].Content)
	assert.Equal(t, "I tightened the wording.", msgs[5].Content)

	// explanation prompt sees both versions
	explainPrompt := client.calls[2].messages[0].Content
	assert.Contains(t, explainPrompt, "Resume v1")
	assert.Contains(t, explainPrompt, "Resume v2")
	assert.Nil(t, client.calls[2].tools)
}

func TestRunTurnCoverLetterToolDefaultsMissingArgs(t *testing.T) {
	client := newScriptedClient(
		toolStep(constants.ToolUpdateCoverLetter, nil),
		textStep("Letter v2"),
		textStep("Updated the letter."),
	)

	result := runTurn(t, client, sampleState(), "mention Kubernetes")

	assert.Equal(t, "Letter v2", result.State.CoverLetter)
	assert.Equal(t, "Resume v1", result.State.OptimizedResume)
	revisePrompt := client.calls[1].messages[0].Content
	assert.Contains(t, revisePrompt, "Letter v1")
	assert.Contains(t, revisePrompt, "mention Kubernetes")
}

func TestRunTurnExplanationFailureUsesGenericConfirmation(t *testing.T) {
	client := newScriptedClient(
		toolStep(constants.ToolUpdateResume, nil),
		textStep("Resume v2"),
		errStep("quota"),
	)

	result := runTurn(t, client, sampleState(), "shorter please")

	assert.Equal(t, OutcomeToolApplied, result.Outcome)
	assert.Equal(t, "Resume v2", result.State.OptimizedResume)
	assert.Equal(t, constants.GenericUpdateConfirmation, result.Response)
}

func TestRunTurnFailedToolWritesErrorIntoTargetDocument(t *testing.T) {
	client := newScriptedClient(
		toolStep(constants.ToolUpdateResume, nil),
		textStep("   "),
		textStep("I could not rewrite the resume this time."),
	)

	result := runTurn(t, client, sampleState(), "rewrite it")

	assert.Equal(t, OutcomeToolFailed, result.Outcome)
	assert.Equal(t, emptyResumeRevisionError, result.State.OptimizedResume)
	assert.Equal(t, "Letter v1", result.State.CoverLetter)
	assert.Equal(t, "I could not rewrite the resume this time.", result.Response)
	assert.Contains(t, result.Stages, StageExplaining)
	assert.Equal(t, 3, client.callCount())

	toolResult := result.State.Messages[4]
	assert.Equal(t, constants.MessageRoleToolResult, toolResult.Role)
	assert.Equal(t, emptyResumeRevisionError, toolResult.Content)
}

func TestRunTurnFailedCoverLetterToolLeavesResume(t *testing.T) {
	client := newScriptedClient(
		toolStep(constants.ToolUpdateCoverLetter, nil),
		errStep("quota exceeded"),
		errStep("quota exceeded"),
	)

	result := runTurn(t, client, sampleState(), "warmer tone")

	assert.Equal(t, OutcomeToolFailed, result.Outcome)
	assert.Contains(t, result.State.CoverLetter, "Error updating cover letter:")
	assert.Equal(t, "Resume v1", result.State.OptimizedResume)
	assert.Equal(t, constants.GenericUpdateConfirmation, result.Response)
}

func TestRunTurnMalformedRetrySucceeds(t *testing.T) {
	client := newScriptedClient(malformedStep(), textStep("Recovered answer"))

	result := runTurn(t, client, sampleState(), "hi")

	assert.Equal(t, OutcomeReplied, result.Outcome)
	assert.Equal(t, "Recovered answer", result.Response)
	assert.Equal(t, 2, client.callCount())
	for _, msg := range result.State.Messages {
		assert.False(t, msg.IsMalformedCall())
	}
}

func TestRunTurnMalformedTwiceFallsBack(t *testing.T) {
	client := newScriptedClient(malformedStep(), malformedStep())

	result := runTurn(t, client, sampleState(), "hi")

	assert.Equal(t, OutcomeFallback, result.Outcome)
	assert.Equal(t, constants.MalformedCallFallbackReply, result.Response)
	assert.Equal(t, 2, client.callCount())
	last := result.State.Messages[len(result.State.Messages)-1]
	assert.Equal(t, constants.MalformedCallFallbackReply, last.Content)
}

func TestRunTurnUnknownToolChangesNothing(t *testing.T) {
	client := newScriptedClient(toolStep("send_email", nil))

	result := runTurn(t, client, sampleState(), "email the recruiter")

	assert.Equal(t, OutcomeFallback, result.Outcome)
	assert.Equal(t, constants.UnusableReplyFallback, result.Response)
	assert.Equal(t, "Resume v1", result.State.OptimizedResume)
	assert.Equal(t, "Letter v1", result.State.CoverLetter)
	assert.Equal(t, 1, client.callCount())
}

func TestRunTurnEmptyReplyWithMetadataFallsBack(t *testing.T) {
	reply := models.NewAssistantMessage("")
	reply.Metadata = map[string]interface{}{constants.MetadataKeyFinishReason: constants.FinishReasonStop}
	client := newScriptedClient(scriptedStep{reply: reply})

	result := runTurn(t, client, sampleState(), "hmm")

	assert.Equal(t, OutcomeFallback, result.Outcome)
	assert.Equal(t, constants.UnusableReplyFallback, result.Response)
}

func TestRunTurnEmptyReplyFallsBack(t *testing.T) {
	client := newScriptedClient(textStep(""))

	result := runTurn(t, client, sampleState(), "hmm")

	assert.Equal(t, OutcomeFallback, result.Outcome)
	assert.Equal(t, constants.UnusableReplyFallback, result.Response)
}

func TestRunTurnLegacyFunctionCall(t *testing.T) {
	reply := models.NewAssistantMessage("")
	reply.Metadata = map[string]interface{}{
		constants.MetadataKeyFunctionCall: map[string]interface{}{
			"name":      constants.ToolUpdateCoverLetter,
			"arguments": `{"cover_letter":"Letter v1","feedback":"warmer tone"}`,
		},
	}
	client := newScriptedClient(scriptedStep{reply: reply}, textStep("Letter v2"), textStep("Warmer now."))

	result := runTurn(t, client, sampleState(), "warmer tone")

	assert.Equal(t, OutcomeToolApplied, result.Outcome)
	assert.Equal(t, "Letter v2", result.State.CoverLetter)
	toolCallMsg := result.State.Messages[3]
	require.Len(t, toolCallMsg.ToolCalls, 1)
	assert.NotEmpty(t, toolCallMsg.ToolCalls[0].ID)
	assert.NotContains(t, toolCallMsg.Metadata, constants.MetadataKeyFunctionCall)
}

func TestRunTurnToolCallsSideChannel(t *testing.T) {
	reply := models.NewAssistantMessage("")
	reply.Metadata = map[string]interface{}{
		constants.MetadataKeyToolCalls: []interface{}{
			map[string]interface{}{"name": constants.ToolUpdateResume, "args": map[string]interface{}{"feedback": "bolder"}},
		},
	}
	client := newScriptedClient(scriptedStep{reply: reply}, textStep("Resume v2"), textStep("Made it bolder."))

	result := runTurn(t, client, sampleState(), "bolder")

	assert.Equal(t, OutcomeToolApplied, result.Outcome)
	assert.Equal(t, "Resume v2", result.State.OptimizedResume)
	toolCallMsg := result.State.Messages[3]
	require.Len(t, toolCallMsg.ToolCalls, 1)
	assert.NotEmpty(t, toolCallMsg.ToolCalls[0].ID)
	assert.NotContains(t, toolCallMsg.Metadata, constants.MetadataKeyToolCalls)
}

func TestRunTurnGenerationErrorIsReturned(t *testing.T) {
	client := newScriptedClient(errStep("connection reset"))
	orchestrator := NewChatOrchestrator(client, NewDocumentTools(client))

	_, err := orchestrator.RunTurn(context.Background(), sampleState(), "hi")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrGenerationFailure)
}
