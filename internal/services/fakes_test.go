package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"
	"resumebot-ai/pkg/database"
	"resumebot-ai/pkg/llm"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type scriptedStep struct {
	reply *models.Message
	err   error
}

type recordedCall struct {
	messages []*models.Message
	tools    []llm.ToolDefinition
}

// scriptedClient replays its steps in order and fails once they run out.
type scriptedClient struct {
	mu    sync.Mutex
	steps []scriptedStep
	calls []recordedCall
}

func newScriptedClient(steps ...scriptedStep) *scriptedClient {
	return &scriptedClient{steps: steps}
}

func (c *scriptedClient) GenerateResponse(_ context.Context, messages []*models.Message, tools []llm.ToolDefinition) (*models.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	copied := make([]*models.Message, len(messages))
	for i, m := range messages {
		copied[i] = m.Clone()
	}
	c.calls = append(c.calls, recordedCall{messages: copied, tools: tools})

	if len(c.steps) == 0 {
		return nil, errors.New("scripted client exhausted")
	}
	step := c.steps[0]
	c.steps = c.steps[1:]
	return step.reply, step.err
}

func (c *scriptedClient) GetModelInfo() llm.ModelInfo {
	return llm.ModelInfo{Name: "scripted", Provider: "test"}
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func textStep(text string) scriptedStep {
	return scriptedStep{reply: models.NewAssistantMessage(text)}
}

func errStep(msg string) scriptedStep {
	return scriptedStep{err: errors.New(msg)}
}

func toolStep(name string, args map[string]interface{}) scriptedStep {
	reply := models.NewAssistantMessage("")
	reply.ToolCalls = []models.ToolCall{{ID: "call_" + uuid.NewString(), Name: name, Arguments: args}}
	return scriptedStep{reply: reply}
}

func malformedStep() scriptedStep {
	reply := models.NewAssistantMessage("")
	reply.Metadata = map[string]interface{}{
		constants.MetadataKeyFinishReason: constants.FinishReasonMalformedFunctionCall,
	}
	return scriptedStep{reply: reply}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitializeDatabaseConnection(database.DatabaseConfigModel{
		Driver: constants.DatabaseDriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func sampleState() *models.ConversationState {
	conv := models.NewConversation("conv_test", models.SourceInputs{
		JobDescription:  "Platform engineer",
		Resume:          "Original resume",
		PersonalSummary: "Builder",
	}, models.InitialDocuments{
		OptimizedResume: "Resume v1",
		CoverLetter:     "Letter v1",
	})
	return &models.ConversationState{
		Conversation: *conv,
		Messages: []*models.Message{
			models.NewUserMessage(constants.BootstrapUserMessage),
			models.NewAssistantMessage("Here is the summary"),
		},
	}
}
