package services

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"resumebot-ai/internal/apis/dtos"
	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"
	"resumebot-ai/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mapDocumentCache struct {
	mu          sync.Mutex
	entries     map[string]repositories.CachedDocuments
	invalidated []string
}

func newMapDocumentCache() *mapDocumentCache {
	return &mapDocumentCache{entries: map[string]repositories.CachedDocuments{}}
}

func (c *mapDocumentCache) Get(_ context.Context, id string) (*repositories.CachedDocuments, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	docs, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &docs, true
}

func (c *mapDocumentCache) Set(_ context.Context, id string, docs *repositories.CachedDocuments) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = *docs
}

func (c *mapDocumentCache) Invalidate(_ context.Context, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
}

type serviceFixture struct {
	service ConversationService
	repo    repositories.ConversationRepository
	cache   *mapDocumentCache
	client  *scriptedClient
	db      *gorm.DB
}

func newServiceFixture(t *testing.T, steps ...scriptedStep) *serviceFixture {
	t.Helper()
	db := newTestDB(t)
	client := newScriptedClient(steps...)
	repo := repositories.NewConversationRepository(db)
	cache := newMapDocumentCache()
	service := NewConversationService(repo, cache, NewChatOrchestrator(client, NewDocumentTools(client)), NewDocumentBootstrap(client))
	return &serviceFixture{service: service, repo: repo, cache: cache, client: client, db: db}
}

func (f *serviceFixture) process(t *testing.T) *dtos.ConversationResponse {
	t.Helper()
	f.client.steps = append(f.client.steps, textStep("Resume v1"), textStep("Letter v1"), textStep("Tailored to Go"))
	resp, status, err := f.service.Process(context.Background(), &dtos.ProcessRequest{
		JobDescription:  "Go developer",
		Resume:          "Raw resume",
		PersonalSummary: "Enjoys APIs",
	})
	require.NoError(t, err)
	require.Equal(t, uint32(http.StatusOK), status)
	return resp
}

func TestProcessCreatesConversation(t *testing.T) {
	f := newServiceFixture(t)
	resp := f.process(t)

	assert.NotEmpty(t, resp.ConversationID)
	assert.Equal(t, "Tailored to Go", resp.Response)
	assert.Equal(t, "Resume v1", resp.OptimizedResume)
	assert.Equal(t, "Letter v1", resp.CoverLetter)

	state, err := f.repo.Load(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, constants.BootstrapUserMessage, state.Messages[0].Content)
	assert.Contains(t, state.Messages[1].Content, "Tailored to Go")
	assert.Equal(t, "Raw resume", state.SourceResume)
}

func TestProcessBootstrapFailurePersistsNothing(t *testing.T) {
	f := newServiceFixture(t, errStep("down"), errStep("down"), errStep("down"))

	_, status, err := f.service.Process(context.Background(), &dtos.ProcessRequest{JobDescription: "jd", Resume: "r"})

	require.Error(t, err)
	assert.Equal(t, uint32(http.StatusInternalServerError), status)
	list, _, err := f.service.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list.Conversations)
}

func TestChatResumeRevisionRecordsFeedback(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)

	f.client.steps = append(f.client.steps,
		toolStep(constants.ToolUpdateResume, nil),
		textStep("Resume v2"),
		textStep("I trimmed the resume."),
	)
	resp, status, err := f.service.Chat(ctx, &dtos.ChatRequest{
		ConversationID: created.ConversationID,
		Message:        "make the resume more concise",
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(http.StatusOK), status)
	assert.Equal(t, "Resume v2", resp.OptimizedResume)
	assert.Equal(t, "Letter v1", resp.CoverLetter)
	assert.Equal(t, "I trimmed the resume.", resp.Response)
	assert.Contains(t, f.cache.invalidated, created.ConversationID)

	history, status, err := f.service.GetDocumentHistory(ctx, created.ConversationID, constants.DocumentTypeResume)
	require.NoError(t, err)
	assert.Equal(t, uint32(http.StatusOK), status)
	require.Len(t, history.Revisions, 2)
	assert.Equal(t, constants.InitialRevisionFeedback, history.Revisions[0].Feedback)
	latest := history.Revisions[1]
	assert.Equal(t, "Resume v2", latest.Content)
	assert.Equal(t, "make the resume more concise", latest.Feedback)
	require.NotNil(t, latest.Message)
	assert.Equal(t, "I trimmed the resume.", latest.Message.Content)

	letters, _, err := f.service.GetDocumentHistory(ctx, created.ConversationID, constants.DocumentTypeCoverLetter)
	require.NoError(t, err)
	assert.Len(t, letters.Revisions, 1)

	detail, _, err := f.service.GetByID(ctx, created.ConversationID)
	require.NoError(t, err)
	for _, msg := range detail.Messages {
		assert.NotEqual(t, string(constants.MessageRoleToolResult), msg.Role)
	}
	assert.Equal(t, "make the resume more concise", detail.Messages[len(detail.Messages)-2].Content)
	assert.Equal(t, "Raw resume", detail.Documents.Resume)
	assert.Equal(t, "Resume v2", detail.Documents.OptimizedResume)
}

func TestChatMalformedTwicePersistsCoherentLog(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)
	f.client.steps = append(f.client.steps, malformedStep(), malformedStep())

	resp, status, err := f.service.Chat(ctx, &dtos.ChatRequest{ConversationID: created.ConversationID, Message: "tweak it"})
	require.NoError(t, err)
	assert.Equal(t, uint32(http.StatusOK), status)
	assert.Equal(t, constants.MalformedCallFallbackReply, resp.Response)

	state, err := f.repo.Load(ctx, created.ConversationID)
	require.NoError(t, err)
	require.Len(t, state.Messages, 4)
	assert.Equal(t, "tweak it", state.Messages[2].Content)
	last := state.Messages[len(state.Messages)-1]
	assert.Equal(t, constants.MessageRoleAssistant, last.Role)
	assert.Equal(t, constants.MalformedCallFallbackReply, last.Content)

	var emptyAssistant int64
	require.NoError(t, f.db.Model(&models.MessageRecord{}).
		Where("conversation_id = ? AND role = ? AND TRIM(content) = ''", created.ConversationID, string(constants.MessageRoleAssistant)).
		Count(&emptyAssistant).Error)
	assert.Zero(t, emptyAssistant)
	for _, msg := range state.Messages {
		assert.False(t, msg.IsMalformedCall())
	}
}

func TestChatUnknownConversation(t *testing.T) {
	f := newServiceFixture(t)

	_, status, err := f.service.Chat(context.Background(), &dtos.ChatRequest{ConversationID: "conv_missing", Message: "hi"})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, uint32(http.StatusNotFound), status)
	assert.Zero(t, f.client.callCount())
}

func TestChatGenerationFailureLeavesConversation(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)
	f.client.steps = append(f.client.steps, errStep("upstream 503"))

	_, status, err := f.service.Chat(ctx, &dtos.ChatRequest{ConversationID: created.ConversationID, Message: "hi"})

	assert.ErrorIs(t, err, apperrors.ErrGenerationFailure)
	assert.Equal(t, uint32(http.StatusInternalServerError), status)
	state, err := f.repo.Load(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Len(t, state.Messages, 2)
}

func TestUpdateDocumentOnlyTouchesTarget(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)
	before, err := f.repo.Load(ctx, created.ConversationID)
	require.NoError(t, err)

	resp, status, err := f.service.UpdateDocument(ctx, &dtos.UpdateDocumentRequest{
		ConversationID: created.ConversationID,
		DocumentType:   constants.DocumentTypeCoverLetter,
		Content:        "Hand edited letter",
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(http.StatusOK), status)
	assert.Equal(t, "Cover Letter updated successfully", resp.Response)
	assert.Equal(t, "Hand edited letter", resp.CoverLetter)
	assert.Equal(t, "Resume v1", resp.OptimizedResume)

	after, err := f.repo.Load(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Len(t, after.Messages, len(before.Messages))

	resumes, _, err := f.service.GetDocumentHistory(ctx, created.ConversationID, constants.DocumentTypeResume)
	require.NoError(t, err)
	assert.Len(t, resumes.Revisions, 1)
	letters, _, err := f.service.GetDocumentHistory(ctx, created.ConversationID, constants.DocumentTypeCoverLetter)
	require.NoError(t, err)
	require.Len(t, letters.Revisions, 2)
	assert.Equal(t, constants.BootstrapUserMessage, letters.Revisions[1].Feedback)
}

func TestUpdateDocumentRejectsUnknownType(t *testing.T) {
	f := newServiceFixture(t)
	created := f.process(t)

	_, status, err := f.service.UpdateDocument(context.Background(), &dtos.UpdateDocumentRequest{
		ConversationID: created.ConversationID,
		DocumentType:   "portfolio",
		Content:        "x",
	})

	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Equal(t, uint32(http.StatusBadRequest), status)
}

func TestGetDocumentsReadsThroughCache(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)

	docs, status, err := f.service.GetDocuments(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, uint32(http.StatusOK), status)
	assert.Equal(t, "Resume v1", docs.OptimizedResume)
	_, cached := f.cache.Get(ctx, created.ConversationID)
	assert.True(t, cached)

	_, _, err = f.service.UpdateDocument(ctx, &dtos.UpdateDocumentRequest{
		ConversationID: created.ConversationID,
		DocumentType:   constants.DocumentTypeResume,
		Content:        "Resume edited",
	})
	require.NoError(t, err)

	docs, _, err = f.service.GetDocuments(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Resume edited", docs.OptimizedResume)

	_, status, err = f.service.GetDocuments(ctx, "conv_missing")
	assert.Error(t, err)
	assert.Equal(t, uint32(http.StatusNotFound), status)
}

// interleavingRepository runs onLoad once, after a Load has read its snapshot and before
// that snapshot is returned.
type interleavingRepository struct {
	repositories.ConversationRepository
	onLoad func()
}

func (r *interleavingRepository) Load(ctx context.Context, conversationID string) (*models.ConversationState, error) {
	state, err := r.ConversationRepository.Load(ctx, conversationID)
	if hook := r.onLoad; hook != nil {
		r.onLoad = nil
		hook()
	}
	return state, err
}

func TestGetDocumentsDoesNotCacheSnapshotOlderThanWrite(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)

	repo := &interleavingRepository{ConversationRepository: f.repo}
	service := NewConversationService(repo, f.cache, NewChatOrchestrator(f.client, NewDocumentTools(f.client)), NewDocumentBootstrap(f.client))
	repo.onLoad = func() {
		_, _, err := service.UpdateDocument(ctx, &dtos.UpdateDocumentRequest{
			ConversationID: created.ConversationID,
			DocumentType:   constants.DocumentTypeResume,
			Content:        "Resume edited concurrently",
		})
		require.NoError(t, err)
	}

	docs, _, err := service.GetDocuments(ctx, created.ConversationID)
	require.NoError(t, err)
	// the in-flight read may still answer with its own snapshot
	assert.Equal(t, "Resume v1", docs.OptimizedResume)

	_, cached := f.cache.Get(ctx, created.ConversationID)
	assert.False(t, cached)

	docs, _, err = service.GetDocuments(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Resume edited concurrently", docs.OptimizedResume)
	cachedDocs, cached := f.cache.Get(ctx, created.ConversationID)
	require.True(t, cached)
	assert.Equal(t, "Resume edited concurrently", cachedDocs.OptimizedResume)
}

func TestDocumentCacheFillsDropFillsStartedBeforeInvalidate(t *testing.T) {
	ctx := context.Background()
	cache := newMapDocumentCache()
	fills := newDocumentCacheFills(cache)

	stale := fills.begin("conv_a")
	other := fills.begin("conv_b")
	fills.invalidate(ctx, "conv_a")
	fresh := fills.begin("conv_a")

	assert.False(t, fills.commit(ctx, "conv_a", stale, &repositories.CachedDocuments{OptimizedResume: "old"}))
	_, cached := cache.Get(ctx, "conv_a")
	assert.False(t, cached)

	assert.True(t, fills.commit(ctx, "conv_a", fresh, &repositories.CachedDocuments{OptimizedResume: "new"}))
	docs, cached := cache.Get(ctx, "conv_a")
	require.True(t, cached)
	assert.Equal(t, "new", docs.OptimizedResume)

	assert.True(t, fills.commit(ctx, "conv_b", other, &repositories.CachedDocuments{CoverLetter: "letter"}))
	// a token is single use
	assert.False(t, fills.commit(ctx, "conv_b", other, &repositories.CachedDocuments{CoverLetter: "again"}))
	assert.Empty(t, fills.pending)
}

func TestDeleteConversation(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	created := f.process(t)

	resp, status, err := f.service.Delete(ctx, created.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, uint32(http.StatusOK), status)
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Conversation "+created.ConversationID+" deleted", resp.Message)

	_, status, err = f.service.GetByID(ctx, created.ConversationID)
	assert.Error(t, err)
	assert.Equal(t, uint32(http.StatusNotFound), status)

	_, status, err = f.service.Delete(ctx, created.ConversationID)
	assert.Error(t, err)
	assert.Equal(t, uint32(http.StatusNotFound), status)

	history, _, err := f.service.GetDocumentHistory(ctx, created.ConversationID, constants.DocumentTypeResume)
	require.NoError(t, err)
	assert.Empty(t, history.Revisions)
}

func TestListConversationsNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	first := f.process(t)
	second := f.process(t)

	// touching the first conversation moves it to the front
	_, _, err := f.service.UpdateDocument(ctx, &dtos.UpdateDocumentRequest{
		ConversationID: first.ConversationID,
		DocumentType:   constants.DocumentTypeResume,
		Content:        "bumped",
	})
	require.NoError(t, err)

	list, _, err := f.service.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list.Conversations, 2)
	assert.Equal(t, first.ConversationID, list.Conversations[0].ID)
	assert.Equal(t, second.ConversationID, list.Conversations[1].ID)

	page, _, err := f.service.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page.Conversations, 1)
	assert.Equal(t, second.ConversationID, page.Conversations[0].ID)
}

func TestGetDocumentHistoryRejectsUnknownType(t *testing.T) {
	f := newServiceFixture(t)

	_, status, err := f.service.GetDocumentHistory(context.Background(), "conv_any", "essay")

	assert.ErrorIs(t, err, apperrors.ErrInvalidArgument)
	assert.Equal(t, uint32(http.StatusBadRequest), status)
}

func TestGetByIDHidesToolChannel(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	state := sampleState()
	call := models.NewAssistantMessage("")
	call.ToolCalls = []models.ToolCall{{ID: "call_1", Name: constants.ToolUpdateResume}}
	state.Append(models.NewUserMessage("shorter"), call, models.NewToolResultMessage("call_1", constants.ToolUpdateResume, "Resume v2"),
		models.NewAssistantMessage("Done."))
	_, err := f.repo.Create(ctx, state)
	require.NoError(t, err)

	detail, _, err := f.service.GetByID(ctx, state.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 4)
	assert.Equal(t, "Done.", detail.Messages[3].Content)
}
