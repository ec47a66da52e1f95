package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"resumebot-ai/internal/apis/dtos"
	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/metrics"
	"resumebot-ai/internal/models"
	"resumebot-ai/internal/repositories"
	"resumebot-ai/internal/utils"

	"github.com/rs/zerolog/log"
)

const (
	DefaultListLimit        = 100
	conversationNotFoundMsg = "Conversation not found"
)

type ConversationService interface {
	Process(ctx context.Context, req *dtos.ProcessRequest) (*dtos.ConversationResponse, uint32, error)
	// Chat runs one turn. When the turn ran but could not be saved, the response is still
	// returned alongside the error and a 500 status.
	Chat(ctx context.Context, req *dtos.ChatRequest) (*dtos.ConversationResponse, uint32, error)
	UpdateDocument(ctx context.Context, req *dtos.UpdateDocumentRequest) (*dtos.ConversationResponse, uint32, error)
	GetDocuments(ctx context.Context, conversationID string) (*dtos.DocumentsResponse, uint32, error)
	List(ctx context.Context, limit, offset int) (*dtos.ConversationListResponse, uint32, error)
	Delete(ctx context.Context, conversationID string) (*dtos.DeleteConversationResponse, uint32, error)
	GetByID(ctx context.Context, conversationID string) (*dtos.ConversationDetailResponse, uint32, error)
	GetDocumentHistory(ctx context.Context, conversationID, documentType string) (*dtos.DocumentHistoryResponse, uint32, error)
}

type conversationService struct {
	conversationRepo repositories.ConversationRepository
	documentCache    repositories.DocumentCacheRepository
	cacheFills       *documentCacheFills
	orchestrator     ChatOrchestrator
	bootstrap        DocumentBootstrap
}

func NewConversationService(
	conversationRepo repositories.ConversationRepository,
	documentCache repositories.DocumentCacheRepository,
	orchestrator ChatOrchestrator,
	bootstrap DocumentBootstrap,
) ConversationService {
	return &conversationService{
		conversationRepo: conversationRepo,
		documentCache:    documentCache,
		cacheFills:       newDocumentCacheFills(documentCache),
		orchestrator:     orchestrator,
		bootstrap:        bootstrap,
	}
}

func (s *conversationService) Process(ctx context.Context, req *dtos.ProcessRequest) (*dtos.ConversationResponse, uint32, error) {
	inputs := models.SourceInputs{
		JobDescription:  req.JobDescription,
		Resume:          req.Resume,
		PersonalSummary: req.PersonalSummary,
	}

	docs, err := s.bootstrap.Run(ctx, inputs)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	state := &models.ConversationState{
		Conversation: *models.NewConversation(utils.NewConversationID(), inputs, *docs),
		Messages: []*models.Message{
			models.NewUserMessage(constants.BootstrapUserMessage),
			models.NewAssistantMessage(fmt.Sprintf(constants.BootstrapAssistantMessageFormat, docs.Summary)),
		},
	}
	created, err := s.conversationRepo.Create(ctx, state)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	metrics.RecordConversationCreated()
	log.Info().Str("conversation_id", created.ID).Msg("Created conversation")

	return &dtos.ConversationResponse{
		ConversationID:  created.ID,
		Response:        docs.Summary,
		OptimizedResume: created.OptimizedResume,
		CoverLetter:     created.CoverLetter,
	}, http.StatusOK, nil
}

func (s *conversationService) Chat(ctx context.Context, req *dtos.ChatRequest) (*dtos.ConversationResponse, uint32, error) {
	state, statusCode, err := s.load(ctx, req.ConversationID)
	if err != nil {
		return nil, statusCode, err
	}

	result, err := s.orchestrator.RunTurn(ctx, state, req.Message)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	response := &dtos.ConversationResponse{
		ConversationID:  result.State.ID,
		Response:        result.Response,
		OptimizedResume: result.State.OptimizedResume,
		CoverLetter:     result.State.CoverLetter,
	}

	if _, err := s.conversationRepo.Save(ctx, result.State); err != nil {
		log.Error().Err(err).Str("conversation_id", req.ConversationID).Msg("Failed to save chat turn")
		return response, http.StatusInternalServerError, err
	}
	s.cacheFills.invalidate(ctx, req.ConversationID)

	return response, http.StatusOK, nil
}

func (s *conversationService) UpdateDocument(ctx context.Context, req *dtos.UpdateDocumentRequest) (*dtos.ConversationResponse, uint32, error) {
	if !constants.IsValidDocumentType(req.DocumentType) {
		return nil, http.StatusBadRequest, fmt.Errorf("%w: invalid document type", apperrors.ErrInvalidArgument)
	}

	state, statusCode, err := s.load(ctx, req.ConversationID)
	if err != nil {
		return nil, statusCode, err
	}

	state.SetDocument(req.DocumentType, req.Content)
	saved, err := s.conversationRepo.Save(ctx, state)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	s.cacheFills.invalidate(ctx, req.ConversationID)

	return &dtos.ConversationResponse{
		ConversationID:  saved.ID,
		Response:        fmt.Sprintf("%s updated successfully", constants.DocumentTypeTitle(req.DocumentType)),
		OptimizedResume: saved.OptimizedResume,
		CoverLetter:     saved.CoverLetter,
	}, http.StatusOK, nil
}

func (s *conversationService) GetDocuments(ctx context.Context, conversationID string) (*dtos.DocumentsResponse, uint32, error) {
	if cached, ok := s.documentCache.Get(ctx, conversationID); ok {
		return &dtos.DocumentsResponse{OptimizedResume: cached.OptimizedResume, CoverLetter: cached.CoverLetter}, http.StatusOK, nil
	}

	token := s.cacheFills.begin(conversationID)
	state, statusCode, err := s.load(ctx, conversationID)
	if err != nil {
		s.cacheFills.commit(ctx, conversationID, token, nil)
		return nil, statusCode, err
	}
	if !s.cacheFills.commit(ctx, conversationID, token, &repositories.CachedDocuments{
		OptimizedResume: state.OptimizedResume,
		CoverLetter:     state.CoverLetter,
	}) {
		log.Debug().Str("conversation_id", conversationID).Msg("Skipped document cache fill superseded by a write")
	}

	return &dtos.DocumentsResponse{OptimizedResume: state.OptimizedResume, CoverLetter: state.CoverLetter}, http.StatusOK, nil
}

func (s *conversationService) List(ctx context.Context, limit, offset int) (*dtos.ConversationListResponse, uint32, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	conversations, err := s.conversationRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	summaries := make([]dtos.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, dtos.ConversationSummary{
			ID:        conv.ID,
			CreatedAt: conv.CreatedAt,
			UpdatedAt: conv.UpdatedAt,
		})
	}
	return &dtos.ConversationListResponse{Conversations: summaries}, http.StatusOK, nil
}

func (s *conversationService) Delete(ctx context.Context, conversationID string) (*dtos.DeleteConversationResponse, uint32, error) {
	existed, err := s.conversationRepo.Delete(ctx, conversationID)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	if !existed {
		return nil, http.StatusNotFound, fmt.Errorf("%s: %w", conversationNotFoundMsg, apperrors.ErrNotFound)
	}
	s.cacheFills.invalidate(ctx, conversationID)

	return &dtos.DeleteConversationResponse{
		Status:  "success",
		Message: fmt.Sprintf("Conversation %s deleted", conversationID),
	}, http.StatusOK, nil
}

func (s *conversationService) GetByID(ctx context.Context, conversationID string) (*dtos.ConversationDetailResponse, uint32, error) {
	state, statusCode, err := s.load(ctx, conversationID)
	if err != nil {
		return nil, statusCode, err
	}

	messages := make([]dtos.MessageResponse, 0, len(state.Messages))
	for _, msg := range state.Messages {
		if msg.IsToolChannel() {
			continue
		}
		messages = append(messages, dtos.MessageResponse{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.CreatedAt,
			Metadata:  msg.Metadata,
		})
	}

	return &dtos.ConversationDetailResponse{
		ConversationID: state.ID,
		Messages:       messages,
		Documents: dtos.ConversationDocuments{
			JobDescription:  state.JobDescription,
			Resume:          state.SourceResume,
			PersonalSummary: state.PersonalSummary,
			OptimizedResume: state.OptimizedResume,
			CoverLetter:     state.CoverLetter,
		},
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
	}, http.StatusOK, nil
}

func (s *conversationService) GetDocumentHistory(ctx context.Context, conversationID, documentType string) (*dtos.DocumentHistoryResponse, uint32, error) {
	if !constants.IsValidDocumentType(documentType) {
		return nil, http.StatusBadRequest, fmt.Errorf("%w: invalid document type, must be 'resume' or 'cover_letter'", apperrors.ErrInvalidArgument)
	}

	revisions, err := s.conversationRepo.ListRevisions(ctx, conversationID, documentType)
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}

	out := make([]dtos.RevisionResponse, 0, len(revisions))
	for _, rev := range revisions {
		item := dtos.RevisionResponse{
			ID:        rev.ID,
			Content:   rev.Content,
			Timestamp: rev.Timestamp,
			Feedback:  rev.Feedback,
			MessageID: rev.MessageID,
		}
		if rev.MessageID != nil {
			msg, err := s.conversationRepo.GetMessageByID(ctx, *rev.MessageID)
			switch {
			case err == nil:
				item.Message = &dtos.RevisionMessage{Content: msg.Content, Role: string(msg.Role), Timestamp: msg.CreatedAt}
			case errors.Is(err, apperrors.ErrNotFound):
			default:
				return nil, http.StatusInternalServerError, err
			}
		}
		out = append(out, item)
	}

	return &dtos.DocumentHistoryResponse{
		ConversationID: conversationID,
		DocumentType:   documentType,
		Revisions:      out,
	}, http.StatusOK, nil
}

func (s *conversationService) load(ctx context.Context, conversationID string) (*models.ConversationState, uint32, error) {
	state, err := s.conversationRepo.Load(ctx, conversationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Warn().Str("conversation_id", conversationID).Msg("Conversation not found")
			return nil, http.StatusNotFound, fmt.Errorf("%s: %w", conversationNotFoundMsg, apperrors.ErrNotFound)
		}
		return nil, uint32(apperrors.HTTPStatus(err)), err
	}
	return state, http.StatusOK, nil
}
