package repositories

import (
	"context"
	"errors"
	"fmt"

	"resumebot-ai/internal/apperrors"
	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"
	"resumebot-ai/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var documentTypes = []string{constants.DocumentTypeResume, constants.DocumentTypeCoverLetter}

// ConversationRepository is the durable store for conversations, their message logs and
// document revision history. Callers must not save the same conversation concurrently.
type ConversationRepository interface {
	// Create inserts a new conversation with its bootstrap messages and one
	// "Initial version" revision per non-empty document.
	Create(ctx context.Context, state *models.ConversationState) (*models.ConversationState, error)
	// Save upserts the conversation, replaces its message log and appends a revision for every
	// document whose content changed. It returns the persisted copy with message IDs assigned;
	// the argument is never modified.
	Save(ctx context.Context, state *models.ConversationState) (*models.ConversationState, error)
	Load(ctx context.Context, id string) (*models.ConversationState, error)
	ListRevisions(ctx context.Context, conversationID, documentType string) ([]*models.DocumentRevision, error)
	GetMessageByID(ctx context.Context, id uint) (*models.Message, error)
	List(ctx context.Context, limit, offset int) ([]*models.Conversation, error)
	// Delete removes revisions, messages and the conversation row, in that order, and reports
	// whether the conversation existed.
	Delete(ctx context.Context, id string) (bool, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, state *models.ConversationState) (*models.ConversationState, error) {
	saved := state.Clone()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := conversationExists(tx, saved.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", apperrors.ErrDuplicateConversation, saved.ID)
		}
		return insertConversation(tx, saved)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateConversation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create conversation %s: %w", apperrors.ErrConversationWrite, state.ID, err)
	}
	return saved, nil
}

func (r *conversationRepository) Save(ctx context.Context, state *models.ConversationState) (*models.ConversationState, error) {
	saved := state.Clone()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stored models.Conversation
		err := tx.Where("id = ?", saved.ID).Take(&stored).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return insertConversation(tx, saved)
		}
		if err != nil {
			return err
		}
		return replaceConversation(tx, &stored, saved)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: save conversation %s: %w", apperrors.ErrConversationWrite, state.ID, err)
	}
	return saved, nil
}

func insertConversation(tx *gorm.DB, state *models.ConversationState) error {
	if state.CreatedAt.IsZero() {
		state.Base = models.NewBase()
	}
	if err := tx.Create(&state.Conversation).Error; err != nil {
		return err
	}
	if err := insertMessages(tx, state); err != nil {
		return err
	}

	ref := revisionMessageRef(state.Messages)
	for _, kind := range documentTypes {
		content := state.Document(kind)
		if content == "" {
			continue
		}
		if err := appendRevision(tx, state.ID, kind, content, constants.InitialRevisionFeedback, ref); err != nil {
			return err
		}
	}
	return nil
}

func replaceConversation(tx *gorm.DB, stored *models.Conversation, state *models.ConversationState) error {
	if err := tx.Where("conversation_id = ?", state.ID).Delete(&models.MessageRecord{}).Error; err != nil {
		return err
	}
	if err := insertMessages(tx, state); err != nil {
		return err
	}

	feedback := ""
	if latest := state.LatestUserMessage(); latest != nil {
		feedback = latest.Content
	}
	ref := revisionMessageRef(state.Messages)
	for _, kind := range documentTypes {
		content := state.Document(kind)
		if content == stored.Document(kind) {
			continue
		}
		if err := appendRevision(tx, state.ID, kind, content, feedback, ref); err != nil {
			return err
		}
	}

	now := models.Now()
	err := tx.Model(&models.Conversation{}).Where("id = ?", state.ID).Updates(map[string]interface{}{
		"optimized_resume": state.OptimizedResume,
		"cover_letter":     state.CoverLetter,
		"updated_at":       now,
	}).Error
	if err != nil {
		return err
	}

	// Source inputs are immutable; the stored row stays authoritative for them.
	state.JobDescription = stored.JobDescription
	state.SourceResume = stored.SourceResume
	state.PersonalSummary = stored.PersonalSummary
	state.CreatedAt = stored.CreatedAt
	state.UpdatedAt = now
	return nil
}

// insertMessages writes the log in order, dropping noise and transient context messages.
// Messages that were persisted before keep their IDs so existing revision references stay valid.
func insertMessages(tx *gorm.DB, state *models.ConversationState) error {
	kept := make([]*models.Message, 0, len(state.Messages))
	for _, msg := range state.Messages {
		if msg.Role == constants.MessageRoleSystemContext || msg.IsNoise() {
			continue
		}
		rec := msg.ToRecord(state.ID)
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		msg.ID = rec.ID
		msg.CreatedAt = rec.Timestamp
		kept = append(kept, msg)
	}
	state.Messages = kept
	return nil
}

// revisionMessageRef picks the message a revision points back to: the newest assistant message
// after the last user message, else that user message.
func revisionMessageRef(messages []*models.Message) *uint {
	for i := len(messages) - 1; i >= 0; i-- {
		switch messages[i].Role {
		case constants.MessageRoleAssistant, constants.MessageRoleUser:
			return utils.ToUintPtr(messages[i].ID)
		}
	}
	return nil
}

func appendRevision(tx *gorm.DB, conversationID, kind, content, feedback string, messageID *uint) error {
	return tx.Create(&models.DocumentRevision{
		ConversationID: conversationID,
		DocumentType:   kind,
		Content:        content,
		Timestamp:      models.Now(),
		Feedback:       feedback,
		MessageID:      messageID,
	}).Error
}

func conversationExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Conversation{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *conversationRepository) Load(ctx context.Context, id string) (*models.ConversationState, error) {
	var state *models.ConversationState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.Where("id = ?", id).Take(&conv).Error; err != nil {
			return err
		}

		var records []*models.MessageRecord
		if err := tx.Where("conversation_id = ?", id).Order("id asc").Find(&records).Error; err != nil {
			return err
		}

		state = &models.ConversationState{Conversation: conv, Messages: make([]*models.Message, 0, len(records))}
		for _, rec := range records {
			state.Messages = append(state.Messages, rec.ToMessage())
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("conversation %s: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load conversation %s: %w", apperrors.ErrConversationRead, id, err)
	}
	return state, nil
}

func (r *conversationRepository) ListRevisions(ctx context.Context, conversationID, documentType string) ([]*models.DocumentRevision, error) {
	revisions := make([]*models.DocumentRevision, 0)
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND document_type = ?", conversationID, documentType).
		Order(clause.OrderBy{Columns: []clause.OrderByColumn{
			{Column: clause.Column{Name: "timestamp"}},
			{Column: clause.Column{Name: "id"}},
		}}).
		Find(&revisions).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list revisions for %s: %w", apperrors.ErrConversationRead, conversationID, err)
	}
	return revisions, nil
}

func (r *conversationRepository) GetMessageByID(ctx context.Context, id uint) (*models.Message, error) {
	var rec models.MessageRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("message %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get message %d: %w", apperrors.ErrConversationRead, id, err)
	}
	return rec.ToMessage(), nil
}

func (r *conversationRepository) List(ctx context.Context, limit, offset int) ([]*models.Conversation, error) {
	if limit <= 0 {
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}

	conversations := make([]*models.Conversation, 0)
	err := r.db.WithContext(ctx).
		Order("updated_at desc, id desc").
		Limit(limit).
		Offset(offset).
		Find(&conversations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %w", apperrors.ErrConversationRead, err)
	}
	return conversations, nil
}

func (r *conversationRepository) Delete(ctx context.Context, id string) (bool, error) {
	existed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", id).Delete(&models.DocumentRevision{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.MessageRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: delete conversation %s: %w", apperrors.ErrConversationWrite, id, err)
	}
	return existed, nil
}
